package clustering

import "math"

// Units. Lengths are stored in mm, times in ns.
const (
	Millimeter  = 1.0
	Centimeter  = 10.0
	Nanosecond  = 1.0
	Microsecond = 1000.0
)

// Detector geometry.
const (
	CathodeAPDFaceDistance = 204.4065 * Millimeter
	APDPlaneUPlaneDistance = 6.0 * Millimeter
	UPlaneVPlaneDistance   = 6.0 * Millimeter

	WirePitch            = 3.0 * Millimeter
	WireGangFactor       = 3
	ChannelWidth         = WirePitch * WireGangFactor
	NChannelPerWirePlane = 38
	NWirePlane           = 4
	WirePlaneRadius      = NChannelPerWirePlane * WireGangFactor * WirePitch / 2

	SampleTime = 1.0 * Microsecond

	// Monte-Carlo defaults.
	DriftVelocity  = 0.0028 * Millimeter / Nanosecond
	CollectionTime = 2940.0 * Nanosecond
)

// UWireIndOffset tags induction channels: an induction signal seen on wire
// channel c is stored as UWireIndOffset - c.
const UWireIndOffset = -1000

// Unset marks a coordinate or time that could not be computed.
const Unset = -999.0

type TPCSide int

const (
	North TPCSide = iota
	South
)

func (s TPCSide) String() string {
	switch s {
	case North:
		return "North"
	case South:
		return "South"
	default:
		return "Unknown"
	}
}

// ChannelSide returns the detector half of a wire channel. U and V channels
// 0..75 read the north TPC, 76..151 the south one.
func ChannelSide(channel int) TPCSide {
	if channel < 2*NChannelPerWirePlane {
		return North
	}
	return South
}

func OnSameDetectorHalf(ch1, ch2 int) bool {
	if ch1 < 0 || ch2 < 0 {
		return false
	}
	return ChannelSide(ch1) == ChannelSide(ch2)
}

func IsUWireChannel(channel int) bool {
	if channel < 0 || channel >= NChannelPerWirePlane*NWirePlane {
		return false
	}
	return (channel/NChannelPerWirePlane)%2 == 0
}

func IsVWireChannel(channel int) bool {
	if channel < 0 || channel >= NChannelPerWirePlane*NWirePlane {
		return false
	}
	return (channel/NChannelPerWirePlane)%2 == 1
}

// IsInductionChannel reports whether channel carries the induction offset.
func IsInductionChannel(channel int) bool {
	return channel <= UWireIndOffset
}

// InductionChannel recovers the wire channel of an induction signal.
func InductionChannel(channel int) int {
	return UWireIndOffset - channel
}

// MeanUorVPositionFromChannel is the centre of a ganged channel measured from
// the detector axis.
func MeanUorVPositionFromChannel(channel int) float64 {
	return (float64(channel%NChannelPerWirePlane) - float64(NChannelPerWirePlane)/2 + 0.5) * ChannelWidth
}

// maxDriftTime is the time an electron needs to cross from the cathode to
// the U plane.
func maxDriftTime(driftVelocity float64) float64 {
	return (CathodeAPDFaceDistance - APDPlaneUPlaneDistance) / driftVelocity
}

func quadratureSum(a, b float64) float64 {
	return math.Sqrt(a*a + b*b)
}

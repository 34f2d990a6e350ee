package clustering

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bundle groups wire signals of one polarity that belong to the same
// deposit. A combined bundle holds the signals of several child bundles back
// to back; childStart records where each child begins.
type Bundle[S WireSignal] struct {
	Signals    []S
	childStart []int

	// Only used for U bundles.
	Scint     *ScintillationCluster
	Induction []*UWireInductionSignal
}

func (b *Bundle[S]) AddSignal(sig S) {
	b.Signals = append(b.Signals, sig)
}

// AddBundle appends the signals of other as a new child of b.
func (b *Bundle[S]) AddBundle(other Bundle[S]) {
	b.childStart = append(b.childStart, len(b.Signals))
	b.Signals = append(b.Signals, other.Signals...)
}

func (b Bundle[S]) Size() int         { return len(b.Signals) }
func (b Bundle[S]) IsCombined() bool  { return len(b.childStart) > 0 }
func (b Bundle[S]) NumChildren() int  { return len(b.childStart) }
func (b Bundle[S]) Side() TPCSide     { return ChannelSide(b.Signals[0].SignalChannel()) }
func (b Bundle[S]) Channel(i int) int { return b.Signals[i].SignalChannel() }

// Child returns the i-th child of a combined bundle. It shares the parent's
// scintillation cluster but not its induction signals.
func (b Bundle[S]) Child(i int) Bundle[S] {
	child := Bundle[S]{Scint: b.Scint}
	if i >= len(b.childStart) {
		return child
	}
	lower, upper := b.childStart[i], len(b.Signals)
	if i+1 < len(b.childStart) {
		upper = b.childStart[i+1]
	}
	child.Signals = b.Signals[lower:upper:upper]
	return child
}

func (b Bundle[S]) energies() []float64 {
	e := make([]float64, len(b.Signals))
	for i, sig := range b.Signals {
		e[i] = sig.SignalEnergy()
	}
	return e
}

func (b Bundle[S]) Energy() float64 {
	return floats.Sum(b.energies())
}

func (b Bundle[S]) EnergyError() float64 {
	sum := 0.0
	for _, sig := range b.Signals {
		sum += sig.SignalEnergyError() * sig.SignalEnergyError()
	}
	return math.Sqrt(sum)
}

func (b Bundle[S]) RawEnergy() float64 {
	sum := 0.0
	for _, sig := range b.Signals {
		sum += sig.SignalRawEnergy()
	}
	return sum
}

func (b Bundle[S]) RawEnergyError() float64 {
	sum := 0.0
	for _, sig := range b.Signals {
		sum += sig.SignalRawEnergyError() * sig.SignalRawEnergyError()
	}
	return math.Sqrt(sum)
}

func (b Bundle[S]) InductionEnergy() float64 {
	sum := 0.0
	for _, ind := range b.Induction {
		sum += ind.Magnitude
	}
	return sum
}

func (b Bundle[S]) InductionEnergyError() float64 {
	sum := 0.0
	for _, ind := range b.Induction {
		sum += ind.MagnitudeError * ind.MagnitudeError
	}
	return math.Sqrt(sum)
}

// Time is the energy weighted time for U bundles. V bundles use the time of
// their most energetic signal, or the energy weighted time of their children.
func (b Bundle[S]) Time() float64 {
	if len(b.Signals) == 0 {
		return 0
	}
	if b.Signals[0].Kind() == UWire {
		return b.AverageTime()
	}
	if b.IsCombined() {
		times := make([]float64, b.NumChildren())
		weights := make([]float64, b.NumChildren())
		for i := range times {
			child := b.Child(i)
			times[i] = child.Time()
			weights[i] = child.Energy()
		}
		return stat.Mean(times, meanWeights(weights))
	}
	best := b.Signals[0]
	for _, sig := range b.Signals[1:] {
		if sig.SignalEnergy() > best.SignalEnergy() {
			best = sig
		}
	}
	return best.SignalTime()
}

func (b Bundle[S]) times() []float64 {
	t := make([]float64, len(b.Signals))
	for i, sig := range b.Signals {
		t[i] = sig.SignalTime()
	}
	return t
}

func (b Bundle[S]) positions() []float64 {
	p := make([]float64, len(b.Signals))
	for i, sig := range b.Signals {
		p[i] = MeanUorVPositionFromChannel(sig.SignalChannel())
	}
	return p
}

func (b Bundle[S]) AverageTime() float64 {
	return stat.Mean(b.times(), meanWeights(b.energies()))
}

func (b Bundle[S]) TimeRMS() float64 {
	return weightedRMS(b.times(), b.energies())
}

// Position is the energy weighted U or V coordinate.
func (b Bundle[S]) Position() float64 {
	return stat.Mean(b.positions(), meanWeights(b.energies()))
}

func (b Bundle[S]) PositionRMS() float64 {
	return weightedRMS(b.positions(), b.energies())
}

func (b Bundle[S]) DriftTime() float64 {
	if b.Scint == nil {
		return Unset * Microsecond
	}
	return b.Time() - b.Scint.Time
}

// ZWithDriftVelocity converts the drift time into a Z coordinate. Electrons
// move faster between the V and U planes, which takes collTime to cross.
func (b Bundle[S]) ZWithDriftVelocity(driftVelocity, collTime float64) float64 {
	if len(b.Signals) == 0 || b.Scint == nil {
		return Unset
	}
	dt := b.DriftTime()
	var z float64
	if dt < collTime {
		z = CathodeAPDFaceDistance - APDPlaneUPlaneDistance - UPlaneVPlaneDistance*dt/collTime
	} else {
		z = CathodeAPDFaceDistance - APDPlaneUPlaneDistance - UPlaneVPlaneDistance - driftVelocity*(dt-collTime)
	}
	if b.Side() == South {
		z = -z
	}
	return z
}

// meanWeights falls back to an unweighted mean when the signals carry no
// energy at all.
func meanWeights(weights []float64) []float64 {
	if floats.Sum(weights) == 0 {
		return nil
	}
	return weights
}

func weightedRMS(x, weights []float64) float64 {
	weights = meanWeights(weights)
	squares := make([]float64, len(x))
	for i, v := range x {
		squares[i] = v * v
	}
	mean := stat.Mean(x, weights)
	variance := stat.Mean(squares, weights) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

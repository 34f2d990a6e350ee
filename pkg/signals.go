package clustering

// WireKind tags the two wire polarities a SignalBundle can hold.
type WireKind int

const (
	UWire WireKind = iota
	VWire
)

func (k WireKind) String() string {
	switch k {
	case UWire:
		return "U"
	case VWire:
		return "V"
	default:
		return "Unknown"
	}
}

// WireSignal is satisfied by exactly the two wire signal kinds.
type WireSignal interface {
	*UWireSignal | *VWireSignal
	Kind() WireKind
	SignalChannel() int
	SignalTime() float64
	SignalEnergy() float64
	SignalEnergyError() float64
	SignalRawEnergy() float64
	SignalRawEnergyError() float64
	linkChargeCluster(cc *ChargeCluster)
}

type UWireSignal struct {
	Channel              int     `json:"channel"`
	Time                 float64 `json:"time"`
	TimeError            float64 `json:"time_error"`
	RawEnergy            float64 `json:"raw_energy"`
	RawEnergyError       float64 `json:"raw_energy_error"`
	CorrectedEnergy      float64 `json:"corrected_energy"`
	CorrectedEnergyError float64 `json:"corrected_energy_error"`
	IsInduction          bool    `json:"is_induction"`

	ChargeClusters []*ChargeCluster `json:"-"`
}

func (s *UWireSignal) Kind() WireKind                { return UWire }
func (s *UWireSignal) SignalChannel() int            { return s.Channel }
func (s *UWireSignal) SignalTime() float64           { return s.Time }
func (s *UWireSignal) SignalEnergy() float64         { return s.CorrectedEnergy }
func (s *UWireSignal) SignalEnergyError() float64    { return s.CorrectedEnergyError }
func (s *UWireSignal) SignalRawEnergy() float64      { return s.RawEnergy }
func (s *UWireSignal) SignalRawEnergyError() float64 { return s.RawEnergyError }

func (s *UWireSignal) linkChargeCluster(cc *ChargeCluster) {
	s.ChargeClusters = append(s.ChargeClusters, cc)
}

type VWireSignal struct {
	Channel                 int     `json:"channel"`
	Time                    float64 `json:"time"`
	TimeError               float64 `json:"time_error"`
	Magnitude               float64 `json:"magnitude"`
	MagnitudeError          float64 `json:"magnitude_error"`
	CorrectedMagnitude      float64 `json:"corrected_magnitude"`
	CorrectedMagnitudeError float64 `json:"corrected_magnitude_error"`

	ChargeClusters []*ChargeCluster `json:"-"`
}

func (s *VWireSignal) Kind() WireKind                { return VWire }
func (s *VWireSignal) SignalChannel() int            { return s.Channel }
func (s *VWireSignal) SignalTime() float64           { return s.Time }
func (s *VWireSignal) SignalEnergy() float64         { return s.CorrectedMagnitude }
func (s *VWireSignal) SignalEnergyError() float64    { return s.CorrectedMagnitudeError }
func (s *VWireSignal) SignalRawEnergy() float64      { return s.Magnitude }
func (s *VWireSignal) SignalRawEnergyError() float64 { return s.MagnitudeError }

func (s *VWireSignal) linkChargeCluster(cc *ChargeCluster) {
	s.ChargeClusters = append(s.ChargeClusters, cc)
}

// UWireInductionSignal is an induction pulse on a U channel. Channel holds
// the offset-tagged value, see InductionChannel.
type UWireInductionSignal struct {
	Channel        int     `json:"channel"`
	Time           float64 `json:"time"`
	TimeError      float64 `json:"time_error"`
	Magnitude      float64 `json:"magnitude"`
	MagnitudeError float64 `json:"magnitude_error"`
}

type APDSignalType int

const (
	GangFit APDSignalType = iota
	PlaneFit
	FullFit
)

func (t APDSignalType) String() string {
	switch t {
	case GangFit:
		return "Gang"
	case PlaneFit:
		return "Plane"
	case FullFit:
		return "Full"
	default:
		return "Unknown"
	}
}

// Channels of the per-plane sum signals.
const (
	APDPlaneOneChannel = 1
	APDPlaneTwoChannel = 2
)

type APDSignal struct {
	Type         APDSignalType         `json:"type"`
	Channel      int                   `json:"channel"`
	Time         float64               `json:"time"`
	TimeError    float64               `json:"time_error"`
	RawCounts    float64               `json:"raw_counts"`
	CountsError  float64               `json:"counts_error"`
	ScintCluster *ScintillationCluster `json:"-"`
}

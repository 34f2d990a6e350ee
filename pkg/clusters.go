package clustering

// ChargeCluster is a reconstructed charge deposit. Positions are in mm,
// times in ns. Coordinates that could not be computed hold Unset.
type ChargeCluster struct {
	// DetectorHalf is 0 or 1, plus 2 once merged across the cathode.
	DetectorHalf int

	U, V, X, Y, Z    float64
	URMS, VRMS, ZRMS float64

	RawEnergy                     float64
	RawEnergyError                float64
	CorrectedEnergy               float64
	CorrectedEnergyError          float64
	InductionEnergy               float64
	InductionEnergyError          float64
	AmplitudeInVChannels          float64
	CorrectedAmplitudeInVChannels float64

	CollectionTime float64
	DriftTime      float64

	Scint            *ScintillationCluster
	UWireSignals     []*UWireSignal
	VWireSignals     []*VWireSignal
	InductionSignals []*UWireInductionSignal
}

// Is3D reports whether both wire planes and the light contributed.
func (cc *ChargeCluster) Is3D() bool {
	return len(cc.UWireSignals) > 0 && len(cc.VWireSignals) > 0 && cc.Scint != nil
}

func (cc *ChargeCluster) setScintillationCluster(sc *ScintillationCluster) {
	if sc == nil {
		return
	}
	cc.Scint = sc
	sc.ChargeClusters = append(sc.ChargeClusters, cc)
}

// Values returned by ScintillationCluster.AlgorithmUsed.
const (
	AlgorithmUnknown  = -1
	AlgorithmBothAPD  = 0
	AlgorithmTPC1Only = 4
	AlgorithmTPC2Only = 5
)

type ScintillationCluster struct {
	Time           float64
	RawEnergy      float64
	RawEnergyError float64

	APDSignals     []*APDSignal
	ChargeClusters []*ChargeCluster
}

func (sc *ScintillationCluster) insertAPDSignal(sig *APDSignal) {
	sig.ScintCluster = sc
	sc.APDSignals = append(sc.APDSignals, sig)
}

func (sc *ScintillationCluster) findAPDSignal(t APDSignalType, channel int) *APDSignal {
	for _, sig := range sc.APDSignals {
		if sig.Type == t && sig.Channel == channel {
			return sig
		}
	}
	return nil
}

func (sc *ScintillationCluster) HasGangSignal() bool {
	for _, sig := range sc.APDSignals {
		if sig.Type == GangFit {
			return true
		}
	}
	return false
}

// AlgorithmUsed tells which APD plane sums the cluster was built from.
func (sc *ScintillationCluster) AlgorithmUsed() int {
	plane1 := sc.findAPDSignal(PlaneFit, APDPlaneOneChannel) != nil
	plane2 := sc.findAPDSignal(PlaneFit, APDPlaneTwoChannel) != nil
	switch {
	case plane1 && plane2:
		return AlgorithmBothAPD
	case plane1:
		return AlgorithmTPC1Only
	case plane2:
		return AlgorithmTPC2Only
	default:
		return AlgorithmUnknown
	}
}

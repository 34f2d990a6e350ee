package clustering

import (
	"cmp"
	"math"
	"slices"
)

// MuonVeto is the window, in samples, during which signals of a muon event
// are ignored. A window of [-1, -1] vetoes nothing.
type MuonVeto struct {
	Start int
	Stop  int
}

var noVeto = MuonVeto{Start: -1, Stop: -1}

// muonVetoMargin is added on both sides of the veto window, in samples.
const muonVetoMargin = 10

// NewMuonVeto covers the muon time plus the longest drift time of both
// detector halves, with a margin on either side.
func NewMuonVeto(header EventHeader, numSamples int, drift DriftState) MuonVeto {
	if !header.TaggedAsMuon {
		return noVeto
	}
	maxDriftTPC1 := int((CathodeAPDFaceDistance - APDPlaneUPlaneDistance) / (drift.VelocityTPC1 * Microsecond))
	maxDriftTPC2 := int((CathodeAPDFaceDistance - APDPlaneUPlaneDistance) / (drift.VelocityTPC2 * Microsecond))
	maxDrift := max(maxDriftTPC1, maxDriftTPC2)

	veto := MuonVeto{Start: 0, Stop: numSamples}
	if header.MuonTime > muonVetoMargin {
		veto.Start = header.MuonTime - muonVetoMargin
	}
	if header.MuonTime < numSamples-maxDrift-muonVetoMargin {
		veto.Stop = header.MuonTime + maxDrift + muonVetoMargin
	}
	return veto
}

// Vetoes reports whether a signal at time t (ns) falls inside the window.
func (v MuonVeto) Vetoes(t float64) bool {
	return t > float64(v.Start)*SampleTime && t < float64(v.Stop)*SampleTime
}

// CreateScintillationClusters builds scintillation clusters from the summed
// APD signals and attaches the individual gang signals to them. With full
// detector sums every sum signal is its own cluster; with per-plane sums two
// time-adjacent signals of different planes closer than apdMatchTime form
// one cluster. Clusters that end up without any gang signal are removed.
func CreateScintillationClusters(ed *EventData, veto MuonVeto, apdMatchTime float64) EventStatus {
	byTime := func(a, b *APDSignal) int { return cmp.Compare(a.Time, b.Time) }

	var sums []*APDSignal
	sumBothPlanes := false
	for _, sig := range ed.APDSignals {
		if sig.Type == GangFit {
			continue
		}
		if sig.Type == FullFit {
			sumBothPlanes = true
		}
		if veto.Vetoes(sig.Time) {
			continue
		}
		sums = append(sums, sig)
	}
	slices.SortStableFunc(sums, byTime)

	singleton := func(sig *APDSignal) {
		sc := ed.NewScintillationCluster()
		sc.Time = sig.Time
		sc.insertAPDSignal(sig)
	}

	if sumBothPlanes {
		for _, sig := range sums {
			singleton(sig)
		}
	} else {
		for len(sums) > 1 {
			sig1, sig2 := sums[0], sums[1]
			sums = sums[1:]
			if sig1.Channel != sig2.Channel && math.Abs(sig1.Time-sig2.Time) < apdMatchTime {
				sc := ed.NewScintillationCluster()
				sc.Time = (sig1.Time*sig1.RawCounts + sig2.Time*sig2.RawCounts) / (sig1.RawCounts + sig2.RawCounts)
				sc.insertAPDSignal(sig1)
				sc.insertAPDSignal(sig2)
				sums = sums[1:]
				continue
			}
			singleton(sig1)
		}
		if len(sums) > 0 {
			singleton(sums[0])
		}
	}

	var gangs []*APDSignal
	for _, sig := range ed.APDSignals {
		if veto.Vetoes(sig.Time) {
			continue
		}
		if sig.Type == GangFit {
			gangs = append(gangs, sig)
		}
	}
	slices.SortStableFunc(gangs, byTime)

	// Both lists are time ordered, walk them in lockstep.
	i := 0
	for len(gangs) > 0 && i < len(ed.ScintillationClusters) {
		sc := ed.ScintillationClusters[i]
		sig := gangs[0]
		if math.Abs(sig.Time-sc.Time) > apdMatchTime {
			i++
			continue
		}
		sc.insertAPDSignal(sig)
		gangs = gangs[1:]
	}
	if len(gangs) > 0 {
		logger.Debug("gang signals left without a scintillation cluster", "clustering")
	}

	var empty []*ScintillationCluster
	for _, sc := range ed.ScintillationClusters {
		if !sc.HasGangSignal() {
			empty = append(empty, sc)
		}
	}
	for _, sc := range empty {
		ed.RemoveScintillationCluster(sc)
	}
	return StatusOk
}

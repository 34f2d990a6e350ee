package clustering

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// matcher runs the U-V matching of one event.
type matcher struct {
	config Configuration
	drift  DriftState
	ed     *EventData
	debug  *DebugData
}

// uvConfiguration is one way of combining bundles together with its
// assignment.
type uvConfiguration struct {
	u        []Bundle[*UWireSignal]
	v        []Bundle[*VWireSignal]
	matching *Matching
}

// createChargeClusters bundles the wire signals, tries every combination of
// U bundles against every combination of V bundles and turns the best
// assignment into charge clusters.
func (m *matcher) createChargeClusters(veto MuonVeto) EventStatus {
	ed := m.ed
	var uSignals []*UWireSignal
	for _, sig := range ed.UWireSignals {
		if m.config.IgnoreInduction && sig.IsInduction {
			continue
		}
		if veto.Vetoes(sig.Time) {
			continue
		}
		uSignals = append(uSignals, sig)
	}

	uBundles := ClusterWires(uSignals, m.config.ChargeMatchTime, 0)
	vBundles := ClusterWires(slices.Clone(ed.VWireSignals), m.config.ChargeVMatchTime, m.config.VTimeOffsetPerChannelDiff)
	vBundles = CullVWires(ed, uBundles, vBundles, m.config.ChargeVMatchTime)

	if m.config.Verbosity > 1 {
		logger.Debug("Initial bundles:\n"+formatBundles(uBundles)+formatBundles(vBundles), "clustering")
	}

	// Combining U bundles resolves split V signals and the other way round,
	// hence the swapped windows.
	uCombinations, err := CreateCombinations(uBundles, 1.5*m.config.ChargeVMatchTime)
	var vCombinations Combinations
	if err == nil {
		vCombinations, err = CreateCombinations(vBundles, 1.5*m.config.ChargeMatchTime)
	}
	if err != nil {
		logger.Warning("Too many signals at the same time. Skipping event.", "clustering")
		logger.Debug(fmt.Sprintf("event %d: %v", ed.EventNumber, err), "clustering")
		ed.SkippedByClustering = true
		return StatusDrop
	}
	uCombinations.Insert(nil)
	vCombinations.Insert(nil)

	if m.config.Verbosity > 1 {
		logger.Debug(fmt.Sprintf("proposed U combinations: %v", [][]int(uCombinations)), "clustering")
		logger.Debug(fmt.Sprintf("proposed V combinations: %v", [][]int(vCombinations)), "clustering")
	}

	best := uvConfiguration{
		u:        slices.Clone(uBundles),
		v:        slices.Clone(vBundles),
		matching: NewIdentityMatching(max(len(uBundles), len(vBundles)), m.config.MaxCost),
	}
	m.findScintillationCluster(best.u)

	originalNum := max(len(uBundles), len(vBundles))
	minRatio := math.MaxFloat64
	for _, uSet := range uCombinations {
		us := applyCombination(uBundles, uSet)
		m.findScintillationCluster(us)
		m.findUWireInduction(us)
		for _, vSet := range vCombinations {
			vs := applyCombination(vBundles, vSet)
			matching := NewMatching()
			ratio := m.tryCombination(us, vs, matching, originalNum)
			if ratio < minRatio && isMatchingPhysical(us, vs, matching) {
				minRatio = ratio
				best = uvConfiguration{u: us, v: vs, matching: matching}
			}
		}
	}

	if m.config.Verbosity > 0 {
		var sb strings.Builder
		for x := 0; x < best.matching.N(); x++ {
			y := best.matching.MatchedY(x)
			fmt.Fprintf(&sb, " cost(U[%d] -> V[%d]) = %d", x, y, best.matching.Cost(x, y))
		}
		logger.Debug("best matching:"+sb.String(), "clustering")
	}

	m.emit(best)
	return StatusOk
}

func (m *matcher) emit(best uvConfiguration) {
	for x := 0; x < best.matching.N(); x++ {
		y := best.matching.MatchedY(x)
		switch {
		case x >= len(best.u) && y >= len(best.v):
			continue
		case x >= len(best.u):
			vb := &best.v[y]
			m.recordMatch(nil, vb, Unset)
			m.newChargeCluster(nil, vb, 1, 1)
		case y >= len(best.v):
			ub := &best.u[x]
			m.recordMatch(ub, nil, Unset)
			m.newChargeCluster(ub, nil, 1, 1)
		default:
			ub, vb := &best.u[x], &best.v[y]
			cost := best.matching.Cost(x, y)
			m.recordMatch(ub, vb, cost)
			if cost < m.config.NLLThreshold {
				m.newChargeCluster(ub, vb, 1, 1)
			} else {
				m.newChargeCluster(ub, nil, 1, 1)
				m.newChargeCluster(nil, vb, 1, 1)
			}
		}
	}
}

func (m *matcher) recordMatch(ub *Bundle[*UWireSignal], vb *Bundle[*VWireSignal], cost int) {
	if m.debug == nil {
		return
	}
	rec := MatchedRecord{Z: Unset, TimeDiff: Unset, Cost: cost, NLEnergy: Unset, NLTime: Unset}
	if ub != nil {
		rec.Z = m.z(*ub)
		rec.UEnergy = ub.Energy()
		rec.Time = ub.Time()
		rec.UCombined = ub.IsCombined()
	}
	if vb != nil {
		rec.VEnergy = vb.Energy()
		rec.VCombined = vb.IsCombined()
		if ub == nil {
			rec.Time = vb.Time()
		}
	}
	if ub != nil && vb != nil {
		rec.TimeDiff = ub.Time() - vb.Time()
		rec.NLEnergy = EnergyNLPdf(rec.UEnergy, rec.VEnergy, rec.Z, m.config.ReasonableCost, m.config.UseNewEnergyPDF)
		rec.NLTime = TimeNLPdf(ub.Time(), vb.Time(), rec.Z)
	}
	m.debug.Matched = append(m.debug.Matched, rec)
}

// applyCombination replaces the bundles listed in set, which is sorted, by
// one combined bundle appended at the end.
func applyCombination[S WireSignal](bundles []Bundle[S], set []int) []Bundle[S] {
	ret := slices.Clone(bundles)
	if len(set) == 0 {
		return ret
	}
	var combined Bundle[S]
	for _, i := range set {
		combined.AddBundle(bundles[i])
	}
	for removed, i := range set {
		ret = slices.Delete(ret, i-removed, i-removed+1)
	}
	return append(ret, combined)
}

// tryCombination pads the cost matrix to a square with the reasonable cost,
// solves the assignment and returns its cost per original bundle.
func (m *matcher) tryCombination(us []Bundle[*UWireSignal], vs []Bundle[*VWireSignal], matching *Matching, maxN int) float64 {
	cost := m.logLikelihoodMatrix(us, vs)
	cost.Square(m.config.ReasonableCost)
	sum := matching.Hungarian(cost, maxN, true)
	if m.config.Verbosity > 1 {
		logger.Debug(fmt.Sprintf("cost matrix:\n%ssum of costs: %d", cost, sum), "clustering")
	}
	if maxN == 0 {
		maxN = 1
	}
	return float64(sum) / float64(maxN)
}

// isMatchingPhysical rejects assignments pairing bundles of different
// detector halves or two combined bundles.
func isMatchingPhysical(us []Bundle[*UWireSignal], vs []Bundle[*VWireSignal], matching *Matching) bool {
	for x := range us {
		y := matching.MatchedY(x)
		if y >= len(vs) {
			continue
		}
		if !OnSameDetectorHalf(us[x].Signals[0].Channel, vs[y].Signals[0].Channel) {
			return false
		}
		if us[x].IsCombined() && vs[y].IsCombined() {
			return false
		}
	}
	return true
}

// findScintillationCluster attaches to every U bundle the scintillation
// cluster closest in time among those it could have drifted from.
func (m *matcher) findScintillationCluster(us []Bundle[*UWireSignal]) {
	for i := range us {
		b := &us[i]
		if b.Size() < 1 {
			continue
		}
		var best *ScintillationCluster
		bestdt := math.MaxFloat64
		maxDrift := maxDriftTime(m.drift.Velocity(b.Side()))
		t := b.Time()
		for _, sc := range m.ed.ScintillationClusters {
			dt := t - sc.Time
			if dt > -3*Microsecond && (dt < maxDrift+3*Microsecond || m.config.NoMaxDriftTime) {
				if math.Abs(dt) < bestdt {
					bestdt = math.Abs(dt)
					best = sc
				}
			}
		}
		b.Scint = best
	}
}

// findUWireInduction attaches induction signals sitting on the channel just
// below or above a U bundle. Candidates whose channel already holds a
// collection signal at that time are skipped. A signal may end up in more
// than one bundle.
func (m *matcher) findUWireInduction(us []Bundle[*UWireSignal]) {
	uMatch := m.config.ChargeMatchTime
	indMatch := m.config.UIndMatchTime
	for i := range us {
		b := &us[i]
		b.Induction = nil
		if b.Size() < 1 {
			continue
		}
		t := b.Time()
		minChan, maxChan := b.Channel(0), b.Channel(0)
		for j := 1; j < b.Size(); j++ {
			minChan = min(minChan, b.Channel(j))
			maxChan = max(maxChan, b.Channel(j))
		}

		for _, ind := range m.ed.UWireInductionSignals {
			channel := InductionChannel(ind.Channel)
			collected := slices.ContainsFunc(m.ed.UWireSignals, func(sig *UWireSignal) bool {
				dt := sig.Time - ind.Time
				return !sig.IsInduction && sig.Channel == channel && dt < indMatch && dt > -uMatch
			})
			if collected {
				continue
			}
			dt := t - ind.Time
			if (channel == minChan-1 || channel == maxChan+1) && dt < indMatch && dt > -uMatch {
				b.Induction = append(b.Induction, ind)
			}
		}
	}
}

// newChargeCluster turns a U bundle, a V bundle or a matched pair into
// charge clusters. Combined bundles yield one cluster per child; the energy
// of the uncombined side is shared among them in proportion to the child
// energies.
func (m *matcher) newChargeCluster(ub *Bundle[*UWireSignal], vb *Bundle[*VWireSignal], uRatio, vRatio float64) {
	switch {
	case ub == nil && vb == nil:
		return
	case ub == nil:
		if vb.IsCombined() {
			for i := 0; i < vb.NumChildren(); i++ {
				child := vb.Child(i)
				m.newChargeCluster(nil, &child, 1, 1)
			}
			return
		}
		cc := m.ed.NewChargeCluster()
		cc.DetectorHalf = int(vb.Side())
		cc.AmplitudeInVChannels = vb.RawEnergy()
		cc.CorrectedAmplitudeInVChannels = vb.Energy()
		cc.CollectionTime = vb.Time()
		cc.U = Unset
		cc.V = vb.Position()
		cc.X = Unset
		cc.Y = Unset
		cc.VRMS = vb.PositionRMS()
		cc.DriftTime = Unset * Microsecond
		cc.Z = Unset
		m.linkV(cc, vb)
	case vb == nil:
		if ub.IsCombined() {
			for i := 0; i < ub.NumChildren(); i++ {
				child := ub.Child(i)
				m.newChargeCluster(&child, nil, 1, 1)
			}
			return
		}
		side := ub.Side()
		cc := m.ed.NewChargeCluster()
		cc.DetectorHalf = int(side)
		m.fillU(cc, ub, 1)
		cc.CollectionTime = ub.Time()
		cc.U = ub.Position()
		cc.V = Unset
		cc.X = Unset
		cc.Y = Unset
		cc.URMS = ub.PositionRMS()
		m.linkU(cc, ub)
	default:
		if ub.IsCombined() && vb.IsCombined() {
			logger.Error("critical: trying to associate U and V bundles which both were combined")
			return
		}
		if ub.IsCombined() {
			total := ub.Energy()
			for i := 0; i < ub.NumChildren(); i++ {
				child := ub.Child(i)
				m.newChargeCluster(&child, vb, 1, child.Energy()/total)
			}
			return
		}
		if vb.IsCombined() {
			total := vb.Energy()
			for i := 0; i < vb.NumChildren(); i++ {
				child := vb.Child(i)
				m.newChargeCluster(ub, &child, child.Energy()/total, 1)
			}
			return
		}
		side := ub.Side()
		cc := m.ed.NewChargeCluster()
		cc.DetectorHalf = int(side)
		m.fillU(cc, ub, uRatio)
		cc.AmplitudeInVChannels = vb.RawEnergy() * vRatio
		cc.CorrectedAmplitudeInVChannels = vb.Energy() * vRatio
		cc.CollectionTime = ub.Time()
		cc.U = ub.Position()
		cc.V = vb.Position()
		cc.X, cc.Y = UVToXY(cc.U, cc.V, side)
		cc.URMS = ub.PositionRMS()
		cc.VRMS = vb.PositionRMS()
		m.linkU(cc, ub)
		m.linkV(cc, vb)
	}
}

// fillU sets the charge, drift time and Z of cc from a U bundle.
func (m *matcher) fillU(cc *ChargeCluster, ub *Bundle[*UWireSignal], uRatio float64) {
	side := ub.Side()
	cc.RawEnergy = ub.RawEnergy() * uRatio
	cc.RawEnergyError = ub.RawEnergyError()
	cc.CorrectedEnergy = ub.Energy() * uRatio
	cc.CorrectedEnergyError = ub.EnergyError()
	cc.InductionEnergy = ub.InductionEnergy()
	cc.InductionEnergyError = ub.InductionEnergyError()
	cc.ZRMS = ub.TimeRMS() * m.drift.Velocity(side)
	cc.DriftTime = ub.DriftTime()
	cc.Z = ub.ZWithDriftVelocity(m.drift.Velocity(side), m.drift.CollectionTime(side))
}

func (m *matcher) linkU(cc *ChargeCluster, ub *Bundle[*UWireSignal]) {
	cc.setScintillationCluster(ub.Scint)
	for _, sig := range ub.Signals {
		cc.UWireSignals = append(cc.UWireSignals, sig)
		sig.linkChargeCluster(cc)
	}
	cc.InductionSignals = append(cc.InductionSignals, ub.Induction...)
}

func (m *matcher) linkV(cc *ChargeCluster, vb *Bundle[*VWireSignal]) {
	for _, sig := range vb.Signals {
		cc.VWireSignals = append(cc.VWireSignals, sig)
		sig.linkChargeCluster(cc)
	}
}

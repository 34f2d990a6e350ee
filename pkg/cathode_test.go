package clustering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clusterSummary struct {
	half             int
	x, y, z          float64
	energy, vAmp     float64
	nU, nV           int
	driftTime, sigma float64
}

func summarize(ed *EventData) []clusterSummary {
	var ret []clusterSummary
	for _, cc := range ed.ChargeClusters {
		ret = append(ret, clusterSummary{
			half:      cc.DetectorHalf,
			x:         cc.X,
			y:         cc.Y,
			z:         cc.Z,
			energy:    cc.CorrectedEnergy,
			vAmp:      cc.AmplitudeInVChannels,
			nU:        len(cc.UWireSignals),
			nV:        len(cc.VWireSignals),
			driftTime: cc.DriftTime,
			sigma:     cc.CorrectedEnergyError,
		})
	}
	return ret
}

// addCluster registers a 3D cluster with one U and one V signal.
func addCluster(ed *EventData, sc *ScintillationCluster, half int, x, y, z, energy float64) *ChargeCluster {
	cc := ed.NewChargeCluster()
	cc.DetectorHalf = half
	cc.X, cc.Y, cc.Z = x, y, z
	cc.U, cc.V = 10*float64(half+1), 20*float64(half+1)
	cc.CorrectedEnergy = energy
	cc.CorrectedEnergyError = 3
	cc.RawEnergy = energy
	cc.AmplitudeInVChannels = energy / 5
	cc.DriftTime = 70000 + float64(half)
	u := &UWireSignal{Channel: 12 + 76*half, CorrectedEnergy: energy}
	v := &VWireSignal{Channel: 50 + 76*half}
	ed.UWireSignals = append(ed.UWireSignals, u)
	ed.VWireSignals = append(ed.VWireSignals, v)
	cc.UWireSignals = []*UWireSignal{u}
	cc.VWireSignals = []*VWireSignal{v}
	u.linkChargeCluster(cc)
	v.linkChargeCluster(cc)
	cc.setScintillationCluster(sc)
	return cc
}

func cathodeEvent() (*EventData, *ScintillationCluster) {
	ed := &EventData{}
	sc := ed.NewScintillationCluster()
	sc.insertAPDSignal(&APDSignal{Type: PlaneFit, Channel: APDPlaneOneChannel})
	sc.insertAPDSignal(&APDSignal{Type: PlaneFit, Channel: APDPlaneTwoChannel})
	sc.insertAPDSignal(&APDSignal{Type: GangFit, Channel: 4})
	return ed, sc
}

func TestCathodeSplitMerges(t *testing.T) {
	ed, sc := cathodeEvent()
	north := addCluster(ed, sc, 0, 10, 20, 0.5, 100)
	south := addCluster(ed, sc, 1, 10.5, 20.3, -0.5, 200)

	assert.Equal(t, StatusOk, CheckCathodeSplit(ed))
	require.Equal(t, []*ChargeCluster{north}, ed.ChargeClusters)

	assert.Equal(t, 3, north.DetectorHalf)
	assert.InDelta(t, 10.5, north.X, 1e-9)
	assert.InDelta(t, 20.3, north.Y, 1e-9)
	assert.InDelta(t, 20.0, north.U, 1e-9)
	assert.InDelta(t, 0.0, north.Z, 1e-9)
	assert.InDelta(t, 70000.5, north.DriftTime, 1e-9)
	assert.InDelta(t, 300.0, north.CorrectedEnergy, 1e-9)
	assert.InDelta(t, 300.0, north.RawEnergy, 1e-9)
	assert.InDelta(t, quadratureSum(3, 3), north.CorrectedEnergyError, 1e-9)
	assert.InDelta(t, 60.0, north.AmplitudeInVChannels, 1e-9)
	assert.Len(t, north.UWireSignals, 2)
	assert.Len(t, north.VWireSignals, 2)

	for _, sig := range south.UWireSignals {
		assert.Equal(t, []*ChargeCluster{north}, sig.ChargeClusters)
	}
	assert.Equal(t, []*ChargeCluster{north}, sc.ChargeClusters)
}

func TestCathodeSplitLargerFirstKeepsPosition(t *testing.T) {
	ed, sc := cathodeEvent()
	north := addCluster(ed, sc, 0, 10, 20, 0.5, 300)
	addCluster(ed, sc, 1, 10.5, 20.3, -0.5, 200)

	CheckCathodeSplit(ed)
	require.Len(t, ed.ChargeClusters, 1)
	assert.Equal(t, 2, north.DetectorHalf)
	assert.InDelta(t, 10.0, north.X, 1e-9)
}

func TestCathodeSplitIsIdempotent(t *testing.T) {
	ed, sc := cathodeEvent()
	addCluster(ed, sc, 0, 10, 20, 0.5, 100)
	addCluster(ed, sc, 1, 10.5, 20.3, -0.5, 200)
	addCluster(ed, sc, 1, 10.2, 20.1, -0.8, 50)
	addCluster(ed, sc, 0, -50, 20, 0.2, 80)

	CheckCathodeSplit(ed)
	once := summarize(ed)
	CheckCathodeSplit(ed)
	assert.Equal(t, once, summarize(ed))
	assert.Len(t, once, 3)
}

func TestCathodeSplitLeavesOthersAlone(t *testing.T) {
	tests := []struct {
		name   string
		modify func(ed *EventData, first, second *ChargeCluster)
	}{
		{"far from cathode", func(_ *EventData, first, _ *ChargeCluster) { first.Z = 15 }},
		{"same half", func(_ *EventData, _, second *ChargeCluster) { second.DetectorHalf = 0 }},
		{"different x", func(_ *EventData, _, second *ChargeCluster) { second.X += 11 }},
		{"different y", func(_ *EventData, _, second *ChargeCluster) { second.Y -= 11 }},
		{"no energy", func(_ *EventData, first, _ *ChargeCluster) { first.CorrectedEnergy = 0.5 }},
		{"already merged", func(_ *EventData, first, _ *ChargeCluster) { first.DetectorHalf = 2 }},
		{"not 3D", func(_ *EventData, first, _ *ChargeCluster) { first.VWireSignals = nil }},
		{"other light", func(ed *EventData, _, second *ChargeCluster) {
			other := ed.NewScintillationCluster()
			second.Scint = other
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed, sc := cathodeEvent()
			first := addCluster(ed, sc, 0, 10, 20, 0.5, 100)
			second := addCluster(ed, sc, 1, 10.5, 20.3, -0.5, 200)
			tt.modify(ed, first, second)

			CheckCathodeSplit(ed)
			assert.Len(t, ed.ChargeClusters, 2)
		})
	}
}

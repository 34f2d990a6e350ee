package clustering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscardClustersDropsSignalLinks(t *testing.T) {
	ed := newTestEvent()
	u := &UWireSignal{Channel: 12, Time: 50000, CorrectedEnergy: 500}
	v := &VWireSignal{Channel: NChannelPerWirePlane + 12, Time: 50001, CorrectedMagnitude: expectedV(500)}
	ed.UWireSignals = []*UWireSignal{u}
	ed.VWireSignals = []*VWireSignal{v}

	require.Equal(t, StatusOk, NewModule(DefaultConfiguration(), nil).ProcessEvent(ed))
	require.NotEmpty(t, u.ChargeClusters)
	require.NotEmpty(t, ed.ScintillationClusters)

	ed.UWireSignals = append(ed.UWireSignals, nil)
	ed.DiscardClusters()

	assert.Empty(t, ed.ChargeClusters)
	assert.Empty(t, ed.ScintillationClusters)
	assert.Empty(t, u.ChargeClusters)
	assert.Empty(t, v.ChargeClusters)
	for _, apd := range ed.APDSignals {
		assert.Nil(t, apd.ScintCluster)
	}
}

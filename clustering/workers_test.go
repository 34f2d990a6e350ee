package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	clustering "github.com/exo-200/clustering_go/pkg"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineInput = `{"run_number": 4000, "event_number": 1, "header": {"is_monte_carlo": true, "sample_count": 2047}}
{"run_number": 4000, "event_number": 2, "header": {"is_monte_carlo": true, "sample_count": 2047}, "u_wire_signals": [{"channel": 40}]}
{"run_number": 4000, "event_number": 3, "header": {"is_monte_carlo": true, "sample_count": 2047}, "u_wire_signals": [{"channel": 12, "time": 50000, "corrected_energy": 500}]}
{"run_number": 4000, "event_number": 4, "header": {"is_monte_carlo": true, "sample_count": 2047}}
`

type recordingWriter struct {
	events   []int
	statuses []clustering.EventStatus
	err      error
}

func (w *recordingWriter) WriteEvent(ed *clustering.EventData, status clustering.EventStatus, _ *clustering.DebugData) error {
	if w.err != nil {
		return w.err
	}
	w.events = append(w.events, ed.EventNumber)
	w.statuses = append(w.statuses, status)
	return nil
}

func withConfiguration(t *testing.T, modify func(*clustering.Configuration)) {
	t.Helper()
	saved := configuration
	configuration = clustering.DefaultConfiguration()
	modify(&configuration)
	t.Cleanup(func() { configuration = saved })
}

func TestRunPipeline(t *testing.T) {
	withConfiguration(t, func(c *clustering.Configuration) { c.Skip = 1 })

	writer := &recordingWriter{}
	summary := NewSummary()
	module := clustering.NewModule(configuration, nil)
	err := runPipeline(context.Background(), NewFileReader(strings.NewReader(pipelineInput)), module, writer, summary)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 4}, writer.events)
	assert.Equal(t, []clustering.EventStatus{clustering.StatusOk, clustering.StatusOk}, writer.statuses)
	assert.Equal(t, map[clustering.EventStatus]int{clustering.StatusOk: 2}, summary.Counts())
	assert.Equal(t, 1, summary.chargeClusters)
}

func TestRunPipelineMaxEvents(t *testing.T) {
	withConfiguration(t, func(c *clustering.Configuration) {
		c.Skip = 1
		c.MaxEvents = 2
	})

	writer := &recordingWriter{}
	module := clustering.NewModule(configuration, nil)
	err := runPipeline(context.Background(), NewFileReader(strings.NewReader(pipelineInput)), module, writer, NewSummary())
	require.NoError(t, err)
	assert.Equal(t, []int{3}, writer.events)
}

func TestRunPipelineWithoutOutput(t *testing.T) {
	withConfiguration(t, func(c *clustering.Configuration) { c.WriteData = false })

	writer := &recordingWriter{}
	summary := NewSummary()
	module := clustering.NewModule(configuration, nil)
	err := runPipeline(context.Background(), NewFileReader(strings.NewReader(pipelineInput)), module, writer, summary)
	require.NoError(t, err)
	assert.Empty(t, writer.events)
	assert.Equal(t, 3, summary.Counts()[clustering.StatusOk])
}

func TestRunPipelineWriteError(t *testing.T) {
	withConfiguration(t, func(c *clustering.Configuration) {})

	failure := errors.New("disk full")
	module := clustering.NewModule(configuration, nil)
	err := runPipeline(context.Background(), NewFileReader(strings.NewReader(pipelineInput)), module,
		&recordingWriter{err: failure}, NewSummary())
	assert.ErrorIs(t, err, failure)
}

func TestRunPipelineMalformedInput(t *testing.T) {
	withConfiguration(t, func(c *clustering.Configuration) {})

	module := clustering.NewModule(configuration, nil)
	err := runPipeline(context.Background(), NewFileReader(strings.NewReader(`{"event_number": "one"}`)), module,
		&recordingWriter{}, NewSummary())
	assert.Error(t, err)
}

func TestClusterEventRecoversFromPanic(t *testing.T) {
	u := &clustering.UWireSignal{Channel: 12, Time: 50000, CorrectedEnergy: 500}
	v := &clustering.VWireSignal{Channel: clustering.NChannelPerWirePlane + 12, Time: 50001}
	apd := &clustering.APDSignal{Type: clustering.GangFit, Channel: 3, Time: 50}
	ed := &clustering.EventData{
		EventNumber:  9,
		UWireSignals: []*clustering.UWireSignal{u},
		VWireSignals: []*clustering.VWireSignal{v},
		APDSignals:   []*clustering.APDSignal{apd},
	}
	// Clusters left behind by an interrupted pass.
	sc := ed.NewScintillationCluster()
	cc := ed.NewChargeCluster()
	cc.Scint = sc
	sc.ChargeClusters = []*clustering.ChargeCluster{cc}
	u.ChargeClusters = []*clustering.ChargeCluster{cc}
	v.ChargeClusters = []*clustering.ChargeCluster{cc}
	apd.ScintCluster = sc

	var module *clustering.Module
	result := clusterEvent(module, ed)

	assert.Equal(t, clustering.StatusError, result.Status)
	assert.Same(t, ed, result.Event)
	assert.Nil(t, result.Debug)
	assert.Empty(t, ed.ChargeClusters)
	assert.Empty(t, ed.ScintillationClusters)
	assert.Empty(t, u.ChargeClusters)
	assert.Empty(t, v.ChargeClusters)
	assert.Nil(t, apd.ScintCluster)
}

func TestSummaryPrint(t *testing.T) {
	color.NoColor = true

	summary := NewSummary()
	summary.Add(WorkerResult{Event: &clustering.EventData{ChargeClusters: make([]*clustering.ChargeCluster, 2)}, Status: clustering.StatusOk})
	summary.Add(WorkerResult{Event: &clustering.EventData{}, Status: clustering.StatusDrop})
	summary.Add(WorkerResult{Event: &clustering.EventData{}, Status: clustering.StatusOk})

	counts := summary.Counts()
	counts[clustering.StatusError] = 10
	assert.NotContains(t, summary.Counts(), clustering.StatusError)

	var buf bytes.Buffer
	summary.Print(&buf, 1500*time.Millisecond)
	out := buf.String()
	assert.Contains(t, out, "Events processed: 3")
	assert.Contains(t, out, "Ok: 2")
	assert.Contains(t, out, "Drop: 1")
	assert.Contains(t, out, "Charge clusters: 2")
	assert.Contains(t, out, "Total time: 1500 ms")
	assert.Less(t, strings.Index(out, "Ok:"), strings.Index(out, "Drop:"))
}

package clustering

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoEvents = `{"run_number": 4000, "event_number": 1, "header": {"trigger_seconds": 1300000000, "trigger_offset": 1024, "sample_count": 2047},
 "u_wire_signals": [{"channel": 12, "time": 50000, "corrected_energy": 500, "corrected_energy_error": 20}],
 "v_wire_signals": [{"channel": 50, "time": 50001, "magnitude": 150, "corrected_magnitude": 160}],
 "u_wire_induction_signals": [{"channel": -1013, "time": 49000, "magnitude": 12}],
 "apd_signals": [{"type": 2, "time": 1000, "raw_counts": 300}]}
{"run_number": 4000, "event_number": 2, "header": {"is_monte_carlo": true}}
`

func TestEventReader(t *testing.T) {
	reader := NewEventReader(strings.NewReader(twoEvents))

	ed, err := reader.ReadEvent()
	require.NoError(t, err)
	want := &EventData{
		RunNumber:   4000,
		EventNumber: 1,
		Header:      EventHeader{TriggerSeconds: 1300000000, TriggerOffset: 1024, SampleCount: 2047},
		UWireSignals: []*UWireSignal{
			{Channel: 12, Time: 50000, CorrectedEnergy: 500, CorrectedEnergyError: 20},
		},
		VWireSignals: []*VWireSignal{
			{Channel: 50, Time: 50001, Magnitude: 150, CorrectedMagnitude: 160},
		},
		UWireInductionSignals: []*UWireInductionSignal{
			{Channel: -1013, Time: 49000, Magnitude: 12},
		},
		APDSignals: []*APDSignal{
			{Type: FullFit, Time: 1000, RawCounts: 300},
		},
	}
	if diff := cmp.Diff(want, ed); diff != "" {
		t.Errorf("ReadEvent() mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, ValidEvent(ed))

	ed, err = reader.ReadEvent()
	require.NoError(t, err)
	assert.True(t, ed.Header.IsMonteCarloEvent)
	assert.Equal(t, 2, reader.EvtCount)

	_, err = reader.ReadEvent()
	assert.ErrorIs(t, err, io.EOF)
}

func TestEventReaderMalformed(t *testing.T) {
	reader := NewEventReader(strings.NewReader(`{"run_number": "four"}`))
	_, err := reader.ReadEvent()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestValidEvent(t *testing.T) {
	tests := []struct {
		name    string
		ed      *EventData
		wantErr bool
	}{
		{"empty", &EventData{}, false},
		{"u on v channel", &EventData{UWireSignals: []*UWireSignal{{Channel: 40}}}, true},
		{"v on u channel", &EventData{VWireSignals: []*VWireSignal{{Channel: 80}}}, true},
		{"v south", &EventData{VWireSignals: []*VWireSignal{{Channel: 120}}}, false},
		{"induction without offset", &EventData{UWireInductionSignals: []*UWireInductionSignal{{Channel: 13}}}, true},
		{"induction on v channel", &EventData{UWireInductionSignals: []*UWireInductionSignal{{Channel: UWireIndOffset - 40}}}, true},
		{"apd channel", &EventData{UWireSignals: []*UWireSignal{{Channel: 160}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidEvent(tt.ed)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package clustering

import "fmt"

// Module turns the signals of one event into scintillation and charge
// clusters. A Module keeps the drift state and the trigger sample across
// events and must not be shared between goroutines.
type Module struct {
	config   Configuration
	resolver *DriftResolver

	triggerSample int
	debug         *DebugData
}

// NewModule builds a clustering module. A nil resolver is replaced by one
// without calibration source.
func NewModule(config Configuration, resolver *DriftResolver) *Module {
	if resolver == nil {
		resolver = NewDriftResolver(config, nil)
	}
	return &Module{config: config, resolver: resolver}
}

// ProcessEvent clusters ed in place. Clusters from an earlier call are
// removed first. A dropped event ends up without clusters.
func (m *Module) ProcessEvent(ed *EventData) EventStatus {
	if m.config.Verbosity > 0 {
		logger.Debug(fmt.Sprintf("clustering event %d", ed.EventNumber), "clustering")
	}
	m.debug = nil
	if m.config.WriteDebug {
		m.debug = &DebugData{EventNumber: ed.EventNumber}
	}
	ed.ClearClusters()

	numSamples := ed.Header.SampleCount + 1
	drift := m.resolver.Resolve(ed.Header)
	veto := NewMuonVeto(ed.Header, numSamples, drift)

	offset := ed.Header.TriggerOffset
	if offset > numSamples {
		logger.Debug("trigger time lies outside of trace", "clustering")
		ed.SkippedByClustering = true
		return StatusDrop
	}
	// An offset of 0 keeps the previous trigger sample.
	if offset > 0 {
		m.triggerSample = offset
	}

	if status := CreateScintillationClusters(ed, veto, m.config.APDMatchTime); status != StatusOk {
		return status
	}

	uv := matcher{config: m.config, drift: drift, ed: ed, debug: m.debug}
	if status := uv.createChargeClusters(veto); status != StatusOk {
		ed.ClearClusters()
		return status
	}
	return CheckCathodeSplit(ed)
}

// DebugData returns the records of the last processed event, nil unless
// debug output is enabled.
func (m *Module) DebugData() *DebugData { return m.debug }

func (m *Module) TriggerSample() int { return m.triggerSample }

func (m *Module) DriftState() DriftState { return m.resolver.State() }

package clustering

import (
	"slices"
	"time"
)

type EventStatus int

const (
	StatusOk EventStatus = iota
	StatusDrop
	StatusError
)

func (s EventStatus) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusDrop:
		return "Drop"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

type EventHeader struct {
	TriggerSeconds      int64 `json:"trigger_seconds"`
	TriggerMicroSeconds int64 `json:"trigger_microseconds"`
	IsMonteCarloEvent   bool  `json:"is_monte_carlo"`
	TaggedAsMuon        bool  `json:"tagged_as_muon"`
	// MuonTime is in samples.
	MuonTime      int `json:"muon_time"`
	TriggerOffset int `json:"trigger_offset"`
	SampleCount   int `json:"sample_count"`
}

func (h EventHeader) Timestamp() time.Time {
	return time.Unix(h.TriggerSeconds, h.TriggerMicroSeconds*int64(time.Microsecond))
}

// EventData owns every signal and cluster of one event.
type EventData struct {
	RunNumber   int         `json:"run_number"`
	EventNumber int         `json:"event_number"`
	Header      EventHeader `json:"header"`

	UWireSignals          []*UWireSignal          `json:"u_wire_signals"`
	VWireSignals          []*VWireSignal          `json:"v_wire_signals"`
	UWireInductionSignals []*UWireInductionSignal `json:"u_wire_induction_signals"`
	APDSignals            []*APDSignal            `json:"apd_signals"`

	ChargeClusters        []*ChargeCluster        `json:"-"`
	ScintillationClusters []*ScintillationCluster `json:"-"`
	SkippedByClustering   bool                    `json:"-"`
}

func (ed *EventData) NewChargeCluster() *ChargeCluster {
	cc := &ChargeCluster{}
	ed.ChargeClusters = append(ed.ChargeClusters, cc)
	return cc
}

func (ed *EventData) NewScintillationCluster() *ScintillationCluster {
	sc := &ScintillationCluster{}
	ed.ScintillationClusters = append(ed.ScintillationClusters, sc)
	return sc
}

// RemoveChargeCluster deregisters cc and drops every link pointing at it.
func (ed *EventData) RemoveChargeCluster(cc *ChargeCluster) {
	idx := slices.Index(ed.ChargeClusters, cc)
	if idx < 0 {
		return
	}
	ed.ChargeClusters = slices.Delete(ed.ChargeClusters, idx, idx+1)
	for _, sig := range cc.UWireSignals {
		sig.ChargeClusters = removePointer(sig.ChargeClusters, cc)
	}
	for _, sig := range cc.VWireSignals {
		sig.ChargeClusters = removePointer(sig.ChargeClusters, cc)
	}
	if cc.Scint != nil {
		cc.Scint.ChargeClusters = removePointer(cc.Scint.ChargeClusters, cc)
	}
}

func (ed *EventData) RemoveScintillationCluster(sc *ScintillationCluster) {
	idx := slices.Index(ed.ScintillationClusters, sc)
	if idx < 0 {
		return
	}
	ed.ScintillationClusters = slices.Delete(ed.ScintillationClusters, idx, idx+1)
	for _, sig := range sc.APDSignals {
		if sig.ScintCluster == sc {
			sig.ScintCluster = nil
		}
	}
	for _, cc := range sc.ChargeClusters {
		if cc.Scint == sc {
			cc.Scint = nil
		}
	}
}

func (ed *EventData) RemoveVWireSignal(sig *VWireSignal) {
	idx := slices.Index(ed.VWireSignals, sig)
	if idx < 0 {
		return
	}
	ed.VWireSignals = slices.Delete(ed.VWireSignals, idx, idx+1)
	for _, cc := range sig.ChargeClusters {
		cc.VWireSignals = removePointer(cc.VWireSignals, sig)
	}
}

// ClearClusters removes every reconstructed cluster of the event.
func (ed *EventData) ClearClusters() {
	for len(ed.ScintillationClusters) > 0 {
		ed.RemoveScintillationCluster(ed.ScintillationClusters[0])
	}
	for len(ed.ChargeClusters) > 0 {
		ed.RemoveChargeCluster(ed.ChargeClusters[0])
	}
}

func removePointer[T any](list []*T, p *T) []*T {
	return slices.DeleteFunc(list, func(e *T) bool { return e == p })
}

// DiscardClusters drops every cluster together with the signal links that
// point at them, without walking the clusters themselves. It is meant for
// events whose clustering stopped half way.
func (ed *EventData) DiscardClusters() {
	for _, sig := range ed.UWireSignals {
		if sig != nil {
			sig.ChargeClusters = nil
		}
	}
	for _, sig := range ed.VWireSignals {
		if sig != nil {
			sig.ChargeClusters = nil
		}
	}
	for _, sig := range ed.APDSignals {
		if sig != nil {
			sig.ScintCluster = nil
		}
	}
	ed.ChargeClusters = nil
	ed.ScintillationClusters = nil
}

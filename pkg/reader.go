package clustering

import (
	"encoding/json"
	"fmt"
	"io"
)

// EventReader decodes events stored as JSON, one EventData per line.
type EventReader struct {
	decoder  *json.Decoder
	EvtCount int
}

func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{decoder: json.NewDecoder(r)}
}

// ReadEvent returns the next event, or io.EOF once the input is exhausted.
func (r *EventReader) ReadEvent() (*EventData, error) {
	ed := &EventData{}
	if err := r.decoder.Decode(ed); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("error decoding event %d: %w", r.EvtCount, err)
	}
	r.EvtCount++
	return ed, nil
}

// ValidEvent checks that every signal sits on a channel of its kind.
func ValidEvent(ed *EventData) error {
	for _, sig := range ed.UWireSignals {
		if !IsUWireChannel(sig.Channel) {
			return fmt.Errorf("event %d: U signal on channel %d", ed.EventNumber, sig.Channel)
		}
	}
	for _, sig := range ed.VWireSignals {
		if !IsVWireChannel(sig.Channel) {
			return fmt.Errorf("event %d: V signal on channel %d", ed.EventNumber, sig.Channel)
		}
	}
	for _, sig := range ed.UWireInductionSignals {
		if !IsInductionChannel(sig.Channel) || !IsUWireChannel(InductionChannel(sig.Channel)) {
			return fmt.Errorf("event %d: induction signal on channel %d", ed.EventNumber, sig.Channel)
		}
	}
	return nil
}

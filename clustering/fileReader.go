package main

import (
	"fmt"
	"io"

	clustering "github.com/exo-200/clustering_go/pkg"
)

type FileReader struct {
	reader   *clustering.EventReader
	EvtCount int
}

func NewFileReader(r io.Reader) *FileReader {
	return &FileReader{reader: clustering.NewEventReader(r), EvtCount: -1}
}

// getNextEvent returns the next valid event honouring Skip and MaxEvents.
// io.EOF marks the end of the input.
func (f *FileReader) getNextEvent() (*clustering.EventData, error) {
	for {
		ed, err := f.reader.ReadEvent()
		if err != nil {
			return nil, err
		}
		if err := clustering.ValidEvent(ed); err != nil {
			logger.Error(fmt.Errorf("skipping invalid event: %w", err).Error())
			continue
		}
		f.EvtCount++
		if f.EvtCount >= configuration.MaxEvents {
			if VerbosityLevel > 0 {
				logger.Info("Max events reached", "fileReader")
			}
			return nil, io.EOF
		}
		if f.EvtCount < configuration.Skip {
			if VerbosityLevel > 0 {
				message := fmt.Sprintf("Skipping event %d with ID %d", f.EvtCount, ed.EventNumber)
				logger.Info(message, "fileReader")
			}
			continue
		}
		if VerbosityLevel > 0 {
			message := fmt.Sprintf("Reading event %d with ID %d", f.EvtCount, ed.EventNumber)
			logger.Info(message, "fileReader")
		}
		return ed, nil
	}
}

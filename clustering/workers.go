package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	clustering "github.com/exo-200/clustering_go/pkg"
	"golang.org/x/sync/errgroup"
)

type WorkerResult struct {
	Event  *clustering.EventData
	Status clustering.EventStatus
	Debug  *clustering.DebugData
}

// EventWriter receives every clustered event in input order.
type EventWriter interface {
	WriteEvent(ed *clustering.EventData, status clustering.EventStatus, debug *clustering.DebugData) error
}

// runPipeline reads, clusters and writes events in three stages. Clustering
// runs in a single goroutine since the module carries drift and trigger
// state from one event to the next. writer may be nil.
func runPipeline(ctx context.Context, fileReader *FileReader, module *clustering.Module, writer EventWriter, summary *Summary) error {
	g, gCtx := errgroup.WithContext(ctx)
	events := make(chan *clustering.EventData, 100)
	results := make(chan WorkerResult, 100)

	g.Go(func() error {
		defer close(events)
		return sendEventsToWorker(gCtx, fileReader, events)
	})

	g.Go(func() error {
		defer close(results)
		for ed := range events {
			select {
			case results <- clusterEvent(module, ed):
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		return processWorkerResults(results, writer, summary)
	})

	return g.Wait()
}

func sendEventsToWorker(ctx context.Context, fileReader *FileReader, jobs chan<- *clustering.EventData) error {
	for {
		ed, err := fileReader.getNextEvent()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading event: %w", err)
		}
		select {
		case jobs <- ed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// clusterEvent processes one event. A panic discards the clusters of that
// event only.
func clusterEvent(module *clustering.Module, ed *clustering.EventData) (result WorkerResult) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("clustering recovered from panic on event %d: %v", ed.EventNumber, r)
			logger.Error(errMessage.Error())
			ed.DiscardClusters()
			result = WorkerResult{Event: ed, Status: clustering.StatusError}
		}
	}()

	status := module.ProcessEvent(ed)
	return WorkerResult{Event: ed, Status: status, Debug: module.DebugData()}
}

func processWorkerResults(results <-chan WorkerResult, writer EventWriter, summary *Summary) error {
	for result := range results {
		summary.Add(result)
		if VerbosityLevel > 0 {
			message := fmt.Sprintf("Processed event %d: %s", result.Event.EventNumber, result.Status)
			logger.Info(message, "worker")
		}
		if writer == nil || !configuration.WriteData {
			continue
		}
		if err := writer.WriteEvent(result.Event, result.Status, result.Debug); err != nil {
			return fmt.Errorf("error writing event %d: %w", result.Event.EventNumber, err)
		}
	}
	return nil
}

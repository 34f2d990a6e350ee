package main

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	clustering "github.com/exo-200/clustering_go/pkg"
	"github.com/fatih/color"
	"golang.org/x/exp/maps"
)

// Summary counts processed events by status along with the clusters found.
type Summary struct {
	mu             sync.Mutex
	counts         map[clustering.EventStatus]int
	chargeClusters int
	scintClusters  int
}

func NewSummary() *Summary {
	return &Summary{counts: make(map[clustering.EventStatus]int)}
}

func (s *Summary) Add(result WorkerResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[result.Status]++
	s.chargeClusters += len(result.Event.ChargeClusters)
	s.scintClusters += len(result.Event.ScintillationClusters)
}

// Counts returns a copy of the per-status event counts.
func (s *Summary) Counts() map[clustering.EventStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.counts)
}

func (s *Summary) Print(w io.Writer, elapsed time.Duration) {
	counts := s.Counts()
	statuses := maps.Keys(counts)
	slices.Sort(statuses)
	total := 0
	for _, n := range counts {
		total += n
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(w, "\n%s\n", cyan("=== Clustering summary ==="))
	fmt.Fprintf(w, "Events processed: %d\n", total)
	for _, status := range statuses {
		fmt.Fprintf(w, "  %s: %d\n", statusColor(status)(status.String()), counts[status])
	}

	s.mu.Lock()
	fmt.Fprintf(w, "Charge clusters: %d\n", s.chargeClusters)
	fmt.Fprintf(w, "Scintillation clusters: %d\n", s.scintClusters)
	s.mu.Unlock()
	fmt.Fprintf(w, "Total time: %d ms\n", elapsed.Milliseconds())
}

func statusColor(status clustering.EventStatus) func(a ...interface{}) string {
	switch status {
	case clustering.StatusOk:
		return color.New(color.FgGreen).SprintFunc()
	case clustering.StatusDrop:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgRed).SprintFunc()
	}
}

func printDriftState(w io.Writer, state clustering.DriftState) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(w, "%s (%s)\n", yellow("Drift velocity"), state.VelocityStatus)
	fmt.Fprintf(w, "  TPC1: %g mm/us\n", state.VelocityTPC1*clustering.Microsecond)
	fmt.Fprintf(w, "  TPC2: %g mm/us\n", state.VelocityTPC2*clustering.Microsecond)
	fmt.Fprintf(w, "%s (%s)\n", yellow("Collection time"), state.CollectionStatus)
	fmt.Fprintf(w, "  TPC1: %g us\n", state.CollectionTimeTPC1/clustering.Microsecond)
	fmt.Fprintf(w, "  TPC2: %g us\n", state.CollectionTimeTPC2/clustering.Microsecond)
}

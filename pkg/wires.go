package clustering

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ClusterWires bundles wire signals of one polarity. The most energetic
// signal left is the pivot of the next bundle; from it the walk goes over
// the channel ordered signals in both directions, absorbing neighbours whose
// time, corrected by timeOffsetPerChannelDiff per channel of distance to the
// pivot, lies within matchTime of the pivot. A channel gap larger than one
// ends the walk in that direction.
func ClusterWires[S WireSignal](signals []S, matchTime, timeOffsetPerChannelDiff float64) []Bundle[S] {
	energySorted := slices.Clone(signals)
	slices.SortStableFunc(energySorted, func(a, b S) int {
		return cmp.Compare(b.SignalEnergy(), a.SignalEnergy())
	})
	channelSorted := slices.Clone(energySorted)
	slices.SortStableFunc(channelSorted, func(a, b S) int {
		return cmp.Compare(b.SignalChannel(), a.SignalChannel())
	})

	var bundles []Bundle[S]
	for len(energySorted) > 0 {
		pivot := energySorted[0]
		pos := slices.Index(channelSorted, pivot)

		absorbed := make(map[S]bool)
		var bundle Bundle[S]
		walk := func(i int, previousChannel int) (int, bool) {
			sig := channelSorted[i]
			if abs(sig.SignalChannel()-previousChannel) > 1 {
				return previousChannel, false
			}
			offset := timeOffsetPerChannelDiff * float64(abs(sig.SignalChannel()-pivot.SignalChannel()))
			if math.Abs(sig.SignalTime()-offset-pivot.SignalTime()) > matchTime {
				return previousChannel, true
			}
			bundle.AddSignal(sig)
			absorbed[sig] = true
			return sig.SignalChannel(), true
		}

		previousChannel := pivot.SignalChannel()
		for i := pos - 1; i >= 0; i-- {
			var more bool
			if previousChannel, more = walk(i, previousChannel); !more {
				break
			}
		}
		previousChannel = pivot.SignalChannel()
		for i := pos + 1; i < len(channelSorted); i++ {
			var more bool
			if previousChannel, more = walk(i, previousChannel); !more {
				break
			}
		}
		bundle.AddSignal(pivot)
		absorbed[pivot] = true

		used := func(sig S) bool { return absorbed[sig] }
		energySorted = slices.DeleteFunc(energySorted, used)
		channelSorted = slices.DeleteFunc(channelSorted, used)
		bundles = append(bundles, bundle)
	}
	return bundles
}

// CullVWires drops single-signal V bundles that have no U bundle within
// vMatchTime. Their signal is removed from the event.
func CullVWires(ed *EventData, uBundles []Bundle[*UWireSignal], vBundles []Bundle[*VWireSignal], vMatchTime float64) []Bundle[*VWireSignal] {
	return slices.DeleteFunc(vBundles, func(vb Bundle[*VWireSignal]) bool {
		if vb.Size() > 1 {
			return false
		}
		t := vb.Time()
		for _, ub := range uBundles {
			if math.Abs(t-ub.Time()) < vMatchTime {
				return false
			}
		}
		logger.Debug("Culling single V-signal because there is no near U-signal", "clustering")
		ed.RemoveVWireSignal(vb.Signals[0])
		return true
	})
}

func formatBundles[S WireSignal](bundles []Bundle[S]) string {
	var sb strings.Builder
	for _, b := range bundles {
		channels := make([]string, len(b.Signals))
		for i, sig := range b.Signals {
			channels[i] = fmt.Sprint(sig.SignalChannel())
		}
		fmt.Fprintf(&sb, "%s bundle {%s} E=%.1f t=%.0f\n", b.Signals[0].Kind(), strings.Join(channels, ","), b.Energy(), b.Time())
	}
	return sb.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

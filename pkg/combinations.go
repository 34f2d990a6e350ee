package clustering

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat/combin"
)

// MaxLinkedBundles bounds the number of bundles that may be linked to one
// another before an event is given up.
const MaxLinkedBundles = 5

// Combinations is a set of index subsets. Every subset is sorted and the
// set is ordered lexicographically, the empty subset first.
type Combinations [][]int

// Insert adds subset unless an equal one is already present.
func (c *Combinations) Insert(subset []int) {
	subset = slices.Clone(subset)
	slices.Sort(subset)
	idx, found := slices.BinarySearchFunc(*c, subset, slices.Compare[[]int])
	if found {
		return
	}
	*c = slices.Insert(*c, idx, subset)
}

// PowerSet returns every subset of set holding at least minSize elements.
func PowerSet(set []int, minSize int) Combinations {
	var ret Combinations
	for k := max(minSize, 0); k <= len(set); k++ {
		if k == 0 {
			ret.Insert(nil)
			continue
		}
		for _, idx := range combin.Combinations(len(set), k) {
			subset := make([]int, k)
			for i, j := range idx {
				subset[i] = set[j]
			}
			ret.Insert(subset)
		}
	}
	return ret
}

// CreateCombinations lists the merges worth trying among bundles. Bundle j is
// linked to an earlier bundle i when both lie on the same detector half and
// their times differ by at most matchTime. Every subset of two or more
// elements of each linked set is returned. ErrCombinationLimit is returned
// when a linked set grows beyond MaxLinkedBundles.
func CreateCombinations[S WireSignal](bundles []Bundle[S], matchTime float64) (Combinations, error) {
	var ret Combinations
	if len(bundles) < 2 {
		return ret, nil
	}
	for i := 0; i < len(bundles)-1; i++ {
		var linked []int
		for j := i + 1; j < len(bundles); j++ {
			if math.Abs(bundles[i].Time()-bundles[j].Time()) > matchTime {
				continue
			}
			if !OnSameDetectorHalf(bundles[i].Signals[0].SignalChannel(), bundles[j].Signals[0].SignalChannel()) {
				continue
			}
			if len(linked) == 0 {
				linked = append(linked, i)
			}
			linked = append(linked, j)
		}
		if len(linked) > MaxLinkedBundles {
			return nil, fmt.Errorf("%w: %d bundles linked to bundle %d", ErrCombinationLimit, len(linked), i)
		}
		if len(linked) > 1 {
			for _, subset := range PowerSet(linked, 2) {
				ret.Insert(subset)
			}
		}
	}
	return ret, nil
}

package router

import (
	"sort"

	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
)

// Rank orders quotes by raw output descending, ties broken by fewer
// hops, then by first-seen order (stable sort). Zero-output quotes are
// excluded entirely, not ranked last: an empty result means no route.
func Rank(quotes []core.Quote) []core.Quote {
	viable := make([]core.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Viable() {
			viable = append(viable, q)
		}
	}
	sort.SliceStable(viable, func(i, j int) bool {
		if c := viable[i].AmountOut.Cmp(viable[j].AmountOut); c != 0 {
			return c > 0
		}
		return viable[i].Route.Hops() < viable[j].Route.Hops()
	})
	return viable
}

// Package paths enumerates candidate swap routes. Everything here is
// pure and deterministic; venue quoters decide what is actually
// tradeable.
package paths

import (
	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
)

// maxFeeTiers caps the per-hop tier set so the cross-product stays
// bounded (a 3-hop path with 6 tiers is already 216 combinations).
const maxFeeTiers = 6

// ClampMaxHops bounds the configured hop ceiling to [2,4].
func ClampMaxHops(maxHops int) int {
	if maxHops < 2 {
		return 2
	}
	if maxHops > 4 {
		return 4
	}
	return maxHops
}

// Enumerate returns the candidate routes from `from` to `to`. The direct
// two-asset path is always first. When multiHop is set it adds
// one-intermediate paths through each preferred intermediate and
// two-intermediate paths through every ordered pair of distinct
// intermediates, subject to maxHops. Degenerate paths (consecutive
// duplicate addresses) are dropped.
func Enumerate(from, to core.Asset, intermediates []core.Asset, multiHop bool, maxHops int) []core.Route {
	routes := []core.Route{{Assets: []core.Asset{from, to}}}
	if !multiHop {
		return routes
	}

	maxHops = ClampMaxHops(maxHops)

	for _, mid := range intermediates {
		if mid.Address == from.Address || mid.Address == to.Address {
			continue
		}
		routes = append(routes, core.Route{Assets: []core.Asset{from, mid, to}})
	}

	if maxHops >= 3 {
		for _, a := range intermediates {
			if a.Address == from.Address || a.Address == to.Address {
				continue
			}
			for _, b := range intermediates {
				if b.Address == a.Address || b.Address == from.Address || b.Address == to.Address {
					continue
				}
				routes = append(routes, core.Route{Assets: []core.Asset{from, a, b, to}})
			}
		}
	}

	out := routes[:0]
	for _, r := range routes {
		if r.Valid() && r.Hops() <= maxHops {
			out = append(out, r)
		}
	}
	return out
}

// ExpandFeeTiers produces the cross-product of each route with every fee
// tier per hop, for concentrated-liquidity venues. The tier set is
// truncated to maxFeeTiers in configured order.
func ExpandFeeTiers(routes []core.Route, feeTiers []uint32) []core.Route {
	if len(feeTiers) == 0 {
		return nil
	}
	if len(feeTiers) > maxFeeTiers {
		feeTiers = feeTiers[:maxFeeTiers]
	}

	var out []core.Route
	for _, r := range routes {
		combos := tierCombos(feeTiers, r.Hops())
		for _, tiers := range combos {
			out = append(out, core.Route{Assets: r.Assets, FeeTiers: tiers})
		}
	}
	return out
}

// tierCombos generates every length-`hops` sequence over the tier set,
// in lexicographic order of the configured tiers for determinism.
func tierCombos(feeTiers []uint32, hops int) [][]uint32 {
	if hops <= 0 {
		return nil
	}
	combos := make([][]uint32, 0, pow(len(feeTiers), hops))
	cur := make([]uint32, hops)
	var walk func(depth int)
	walk = func(depth int) {
		if depth == hops {
			combos = append(combos, append([]uint32(nil), cur...))
			return
		}
		for _, t := range feeTiers {
			cur[depth] = t
			walk(depth + 1)
		}
	}
	walk(0)
	return combos
}

func pow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

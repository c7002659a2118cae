package paths

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
)

func asset(sym string, last byte) core.Asset {
	var a common.Address
	a[19] = last
	return core.Asset{Symbol: sym, Address: a, Decimals: 18}
}

var (
	cake = asset("CAKE", 1)
	usdt = asset("USDT", 2)
	wbnb = asset("WBNB", 3)
	busd = asset("BUSD", 4)
)

func TestEnumerate_DirectPathAlwaysFirst(t *testing.T) {
	routes := Enumerate(cake, usdt, []core.Asset{wbnb, busd}, true, 3)
	require.NotEmpty(t, routes)
	assert.Equal(t, []string{"CAKE", "USDT"}, routes[0].Symbols())

	// Single-hop only still yields the direct path.
	routes = Enumerate(cake, usdt, []core.Asset{wbnb, busd}, false, 3)
	require.Len(t, routes, 1)
	assert.Equal(t, []string{"CAKE", "USDT"}, routes[0].Symbols())
}

func TestEnumerate_NoConsecutiveDuplicates(t *testing.T) {
	// USDT is both the destination and a preferred intermediate.
	routes := Enumerate(cake, usdt, []core.Asset{wbnb, usdt, busd}, true, 3)
	for _, r := range routes {
		require.True(t, r.Valid(), "route %s", r)
		for i := 1; i < len(r.Assets); i++ {
			assert.NotEqual(t, r.Assets[i-1].Address, r.Assets[i].Address, "route %s", r)
		}
	}
}

func TestEnumerate_HopBounds(t *testing.T) {
	// maxHops 2 excludes the two-intermediate paths.
	routes := Enumerate(cake, usdt, []core.Asset{wbnb, busd}, true, 2)
	for _, r := range routes {
		assert.LessOrEqual(t, r.Hops(), 2)
	}
	// direct + 2 one-intermediate
	assert.Len(t, routes, 3)

	// maxHops 3 adds the ordered pairs of distinct intermediates.
	routes = Enumerate(cake, usdt, []core.Asset{wbnb, busd}, true, 3)
	// direct + 2 one-intermediate + 2 ordered pairs
	assert.Len(t, routes, 5)
}

func TestClampMaxHops(t *testing.T) {
	assert.Equal(t, 2, ClampMaxHops(0))
	assert.Equal(t, 2, ClampMaxHops(2))
	assert.Equal(t, 3, ClampMaxHops(3))
	assert.Equal(t, 4, ClampMaxHops(9))
}

func TestExpandFeeTiers_CrossProduct(t *testing.T) {
	routes := []core.Route{
		{Assets: []core.Asset{cake, usdt}},
		{Assets: []core.Asset{cake, wbnb, usdt}},
	}
	expanded := ExpandFeeTiers(routes, []uint32{500, 2500})
	// 2 tiers for the 1-hop route, 4 combos for the 2-hop route.
	require.Len(t, expanded, 6)
	for _, r := range expanded {
		assert.Equal(t, r.Hops(), len(r.FeeTiers), "route %s", r)
	}
	assert.Equal(t, []uint32{500}, expanded[0].FeeTiers)
	assert.Equal(t, []uint32{2500}, expanded[1].FeeTiers)
	assert.Equal(t, []uint32{500, 500}, expanded[2].FeeTiers)
}

func TestExpandFeeTiers_TierCap(t *testing.T) {
	routes := []core.Route{{Assets: []core.Asset{cake, usdt}}}
	tiers := []uint32{1, 2, 3, 4, 5, 6, 7, 8}
	expanded := ExpandFeeTiers(routes, tiers)
	assert.Len(t, expanded, maxFeeTiers)
}

func TestExpandFeeTiers_Deterministic(t *testing.T) {
	routes := Enumerate(cake, usdt, []core.Asset{wbnb, busd}, true, 3)
	a := ExpandFeeTiers(routes, []uint32{100, 500, 2500})
	b := ExpandFeeTiers(routes, []uint32{100, 500, 2500})
	require.Equal(t, a, b)
}

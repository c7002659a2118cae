package router

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
)

func mkAsset(sym string, last byte) core.Asset {
	var a common.Address
	a[19] = last
	return core.Asset{Symbol: sym, Address: a, Decimals: 18}
}

func mkQuote(venue core.VenueID, out int64, hops int) core.Quote {
	assets := []core.Asset{mkAsset("A", 1)}
	for i := 0; i < hops; i++ {
		assets = append(assets, mkAsset("X", byte(10+i)))
	}
	return core.Quote{
		VenueID:   venue,
		Route:     core.Route{Assets: assets},
		AmountIn:  big.NewInt(1000),
		AmountOut: big.NewInt(out),
	}
}

func TestRank_DescendingByOutput(t *testing.T) {
	quotes := []core.Quote{
		mkQuote(core.VenuePancakeV2, 990, 1),
		mkQuote(core.VenuePancakeV3, 995, 1),
		mkQuote(core.VenuePancakeV2, 700, 2),
	}
	ranked := Rank(quotes)
	require.Len(t, ranked, 3)
	assert.Equal(t, int64(995), ranked[0].AmountOut.Int64())
	assert.Equal(t, core.VenuePancakeV3, ranked[0].VenueID)
	assert.Equal(t, int64(990), ranked[1].AmountOut.Int64())
	assert.Equal(t, int64(700), ranked[2].AmountOut.Int64())
}

func TestRank_ExcludesZeroOutput(t *testing.T) {
	quotes := []core.Quote{
		mkQuote(core.VenuePancakeV2, 0, 1),
		mkQuote(core.VenuePancakeV3, 5, 1),
		{VenueID: core.VenuePancakeV2, Route: core.Route{}, AmountIn: big.NewInt(1), AmountOut: nil},
	}
	ranked := Rank(quotes)
	require.Len(t, ranked, 1)
	assert.Equal(t, int64(5), ranked[0].AmountOut.Int64())

	assert.Empty(t, Rank([]core.Quote{mkQuote(core.VenuePancakeV2, 0, 1)}))
}

func TestRank_TiesPreferFewerHopsThenFirstSeen(t *testing.T) {
	threeHop := mkQuote(core.VenuePancakeV2, 500, 3)
	oneHopA := mkQuote(core.VenuePancakeV3, 500, 1)
	oneHopB := mkQuote(core.VenuePancakeV2, 500, 1)

	ranked := Rank([]core.Quote{threeHop, oneHopA, oneHopB})
	require.Len(t, ranked, 3)
	// Fewer hops win the tie; equal hops keep first-seen order.
	assert.Equal(t, core.VenuePancakeV3, ranked[0].VenueID)
	assert.Equal(t, core.VenuePancakeV2, ranked[1].VenueID)
	assert.Equal(t, 3, ranked[2].Route.Hops())
}

func TestRank_Deterministic(t *testing.T) {
	quotes := []core.Quote{
		mkQuote(core.VenuePancakeV2, 990, 1),
		mkQuote(core.VenuePancakeV3, 990, 1),
		mkQuote(core.VenuePancakeV2, 995, 2),
		mkQuote(core.VenuePancakeV3, 700, 1),
	}
	first := Rank(quotes)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Rank(quotes))
	}
}

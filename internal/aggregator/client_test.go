package aggregator

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
)

var (
	from = core.Asset{Symbol: "CAKE", Address: common.HexToAddress("0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82"), Decimals: 18}
	to   = core.Asset{Symbol: "USDT", Address: common.HexToAddress("0x55d398326f99059fF775485246999027B3197955"), Decimals: 18}
)

func TestQuote_NormalizesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap/v5.2/56/quote", r.URL.Path)
		assert.Equal(t, from.Address.Hex(), r.URL.Query().Get("src"))
		assert.Equal(t, to.Address.Hex(), r.URL.Query().Get("dst"))
		assert.Equal(t, "1000", r.URL.Query().Get("amount"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"toAmount":"995"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 56, time.Second, zap.NewNop())
	q, err := c.Quote(context.Background(), from, to, big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, core.VenueAggregator, q.VenueID)
	assert.Equal(t, int64(995), q.AmountOut.Int64())
	assert.Equal(t, int64(1000), q.AmountIn.Int64())
	assert.Equal(t, []string{"CAKE", "USDT"}, q.Route.Symbols())
}

func TestQuote_LegacyAmountKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"toTokenAmount":"42"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 56, time.Second, zap.NewNop())
	q, err := c.Quote(context.Background(), from, to, big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, int64(42), q.AmountOut.Int64())
}

func TestQuote_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 56, time.Second, zap.NewNop())
	_, err := c.Quote(context.Background(), from, to, big.NewInt(1000))
	assert.Error(t, err)
}

func TestQuote_UnparseableAmount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"toAmount":"not-a-number"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 56, time.Second, zap.NewNop())
	_, err := c.Quote(context.Background(), from, to, big.NewInt(1000))
	assert.Error(t, err)
}

func TestQuote_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 56, 20*time.Millisecond, zap.NewNop())
	_, err := c.Quote(context.Background(), from, to, big.NewInt(1000))
	assert.Error(t, err)
}

// Package aggregator queries an external swap-aggregation HTTP API
// (1inch v5 quote schema) and normalizes its answer into the shared
// Quote shape so the router can race it against on-chain venues.
package aggregator

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
)

type Client struct {
	log     *zap.Logger
	http    *resty.Client
	chainID int64
}

type quoteResponse struct {
	ToAmount string `json:"toAmount"`
	// Older deployments of the same API family use this key instead.
	ToTokenAmount string `json:"toTokenAmount"`
}

func NewClient(baseURL, apiKey string, chainID int64, timeout time.Duration, log *zap.Logger) *Client {
	hc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		hc.SetAuthToken(apiKey)
	}
	return &Client{log: log, http: hc, chainID: chainID}
}

// Quote asks the aggregator for its best route output. The returned
// quote has an opaque direct from→to route: the aggregator's internal
// routing is its own business.
func (c *Client) Quote(ctx context.Context, from, to core.Asset, amountIn *big.Int) (core.Quote, error) {
	var body quoteResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"src":    from.Address.Hex(),
			"dst":    to.Address.Hex(),
			"amount": amountIn.String(),
		}).
		SetResult(&body).
		Get(fmt.Sprintf("/swap/v5.2/%d/quote", c.chainID))
	if err != nil {
		return core.Quote{}, errors.Wrap(err, "aggregator request")
	}
	if resp.StatusCode() != http.StatusOK {
		return core.Quote{}, errors.Errorf("aggregator status %d: %s", resp.StatusCode(), resp.String())
	}

	raw := body.ToAmount
	if raw == "" {
		raw = body.ToTokenAmount
	}
	amountOut, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return core.Quote{}, errors.Errorf("aggregator returned unparseable amount %q", raw)
	}

	return core.Quote{
		VenueID:   core.VenueAggregator,
		Route:     core.Route{Assets: []core.Asset{from, to}},
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: amountOut,
	}, nil
}

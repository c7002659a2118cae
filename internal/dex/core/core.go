package core

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type VenueID string

const (
	VenuePancakeV2  VenueID = "pancake_v2"
	VenuePancakeV3  VenueID = "pancake_v3"
	VenueAggregator VenueID = "aggregator"
)

var (
	// ErrUnknownAsset means a symbol could not be resolved to an address.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrNoRouteFound means every candidate and the aggregator failed or
	// returned zero output.
	ErrNoRouteFound = errors.New("no route found")
	// ErrProviderUnavailable means no RPC endpoint is reachable at all.
	ErrProviderUnavailable = errors.New("rpc provider unavailable")
)

// Asset is a resolved token: symbol, address and decimal precision.
type Asset struct {
	Symbol   string         `json:"symbol"`
	Address  common.Address `json:"address"`
	Decimals int            `json:"decimals"`
}

// Route is an ordered swap path of at least two assets. For
// concentrated-liquidity venues FeeTiers carries one fee per hop; for
// constant-product venues it is nil.
type Route struct {
	Assets   []Asset  `json:"assets"`
	FeeTiers []uint32 `json:"fee_tiers,omitempty"`
}

func (r Route) Hops() int {
	if len(r.Assets) < 2 {
		return 0
	}
	return len(r.Assets) - 1
}

func (r Route) Addresses() []common.Address {
	out := make([]common.Address, len(r.Assets))
	for i, a := range r.Assets {
		out[i] = a.Address
	}
	return out
}

func (r Route) Symbols() []string {
	out := make([]string, len(r.Assets))
	for i, a := range r.Assets {
		out[i] = a.Symbol
	}
	return out
}

// String renders "CAKE -> WBNB(500) -> USDT" style labels for logs.
func (r Route) String() string {
	var b strings.Builder
	for i, a := range r.Assets {
		if i > 0 {
			if len(r.FeeTiers) >= i {
				fmt.Fprintf(&b, "(%d) -> ", r.FeeTiers[i-1])
			} else {
				b.WriteString(" -> ")
			}
		}
		b.WriteString(a.Symbol)
	}
	return b.String()
}

// Valid reports whether the route satisfies the structural invariants:
// at least two assets, no two consecutive identical addresses, and a fee
// tier per hop when tiers are present.
func (r Route) Valid() bool {
	if len(r.Assets) < 2 {
		return false
	}
	for i := 1; i < len(r.Assets); i++ {
		if r.Assets[i].Address == r.Assets[i-1].Address {
			return false
		}
	}
	if len(r.FeeTiers) > 0 && len(r.FeeTiers) != r.Hops() {
		return false
	}
	return true
}

// Quote is one evaluated route: raw input, raw output, and where it came
// from. AmountOut of zero marks a failed candidate and is never a final
// answer while any alternative exists.
type Quote struct {
	VenueID   VenueID  `json:"venue_id"`
	Route     Route    `json:"route"`
	AmountIn  *big.Int `json:"amount_in"`
	AmountOut *big.Int `json:"amount_out"`
}

// Viable reports whether this quote carries a usable non-zero output.
func (q Quote) Viable() bool {
	return q.AmountOut != nil && q.AmountOut.Sign() > 0
}

// SplitQuote routes one trade through two venues. PartA.AmountIn plus
// PartB.AmountIn always equals the requested total exactly.
type SplitQuote struct {
	PartA        Quote `json:"part_a"`
	PartB        Quote `json:"part_b"`
	SplitPercent int   `json:"split_percent"` // share of input routed through PartA
}

func (s SplitQuote) TotalIn() *big.Int {
	return new(big.Int).Add(s.PartA.AmountIn, s.PartB.AmountIn)
}

func (s SplitQuote) TotalOut() *big.Int {
	return new(big.Int).Add(s.PartA.AmountOut, s.PartB.AmountOut)
}

// QuoteOptions mirror the caller-facing knobs of a router invocation.
type QuoteOptions struct {
	AllowMultiHop     bool
	MaxHops           int
	FeeTiers          []uint32
	AllowSplitRouting bool
	PreferredVenue    VenueID
	SlippagePercent   float64
}

// Quoter evaluates one candidate route against one venue. A failure is
// returned as an error; callers absorb it into a zero-output result so
// sibling candidates keep going.
type Quoter interface {
	ID() VenueID
	Quote(ctx context.Context, route Route, amountIn *big.Int) (*big.Int, error)
}

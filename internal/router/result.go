package router

import (
	"math"
	"math/big"
	"strings"

	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
	"github.com/CorentinGC/venus-optimizer/internal/tokens"
)

// Result is the caller-facing quote: raw integers for execution math,
// human-readable strings for display.
type Result struct {
	Quote *core.Quote      `json:"quote,omitempty"`
	Split *core.SplitQuote `json:"split,omitempty"`

	Venue  string   `json:"venue"`
	Routes []string `json:"routes"`

	FromToken string `json:"from_token"`
	ToToken   string `json:"to_token"`

	AmountInRaw  *big.Int `json:"amount_in_raw"`
	AmountOutRaw *big.Int `json:"amount_out_raw"`
	AmountIn     string   `json:"amount_in"`
	AmountOut    string   `json:"amount_out"`

	AmountOutMinRaw *big.Int `json:"amount_out_min_raw,omitempty"`
	AmountOutMin    string   `json:"amount_out_min,omitempty"`

	GasPriceWei *big.Int `json:"gas_price_wei,omitempty"`
	ElapsedMs   int64    `json:"elapsed_ms"`
}

const ppmScale = 1_000_000

// minOut applies the slippage tolerance with pure integer arithmetic:
// amountOut x (1e6 - floor(slippagePercent/100 x 1e6)) / 1e6.
func minOut(amountOut *big.Int, slippagePercent float64) *big.Int {
	ppm := int64(math.Floor(slippagePercent / 100 * ppmScale))
	if ppm < 0 {
		ppm = 0
	}
	if ppm > ppmScale {
		ppm = ppmScale
	}
	out := new(big.Int).Mul(amountOut, big.NewInt(ppmScale-ppm))
	return out.Div(out, big.NewInt(ppmScale))
}

func buildResult(single *core.Quote, split *core.SplitQuote, from, to core.Asset, amountIn *big.Int, slippagePercent float64) *Result {
	res := &Result{
		FromToken:   from.Address.Hex(),
		ToToken:     to.Address.Hex(),
		AmountInRaw: amountIn,
		AmountIn:    tokens.FromRaw(amountIn, from.Decimals),
	}
	switch {
	case split != nil:
		res.Split = split
		res.Venue = string(split.PartA.VenueID) + "+" + string(split.PartB.VenueID)
		res.Routes = []string{split.PartA.Route.String(), split.PartB.Route.String()}
		res.AmountOutRaw = split.TotalOut()
	case single != nil:
		res.Quote = single
		res.Venue = string(single.VenueID)
		res.Routes = []string{single.Route.String()}
		res.AmountOutRaw = single.AmountOut
	}
	res.AmountOut = tokens.FromRaw(res.AmountOutRaw, to.Decimals)

	if slippagePercent > 0 {
		res.AmountOutMinRaw = minOut(res.AmountOutRaw, slippagePercent)
		res.AmountOutMin = tokens.FromRaw(res.AmountOutMinRaw, to.Decimals)
	}
	return res
}

// Label is a one-line summary for logs: venue plus route(s).
func (r *Result) Label() string {
	return r.Venue + " " + strings.Join(r.Routes, " | ")
}

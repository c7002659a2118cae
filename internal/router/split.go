package router

import (
	"context"
	"math/big"
	"sync"

	"go.uber.org/zap"

	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
)

var oneHundred = big.NewInt(100)

// optimizeSplit grid-searches a two-way volume split between the two top
// ranked routes. Steps run sequentially; the pair of calls within one
// step runs concurrently, so worst-case latency stays at
// steps x single-call timeout. The split is kept only when its combined
// output strictly beats sending everything through the best route.
func (r *Router) optimizeSplit(ctx context.Context, total *big.Int, first, second core.Quote) (*core.SplitQuote, bool) {
	qa, okA := r.byVenue[first.VenueID]
	qb, okB := r.byVenue[second.VenueID]
	if !okA || !okB {
		return nil, false
	}

	step := r.splitStep
	if step <= 0 || step >= 100 {
		step = 10
	}

	var best *core.SplitQuote
	bestOut := new(big.Int).Set(first.AmountOut)

	for pct := step; pct < 100; pct += step {
		amountA := new(big.Int).Mul(total, big.NewInt(int64(pct)))
		amountA.Div(amountA, oneHundred)
		amountB := new(big.Int).Sub(total, amountA)
		if amountA.Sign() <= 0 || amountB.Sign() <= 0 {
			continue
		}

		var outA, outB *big.Int
		var errA, errB error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			outA, errA = qa.Quote(ctx, first.Route, amountA)
		}()
		go func() {
			defer wg.Done()
			outB, errB = qb.Quote(ctx, second.Route, amountB)
		}()
		wg.Wait()

		if errA != nil || errB != nil || outA == nil || outB == nil || outA.Sign() == 0 || outB.Sign() == 0 {
			r.log.Debug("split step skipped",
				zap.Int("percent", pct),
				zap.NamedError("err_a", errA),
				zap.NamedError("err_b", errB),
			)
			continue
		}

		combined := new(big.Int).Add(outA, outB)
		if combined.Cmp(bestOut) > 0 {
			bestOut = combined
			best = &core.SplitQuote{
				PartA: core.Quote{
					VenueID:   first.VenueID,
					Route:     first.Route,
					AmountIn:  amountA,
					AmountOut: outA,
				},
				PartB: core.Quote{
					VenueID:   second.VenueID,
					Route:     second.Route,
					AmountIn:  amountB,
					AmountOut: outB,
				},
				SplitPercent: pct,
			}
		}
	}

	if best == nil {
		return nil, false
	}
	return best, true
}

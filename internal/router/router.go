// Package router is the best-execution core: it enumerates candidate
// routes, fans quote evaluations out across venues under a concurrency
// ceiling, ranks the answers, optionally splits the trade across the
// top two routes, and races an external aggregator against the on-chain
// result.
package router

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
	"github.com/CorentinGC/venus-optimizer/internal/dex/paths"
	"github.com/CorentinGC/venus-optimizer/internal/metrics"
	"github.com/CorentinGC/venus-optimizer/internal/tokens"
)

// AggregatorAPI is the optional external swap-aggregation service.
type AggregatorAPI interface {
	Quote(ctx context.Context, from, to core.Asset, amountIn *big.Int) (core.Quote, error)
}

// GasOracle supplies the gas-price snapshot attached to results; the
// caller converts output into net-of-gas terms.
type GasOracle interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// FeedPublisher receives finished quotes; failures are logged and
// dropped.
type FeedPublisher interface {
	PublishQuote(ctx context.Context, res *Result) error
}

type Deps struct {
	Log        *zap.Logger
	Directory  *tokens.Directory
	Quoters    []core.Quoter
	Aggregator AggregatorAPI // optional
	GasOracle  GasOracle     // optional
	Feed       FeedPublisher // optional

	Intermediates       []string
	FeeTiers            []uint32
	MaxConcurrentQuotes int
	SplitStepPercent    int
}

type Router struct {
	log       *zap.Logger
	dir       *tokens.Directory
	quoters   []core.Quoter
	byVenue   map[core.VenueID]core.Quoter
	agg       AggregatorAPI
	gas       GasOracle
	feed      FeedPublisher
	pivots    []string
	feeTiers  []uint32
	maxConc   int64
	splitStep int
}

func New(d Deps) (*Router, error) {
	if d.Directory == nil {
		return nil, fmt.Errorf("token directory is required")
	}
	if len(d.Quoters) == 0 && d.Aggregator == nil {
		return nil, fmt.Errorf("at least one quoter or an aggregator is required")
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.MaxConcurrentQuotes <= 0 {
		d.MaxConcurrentQuotes = 32
	}
	if d.SplitStepPercent <= 0 {
		d.SplitStepPercent = 10
	}
	byVenue := make(map[core.VenueID]core.Quoter, len(d.Quoters))
	for _, q := range d.Quoters {
		byVenue[q.ID()] = q
	}
	return &Router{
		log:       d.Log,
		dir:       d.Directory,
		quoters:   d.Quoters,
		byVenue:   byVenue,
		agg:       d.Aggregator,
		gas:       d.GasOracle,
		feed:      d.Feed,
		pivots:    d.Intermediates,
		feeTiers:  d.FeeTiers,
		maxConc:   int64(d.MaxConcurrentQuotes),
		splitStep: d.SplitStepPercent,
	}, nil
}

type candidate struct {
	quoter core.Quoter
	route  core.Route
}

// Route resolves the symbols, converts the human amount to raw units,
// evaluates every candidate concurrently, and returns the globally best
// single or split quote. It fails with core.ErrNoRouteFound only when
// every venue and the aggregator came back empty.
func (r *Router) Route(ctx context.Context, fromSymbol, toSymbol, amountHuman string, opts core.QuoteOptions) (*Result, error) {
	started := time.Now()

	from, err := r.dir.ResolveWithDecimals(ctx, fromSymbol)
	if err != nil {
		metrics.QuotesTotal.WithLabelValues("none", "unknown_asset").Inc()
		return nil, err
	}
	to, err := r.dir.ResolveWithDecimals(ctx, toSymbol)
	if err != nil {
		metrics.QuotesTotal.WithLabelValues("none", "unknown_asset").Inc()
		return nil, err
	}
	if from.Address == to.Address {
		return nil, fmt.Errorf("%w: %s and %s resolve to the same address", core.ErrUnknownAsset, fromSymbol, toSymbol)
	}

	amountIn, err := tokens.ToRaw(amountHuman, from.Decimals)
	if err != nil {
		return nil, err
	}

	cands := r.buildCandidates(from, to, opts)
	metrics.RouteCandidates.Set(float64(len(cands)))
	r.log.Debug("candidates enumerated",
		zap.String("from", from.Symbol),
		zap.String("to", to.Symbol),
		zap.Int("count", len(cands)),
	)

	// The aggregator race and the gas snapshot run alongside the
	// on-chain fan-out; neither can block or fail it.
	aggCh := r.raceAggregator(ctx, from, to, amountIn)
	gasCh := r.fetchGasPrice(ctx)

	quotes := r.evaluateAll(ctx, cands, amountIn)
	ranked := Rank(quotes)

	var single *core.Quote
	var split *core.SplitQuote
	if len(ranked) > 0 {
		best := ranked[0]
		single = &best
		if opts.AllowSplitRouting && len(ranked) > 1 {
			if sq, ok := r.optimizeSplit(ctx, amountIn, ranked[0], ranked[1]); ok {
				split = sq
			}
		}
	}

	// Keep whichever of {best single, split, aggregator} pays out most.
	onchainOut := new(big.Int)
	if split != nil {
		onchainOut = split.TotalOut()
	} else if single != nil {
		onchainOut = single.AmountOut
	}
	if agg := <-aggCh; agg != nil && agg.AmountOut.Cmp(onchainOut) > 0 {
		single = agg
		split = nil
	}

	if single == nil && split == nil {
		metrics.QuotesTotal.WithLabelValues("none", "no_route").Inc()
		return nil, fmt.Errorf("%w: %s -> %s", core.ErrNoRouteFound, from.Symbol, to.Symbol)
	}

	res := buildResult(single, split, from, to, amountIn, opts.SlippagePercent)
	res.GasPriceWei = <-gasCh
	res.ElapsedMs = time.Since(started).Milliseconds()

	r.recordOutcome(res, single, split)
	r.publish(ctx, res)
	return res, nil
}

// buildCandidates pairs every enumerated route with the venue quoter
// that can evaluate it. PreferredVenue restricts to one venue family.
func (r *Router) buildCandidates(from, to core.Asset, opts core.QuoteOptions) []candidate {
	pivots := make([]core.Asset, 0, len(r.pivots))
	for _, sym := range r.pivots {
		a, err := r.dir.Resolve(sym)
		if err != nil {
			r.log.Warn("intermediate symbol unresolvable, skipping", zap.String("symbol", sym))
			continue
		}
		pivots = append(pivots, a)
	}

	maxHops := paths.ClampMaxHops(opts.MaxHops)
	base := paths.Enumerate(from, to, pivots, opts.AllowMultiHop, maxHops)

	tiers := opts.FeeTiers
	if len(tiers) == 0 {
		tiers = r.feeTiers
	}

	var cands []candidate
	for _, q := range r.quoters {
		if opts.PreferredVenue != "" && q.ID() != opts.PreferredVenue {
			continue
		}
		switch q.ID() {
		case core.VenuePancakeV3:
			for _, route := range paths.ExpandFeeTiers(base, tiers) {
				cands = append(cands, candidate{quoter: q, route: route})
			}
		default:
			for _, route := range base {
				cands = append(cands, candidate{quoter: q, route: route})
			}
		}
	}
	return cands
}

// evaluateAll fans the candidates out under the concurrency ceiling and
// waits for every call or its timeout: the contract is "find the best",
// so there is no early exit. Failures become zero-output quotes.
func (r *Router) evaluateAll(ctx context.Context, cands []candidate, amountIn *big.Int) []core.Quote {
	results := make([]core.Quote, len(cands))
	sem := semaphore.NewWeighted(r.maxConc)
	var wg sync.WaitGroup

	for i, c := range cands {
		zero := core.Quote{
			VenueID:   c.quoter.ID(),
			Route:     c.route,
			AmountIn:  amountIn,
			AmountOut: new(big.Int),
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = zero
			continue
		}
		wg.Add(1)
		go func(i int, c candidate, zero core.Quote) {
			defer wg.Done()
			defer sem.Release(1)

			out, err := c.quoter.Quote(ctx, c.route, amountIn)
			if err != nil || out == nil {
				metrics.CandidateFailures.WithLabelValues(string(c.quoter.ID())).Inc()
				r.log.Debug("candidate failed",
					zap.String("venue", string(c.quoter.ID())),
					zap.String("route", c.route.String()),
					zap.Error(err),
				)
				results[i] = zero
				return
			}
			zero.AmountOut = out
			results[i] = zero
		}(i, c, zero)
	}
	wg.Wait()
	return results
}

func (r *Router) raceAggregator(ctx context.Context, from, to core.Asset, amountIn *big.Int) <-chan *core.Quote {
	ch := make(chan *core.Quote, 1)
	if r.agg == nil {
		ch <- nil
		return ch
	}
	go func() {
		q, err := r.agg.Quote(ctx, from, to, amountIn)
		if err != nil || !q.Viable() {
			metrics.CandidateFailures.WithLabelValues(string(core.VenueAggregator)).Inc()
			r.log.Debug("aggregator quote unavailable", zap.Error(err))
			ch <- nil
			return
		}
		ch <- &q
	}()
	return ch
}

func (r *Router) fetchGasPrice(ctx context.Context) <-chan *big.Int {
	ch := make(chan *big.Int, 1)
	if r.gas == nil {
		ch <- nil
		return ch
	}
	go func() {
		gp, err := r.gas.SuggestGasPrice(ctx)
		if err != nil {
			r.log.Debug("gas price unavailable", zap.Error(err))
			ch <- nil
			return
		}
		ch <- gp
	}()
	return ch
}

func (r *Router) recordOutcome(res *Result, single *core.Quote, split *core.SplitQuote) {
	outcome := "ok_single"
	improvement := 0.0
	if split != nil {
		outcome = "ok_split"
		if single != nil && single.AmountOut.Sign() > 0 {
			gain := new(big.Int).Sub(split.TotalOut(), single.AmountOut)
			gain.Mul(gain, big.NewInt(10_000))
			gain.Div(gain, single.AmountOut)
			improvement = float64(gain.Int64())
		}
	}
	metrics.QuotesTotal.WithLabelValues(res.Venue, outcome).Inc()
	metrics.SplitImprovementBps.Set(improvement)
	metrics.QuoteDuration.WithLabelValues(res.Venue).Observe(float64(res.ElapsedMs) / 1000)

	r.log.Info("quote ready",
		zap.String("venue", res.Venue),
		zap.Strings("routes", res.Routes),
		zap.String("amount_in", res.AmountIn),
		zap.String("amount_out", res.AmountOut),
		zap.Int64("elapsed_ms", res.ElapsedMs),
	)
}

func (r *Router) publish(ctx context.Context, res *Result) {
	if r.feed == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.feed.PublishQuote(pctx, res); err != nil {
		r.log.Warn("quote feed publish failed", zap.Error(err))
	}
}

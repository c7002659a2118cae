// Package v3 quotes concentrated-liquidity (PancakeSwap V3 style)
// venues through the QuoterV2 contract. All calls are static simulations
// and never mutate venue state.
package v3

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
	"github.com/CorentinGC/venus-optimizer/internal/multicall"
)

const quoterV2ABI = `[
 {"inputs":[{"components":[{"internalType":"address","name":"tokenIn","type":"address"},{"internalType":"address","name":"tokenOut","type":"address"},{"internalType":"uint256","name":"amountIn","type":"uint256"},{"internalType":"uint24","name":"fee","type":"uint24"},{"internalType":"uint160","name":"sqrtPriceLimitX96","type":"uint160"}],"internalType":"struct IQuoterV2.QuoteExactInputSingleParams","name":"params","type":"tuple"}],"name":"quoteExactInputSingle","outputs":[{"internalType":"uint256","name":"amountOut","type":"uint256"},{"internalType":"uint160","name":"sqrtPriceX96After","type":"uint160"},{"internalType":"uint32","name":"initializedTicksCrossed","type":"uint32"},{"internalType":"uint256","name":"gasEstimate","type":"uint256"}],"stateMutability":"nonpayable","type":"function"},
 {"inputs":[{"internalType":"bytes","name":"path","type":"bytes"},{"internalType":"uint256","name":"amountIn","type":"uint256"}],"name":"quoteExactInput","outputs":[{"internalType":"uint256","name":"amountOut","type":"uint256"},{"internalType":"uint160[]","name":"sqrtPriceX96AfterList","type":"uint160[]"},{"internalType":"uint32[]","name":"initializedTicksCrossedList","type":"uint32[]"},{"internalType":"uint256","name":"gasEstimate","type":"uint256"}],"stateMutability":"nonpayable","type":"function"}
]`

type Quoter struct {
	log    *zap.Logger
	mc     multicall.IClient
	qabi   abi.ABI
	quoter common.Address
}

func New(mc multicall.IClient, quoter common.Address, log *zap.Logger) (*Quoter, error) {
	qabi, err := abi.JSON(strings.NewReader(quoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("parse quoter v2 abi: %w", err)
	}
	if quoter == (common.Address{}) {
		return nil, fmt.Errorf("quoter v2 address is zero")
	}
	return &Quoter{log: log, mc: mc, qabi: qabi, quoter: quoter}, nil
}

func (q *Quoter) ID() core.VenueID { return core.VenuePancakeV3 }

// Quote evaluates one route/fee-tier combination. Two-asset routes probe
// both the single-hop and the generic multi-hop call shape (deployments
// differ in which one they expose) and keep the better non-zero answer.
// Longer routes use only the packed-path encoding. Both probes go out in
// one multicall batch.
func (q *Quoter) Quote(ctx context.Context, route core.Route, amountIn *big.Int) (*big.Int, error) {
	if !route.Valid() || len(route.FeeTiers) != route.Hops() {
		return nil, fmt.Errorf("invalid v3 route %s", route)
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("amountIn must be positive")
	}

	type probe struct {
		method string
	}
	var calls []multicall.Call
	var probes []probe

	if route.Hops() == 1 {
		data, err := q.qabi.Pack("quoteExactInputSingle", struct {
			TokenIn           common.Address
			TokenOut          common.Address
			AmountIn          *big.Int
			Fee               *big.Int
			SqrtPriceLimitX96 *big.Int
		}{
			TokenIn:           route.Assets[0].Address,
			TokenOut:          route.Assets[1].Address,
			AmountIn:          amountIn,
			Fee:               big.NewInt(int64(route.FeeTiers[0])),
			SqrtPriceLimitX96: big.NewInt(0),
		})
		if err != nil {
			return nil, fmt.Errorf("pack quoteExactInputSingle: %w", err)
		}
		calls = append(calls, multicall.Call{Target: q.quoter, CallData: data})
		probes = append(probes, probe{method: "quoteExactInputSingle"})
	}

	path, err := EncodePath(route.Addresses(), route.FeeTiers)
	if err != nil {
		return nil, fmt.Errorf("encode path: %w", err)
	}
	data, err := q.qabi.Pack("quoteExactInput", path, amountIn)
	if err != nil {
		return nil, fmt.Errorf("pack quoteExactInput: %w", err)
	}
	calls = append(calls, multicall.Call{Target: q.quoter, CallData: data})
	probes = append(probes, probe{method: "quoteExactInput"})

	results, err := q.mc.Aggregate(ctx, calls)
	if err != nil {
		return nil, fmt.Errorf("multicall: %w", err)
	}

	best := new(big.Int)
	for i, res := range results {
		if !res.Success {
			continue
		}
		outs, err := q.qabi.Methods[probes[i].method].Outputs.Unpack(res.Data)
		if err != nil || len(outs) == 0 {
			q.log.Debug("quoter response undecodable",
				zap.String("method", probes[i].method),
				zap.String("route", route.String()),
				zap.Error(err),
			)
			continue
		}
		amount, ok := outs[0].(*big.Int)
		if !ok {
			continue
		}
		if amount.Cmp(best) > 0 {
			best = amount
		}
	}
	if best.Sign() == 0 {
		return nil, fmt.Errorf("no quoter call shape succeeded for %s", route)
	}
	return best, nil
}

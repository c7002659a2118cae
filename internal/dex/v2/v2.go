// Package v2 quotes constant-product (PancakeSwap V2 style) venues via
// the router's read-only getAmountsOut.
package v2

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/CorentinGC/venus-optimizer/internal/chain"
	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
)

const routerABI = `[
 {"inputs":[{"internalType":"uint256","name":"amountIn","type":"uint256"},{"internalType":"address[]","name":"path","type":"address[]"}],"name":"getAmountsOut","outputs":[{"internalType":"uint256[]","name":"amounts","type":"uint256[]"}],"stateMutability":"view","type":"function"}
]`

type Quoter struct {
	log    *zap.Logger
	caller chain.Caller
	rabi   abi.ABI
	router common.Address
}

func New(caller chain.Caller, router common.Address, log *zap.Logger) (*Quoter, error) {
	rabi, err := abi.JSON(strings.NewReader(routerABI))
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	if router == (common.Address{}) {
		return nil, fmt.Errorf("v2 router address is zero")
	}
	return &Quoter{log: log, caller: caller, rabi: rabi, router: router}, nil
}

func (q *Quoter) ID() core.VenueID { return core.VenuePancakeV2 }

// Quote evaluates the whole path in one getAmountsOut call and returns
// the final leg's output. Reverts, timeouts and malformed responses come
// back as errors; the aggregation layer turns them into zero-output
// candidates.
func (q *Quoter) Quote(ctx context.Context, route core.Route, amountIn *big.Int) (*big.Int, error) {
	if !route.Valid() {
		return nil, fmt.Errorf("invalid route %s", route)
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("amountIn must be positive")
	}

	data, err := q.rabi.Pack("getAmountsOut", amountIn, route.Addresses())
	if err != nil {
		return nil, fmt.Errorf("pack getAmountsOut: %w", err)
	}
	raw, err := chain.Call(ctx, q.caller, q.router, data)
	if err != nil {
		return nil, fmt.Errorf("call getAmountsOut: %w", err)
	}
	outs, err := q.rabi.Methods["getAmountsOut"].Outputs.Unpack(raw)
	if err != nil || len(outs) == 0 {
		if err == nil {
			err = errors.New("empty output")
		}
		return nil, fmt.Errorf("decode getAmountsOut: %w", err)
	}
	amounts, ok := outs[0].([]*big.Int)
	if !ok || len(amounts) != len(route.Assets) {
		return nil, fmt.Errorf("bad amounts length: got %d want %d", len(amounts), len(route.Assets))
	}
	return amounts[len(amounts)-1], nil
}

package multicall

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/CorentinGC/venus-optimizer/internal/chain"
)

// tryAggregate lets individual probes revert without failing the batch,
// which is exactly the per-candidate absorption the quoters need.
const multicallABI = `[
{
    "inputs": [
        {"name": "requireSuccess", "type": "bool"},
        {
            "components": [
                {"name": "target", "type": "address"},
                {"name": "callData", "type": "bytes"}
            ],
            "name": "calls",
            "type": "tuple[]"
        }
    ],
    "name": "tryAggregate",
    "outputs": [
        {
            "components": [
                {"name": "success", "type": "bool"},
                {"name": "returnData", "type": "bytes"}
            ],
            "name": "returnData",
            "type": "tuple[]"
        }
    ],
    "stateMutability": "nonpayable",
    "type": "function"
}
]`

type IClient interface {
	Aggregate(ctx context.Context, calls []Call) ([]Result, error)
}

type Client struct {
	caller chain.Caller
	addr   common.Address
	abi    abi.ABI
}

func New(caller chain.Caller, multicallAddr common.Address) (IClient, error) {
	parsedABI, err := abi.JSON(strings.NewReader(multicallABI))
	if err != nil {
		return nil, fmt.Errorf("bad abi: %w", err)
	}
	if multicallAddr == (common.Address{}) {
		return nil, fmt.Errorf("multicall address is zero")
	}
	return &Client{caller: caller, addr: multicallAddr, abi: parsedABI}, nil
}

type Call struct {
	Target   common.Address
	CallData []byte
}

type Result struct {
	Success bool
	Data    []byte
}

// Aggregate issues all calls in a single eth_call against the Multicall3
// contract. The batch itself can fail (RPC down); individual calls
// report per-call success.
func (c *Client) Aggregate(ctx context.Context, calls []Call) ([]Result, error) {
	payload, err := c.abi.Pack("tryAggregate", false, calls)
	if err != nil {
		return nil, fmt.Errorf("pack tryAggregate: %w", err)
	}

	res, err := chain.Call(ctx, c.caller, c.addr, payload)
	if err != nil {
		return nil, fmt.Errorf("call tryAggregate: %w", err)
	}

	unpacked, err := c.abi.Unpack("tryAggregate", res)
	if err != nil || len(unpacked) == 0 {
		if err == nil {
			err = fmt.Errorf("empty tryAggregate output")
		}
		return nil, fmt.Errorf("unpack tryAggregate: %w", err)
	}

	raw, ok := unpacked[0].([]struct {
		Success    bool    `json:"success"`
		ReturnData []uint8 `json:"returnData"`
	})
	if !ok {
		return nil, fmt.Errorf("unexpected tryAggregate output type %T", unpacked[0])
	}
	if len(raw) != len(calls) {
		return nil, fmt.Errorf("tryAggregate length mismatch: got %d want %d", len(raw), len(calls))
	}

	out := make([]Result, len(raw))
	for i, r := range raw {
		out[i] = Result{Success: r.Success && len(r.ReturnData) > 0, Data: r.ReturnData}
	}
	return out, nil
}

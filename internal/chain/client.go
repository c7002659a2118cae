package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Caller is the read-only contract-call surface the quoters depend on.
// *Client implements it; tests substitute their own.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client wraps go-ethereum RPC and applies a fixed per-call timeout to
// every outbound contract call.
type Client struct {
	rpcClient   *rpc.Client
	ethClient   *ethclient.Client
	callTimeout time.Duration
}

func NewClient(ctx context.Context, rpcURL string, callTimeout time.Duration) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is empty")
	}
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return &Client{
		rpcClient:   rpcClient,
		ethClient:   ethclient.NewClient(rpcClient),
		callTimeout: callTimeout,
	}, nil
}

func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

// CallContract performs an eth_call bounded by the configured timeout.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.ethClient.CallContract(cctx, msg, blockNumber)
}

// SuggestGasPrice is the gas-oracle collaborator surface; the router
// attaches the snapshot to the final quote for the caller's net-of-gas
// math.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	cctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.ethClient.SuggestGasPrice(cctx)
}

// Call packs a view call against a single contract address.
func Call(ctx context.Context, caller Caller, to common.Address, data []byte) ([]byte, error) {
	return caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

package tokens

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/CorentinGC/venus-optimizer/internal/chain"
	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
)

// DefaultDecimals is used when the on-chain decimals() call fails or
// times out. Precision only affects display of a best-effort quote, so a
// lossy fallback beats a hard error.
const DefaultDecimals = 18

const erc20ABI = `[
  {"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

// builtinTable maps upper-case symbols to BSC mainnet addresses.
var builtinTable = map[string]string{
	"WBNB": "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
	"USDT": "0x55d398326f99059fF775485246999027B3197955",
	"BUSD": "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56",
	"USDC": "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d",
	"XVS":  "0xcF6BB5389c92Bdda8a3747Ddb454cB7a64626C63",
	"CAKE": "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82",
	"ETH":  "0x2170Ed0880ac9A755fd29B2688956BD959F933F8",
	"BTCB": "0x7130d2A12B9BCbFAe4f2634d864A1Ee1Ce3Ead9c",
	"DAI":  "0x1AF3F329e8BE154074D8769D1FFa4eE058B1DBc3",
	"VAI":  "0x4BD17003473389A42DAF6a0a729f6Fdb328BbBd7",
}

// Directory resolves symbols to assets and fetches token decimals once
// per address for the process lifetime.
type Directory struct {
	log       *zap.Logger
	caller    chain.Caller
	eabi      abi.ABI
	overrides map[string]common.Address

	// decimals cache is append-only; a duplicate first-seen write is
	// harmless.
	decimalsCache sync.Map // common.Address -> int
}

func NewDirectory(caller chain.Caller, overrides map[string]string, log *zap.Logger) (*Directory, error) {
	eabi, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	ov := make(map[string]common.Address, len(overrides))
	for sym, addr := range overrides {
		cs, err := ChecksumAddress(addr)
		if err != nil {
			return nil, fmt.Errorf("bad override address for %s: %w", sym, err)
		}
		ov[strings.ToUpper(sym)] = common.HexToAddress(cs)
	}
	return &Directory{
		log:       log,
		caller:    caller,
		eabi:      eabi,
		overrides: ov,
	}, nil
}

// Resolve maps a symbol (case-insensitive) to an asset. Per-process
// overrides take precedence over the built-in table. The returned asset
// carries DefaultDecimals until ResolveWithDecimals refines it.
func (d *Directory) Resolve(symbol string) (core.Asset, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return core.Asset{}, fmt.Errorf("%w: empty symbol", core.ErrUnknownAsset)
	}
	if addr, ok := d.overrides[sym]; ok {
		return core.Asset{Symbol: sym, Address: addr, Decimals: DefaultDecimals}, nil
	}
	if hex, ok := builtinTable[sym]; ok {
		return core.Asset{Symbol: sym, Address: common.HexToAddress(hex), Decimals: DefaultDecimals}, nil
	}
	return core.Asset{}, fmt.Errorf("%w: %s", core.ErrUnknownAsset, symbol)
}

// ResolveWithDecimals resolves the symbol and fills in on-chain decimals.
func (d *Directory) ResolveWithDecimals(ctx context.Context, symbol string) (core.Asset, error) {
	asset, err := d.Resolve(symbol)
	if err != nil {
		return core.Asset{}, err
	}
	asset.Decimals = d.DecimalsOf(ctx, asset.Address)
	return asset, nil
}

// DecimalsOf returns the token's decimal precision, fetching it on-chain
// the first time an address is seen and caching it forever. On any
// failure it falls back to DefaultDecimals without caching, so a later
// call may still recover the real value.
func (d *Directory) DecimalsOf(ctx context.Context, token common.Address) int {
	if dec, ok := d.decimalsCache.Load(token); ok {
		return dec.(int)
	}
	dec, err := d.fetchDecimals(ctx, token)
	if err != nil {
		d.log.Warn("decimals lookup failed, using default",
			zap.String("token", token.Hex()),
			zap.Int("default", DefaultDecimals),
			zap.Error(err),
		)
		return DefaultDecimals
	}
	d.decimalsCache.Store(token, dec)
	return dec
}

func (d *Directory) fetchDecimals(ctx context.Context, token common.Address) (int, error) {
	input, err := d.eabi.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("pack decimals: %w", err)
	}
	res, err := chain.Call(ctx, d.caller, token, input)
	if err != nil {
		return 0, fmt.Errorf("call decimals: %w", err)
	}
	outs, err := d.eabi.Methods["decimals"].Outputs.Unpack(res)
	if err != nil || len(outs) == 0 {
		if err == nil {
			err = fmt.Errorf("empty decimals output")
		}
		return 0, fmt.Errorf("decode decimals: %w", err)
	}
	switch v := outs[0].(type) {
	case uint8:
		return int(v), nil
	case *big.Int:
		return int(v.Int64()), nil
	default:
		return 0, fmt.Errorf("unexpected decimals type %T", v)
	}
}

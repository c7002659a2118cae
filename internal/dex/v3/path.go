package v3

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// V3 multi-hop calldata interleaves 20-byte token addresses with 3-byte
// big-endian fee values: token0 | fee0 | token1 | fee1 | token2 | ...
const (
	addrSize = common.AddressLength
	feeSize  = 3
	hopSize  = addrSize + feeSize
	maxFee   = 1<<24 - 1
)

// EncodePath packs tokens and per-hop fees into the byte-level path
// format. len(fees) must equal len(tokens)-1.
func EncodePath(tokens []common.Address, fees []uint32) ([]byte, error) {
	if len(tokens) < 2 {
		return nil, fmt.Errorf("path needs at least 2 tokens, got %d", len(tokens))
	}
	if len(fees) != len(tokens)-1 {
		return nil, fmt.Errorf("fee count mismatch: %d fees for %d tokens", len(fees), len(tokens))
	}
	out := make([]byte, 0, len(tokens)*addrSize+len(fees)*feeSize)
	for i, fee := range fees {
		if fee > maxFee {
			return nil, fmt.Errorf("fee %d exceeds uint24", fee)
		}
		out = append(out, tokens[i].Bytes()...)
		out = append(out, byte(fee>>16), byte(fee>>8), byte(fee))
	}
	out = append(out, tokens[len(tokens)-1].Bytes()...)
	return out, nil
}

// DecodePath is the exact inverse of EncodePath.
func DecodePath(path []byte) ([]common.Address, []uint32, error) {
	if len(path) < 2*addrSize+feeSize {
		return nil, nil, fmt.Errorf("path too short: %d bytes", len(path))
	}
	if (len(path)-addrSize)%hopSize != 0 {
		return nil, nil, fmt.Errorf("malformed path length: %d bytes", len(path))
	}
	hops := (len(path) - addrSize) / hopSize

	tokens := make([]common.Address, 0, hops+1)
	fees := make([]uint32, 0, hops)
	off := 0
	for i := 0; i < hops; i++ {
		tokens = append(tokens, common.BytesToAddress(path[off:off+addrSize]))
		off += addrSize
		fees = append(fees, uint32(path[off])<<16|uint32(path[off+1])<<8|uint32(path[off+2]))
		off += feeSize
	}
	tokens = append(tokens, common.BytesToAddress(path[off:off+addrSize]))
	return tokens, fees, nil
}

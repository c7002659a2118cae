package tokens

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ToRaw converts a human-readable amount ("1.5") to raw smallest-unit
// integer given the token's decimals. Fractions beyond the precision are
// truncated.
func ToRaw(human string, decimals int) (*big.Int, error) {
	d, err := decimal.NewFromString(human)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", human, err)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %s", human)
	}
	raw := d.Shift(int32(decimals)).Truncate(0)
	return raw.BigInt(), nil
}

// FromRaw renders a raw smallest-unit integer as a human-readable string.
func FromRaw(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

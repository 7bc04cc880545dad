// Package deals derives the curated deal views over a product pool.
//
// All functions are pure: inputs are never mutated and equal inputs give
// equal outputs.
package deals

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ParseAmount parses a plain decimal amount string such as "19.99".
// Surrounding spaces are ignored; exponent forms like "1e3" are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	t := strings.TrimSpace(s)
	if strings.ContainsAny(t, "eE") {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	return d, nil
}

// CompareAmounts returns -1, 0 or +1 as a is less than, equal to or
// greater than b.
func CompareAmounts(a, b string) (int, error) {
	const op = "deals.CompareAmounts"

	da, err := ParseAmount(a)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	db, err := ParseAmount(b)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	ai, bi := alignAmounts(da, db)
	return ai.Cmp(bi), nil
}

// alignAmounts scales both amounts to the larger of their fractional scales
// and returns them as integers.
func alignAmounts(a, b decimal.Decimal) (ai, bi *big.Int) {
	scale := max(fractionDigits(a), fractionDigits(b))
	return a.Shift(scale).BigInt(), b.Shift(scale).BigInt()
}

func fractionDigits(d decimal.Decimal) int32 {
	if exp := d.Exponent(); exp < 0 {
		return -exp
	}
	return 0
}

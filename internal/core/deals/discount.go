package deals

import (
	"math/big"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/shopspring/decimal"
)

var (
	basisPoints = big.NewInt(10_000)
	two         = big.NewInt(2)
)

// scaledPrices returns the scaled price and compare-at price of a deal.
// ok is false for anything that is not a deal: no compare-at price,
// unparsable amounts, a non-positive compare-at price, a negative price
// or a compare-at price not above the price.
func scaledPrices(p domain.Product) (price, compare *big.Int, ok bool) {
	if p.CompareAtPrice == nil {
		return nil, nil, false
	}

	dp, err := ParseAmount(p.Price.Amount)
	if err != nil {
		return nil, nil, false
	}
	dc, err := ParseAmount(p.CompareAtPrice.Amount)
	if err != nil {
		return nil, nil, false
	}

	price, compare = alignAmounts(dp, dc)
	if compare.Sign() <= 0 || price.Sign() < 0 || compare.Cmp(price) <= 0 {
		return nil, nil, false
	}
	return price, compare, true
}

// IsDiscounted reports whether the compare-at price strictly exceeds the
// price.
func IsDiscounted(p domain.Product) bool {
	_, _, ok := scaledPrices(p)
	return ok
}

// DiscountPercent returns (compareAt - price) / compareAt * 100 rounded half
// up to two decimal places, or zero when p is not discounted.
func DiscountPercent(p domain.Product) decimal.Decimal {
	price, compare, ok := scaledPrices(p)
	if !ok {
		return decimal.Zero
	}

	diff := new(big.Int).Sub(compare, price)
	bp := new(big.Int).Mul(diff, basisPoints)
	bp.Add(bp, new(big.Int).Quo(compare, two))
	bp.Quo(bp, compare)

	return decimal.NewFromBigInt(bp, -2)
}

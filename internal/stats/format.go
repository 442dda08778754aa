package stats

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// FormatAmount renders a smallest-unit amount in whole tokens.
func FormatAmount(v *uint256.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -int32(decimals)).String()
}

// FormatRate renders numerator/denominator as a percentage with the given
// number of decimal places.
func FormatRate(numerator, denominator uint64, places int32) string {
	if denominator == 0 {
		return "0"
	}
	rate := decimal.NewFromInt(int64(numerator)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(denominator)))
	return rate.StringFixed(places) + "%"
}

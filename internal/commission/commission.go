package commission

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidRate   = errors.New("invalid_commission_rate")
)

// minorUnitPlaces is the number of decimal places of the currency minor
// unit. Every supported settlement currency uses two.
const minorUnitPlaces = 2

// ComputePayout splits a gross amount into the seller payout and the
// platform commission. Arithmetic is decimal-exact; the commission is
// rounded to the currency minor unit with banker's rounding so that
// payout + commission == amount always holds.
func ComputePayout(amount, rate decimal.Decimal) (payout, commission decimal.Decimal, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, ErrInvalidAmount
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, decimal.Zero, ErrInvalidRate
	}

	commission = amount.Mul(rate).RoundBank(minorUnitPlaces)
	payout = amount.Sub(commission)
	return payout, commission, nil
}

// Cents converts a major-unit amount to the currency's minor unit, the
// denomination the gateway charges and transfers in.
func Cents(amount decimal.Decimal) int64 {
	return amount.Shift(minorUnitPlaces).RoundBank(0).IntPart()
}

package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputePayoutSplitsAmount(t *testing.T) {
	rate := decimal.RequireFromString("0.05")

	payout, cut, err := ComputePayout(decimal.RequireFromString("60.00"), rate)
	assert.NoError(t, err)
	assert.True(t, payout.Equal(decimal.RequireFromString("57.00")), "payout %s", payout)
	assert.True(t, cut.Equal(decimal.RequireFromString("3.00")), "commission %s", cut)
	assert.Equal(t, int64(5700), Cents(payout))

	payout, cut, err = ComputePayout(decimal.RequireFromString("40.00"), rate)
	assert.NoError(t, err)
	assert.Equal(t, int64(3800), Cents(payout))
	assert.Equal(t, int64(200), Cents(cut))
}

func TestComputePayoutReconciles(t *testing.T) {
	rate := decimal.RequireFromString("0.125")
	amounts := []string{"0.01", "0.99", "1.00", "19.99", "33.33", "100.00", "12345.67"}

	for _, raw := range amounts {
		amount := decimal.RequireFromString(raw)
		payout, cut, err := ComputePayout(amount, rate)
		assert.NoError(t, err)
		assert.True(t, payout.Add(cut).Equal(amount),
			"amount %s: payout %s + commission %s", raw, payout, cut)
		assert.False(t, payout.IsNegative())
		assert.False(t, cut.IsNegative())
	}
}

func TestComputePayoutBankersRounding(t *testing.T) {
	// 0.05 * 2.50 = 0.125, which rounds to the even cent (0.12).
	payout, cut, err := ComputePayout(decimal.RequireFromString("2.50"), decimal.RequireFromString("0.05"))
	assert.NoError(t, err)
	assert.True(t, cut.Equal(decimal.RequireFromString("0.12")), "commission %s", cut)
	assert.True(t, payout.Equal(decimal.RequireFromString("2.38")), "payout %s", payout)
}

func TestComputePayoutRejectsInvalidInput(t *testing.T) {
	rate := decimal.RequireFromString("0.05")

	_, _, err := ComputePayout(decimal.Zero, rate)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = ComputePayout(decimal.RequireFromString("-1"), rate)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = ComputePayout(decimal.RequireFromString("10"), decimal.RequireFromString("-0.01"))
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, _, err = ComputePayout(decimal.RequireFromString("10"), decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, ErrInvalidRate)
}

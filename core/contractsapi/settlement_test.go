package contractsapi

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestPercentageOf(t *testing.T) {
	tests := []struct {
		name        string
		outcomePool uint64
		totalPool   uint64
		want        float64
	}{
		{name: "quarter", outcomePool: 25, totalPool: 100, want: 25},
		{name: "everything", outcomePool: 100, totalPool: 100, want: 100},
		{name: "empty outcome", outcomePool: 0, totalPool: 100, want: 0},
		{name: "zero total", outcomePool: 25, totalPool: 0, want: 0},
		{name: "one third", outcomePool: 1, totalPool: 3, want: 33.3333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentageOf(u(tt.outcomePool), u(tt.totalPool))
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}

	assert.Zero(t, PercentageOf(nil, u(100)))
	assert.Zero(t, PercentageOf(u(1), nil))
}

func TestPercentagesSumToWhole(t *testing.T) {
	pools := []*uint256.Int{u(105_000_000), u(42_123_456), u(1), u(893_000_000)}
	total := uint256.NewInt(0)
	for _, p := range pools {
		total.Add(total, p)
	}

	var sum float64
	for _, p := range pools {
		sum += PercentageOf(p, total)
	}
	assert.InDelta(t, 100, sum, 0.01)
}

func TestPotentialPayout(t *testing.T) {
	tests := []struct {
		name        string
		stake       uint64
		outcomePool uint64
		totalPool   uint64
		want        uint64
	}{
		{name: "sole winner takes all", stake: 100, outcomePool: 100, totalPool: 400, want: 400},
		{name: "half the winning pool", stake: 50, outcomePool: 100, totalPool: 300, want: 150},
		{name: "floors remainder", stake: 1, outcomePool: 3, totalPool: 100, want: 33},
		{name: "zero stake", stake: 0, outcomePool: 100, totalPool: 400, want: 0},
		{name: "empty outcome pool", stake: 10, outcomePool: 0, totalPool: 400, want: 0},
		{name: "no losers breaks even", stake: 70, outcomePool: 200, totalPool: 200, want: 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PotentialPayout(u(tt.stake), u(tt.outcomePool), u(tt.totalPool))
			assert.Equal(t, tt.want, got.Uint64())
		})
	}

	assert.True(t, PotentialPayout(nil, u(1), u(1)).IsZero())
}

func TestPayoutConservation(t *testing.T) {
	// every winner paid, the pool is never overdrawn: sum of payouts is
	// within len(stakes) minimal units of the total pool (flooring loss)
	stakes := []*uint256.Int{u(105_000_000), u(1), u(42_123_457), u(7)}
	outcomePool := uint256.NewInt(0)
	for _, s := range stakes {
		outcomePool.Add(outcomePool, s)
	}
	totalPool := new(uint256.Int).Mul(outcomePool, uint256.NewInt(3))

	paid := uint256.NewInt(0)
	for _, s := range stakes {
		paid.Add(paid, PotentialPayout(s, outcomePool, totalPool))
	}

	require.True(t, paid.Cmp(totalPool) <= 0, "payouts %s exceed the pool %s", paid, totalPool)
	dust := new(uint256.Int).Sub(totalPool, paid)
	assert.True(t, dust.LtUint64(uint64(len(stakes))), "flooring lost %s, more than one unit per winner", dust)
}

func TestPayoutMonotonicInStake(t *testing.T) {
	outcomePool := u(1_000_000)
	totalPool := u(3_500_000)

	prev := uint256.NewInt(0)
	for _, stake := range []uint64{1, 10, 500, 9999, 1_000_000} {
		payout := PotentialPayout(u(stake), outcomePool, totalPool)
		require.True(t, payout.Cmp(prev) >= 0, "payout shrank as stake grew")
		prev = payout
	}
}

func TestPayoutWideIntermediate(t *testing.T) {
	// stake and pools near the 128-bit amount ceiling: the product needs
	// 256 bits and must not saturate
	nearMax := uint256.MustFromDecimal("340282366920938463463374607431768211455")
	half := new(uint256.Int).Rsh(nearMax, 1)

	payout := PotentialPayout(half, half, nearMax)
	assert.True(t, payout.Eq(nearMax), "expected %s, got %s", nearMax, payout)
}

package contractsapi

import (
	"github.com/holiman/uint256"
)

// Settlement math mirrors the contract's integer arithmetic exactly. Both
// functions are pure and run client-side only: the ledger recomputes payouts
// itself at claim time, and any divergence here would mislead the UI, never
// move funds.

// percentageScale gives four decimal places before the float conversion.
var percentageScale = uint256.NewInt(1_000_000)

// PercentageOf returns outcomePool's share of totalPool as a percentage in
// [0, 100]. A zero or nil total pool yields 0, never a division error.
func PercentageOf(outcomePool, totalPool *uint256.Int) float64 {
	if outcomePool == nil || totalPool == nil || totalPool.IsZero() {
		return 0
	}
	scaled, overflow := new(uint256.Int).MulDivOverflow(outcomePool, percentageScale, totalPool)
	if overflow || !scaled.IsUint64() {
		return 0
	}
	pct := float64(scaled.Uint64()) / 10_000
	if pct > 100 {
		// an outcome pool can never exceed the total it is part of;
		// clamp rather than report impossible odds on malformed input
		pct = 100
	}
	return pct
}

// PotentialPayout computes floor(stake * totalPool / outcomePool): the
// parimutuel payout a stake on the winning outcome would collect, fees
// ignored. Division happens last, on a 512-bit intermediate product, so no
// precision is lost to ordering. A zero stake or an empty outcome pool pays
// zero.
func PotentialPayout(userStake, outcomePool, totalPool *uint256.Int) *uint256.Int {
	if userStake == nil || outcomePool == nil || totalPool == nil {
		return uint256.NewInt(0)
	}
	if userStake.IsZero() || outcomePool.IsZero() {
		return uint256.NewInt(0)
	}
	payout, overflow := new(uint256.Int).MulDivOverflow(userStake, totalPool, outcomePool)
	if overflow {
		// impossible when stake <= outcomePool <= totalPool < 2^128
		return uint256.NewInt(0)
	}
	return payout
}

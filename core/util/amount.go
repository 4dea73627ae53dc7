package util

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// MinimalUnitScale is the fixed-point scale of the ledger's currency: one
// display unit is 10^7 minimal units.
const MinimalUnitScale = 7

// ErrInvalidAmount is returned for non-numeric, negative, or over-wide
// amounts. types.ErrInvalidAmount aliases it so the whole taxonomy matches
// with errors.Is.
var ErrInvalidAmount = errors.New("invalid amount")

// amountCtx truncates toward zero. Precision covers the full 128-bit range
// plus seven fractional digits with room to spare.
var amountCtx = apd.Context{
	Precision:   60,
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Rounding:    apd.RoundDown,
	Traps:       apd.DefaultTraps,
}

var minimalUnitsPerDisplay = apd.New(1, MinimalUnitScale)

// maxMinimalUnits caps amounts at 128 bits, the width of the contract's
// amount type.
const maxAmountBits = 128

// ToMinimalUnits converts a human-readable decimal string to minimal units,
// truncating any fraction below one minimal unit. Non-numeric and negative
// inputs fail with ErrInvalidAmount; zero is allowed here and rejected by
// callers that require a positive stake.
func ToMinimalUnits(display string) (*uint256.Int, error) {
	display = strings.TrimSpace(display)
	if display == "" {
		return nil, errors.Wrap(ErrInvalidAmount, "empty amount")
	}

	dec, _, err := apd.NewFromString(display)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q is not a number", display)
	}
	if dec.Form != apd.Finite {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q is not finite", display)
	}
	if dec.Negative {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q is negative", display)
	}

	var scaled apd.Decimal
	if _, err := amountCtx.Mul(&scaled, dec, minimalUnitsPerDisplay); err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "scaling %q: %v", display, err)
	}

	// Quantize to exponent 0 with RoundDown: truncation toward zero for
	// non-negative values.
	var whole apd.Decimal
	if _, err := amountCtx.Quantize(&whole, &scaled, 0); err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "truncating %q: %v", display, err)
	}

	minimal, overflow := uint256.FromBig(whole.Coeff.MathBigInt())
	if overflow || minimal.BitLen() > maxAmountBits {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q exceeds the 128-bit amount range", display)
	}
	return minimal, nil
}

// ToStake converts a display amount that must be strictly positive, as
// required for placing bets.
func ToStake(display string) (*uint256.Int, error) {
	minimal, err := ToMinimalUnits(display)
	if err != nil {
		return nil, err
	}
	if minimal.IsZero() {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q rounds to zero minimal units", display)
	}
	return minimal, nil
}

// ToDisplayUnits converts minimal units back to a decimal string. The
// division by 10^7 is exact; ToMinimalUnits(ToDisplayUnits(x)) == x for
// every representable x.
func ToDisplayUnits(minimal *uint256.Int) string {
	if minimal == nil || minimal.IsZero() {
		return "0"
	}

	var coeff apd.BigInt
	coeff.SetMathBigInt(new(big.Int).Set(minimal.ToBig()))
	dec := apd.NewWithBigInt(&coeff, -MinimalUnitScale)
	dec.Reduce(dec)
	return dec.Text('f')
}

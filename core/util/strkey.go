package util

import (
	"fmt"
	"strings"
)

// Ledger addresses are 56-character uppercase base32 strings. The leading
// character encodes the address family: 'C' for deployed contracts, 'G' for
// accounts. Validation is intentionally shallow; the ledger is the final
// authority on whether an address exists.

const addressLength = 56

const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

func validateStrKey(s string, prefix byte, kind string) error {
	if len(s) != addressLength {
		return fmt.Errorf("%s must be %d characters, got %d", kind, addressLength, len(s))
	}
	if s[0] != prefix {
		return fmt.Errorf("%s must start with %q", kind, string(prefix))
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(base32Alphabet, rune(s[i])) {
			return fmt.Errorf("%s contains invalid character %q at position %d", kind, string(s[i]), i)
		}
	}
	return nil
}

// ValidateContractAddress checks a deployed-contract address ('C' family).
func ValidateContractAddress(s string) error {
	return validateStrKey(s, 'C', "contract address")
}

// ValidateAccountID checks a ledger account address ('G' family).
func ValidateAccountID(s string) error {
	return validateStrKey(s, 'G', "account id")
}

package types

import (
	"github.com/pkg/errors"

	"github.com/hackpredict/sdk-go/core/util"
)

// ContractAddress identifies a deployed market or factory contract. It is an
// opaque validated 56-character string.
type ContractAddress string

// NewContractAddress validates and wraps a contract address string.
func NewContractAddress(s string) (ContractAddress, error) {
	if err := util.ValidateContractAddress(s); err != nil {
		return "", errors.WithStack(err)
	}
	return ContractAddress(s), nil
}

func (a ContractAddress) String() string { return string(a) }

// AccountID identifies a ledger account (a user, oracle, or owner). Same
// representation family as ContractAddress but semantically distinct.
type AccountID string

// NewAccountID validates and wraps an account address string.
func NewAccountID(s string) (AccountID, error) {
	if err := util.ValidateAccountID(s); err != nil {
		return "", errors.WithStack(err)
	}
	return AccountID(s), nil
}

func (a AccountID) String() string { return string(a) }

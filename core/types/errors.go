package types

import (
	"errors"
	"fmt"

	"github.com/hackpredict/sdk-go/core/util"
)

// Sentinel errors for the client's failure taxonomy. Wrap them with
// pkg/errors so callers can classify with errors.Is.
var (
	// ErrInvalidAmount: a display amount that is non-numeric, negative,
	// wider than 128 bits, or zero where a positive stake is required.
	// Aliases the amount codec's sentinel so both packages match.
	ErrInvalidAmount = util.ErrInvalidAmount

	// ErrArityMismatch: outcome id and title slices of different lengths.
	ErrArityMismatch = errors.New("outcome ids and titles differ in length")

	// ErrPreparationFailed: simulation succeeded but no preparation
	// strategy could assemble a submittable envelope.
	ErrPreparationFailed = errors.New("transaction preparation failed")

	// ErrSigningRejected: the external signer declined to sign.
	ErrSigningRejected = errors.New("signing rejected")

	// ErrSubmissionFailed: the network rejected the transaction at
	// submission time. Terminal; never polled.
	ErrSubmissionFailed = errors.New("transaction submission failed")

	// ErrExpired: the envelope's time bound passed before the transaction
	// was included. The operation must be rebuilt from scratch.
	ErrExpired = errors.New("transaction expired")

	// ErrTimedOut: the poll attempt cap was exhausted with no terminal
	// status. The transaction may still land; do not blindly retry writes.
	ErrTimedOut = errors.New("transaction status unknown after polling")

	// ErrNetworkUnavailable: transport-level failure reaching the RPC
	// endpoint. Recoverable by caller-initiated retry.
	ErrNetworkUnavailable = errors.New("ledger rpc unavailable")

	// ErrAddressParseFailed: a successful create_market whose return value
	// did not decode to a contract address. Surfaced instead of silently
	// substituting the transaction hash.
	ErrAddressParseFailed = errors.New("cannot parse contract address from return value")
)

// SimulationFailure subtypes a failed simulation. These are definite
// precondition violations reported by the contract, not transient faults.
type SimulationFailure string

const (
	FailureAlreadyInitialized SimulationFailure = "already_initialized"
	FailureNotOwner           SimulationFailure = "not_owner"
	FailureDuplicateMarket    SimulationFailure = "duplicate_market"
	FailureNotInitialized     SimulationFailure = "not_initialized"
	FailureOther              SimulationFailure = "other"
)

// SimulationError is a classified simulation failure. It is never retried
// automatically.
type SimulationError struct {
	Failure SimulationFailure
	Message string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation failed (%s): %s", e.Failure, e.Message)
}

// Is lets errors.Is match any SimulationError against a bare
// &SimulationError{} or one with the same Failure.
func (e *SimulationError) Is(target error) bool {
	t, ok := target.(*SimulationError)
	if !ok {
		return false
	}
	return t.Failure == "" || t.Failure == e.Failure
}

// Reason converts any error from this package's taxonomy into a
// human-readable string for the UI layer. Raw serialized objects never
// reach the user.
func Reason(err error) string {
	if err == nil {
		return ""
	}

	var simErr *SimulationError
	if errors.As(err, &simErr) {
		switch simErr.Failure {
		case FailureAlreadyInitialized:
			return "The contract is already initialized."
		case FailureNotOwner:
			return "This account is not authorized to perform the operation."
		case FailureDuplicateMarket:
			return "A market for these livestreams already exists."
		case FailureNotInitialized:
			return "The contract has not been initialized yet."
		default:
			return "The transaction cannot succeed in the ledger's current state."
		}
	}

	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "The amount must be a positive number."
	case errors.Is(err, ErrArityMismatch):
		return "Each outcome needs exactly one title."
	case errors.Is(err, ErrPreparationFailed):
		return "The transaction could not be prepared for signing."
	case errors.Is(err, ErrSigningRejected):
		return "The signature request was declined."
	case errors.Is(err, ErrSubmissionFailed):
		return "The network rejected the transaction."
	case errors.Is(err, ErrExpired):
		return "The transaction expired before it was included; please try again."
	case errors.Is(err, ErrTimedOut):
		return "The transaction status is unknown; check again before retrying."
	case errors.Is(err, ErrNetworkUnavailable):
		return "The network is unreachable; please retry."
	case errors.Is(err, ErrAddressParseFailed):
		return "Market creation succeeded but the new address could not be read."
	default:
		return "An unexpected error occurred."
	}
}

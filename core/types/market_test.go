package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketStateTransitions(t *testing.T) {
	tests := []struct {
		from    MarketState
		to      MarketState
		allowed bool
	}{
		{MarketOpen, MarketClosed, true},
		{MarketClosed, MarketResolved, true},
		{MarketOpen, MarketResolved, false},
		{MarketClosed, MarketOpen, false},
		{MarketResolved, MarketOpen, false},
		{MarketResolved, MarketClosed, false},
		{MarketOpen, MarketOpen, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestParseMarketState(t *testing.T) {
	for raw, want := range map[uint32]MarketState{0: MarketOpen, 1: MarketClosed, 2: MarketResolved} {
		got, err := ParseMarketState(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseMarketState(3)
	require.Error(t, err)
}

func TestTxStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	for _, s := range []TxStatus{StatusSuccess, StatusFailed, StatusTimedOut, StatusExpired} {
		assert.True(t, s.Terminal(), "%s", s)
	}
}

func TestTransactionOutcomeErr(t *testing.T) {
	for _, s := range []TxStatus{StatusPending, StatusSuccess} {
		outcome := &TransactionOutcome{Hash: "abc", Status: s}
		assert.NoError(t, outcome.Err(), "%s", s)
	}

	failed := &TransactionOutcome{Hash: "abc", Status: StatusFailed}
	err := failed.Err()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimedOut)

	expired := &TransactionOutcome{Hash: "abc", Status: StatusExpired}
	require.ErrorIs(t, expired.Err(), ErrExpired)

	timedOut := &TransactionOutcome{Hash: "abc", Status: StatusTimedOut}
	require.ErrorIs(t, timedOut.Err(), ErrTimedOut)
}

func TestSimulationErrorIs(t *testing.T) {
	err := &SimulationError{Failure: FailureNotOwner, Message: "caller is not owner"}

	other := &SimulationError{Failure: FailureNotOwner}
	assert.ErrorIs(t, err, other)

	different := &SimulationError{Failure: FailureDuplicateMarket}
	assert.NotErrorIs(t, err, different)
}

func TestReasonCoversTaxonomy(t *testing.T) {
	seen := map[string]bool{}
	for _, err := range []error{
		ErrArityMismatch,
		ErrInvalidAmount,
		ErrPreparationFailed,
		ErrSigningRejected,
		ErrSubmissionFailed,
		ErrExpired,
		ErrTimedOut,
		ErrNetworkUnavailable,
		ErrAddressParseFailed,
		&SimulationError{Failure: FailureAlreadyInitialized},
		&SimulationError{Failure: FailureNotOwner},
		&SimulationError{Failure: FailureDuplicateMarket},
		&SimulationError{Failure: FailureNotInitialized},
		&SimulationError{Failure: FailureOther},
	} {
		reason := Reason(err)
		require.NotEmpty(t, reason)
		assert.False(t, seen[reason], "reason %q reused across distinct failures", reason)
		seen[reason] = true
	}
}

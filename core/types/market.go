package types

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// MarketState is the lifecycle state of a prediction market. Transitions are
// strictly forward: Open -> Closed -> Resolved, never backwards.
type MarketState uint32

const (
	MarketOpen     MarketState = 0
	MarketClosed   MarketState = 1
	MarketResolved MarketState = 2
)

func (s MarketState) String() string {
	switch s {
	case MarketOpen:
		return "open"
	case MarketClosed:
		return "closed"
	case MarketResolved:
		return "resolved"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(s))
	}
}

// Valid reports whether s is one of the three contract states.
func (s MarketState) Valid() bool {
	return s == MarketOpen || s == MarketClosed || s == MarketResolved
}

// CanTransitionTo reports whether the contract permits moving from s to next.
// Only Open->Closed and Closed->Resolved are legal.
func (s MarketState) CanTransitionTo(next MarketState) bool {
	switch s {
	case MarketOpen:
		return next == MarketClosed
	case MarketClosed:
		return next == MarketResolved
	default:
		return false
	}
}

// ParseMarketState converts the contract's numeric state discriminant.
func ParseMarketState(v uint32) (MarketState, error) {
	s := MarketState(v)
	if !s.Valid() {
		return 0, fmt.Errorf("invalid market state discriminant %d", v)
	}
	return s, nil
}

// MarketInfo is the decoded result of the market contract's get_market_info
// tuple. All amounts are minimal units (10^-7 of the display unit). The
// client never mutates this state directly; it only requests transitions via
// signed transactions.
type MarketInfo struct {
	OutcomeIDs       []uint64     `json:"outcome_ids"`
	Question         string       `json:"question"`
	State            MarketState  `json:"state"`
	WinningOutcomeID uint64       `json:"winning_outcome_id"` // 0 while unresolved
	TotalPool        *uint256.Int `json:"total_pool"`
	TotalBettors     uint64       `json:"total_bettors"`
	CreatedAt        int64        `json:"created_at,omitempty"`
	ClosedAt         int64        `json:"closed_at,omitempty"`
	ResolvedAt       int64        `json:"resolved_at,omitempty"`
}

// UserBet is a user's stake on one outcome. The contract keeps at most one
// stake per (market, user, outcome); rebets accumulate additively.
type UserBet struct {
	OutcomeID uint64       `json:"outcome_id"`
	Amount    *uint256.Int `json:"amount"`
}

// OutcomeBetSummary is the aggregate pool for one outcome, recomputed by the
// ledger on every bet.
type OutcomeBetSummary struct {
	OutcomeID    uint64       `json:"outcome_id"`
	PooledAmount *uint256.Int `json:"pooled_amount"`
	IsActive     bool         `json:"is_active"`
}

// OutcomeOdds is the dashboard view of one outcome: its pool plus the
// client-side derived share of the total pool. Percentage is display-only
// and never feeds back into a transaction.
type OutcomeOdds struct {
	OutcomeID    uint64       `json:"outcome_id"`
	PooledAmount *uint256.Int `json:"pooled_amount"`
	Percentage   float64      `json:"percentage"`
	IsActive     bool         `json:"is_active"`
}

// TxStatus is the terminal-or-pending status of a submitted transaction.
type TxStatus string

const (
	StatusPending  TxStatus = "PENDING"
	StatusSuccess  TxStatus = "SUCCESS"
	StatusFailed   TxStatus = "FAILED"
	StatusTimedOut TxStatus = "TIMED_OUT"
	StatusExpired  TxStatus = "EXPIRED"
)

// Terminal reports whether no further polling can change the status.
// StatusTimedOut is terminal for the poller but leaves the transaction's
// on-ledger fate unknown; callers must not treat it as a definite failure.
func (s TxStatus) Terminal() bool {
	return s != StatusPending
}

// TransactionOutcome is the result of submitting and polling one
// transaction. ReturnValueXDR carries the contract's base64-encoded return
// value when the transaction succeeded and produced one.
type TransactionOutcome struct {
	Hash           string   `json:"hash"`
	Status         TxStatus `json:"status"`
	ReturnValueXDR string   `json:"return_value_xdr,omitempty"`
}

// Err maps the outcome onto the error taxonomy for callers that want a single
// error value instead of switching on Status. Success and pending map to nil.
// StatusTimedOut wraps ErrTimedOut, not a failure: the transaction's
// on-ledger fate is unknown and a blind retry could double-spend the stake.
func (o *TransactionOutcome) Err() error {
	switch o.Status {
	case StatusFailed:
		return errors.Errorf("transaction %s failed on the ledger", o.Hash)
	case StatusExpired:
		return errors.Wrapf(ErrExpired, "transaction %s", o.Hash)
	case StatusTimedOut:
		return errors.Wrapf(ErrTimedOut, "transaction %s", o.Hash)
	default:
		return nil
	}
}

package types

import (
	"context"

	"github.com/holiman/uint256"
)

// Client is the single public surface consumed by the UI layer. Every write
// operation drives the full build -> simulate -> prepare -> sign -> submit
// -> poll lifecycle; every read decodes a simulated contract call.
type Client interface {
	// CreateMarket deploys a new parimutuel market through the factory and
	// registers its metadata best-effort. Mismatched id/title arity fails
	// with ErrArityMismatch before any network call.
	CreateMarket(ctx context.Context, input CreateMarketInput) (ContractAddress, error)

	// PlaceBet stakes a display-unit amount on one outcome. The amount is
	// converted to minimal units first and fails fast with ErrInvalidAmount.
	PlaceBet(ctx context.Context, input PlaceBetInput) (*TransactionOutcome, error)

	// ClaimPayout claims the caller's proportional share of a resolved
	// market's pool. The contract is the authority on resolution state; the
	// client only warns when local state disagrees.
	ClaimPayout(ctx context.Context, market ContractAddress) (*TransactionOutcome, error)

	// CloseMarket and ResolveMarket are oracle operations.
	CloseMarket(ctx context.Context, market ContractAddress) (*TransactionOutcome, error)
	ResolveMarket(ctx context.Context, market ContractAddress, winningOutcomeID uint64) (*TransactionOutcome, error)

	// GetMarketInfo decodes the market's positional info tuple.
	GetMarketInfo(ctx context.Context, market ContractAddress) (*MarketInfo, error)

	// GetUserBets returns the user's non-zero stakes across all outcomes.
	GetUserBets(ctx context.Context, market ContractAddress, user AccountID) ([]UserBet, error)

	// GetOdds returns per-outcome pools with derived percentages. On
	// partial read failure it returns the rows it has plus the error.
	GetOdds(ctx context.Context, market ContractAddress) ([]OutcomeOdds, error)

	// PotentialPayout computes the user's payout on outcomeID were it to
	// win, from current pools: floor(stake * totalPool / outcomePool).
	PotentialPayout(ctx context.Context, market ContractAddress, user AccountID, outcomeID uint64) (*uint256.Int, error)

	// ListMarkets pages through all markets known to the factory.
	ListMarkets(ctx context.Context, input ListMarketsInput) ([]ContractAddress, error)

	// IsValidMarket reports whether the factory deployed this address.
	IsValidMarket(ctx context.Context, market ContractAddress) (bool, error)
}

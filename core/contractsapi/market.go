package contractsapi

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/hackpredict/sdk-go/core/ledger"
	"github.com/hackpredict/sdk-go/core/types"
)

// Market contract method names.
const (
	methodInitialize            = "initialize"
	methodPlaceBet              = "place_bet"
	methodCloseMarket           = "close_market"
	methodResolveMarket         = "resolve_market"
	methodClaimPayout           = "claim_payout"
	methodGetMarketInfo         = "get_market_info"
	methodGetLivestreamBets     = "get_livestream_bets"
	methodGetUserBet            = "get_user_bet"
	methodAddLivestream         = "add_livestream"
	methodUpdateLivestreamTitle = "update_livestream_title"
	methodRemoveLivestream      = "remove_livestream"
)

// Market wraps one deployed market contract. Reads go through simulation
// only; writes run the full transaction lifecycle and return the final
// outcome, whatever it is.
type Market struct {
	address  types.ContractAddress
	pipeline *Pipeline
}

type MarketOptions struct {
	Address  types.ContractAddress
	Pipeline *Pipeline
}

func LoadMarket(opts MarketOptions) (*Market, error) {
	if opts.Address == "" {
		return nil, errors.New("market requires a contract address")
	}
	if opts.Pipeline == nil {
		return nil, errors.New("market requires a pipeline")
	}
	return &Market{address: opts.Address, pipeline: opts.Pipeline}, nil
}

func (m *Market) Address() types.ContractAddress { return m.address }

func (m *Market) invoke(ctx context.Context, method string, args []ledger.Val) (*types.TransactionOutcome, error) {
	env, err := m.pipeline.BuildWrite(ctx, m.address, method, args)
	if err != nil {
		return nil, err
	}
	return m.pipeline.Execute(ctx, env)
}

// Initialize sets up a directly deployed market contract: owner, outcome ids,
// the market question and one title per outcome. Markets created through the
// factory are initialized by the factory and reject a second call with an
// already-initialized classification.
func (m *Market) Initialize(ctx context.Context, owner types.AccountID, outcomeIDs []uint64, question string, titles []string) (*types.TransactionOutcome, error) {
	if len(outcomeIDs) != len(titles) {
		return nil, errors.Wrapf(types.ErrArityMismatch, "%d outcome ids, %d titles", len(outcomeIDs), len(titles))
	}
	ids := make([]ledger.Val, len(outcomeIDs))
	for i, id := range outcomeIDs {
		ids[i] = ledger.U64Val(id)
	}
	names := make([]ledger.Val, len(titles))
	for i, t := range titles {
		names[i] = ledger.StringVal(t)
	}
	return m.invoke(ctx, methodInitialize, []ledger.Val{
		ledger.AddressVal(string(owner)),
		ledger.VecVal(ids...),
		ledger.StringVal(question),
		ledger.VecVal(names...),
	})
}

// PlaceBet stakes amount (minimal units) on the given outcome for user. The
// contract accumulates repeat bets on the same outcome and rejects bets on a
// second outcome or a closed market during simulation.
func (m *Market) PlaceBet(ctx context.Context, user types.AccountID, outcomeID uint64, amount *uint256.Int) (*types.TransactionOutcome, error) {
	if amount == nil || amount.IsZero() {
		return nil, errors.Wrap(types.ErrInvalidAmount, "stake must be positive")
	}
	return m.invoke(ctx, methodPlaceBet, []ledger.Val{
		ledger.AddressVal(string(user)),
		ledger.U64Val(outcomeID),
		ledger.I128Val(amount),
	})
}

// ClaimPayout collects user's winnings on a resolved market. The contract is
// the source of truth for eligibility; a locally stale market state only
// costs a failed simulation.
func (m *Market) ClaimPayout(ctx context.Context, user types.AccountID) (*types.TransactionOutcome, error) {
	return m.invoke(ctx, methodClaimPayout, []ledger.Val{
		ledger.AddressVal(string(user)),
	})
}

// CloseMarket stops betting. Owner-only; a non-owner caller fails during
// simulation with a not-owner classification.
func (m *Market) CloseMarket(ctx context.Context, caller types.AccountID) (*types.TransactionOutcome, error) {
	return m.invoke(ctx, methodCloseMarket, []ledger.Val{
		ledger.AddressVal(string(caller)),
	})
}

// ResolveMarket declares the winning outcome on a closed market. Owner-only.
func (m *Market) ResolveMarket(ctx context.Context, caller types.AccountID, winningOutcomeID uint64) (*types.TransactionOutcome, error) {
	return m.invoke(ctx, methodResolveMarket, []ledger.Val{
		ledger.AddressVal(string(caller)),
		ledger.U64Val(winningOutcomeID),
	})
}

// AddLivestream registers a new outcome on an open market. Owner-only.
func (m *Market) AddLivestream(ctx context.Context, caller types.AccountID, outcomeID uint64, title string) (*types.TransactionOutcome, error) {
	return m.invoke(ctx, methodAddLivestream, []ledger.Val{
		ledger.AddressVal(string(caller)),
		ledger.U64Val(outcomeID),
		ledger.StringVal(title),
	})
}

// UpdateLivestreamTitle renames an outcome. Owner-only.
func (m *Market) UpdateLivestreamTitle(ctx context.Context, caller types.AccountID, outcomeID uint64, title string) (*types.TransactionOutcome, error) {
	return m.invoke(ctx, methodUpdateLivestreamTitle, []ledger.Val{
		ledger.AddressVal(string(caller)),
		ledger.U64Val(outcomeID),
		ledger.StringVal(title),
	})
}

// RemoveLivestream deactivates an outcome that has no bets. Owner-only.
func (m *Market) RemoveLivestream(ctx context.Context, caller types.AccountID, outcomeID uint64) (*types.TransactionOutcome, error) {
	return m.invoke(ctx, methodRemoveLivestream, []ledger.Val{
		ledger.AddressVal(string(caller)),
		ledger.U64Val(outcomeID),
	})
}

// GetMarketInfo reads the market's full state tuple.
func (m *Market) GetMarketInfo(ctx context.Context) (*types.MarketInfo, error) {
	result, err := m.pipeline.ReadCall(ctx, m.address, methodGetMarketInfo, nil)
	if err != nil {
		return nil, err
	}
	return DecodeMarketInfo(result)
}

// GetOutcomeBets reads the aggregate pool for one outcome.
func (m *Market) GetOutcomeBets(ctx context.Context, outcomeID uint64) (*types.OutcomeBetSummary, error) {
	result, err := m.pipeline.ReadCall(ctx, m.address, methodGetLivestreamBets, []ledger.Val{
		ledger.U64Val(outcomeID),
	})
	if err != nil {
		return nil, err
	}
	return DecodeOutcomeBets(result, outcomeID)
}

// GetUserBet reads user's stake on one outcome, zero if none.
func (m *Market) GetUserBet(ctx context.Context, user types.AccountID, outcomeID uint64) (*uint256.Int, error) {
	result, err := m.pipeline.ReadCall(ctx, m.address, methodGetUserBet, []ledger.Val{
		ledger.AddressVal(string(user)),
		ledger.U64Val(outcomeID),
	})
	if err != nil {
		return nil, err
	}
	return DecodeStake(result)
}

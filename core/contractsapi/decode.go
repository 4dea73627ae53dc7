package contractsapi

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/hackpredict/sdk-go/core/ledger"
	"github.com/hackpredict/sdk-go/core/types"
)

// Positional decode helpers for contract return values. Contract methods
// return tuples as vectors with a pinned element order; each helper checks
// the element's wire type before extracting, so a reordered or truncated
// tuple fails loudly instead of mispopulating a struct.

func tupleElems(v ledger.Val, want int, what string) ([]ledger.Val, error) {
	if v.Type != ledger.TypeVec {
		return nil, errors.Errorf("%s: expected a tuple, got %s", what, v.Type)
	}
	if len(v.Vec) < want {
		return nil, errors.Errorf("%s: tuple has %d elements, want at least %d", what, len(v.Vec), want)
	}
	return v.Vec, nil
}

func extractU64Elem(v ledger.Val, target *uint64, pos int, name string) error {
	switch v.Type {
	case ledger.TypeU64:
		*target = v.U64
	case ledger.TypeU32:
		*target = uint64(v.U32)
	default:
		return errors.Errorf("invalid %s type (position %d): %s", name, pos, v.Type)
	}
	return nil
}

func extractU32Elem(v ledger.Val, target *uint32, pos int, name string) error {
	if v.Type != ledger.TypeU32 {
		return errors.Errorf("invalid %s type (position %d): %s", name, pos, v.Type)
	}
	*target = v.U32
	return nil
}

func extractStringElem(v ledger.Val, target *string, pos int, name string) error {
	if v.Type != ledger.TypeString && v.Type != ledger.TypeSymbol {
		return errors.Errorf("invalid %s type (position %d): %s", name, pos, v.Type)
	}
	*target = v.Str
	return nil
}

func extractBoolElem(v ledger.Val, target *bool, pos int, name string) error {
	if v.Type != ledger.TypeBool {
		return errors.Errorf("invalid %s type (position %d): %s", name, pos, v.Type)
	}
	*target = v.B
	return nil
}

// extractAmountElem accepts the contract's i128 amounts as well as the
// narrower integer types some view methods return for zero values.
func extractAmountElem(v ledger.Val, target **uint256.Int, pos int, name string) error {
	switch v.Type {
	case ledger.TypeI128:
		if v.I128 == nil {
			*target = uint256.NewInt(0)
		} else {
			*target = new(uint256.Int).Set(v.I128)
		}
	case ledger.TypeU64:
		*target = uint256.NewInt(v.U64)
	case ledger.TypeU32:
		*target = uint256.NewInt(uint64(v.U32))
	default:
		return errors.Errorf("invalid %s type (position %d): %s", name, pos, v.Type)
	}
	return nil
}

func extractStateElem(v ledger.Val, target *types.MarketState, pos int, name string) error {
	var raw uint64
	if err := extractU64Elem(v, &raw, pos, name); err != nil {
		return err
	}
	state, err := types.ParseMarketState(uint32(raw))
	if err != nil {
		return errors.Wrapf(err, "invalid %s (position %d)", name, pos)
	}
	*target = state
	return nil
}

func extractU64VecElem(v ledger.Val, target *[]uint64, pos int, name string) error {
	if v.Type != ledger.TypeVec {
		return errors.Errorf("invalid %s type (position %d): %s", name, pos, v.Type)
	}
	out := make([]uint64, 0, len(v.Vec))
	for i, elem := range v.Vec {
		var id uint64
		if err := extractU64Elem(elem, &id, i, name+" element"); err != nil {
			return err
		}
		out = append(out, id)
	}
	*target = out
	return nil
}

func extractAddressElem(v ledger.Val, target *types.ContractAddress, pos int, name string) error {
	if v.Type != ledger.TypeAddress {
		return errors.Errorf("invalid %s type (position %d): %s", name, pos, v.Type)
	}
	addr, err := types.NewContractAddress(v.Str)
	if err != nil {
		return errors.Wrapf(err, "invalid %s (position %d)", name, pos)
	}
	*target = addr
	return nil
}

// DecodeMarketInfo decodes the get_market_info tuple:
// (outcome_ids, question, state, winning_outcome_id, total_pool, total_bettors).
func DecodeMarketInfo(v ledger.Val) (*types.MarketInfo, error) {
	elems, err := tupleElems(v, 6, "market info")
	if err != nil {
		return nil, err
	}
	info := &types.MarketInfo{}
	if err := extractU64VecElem(elems[0], &info.OutcomeIDs, 0, "outcome ids"); err != nil {
		return nil, err
	}
	if err := extractStringElem(elems[1], &info.Question, 1, "question"); err != nil {
		return nil, err
	}
	if err := extractStateElem(elems[2], &info.State, 2, "market state"); err != nil {
		return nil, err
	}
	if err := extractU64Elem(elems[3], &info.WinningOutcomeID, 3, "winning outcome id"); err != nil {
		return nil, err
	}
	if err := extractAmountElem(elems[4], &info.TotalPool, 4, "total pool"); err != nil {
		return nil, err
	}
	if err := extractU64Elem(elems[5], &info.TotalBettors, 5, "total bettors"); err != nil {
		return nil, err
	}
	return info, nil
}

// DecodeOutcomeBets decodes the get_livestream_bets tuple:
// (pooled_amount, percentage, is_active). The on-ledger percentage is an
// integer truncation kept for contract-side consumers; clients derive a
// higher-precision figure from the pools instead, so it is validated but not
// carried.
func DecodeOutcomeBets(v ledger.Val, outcomeID uint64) (*types.OutcomeBetSummary, error) {
	elems, err := tupleElems(v, 3, "outcome bets")
	if err != nil {
		return nil, err
	}
	summary := &types.OutcomeBetSummary{OutcomeID: outcomeID}
	if err := extractAmountElem(elems[0], &summary.PooledAmount, 0, "pooled amount"); err != nil {
		return nil, err
	}
	var coarsePct uint64
	if err := extractU64Elem(elems[1], &coarsePct, 1, "percentage"); err != nil {
		return nil, err
	}
	if err := extractBoolElem(elems[2], &summary.IsActive, 2, "is active"); err != nil {
		return nil, err
	}
	return summary, nil
}

// DecodeStake decodes a scalar stake amount (get_user_bet's return).
func DecodeStake(v ledger.Val) (*uint256.Int, error) {
	var amount *uint256.Int
	if err := extractAmountElem(v, &amount, 0, "stake"); err != nil {
		return nil, err
	}
	return amount, nil
}

// DecodeCreatedMarketAddress decodes create_market's return value. A
// successful transaction whose return value is not an address is surfaced as
// ErrAddressParseFailed: the market exists on the ledger even though the
// client cannot name it.
func DecodeCreatedMarketAddress(v ledger.Val) (types.ContractAddress, error) {
	if v.Type != ledger.TypeAddress {
		return "", errors.Wrapf(types.ErrAddressParseFailed, "return value is %s, not an address", v.Type)
	}
	addr, err := types.NewContractAddress(v.Str)
	if err != nil {
		return "", errors.Wrapf(types.ErrAddressParseFailed, "%v", err)
	}
	return addr, nil
}

// DecodeAddressList decodes a vector of contract addresses (factory listing
// methods).
func DecodeAddressList(v ledger.Val) ([]types.ContractAddress, error) {
	if v.Type != ledger.TypeVec {
		return nil, errors.Errorf("expected an address list, got %s", v.Type)
	}
	out := make([]types.ContractAddress, 0, len(v.Vec))
	for i, elem := range v.Vec {
		var addr types.ContractAddress
		if err := extractAddressElem(elem, &addr, i, "market address"); err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// DecodeU64List decodes a vector of u64 values (livestream-id listings).
func DecodeU64List(v ledger.Val) ([]uint64, error) {
	var ids []uint64
	if err := extractU64VecElem(v, &ids, 0, "id list"); err != nil {
		return nil, err
	}
	return ids, nil
}

// DecodeBool decodes a scalar boolean return value.
func DecodeBool(v ledger.Val) (bool, error) {
	var b bool
	if err := extractBoolElem(v, &b, 0, "result"); err != nil {
		return false, err
	}
	return b, nil
}

// DecodeU32 decodes a scalar count return value.
func DecodeU32(v ledger.Val) (uint32, error) {
	var n uint32
	if v.Type == ledger.TypeU64 {
		if v.U64 > uint64(^uint32(0)) {
			return 0, errors.Errorf("count %d overflows u32", v.U64)
		}
		return uint32(v.U64), nil
	}
	if err := extractU32Elem(v, &n, 0, "count"); err != nil {
		return 0, err
	}
	return n, nil
}

// DecodeAccountAddress decodes a scalar account address (get_owner's return).
func DecodeAccountAddress(v ledger.Val) (types.AccountID, error) {
	if v.Type != ledger.TypeAddress {
		return "", errors.Errorf("expected an account address, got %s", v.Type)
	}
	return types.NewAccountID(v.Str)
}

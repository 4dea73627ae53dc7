package contractsapi

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hackpredict/sdk-go/core/ledger"
	"github.com/hackpredict/sdk-go/core/types"
)

// Factory contract method names.
const (
	methodCreateMarket             = "create_market"
	methodGetAllMarkets            = "get_all_markets"
	methodGetMarketsForLivestream  = "get_markets_for_livestream"
	methodGetMarketCountForLive    = "get_market_count_for_livestream"
	methodGetTotalMarketCount      = "get_total_market_count"
	methodGetLivestreamsForMarket  = "get_livestreams_for_market"
	methodIsValidMarket            = "is_valid_market"
	methodIsLivestreamInMarket     = "is_livestream_in_market"
	methodGetOwner                 = "get_owner"
	methodTransferFactoryOwnership = "transfer_ownership"
)

// Factory wraps the factory contract that deploys and indexes market
// contracts. Every market it creates is instantiated from MarketWasmHash.
type Factory struct {
	address  types.ContractAddress
	wasmHash [32]byte
	pipeline *Pipeline
}

type FactoryOptions struct {
	Address types.ContractAddress
	// MarketWasmHash identifies the installed market contract code new
	// markets are instantiated from. Required for CreateMarket only.
	MarketWasmHash [32]byte
	Pipeline       *Pipeline
}

func LoadFactory(opts FactoryOptions) (*Factory, error) {
	if opts.Address == "" {
		return nil, errors.New("factory requires a contract address")
	}
	if opts.Pipeline == nil {
		return nil, errors.New("factory requires a pipeline")
	}
	return &Factory{
		address:  opts.Address,
		wasmHash: opts.MarketWasmHash,
		pipeline: opts.Pipeline,
	}, nil
}

func (f *Factory) Address() types.ContractAddress { return f.address }

// CreateMarket deploys a new market for the given outcomes. Outcome ids and
// titles are parallel slices and must match in length; the mismatch is
// caught before anything touches the network. On success the new market's
// address is decoded from the transaction's return value; if that decode
// fails the error wraps types.ErrAddressParseFailed and the outcome is still
// returned, because the market does exist on the ledger.
func (f *Factory) CreateMarket(ctx context.Context, caller types.AccountID, outcomeIDs []uint64, question string, outcomeTitles []string) (*types.TransactionOutcome, types.ContractAddress, error) {
	if len(outcomeIDs) != len(outcomeTitles) {
		return nil, "", errors.Wrapf(types.ErrArityMismatch,
			"%d outcome ids, %d titles", len(outcomeIDs), len(outcomeTitles))
	}
	if f.wasmHash == [32]byte{} {
		return nil, "", errors.New("factory has no market wasm hash configured")
	}

	env, err := f.pipeline.BuildWrite(ctx, f.address, methodCreateMarket, []ledger.Val{
		ledger.AddressVal(string(caller)),
		ledger.U64VecVal(outcomeIDs),
		ledger.StringVal(question),
		ledger.StringVecVal(outcomeTitles),
		ledger.BytesVal(f.wasmHash[:]),
	})
	if err != nil {
		return nil, "", err
	}
	outcome, err := f.pipeline.Execute(ctx, env)
	if err != nil {
		return outcome, "", err
	}
	if outcome.Status != types.StatusSuccess {
		return outcome, "", nil
	}

	ret, err := ledger.DecodeValBase64(outcome.ReturnValueXDR)
	if err != nil {
		return outcome, "", errors.Wrapf(types.ErrAddressParseFailed, "%v", err)
	}
	addr, err := DecodeCreatedMarketAddress(ret)
	if err != nil {
		return outcome, "", err
	}
	return outcome, addr, nil
}

// TransferOwnership hands the factory to a new owner account. Owner-only.
func (f *Factory) TransferOwnership(ctx context.Context, caller, newOwner types.AccountID) (*types.TransactionOutcome, error) {
	env, err := f.pipeline.BuildWrite(ctx, f.address, methodTransferFactoryOwnership, []ledger.Val{
		ledger.AddressVal(string(caller)),
		ledger.AddressVal(string(newOwner)),
	})
	if err != nil {
		return nil, err
	}
	return f.pipeline.Execute(ctx, env)
}

// ListMarkets pages through every market the factory has deployed, newest
// last.
func (f *Factory) ListMarkets(ctx context.Context, offset, limit uint32) ([]types.ContractAddress, error) {
	result, err := f.pipeline.ReadCall(ctx, f.address, methodGetAllMarkets, []ledger.Val{
		ledger.U32Val(offset),
		ledger.U32Val(limit),
	})
	if err != nil {
		return nil, err
	}
	return DecodeAddressList(result)
}

// MarketsForLivestream lists every market that includes the livestream as an
// outcome.
func (f *Factory) MarketsForLivestream(ctx context.Context, livestreamID uint64) ([]types.ContractAddress, error) {
	result, err := f.pipeline.ReadCall(ctx, f.address, methodGetMarketsForLivestream, []ledger.Val{
		ledger.U64Val(livestreamID),
	})
	if err != nil {
		return nil, err
	}
	return DecodeAddressList(result)
}

func (f *Factory) MarketCountForLivestream(ctx context.Context, livestreamID uint64) (uint32, error) {
	result, err := f.pipeline.ReadCall(ctx, f.address, methodGetMarketCountForLive, []ledger.Val{
		ledger.U64Val(livestreamID),
	})
	if err != nil {
		return 0, err
	}
	return DecodeU32(result)
}

func (f *Factory) TotalMarketCount(ctx context.Context) (uint32, error) {
	result, err := f.pipeline.ReadCall(ctx, f.address, methodGetTotalMarketCount, nil)
	if err != nil {
		return 0, err
	}
	return DecodeU32(result)
}

// LivestreamsForMarket lists the livestream ids a market was created with.
func (f *Factory) LivestreamsForMarket(ctx context.Context, market types.ContractAddress) ([]uint64, error) {
	result, err := f.pipeline.ReadCall(ctx, f.address, methodGetLivestreamsForMarket, []ledger.Val{
		ledger.AddressVal(string(market)),
	})
	if err != nil {
		return nil, err
	}
	return DecodeU64List(result)
}

// IsValidMarket reports whether the factory deployed the given contract.
func (f *Factory) IsValidMarket(ctx context.Context, market types.ContractAddress) (bool, error) {
	result, err := f.pipeline.ReadCall(ctx, f.address, methodIsValidMarket, []ledger.Val{
		ledger.AddressVal(string(market)),
	})
	if err != nil {
		return false, err
	}
	return DecodeBool(result)
}

func (f *Factory) IsLivestreamInMarket(ctx context.Context, market types.ContractAddress, livestreamID uint64) (bool, error) {
	result, err := f.pipeline.ReadCall(ctx, f.address, methodIsLivestreamInMarket, []ledger.Val{
		ledger.AddressVal(string(market)),
		ledger.U64Val(livestreamID),
	})
	if err != nil {
		return false, err
	}
	return DecodeBool(result)
}

func (f *Factory) GetOwner(ctx context.Context) (types.AccountID, error) {
	result, err := f.pipeline.ReadCall(ctx, f.address, methodGetOwner, nil)
	if err != nil {
		return "", err
	}
	return DecodeAccountAddress(result)
}

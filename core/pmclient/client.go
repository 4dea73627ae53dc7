// Package pmclient is the public entry point of the SDK: one Client that
// loads market and factory bindings, drives the transaction lifecycle, and
// layers optional metadata storage and caching on top of the ledger reads.
package pmclient

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hackpredict/sdk-go/core/cache"
	pm_api "github.com/hackpredict/sdk-go/core/contractsapi"
	"github.com/hackpredict/sdk-go/core/ledger"
	"github.com/hackpredict/sdk-go/core/logging"
	"github.com/hackpredict/sdk-go/core/metadata"
	"github.com/hackpredict/sdk-go/core/signer"
	clientType "github.com/hackpredict/sdk-go/core/types"
	"github.com/hackpredict/sdk-go/core/util"
)

const defaultReadConcurrency = 4

type Client struct {
	Signer   signer.Signer `validate:"required"`
	pipeline *pm_api.Pipeline
	factory  *pm_api.Factory

	transport       ledger.Transport
	network         clientType.NetworkConfig
	factoryAddress  clientType.ContractAddress
	marketWasmHash  [32]byte
	poll            pm_api.PollConfig
	readConcurrency int

	store       metadata.Store
	marketCache *cache.MarketCache
	logger      *zap.Logger
}

var _ clientType.Client = (*Client)(nil)

type Option func(*Client)

// NewClient connects to the given network and loads the factory binding.
// A signer is required: even a read-mostly consumer signs the occasional
// claim. Metadata store and market cache are optional layers.
func NewClient(ctx context.Context, network clientType.Network, options ...Option) (*Client, error) {
	cfg, err := clientType.NewNetworkConfig(network, "")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	c := &Client{
		network:         cfg,
		poll:            pm_api.DefaultPollConfig(),
		readConcurrency: defaultReadConcurrency,
		logger:          logging.Logger,
	}
	for _, option := range options {
		option(c)
	}

	if c.transport == nil {
		c.transport = ledger.NewHTTPTransport(c.network.RPCEndpoint, ledger.WithTransportLogger(c.logger))
	}

	if c.factoryAddress == "" {
		return nil, errors.New("client requires a factory address, use WithFactory")
	}
	if err = c.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	c.pipeline, err = pm_api.NewPipeline(pm_api.PipelineOptions{
		Transport: c.transport,
		Network:   c.network,
		Signer:    c.Signer,
		Poll:      c.poll,
		Logger:    c.logger,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	c.factory, err = pm_api.LoadFactory(pm_api.FactoryOptions{
		Address:        c.factoryAddress,
		MarketWasmHash: c.marketWasmHash,
		Pipeline:       c.pipeline,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return c, nil
}

func (c *Client) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func WithSigner(s signer.Signer) Option {
	return func(c *Client) { c.Signer = s }
}

// WithRPCEndpoint overrides the network's default RPC endpoint.
func WithRPCEndpoint(endpoint string) Option {
	return func(c *Client) { c.network.RPCEndpoint = endpoint }
}

// WithTransport injects a transport directly, bypassing endpoint dialing.
func WithTransport(t ledger.Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithFactory points the client at a deployed factory and the wasm hash its
// markets are instantiated from.
func WithFactory(address clientType.ContractAddress, marketWasmHash [32]byte) Option {
	return func(c *Client) {
		c.factoryAddress = address
		c.marketWasmHash = marketWasmHash
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithPollConfig(cfg pm_api.PollConfig) Option {
	return func(c *Client) { c.poll = cfg }
}

// WithReadConcurrency bounds how many simulated reads fan out in parallel
// when assembling odds and user positions.
func WithReadConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.readConcurrency = n
		}
	}
}

func WithMetadataStore(store metadata.Store) Option {
	return func(c *Client) { c.store = store }
}

func WithMarketCache(mc *cache.MarketCache) Option {
	return func(c *Client) { c.marketCache = mc }
}

// LoadMarket binds a deployed market contract to this client's pipeline.
func (c *Client) LoadMarket(address clientType.ContractAddress) (*pm_api.Market, error) {
	return pm_api.LoadMarket(pm_api.MarketOptions{
		Address:  address,
		Pipeline: c.pipeline,
	})
}

// Factory exposes the bound factory for callers that need its full surface.
func (c *Client) Factory() *pm_api.Factory { return c.factory }

func (c *Client) signerAccount() (clientType.AccountID, error) {
	return c.Signer.GetAddress()
}

// CreateMarket deploys a market through the factory and registers its
// off-chain metadata. The metadata write is best-effort: the market lives on
// the ledger whether or not the store accepts the record.
func (c *Client) CreateMarket(ctx context.Context, input clientType.CreateMarketInput) (clientType.ContractAddress, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}
	caller, err := c.signerAccount()
	if err != nil {
		return "", err
	}

	outcome, address, err := c.factory.CreateMarket(ctx, caller, input.OutcomeIDs, input.Question, input.OutcomeTitles)
	if err != nil {
		return "", err
	}
	if outcome.Status != clientType.StatusSuccess {
		return "", errors.Errorf("market creation finished with status %s (tx %s)", outcome.Status, outcome.Hash)
	}

	if c.store != nil {
		storeErr := c.store.RegisterMarket(ctx, metadata.MarketRecord{
			ContractAddress: address,
			CreatorAccount:  caller,
			Description:     input.Description,
			Category:        input.Category,
			Tags:            input.Tags,
		})
		if storeErr != nil {
			c.logger.Warn("market created but metadata registration failed",
				zap.String("market", string(address)), zap.Error(storeErr))
		}
	}
	return address, nil
}

// PlaceBet converts the display amount to minimal units, then stakes it. A
// malformed amount never reaches the network.
func (c *Client) PlaceBet(ctx context.Context, input clientType.PlaceBetInput) (*clientType.TransactionOutcome, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	stake, err := util.ToStake(input.DisplayAmount)
	if err != nil {
		return nil, err
	}
	user, err := c.signerAccount()
	if err != nil {
		return nil, err
	}
	market, err := c.LoadMarket(input.Market)
	if err != nil {
		return nil, err
	}

	outcome, err := market.PlaceBet(ctx, user, input.OutcomeID, stake)
	if outcome != nil && outcome.Status == clientType.StatusSuccess {
		c.invalidateCached(ctx, input.Market)
	}
	return outcome, err
}

// ClaimPayout claims the signer's winnings. The ledger decides eligibility;
// if the locally known state says the market is not resolved yet, the client
// warns and proceeds, since local state may simply be stale.
func (c *Client) ClaimPayout(ctx context.Context, marketAddr clientType.ContractAddress) (*clientType.TransactionOutcome, error) {
	user, err := c.signerAccount()
	if err != nil {
		return nil, err
	}
	market, err := c.LoadMarket(marketAddr)
	if err != nil {
		return nil, err
	}

	if info, infoErr := c.GetMarketInfo(ctx, marketAddr); infoErr == nil && info.State != clientType.MarketResolved {
		c.logger.Warn("claiming payout on a market not locally known as resolved",
			zap.String("market", string(marketAddr)),
			zap.String("state", info.State.String()))
	}

	outcome, err := market.ClaimPayout(ctx, user)
	if outcome != nil && outcome.Status == clientType.StatusSuccess {
		c.invalidateCached(ctx, marketAddr)
	}
	return outcome, err
}

func (c *Client) CloseMarket(ctx context.Context, marketAddr clientType.ContractAddress) (*clientType.TransactionOutcome, error) {
	caller, err := c.signerAccount()
	if err != nil {
		return nil, err
	}
	market, err := c.LoadMarket(marketAddr)
	if err != nil {
		return nil, err
	}
	outcome, err := market.CloseMarket(ctx, caller)
	if outcome != nil && outcome.Status == clientType.StatusSuccess {
		c.invalidateCached(ctx, marketAddr)
	}
	return outcome, err
}

func (c *Client) ResolveMarket(ctx context.Context, marketAddr clientType.ContractAddress, winningOutcomeID uint64) (*clientType.TransactionOutcome, error) {
	caller, err := c.signerAccount()
	if err != nil {
		return nil, err
	}
	market, err := c.LoadMarket(marketAddr)
	if err != nil {
		return nil, err
	}
	outcome, err := market.ResolveMarket(ctx, caller, winningOutcomeID)
	if outcome != nil && outcome.Status == clientType.StatusSuccess {
		c.invalidateCached(ctx, marketAddr)
	}
	return outcome, err
}

// GetMarketInfo reads the market's state tuple, serving from cache when one
// is configured and fresh.
func (c *Client) GetMarketInfo(ctx context.Context, marketAddr clientType.ContractAddress) (*clientType.MarketInfo, error) {
	if c.marketCache != nil {
		if info, err := c.marketCache.Get(ctx, marketAddr); err == nil {
			return info, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			c.logger.Warn("market cache read failed",
				zap.String("market", string(marketAddr)), zap.Error(err))
		}
	}

	market, err := c.LoadMarket(marketAddr)
	if err != nil {
		return nil, err
	}
	info, err := market.GetMarketInfo(ctx)
	if err != nil {
		return nil, err
	}

	if c.marketCache != nil {
		if cacheErr := c.marketCache.Set(ctx, marketAddr, info); cacheErr != nil {
			c.logger.Warn("market cache write failed",
				zap.String("market", string(marketAddr)), zap.Error(cacheErr))
		}
	}
	return info, nil
}

// GetUserBets fans out per-outcome stake reads and keeps the non-zero ones.
func (c *Client) GetUserBets(ctx context.Context, marketAddr clientType.ContractAddress, user clientType.AccountID) ([]clientType.UserBet, error) {
	market, err := c.LoadMarket(marketAddr)
	if err != nil {
		return nil, err
	}
	info, err := c.GetMarketInfo(ctx, marketAddr)
	if err != nil {
		return nil, err
	}

	stakes := make([]*uint256.Int, len(info.OutcomeIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.readConcurrency)
	for i, outcomeID := range info.OutcomeIDs {
		i, outcomeID := i, outcomeID
		g.Go(func() error {
			stake, err := market.GetUserBet(gctx, user, outcomeID)
			if err != nil {
				return errors.Wrapf(err, "reading stake on outcome %d", outcomeID)
			}
			stakes[i] = stake
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bets := make([]clientType.UserBet, 0, len(info.OutcomeIDs))
	for i, outcomeID := range info.OutcomeIDs {
		if stakes[i] != nil && !stakes[i].IsZero() {
			bets = append(bets, clientType.UserBet{OutcomeID: outcomeID, Amount: stakes[i]})
		}
	}
	return bets, nil
}

// GetOdds reads every outcome's pool and derives its share of the total.
// When some reads fail, the successfully read rows are returned alongside
// the first error so a dashboard can render a partial board.
func (c *Client) GetOdds(ctx context.Context, marketAddr clientType.ContractAddress) ([]clientType.OutcomeOdds, error) {
	market, err := c.LoadMarket(marketAddr)
	if err != nil {
		return nil, err
	}
	info, err := c.GetMarketInfo(ctx, marketAddr)
	if err != nil {
		return nil, err
	}

	summaries := make([]*clientType.OutcomeBetSummary, len(info.OutcomeIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.readConcurrency)
	for i, outcomeID := range info.OutcomeIDs {
		i, outcomeID := i, outcomeID
		g.Go(func() error {
			summary, err := market.GetOutcomeBets(gctx, outcomeID)
			if err != nil {
				return errors.Wrapf(err, "reading pool for outcome %d", outcomeID)
			}
			summaries[i] = summary
			return nil
		})
	}
	waitErr := g.Wait()

	odds := make([]clientType.OutcomeOdds, 0, len(info.OutcomeIDs))
	for i, outcomeID := range info.OutcomeIDs {
		if summaries[i] == nil {
			continue
		}
		odds = append(odds, clientType.OutcomeOdds{
			OutcomeID:    outcomeID,
			PooledAmount: summaries[i].PooledAmount,
			Percentage:   pm_api.PercentageOf(summaries[i].PooledAmount, info.TotalPool),
			IsActive:     summaries[i].IsActive,
		})
	}
	return odds, waitErr
}

// PotentialPayout computes the payout the user would collect if outcomeID
// won, from the current pools. Zero if the user has no stake there.
func (c *Client) PotentialPayout(ctx context.Context, marketAddr clientType.ContractAddress, user clientType.AccountID, outcomeID uint64) (*uint256.Int, error) {
	market, err := c.LoadMarket(marketAddr)
	if err != nil {
		return nil, err
	}
	info, err := c.GetMarketInfo(ctx, marketAddr)
	if err != nil {
		return nil, err
	}
	summary, err := market.GetOutcomeBets(ctx, outcomeID)
	if err != nil {
		return nil, err
	}
	stake, err := market.GetUserBet(ctx, user, outcomeID)
	if err != nil {
		return nil, err
	}
	return pm_api.PotentialPayout(stake, summary.PooledAmount, info.TotalPool), nil
}

func (c *Client) ListMarkets(ctx context.Context, input clientType.ListMarketsInput) ([]clientType.ContractAddress, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return c.factory.ListMarkets(ctx, input.Offset, input.Limit)
}

func (c *Client) IsValidMarket(ctx context.Context, marketAddr clientType.ContractAddress) (bool, error) {
	return c.factory.IsValidMarket(ctx, marketAddr)
}

// MarketMetadata returns the off-chain record for a market, if a store is
// configured and holds one.
func (c *Client) MarketMetadata(ctx context.Context, marketAddr clientType.ContractAddress) (*metadata.MarketRecord, error) {
	if c.store == nil {
		return nil, errors.New("no metadata store configured")
	}
	return c.store.GetMarket(ctx, marketAddr)
}

func (c *Client) invalidateCached(ctx context.Context, marketAddr clientType.ContractAddress) {
	if c.marketCache == nil {
		return
	}
	if err := c.marketCache.Invalidate(ctx, marketAddr); err != nil {
		c.logger.Warn("market cache invalidation failed",
			zap.String("market", string(marketAddr)), zap.Error(err))
	}
}

package pmclient

import (
	"context"
	"crypto/ed25519"
	"sort"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pm_api "github.com/hackpredict/sdk-go/core/contractsapi"
	"github.com/hackpredict/sdk-go/core/ledger"
	"github.com/hackpredict/sdk-go/core/signer"
	"github.com/hackpredict/sdk-go/core/types"
)

const (
	testMarketAddr  = types.ContractAddress("CBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	testFactoryAddr = types.ContractAddress("CCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC")
	testAccount     = types.AccountID("GBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
)

func u256(v uint64) *uint256.Int { return uint256.NewInt(v) }

// mockTransport implements ledger.Transport for facade tests.
type mockTransport struct {
	simulateFunc func(ctx context.Context, envelopeB64 string) (*ledger.SimulateResponse, error)
	getTxFunc    func(ctx context.Context, hash string) (*ledger.GetTransactionResponse, error)

	simulateCalls int
	sendCalls     int
}

var _ ledger.Transport = (*mockTransport)(nil)

func (m *mockTransport) SimulateTransaction(ctx context.Context, envelopeB64 string) (*ledger.SimulateResponse, error) {
	m.simulateCalls++
	if m.simulateFunc != nil {
		return m.simulateFunc(ctx, envelopeB64)
	}
	return &ledger.SimulateResponse{}, nil
}

func (m *mockTransport) SendTransaction(ctx context.Context, envelopeB64 string) (*ledger.SendResponse, error) {
	m.sendCalls++
	return &ledger.SendResponse{Status: ledger.SendStatusPending, Hash: "hash"}, nil
}

func (m *mockTransport) GetTransaction(ctx context.Context, hash string) (*ledger.GetTransactionResponse, error) {
	if m.getTxFunc != nil {
		return m.getTxFunc(ctx, hash)
	}
	return &ledger.GetTransactionResponse{Status: ledger.TxStatusSuccess}, nil
}

func (m *mockTransport) GetAccount(ctx context.Context, accountID string) (*ledger.Account, error) {
	return &ledger.Account{ID: accountID, Sequence: 41}, nil
}

// countingSigner records how often it was asked to sign.
type countingSigner struct {
	inner     *signer.LocalSigner
	signCalls int
}

var _ signer.Signer = (*countingSigner)(nil)

func (s *countingSigner) GetAddress() (types.AccountID, error) { return s.inner.GetAddress() }

func (s *countingSigner) SignTransaction(envelopeXDR string, opts signer.SignOptions) (string, error) {
	s.signCalls++
	return s.inner.SignTransaction(envelopeXDR, opts)
}

func (s *countingSigner) Disconnect() error { return nil }

func newTestClient(t *testing.T, transport ledger.Transport) (*Client, *countingSigner) {
	t.Helper()
	inner, err := signer.NewLocalSigner(testAccount, ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize)))
	require.NoError(t, err)
	counting := &countingSigner{inner: inner}

	client, err := NewClient(context.Background(), types.NetworkTest,
		WithSigner(counting),
		WithTransport(transport),
		WithFactory(testFactoryAddr, [32]byte{1, 2, 3}),
		WithPollConfig(pm_api.PollConfig{Interval: time.Millisecond, MaxAttempts: 5}),
		WithLogger(zap.NewNop()),
	)
	require.NoError(t, err)
	return client, counting
}

func simulateReturning(t *testing.T, handler func(method string, args []ledger.Val) ledger.Val) func(context.Context, string) (*ledger.SimulateResponse, error) {
	t.Helper()
	return func(ctx context.Context, envelopeB64 string) (*ledger.SimulateResponse, error) {
		env, err := ledger.DecodeEnvelopeBase64(envelopeB64)
		require.NoError(t, err)
		encoded, err := ledger.EncodeValBase64(handler(env.Op.Method, env.Op.Args))
		require.NoError(t, err)
		return &ledger.SimulateResponse{Results: []ledger.SimulateResult{{ReturnXDR: encoded}}}, nil
	}
}

func TestNewClientRequiresSigner(t *testing.T) {
	_, err := NewClient(context.Background(), types.NetworkTest,
		WithTransport(&mockTransport{}),
		WithFactory(testFactoryAddr, [32]byte{}))
	require.Error(t, err)
}

func TestNewClientRequiresFactory(t *testing.T) {
	inner, err := signer.NewLocalSigner(testAccount, ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize)))
	require.NoError(t, err)

	_, err = NewClient(context.Background(), types.NetworkTest,
		WithSigner(inner),
		WithTransport(&mockTransport{}))
	require.Error(t, err)
}

func TestCreateMarketArityMismatchNeverLeavesTheProcess(t *testing.T) {
	transport := &mockTransport{}
	client, counting := newTestClient(t, transport)

	_, err := client.CreateMarket(context.Background(), types.CreateMarketInput{
		Question:      "Which stream wins?",
		OutcomeIDs:    []uint64{101, 102, 103},
		OutcomeTitles: []string{"a", "b"},
	})
	require.ErrorIs(t, err, types.ErrArityMismatch)
	assert.Equal(t, 0, transport.simulateCalls)
	assert.Equal(t, 0, transport.sendCalls)
	assert.Equal(t, 0, counting.signCalls)
}

func TestPlaceBetInvalidAmountFailsFast(t *testing.T) {
	transport := &mockTransport{}
	client, counting := newTestClient(t, transport)

	for _, amount := range []string{"", "ten", "-1", "0"} {
		_, err := client.PlaceBet(context.Background(), types.PlaceBetInput{
			Market:        testMarketAddr,
			OutcomeID:     101,
			DisplayAmount: amount,
		})
		require.ErrorIs(t, err, types.ErrInvalidAmount, "amount %q", amount)
	}
	assert.Equal(t, 0, transport.simulateCalls)
	assert.Equal(t, 0, counting.signCalls)
}

func TestOwnerRejectionStopsBeforeSigning(t *testing.T) {
	transport := &mockTransport{
		simulateFunc: func(ctx context.Context, envelopeB64 string) (*ledger.SimulateResponse, error) {
			return &ledger.SimulateResponse{Error: "HostError: caller is not owner"}, nil
		},
	}
	client, counting := newTestClient(t, transport)

	_, err := client.CloseMarket(context.Background(), testMarketAddr)
	require.Error(t, err)

	var simErr *types.SimulationError
	require.ErrorAs(t, err, &simErr)
	assert.Equal(t, types.FailureNotOwner, simErr.Failure)
	assert.Equal(t, 1, transport.simulateCalls, "definite failures are never retried")
	assert.Equal(t, 0, counting.signCalls, "nothing may be signed after a rejection")
	assert.Equal(t, 0, transport.sendCalls)
}

func TestGetUserBetsKeepsOnlyNonZeroStakes(t *testing.T) {
	transport := &mockTransport{}
	transport.simulateFunc = simulateReturning(t, func(method string, args []ledger.Val) ledger.Val {
		switch method {
		case "get_market_info":
			return ledger.VecVal(
				ledger.U64VecVal([]uint64{101, 102, 103}),
				ledger.StringVal("q"),
				ledger.U32Val(uint32(types.MarketOpen)),
				ledger.U64Val(0),
				ledger.I128Val(u256(400)),
				ledger.U64Val(3),
			)
		case "get_user_bet":
			if args[1].U64 == 102 {
				return ledger.I128Val(u256(250))
			}
			return ledger.I128Val(u256(0))
		default:
			t.Fatalf("unexpected method %s", method)
			return ledger.Val{}
		}
	})
	client, _ := newTestClient(t, transport)

	bets, err := client.GetUserBets(context.Background(), testMarketAddr, testAccount)
	require.NoError(t, err)
	require.Len(t, bets, 1)
	assert.Equal(t, uint64(102), bets[0].OutcomeID)
	assert.Equal(t, uint64(250), bets[0].Amount.Uint64())
}

func TestGetOddsDerivesPercentages(t *testing.T) {
	pools := map[uint64]uint64{101: 100, 102: 300}
	transport := &mockTransport{}
	transport.simulateFunc = simulateReturning(t, func(method string, args []ledger.Val) ledger.Val {
		switch method {
		case "get_market_info":
			return ledger.VecVal(
				ledger.U64VecVal([]uint64{101, 102}),
				ledger.StringVal("q"),
				ledger.U32Val(uint32(types.MarketOpen)),
				ledger.U64Val(0),
				ledger.I128Val(u256(400)),
				ledger.U64Val(2),
			)
		case "get_livestream_bets":
			return ledger.VecVal(
				ledger.I128Val(u256(pools[args[0].U64])),
				ledger.U64Val(0),
				ledger.BoolVal(true),
			)
		default:
			t.Fatalf("unexpected method %s", method)
			return ledger.Val{}
		}
	})
	client, _ := newTestClient(t, transport)

	odds, err := client.GetOdds(context.Background(), testMarketAddr)
	require.NoError(t, err)
	require.Len(t, odds, 2)
	sort.Slice(odds, func(i, j int) bool { return odds[i].OutcomeID < odds[j].OutcomeID })

	assert.InDelta(t, 25, odds[0].Percentage, 0.0001)
	assert.InDelta(t, 75, odds[1].Percentage, 0.0001)
}

func TestPotentialPayoutFromLivePools(t *testing.T) {
	transport := &mockTransport{}
	transport.simulateFunc = simulateReturning(t, func(method string, args []ledger.Val) ledger.Val {
		switch method {
		case "get_market_info":
			return ledger.VecVal(
				ledger.U64VecVal([]uint64{101, 102}),
				ledger.StringVal("q"),
				ledger.U32Val(uint32(types.MarketOpen)),
				ledger.U64Val(0),
				ledger.I128Val(u256(400)),
				ledger.U64Val(2),
			)
		case "get_livestream_bets":
			return ledger.VecVal(ledger.I128Val(u256(100)), ledger.U64Val(0), ledger.BoolVal(true))
		case "get_user_bet":
			return ledger.I128Val(u256(50))
		default:
			t.Fatalf("unexpected method %s", method)
			return ledger.Val{}
		}
	})
	client, _ := newTestClient(t, transport)

	payout, err := client.PotentialPayout(context.Background(), testMarketAddr, testAccount, 101)
	require.NoError(t, err)
	// floor(50 * 400 / 100)
	assert.Equal(t, uint64(200), payout.Uint64())
}

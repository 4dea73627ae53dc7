package contractsapi

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hackpredict/sdk-go/core/ledger"
	"github.com/hackpredict/sdk-go/core/logging"
	"github.com/hackpredict/sdk-go/core/signer"
	"github.com/hackpredict/sdk-go/core/types"
)

// SimulationAccount is the well-known zero account used as the source of
// read-only invocations. Simulations never touch sequence numbers, so every
// read can share it without an account lookup.
const SimulationAccount = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

const (
	defaultBaseFee         = uint64(100)
	defaultEnvelopeTimeout = 5 * time.Minute
)

// Pipeline drives contract invocations through the full ledger lifecycle:
// build, simulate, prepare, sign, submit, poll. Market and Factory are thin
// wrappers that feed it method names and arguments.
type Pipeline struct {
	transport ledger.Transport
	network   types.NetworkConfig
	signer    signer.Signer
	preparers []Preparer
	poll      PollConfig
	baseFee   uint64
	timeout   time.Duration
	logger    *zap.Logger
}

type PipelineOptions struct {
	Transport ledger.Transport
	Network   types.NetworkConfig
	// Signer may be nil for read-only pipelines; write operations will fail
	// with a descriptive error.
	Signer    signer.Signer
	Preparers []Preparer
	Poll      PollConfig
	BaseFee   uint64
	// EnvelopeTimeout bounds how long a submitted transaction stays valid.
	EnvelopeTimeout time.Duration
	Logger          *zap.Logger
}

func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	if opts.Transport == nil {
		return nil, errors.New("pipeline requires a transport")
	}
	p := &Pipeline{
		transport: opts.Transport,
		network:   opts.Network,
		signer:    opts.Signer,
		preparers: opts.Preparers,
		poll:      opts.Poll,
		baseFee:   opts.BaseFee,
		timeout:   opts.EnvelopeTimeout,
		logger:    opts.Logger,
	}
	if len(p.preparers) == 0 {
		p.preparers = []Preparer{NativePreparer{}, ManualPreparer{}}
	}
	if p.poll.Interval == 0 && p.poll.MaxAttempts == 0 {
		p.poll = DefaultPollConfig()
	}
	if err := p.poll.Validate(); err != nil {
		return nil, err
	}
	if p.baseFee == 0 {
		p.baseFee = defaultBaseFee
	}
	if p.timeout == 0 {
		p.timeout = defaultEnvelopeTimeout
	}
	if p.logger == nil {
		p.logger = logging.Logger
	}
	return p, nil
}

func (p *Pipeline) Network() types.NetworkConfig { return p.network }

// SignerAccount returns the account the pipeline signs with.
func (p *Pipeline) SignerAccount() (types.AccountID, error) {
	if p.signer == nil {
		return "", errors.New("pipeline has no signer")
	}
	return p.signer.GetAddress()
}

// Simulate runs the envelope against the ledger without submitting it. A
// host-side rejection is classified into a SimulationError and is never
// retried: the same invocation would fail the same way.
func (p *Pipeline) Simulate(ctx context.Context, env *ledger.Envelope) (*ledger.SimulateResponse, error) {
	encoded, err := env.MarshalBase64()
	if err != nil {
		return nil, err
	}
	resp, err := p.transport.SimulateTransaction(ctx, encoded)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		simErr := classifySimulationError(resp.Error)
		p.logger.Debug("simulation rejected",
			zap.String("method", env.Op.Method),
			zap.String("reason", resp.Error))
		return nil, simErr
	}
	return resp, nil
}

var simulationFailurePatterns = []struct {
	substr  string
	failure types.SimulationFailure
}{
	{"already initialized", types.FailureAlreadyInitialized},
	{"not owner", types.FailureNotOwner},
	{"not oracle", types.FailureNotOwner},
	{"duplicate market", types.FailureDuplicateMarket},
	{"market already exists", types.FailureDuplicateMarket},
	{"not initialized", types.FailureNotInitialized},
}

func classifySimulationError(msg string) *types.SimulationError {
	lower := strings.ToLower(msg)
	for _, pat := range simulationFailurePatterns {
		if strings.Contains(lower, pat.substr) {
			return &types.SimulationError{Failure: pat.failure, Message: msg}
		}
	}
	return &types.SimulationError{Failure: types.FailureOther, Message: msg}
}

// Prepare applies simulation results to the envelope, trying each preparer in
// order. A preparer signals it cannot handle the response shape with
// ledger.ErrAssembleUnsupported; any other error is terminal. Whatever path
// succeeds, the invocation payload must be byte-identical to the original.
func (p *Pipeline) Prepare(env *ledger.Envelope, sim *ledger.SimulateResponse) (*ledger.Envelope, error) {
	var lastErr error
	for _, prep := range p.preparers {
		prepared, err := prep.Prepare(env, sim)
		if err == nil {
			want, err := env.PayloadBytes()
			if err != nil {
				return nil, errors.Wrap(types.ErrPreparationFailed, err.Error())
			}
			got, err := prepared.PayloadBytes()
			if err != nil {
				return nil, errors.Wrap(types.ErrPreparationFailed, err.Error())
			}
			if !bytes.Equal(want, got) {
				return nil, errors.Wrapf(types.ErrPreparationFailed,
					"preparer %s altered the invocation payload", prep.Name())
			}
			p.logger.Debug("envelope prepared", zap.String("preparer", prep.Name()))
			return prepared, nil
		}
		if !errors.Is(err, ledger.ErrAssembleUnsupported) {
			return nil, errors.Wrapf(types.ErrPreparationFailed, "preparer %s: %v", prep.Name(), err)
		}
		p.logger.Debug("preparer fallback", zap.String("preparer", prep.Name()), zap.Error(err))
		lastErr = err
	}
	return nil, errors.Wrapf(types.ErrPreparationFailed, "no preparer accepted the simulation response: %v", lastErr)
}

func (p *Pipeline) sign(env *ledger.Envelope) (string, error) {
	if p.signer == nil {
		return "", errors.Wrap(types.ErrSigningRejected, "write operation attempted without a signer")
	}
	addr, err := p.signer.GetAddress()
	if err != nil {
		return "", err
	}
	encoded, err := env.MarshalBase64()
	if err != nil {
		return "", err
	}
	signed, err := p.signer.SignTransaction(encoded, signer.SignOptions{
		NetworkPassphrase: p.network.Passphrase,
		Address:           string(addr),
	})
	if err != nil {
		return "", errors.Wrap(types.ErrSigningRejected, err.Error())
	}
	return signed, nil
}

// Execute runs a fully built write envelope through simulate, prepare, sign,
// submit and poll. An envelope past its validity bound is rejected up front
// with ErrExpired; it must be rebuilt, never resent. The returned outcome is
// non-nil whenever a transaction reached the network, even if it later failed
// or timed out.
func (p *Pipeline) Execute(ctx context.Context, env *ledger.Envelope) (*types.TransactionOutcome, error) {
	if env.Expired(time.Now()) {
		return nil, errors.Wrapf(types.ErrExpired,
			"envelope for %s expired at %d before submission", env.Op.Method, env.ValidUntil)
	}
	sim, err := p.Simulate(ctx, env)
	if err != nil {
		return nil, err
	}
	prepared, err := p.Prepare(env, sim)
	if err != nil {
		return nil, err
	}
	signed, err := p.sign(prepared)
	if err != nil {
		return nil, err
	}
	hash, err := p.Submit(ctx, signed)
	if err != nil {
		return nil, err
	}
	p.logger.Info("transaction submitted",
		zap.String("method", env.Op.Method),
		zap.String("hash", hash))
	return p.PollUntilFinal(ctx, hash, prepared.ValidUntil)
}

// ReadCall simulates a read-only invocation and decodes its return value.
// Nothing is ever submitted.
func (p *Pipeline) ReadCall(ctx context.Context, contract types.ContractAddress, method string, args []ledger.Val) (ledger.Val, error) {
	env := p.buildRead(contract, method, args)
	sim, err := p.Simulate(ctx, env)
	if err != nil {
		return ledger.Val{}, err
	}
	if len(sim.Results) == 0 || sim.Results[0].ReturnXDR == "" {
		return ledger.Val{}, errors.Errorf("method %s returned no result", method)
	}
	return ledger.DecodeValBase64(sim.Results[0].ReturnXDR)
}

package contractsapi

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hackpredict/sdk-go/core/ledger"
	"github.com/hackpredict/sdk-go/core/types"
)

// BuildInput carries everything needed to assemble an unsigned invocation
// envelope. Sequence is the sequence number the transaction will consume,
// i.e. the account's current value plus one.
type BuildInput struct {
	Contract types.ContractAddress
	Method   string
	Args     []ledger.Val
	Source   types.AccountID
	Sequence int64
}

func (i *BuildInput) Validate() error {
	if i.Contract == "" {
		return errors.New("build input: contract address is required")
	}
	if i.Method == "" {
		return errors.New("build input: method is required")
	}
	if i.Source == "" {
		return errors.New("build input: source account is required")
	}
	return nil
}

// BuildInvocation assembles an unsigned envelope for a write operation. The
// validity bound is set from the pipeline's envelope timeout so a stuck
// transaction cannot be replayed after the caller has given up on it.
func (p *Pipeline) BuildInvocation(input BuildInput) (*ledger.Envelope, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return &ledger.Envelope{
		Source:     string(input.Source),
		Sequence:   input.Sequence,
		BaseFee:    p.baseFee,
		ValidUntil: time.Now().Add(p.timeout).Unix(),
		Op: ledger.Operation{
			Contract: string(input.Contract),
			Method:   input.Method,
			Args:     input.Args,
		},
	}, nil
}

// buildRead assembles an envelope for simulation only. It uses the shared
// simulation account and no validity bound, since it is never submitted.
func (p *Pipeline) buildRead(contract types.ContractAddress, method string, args []ledger.Val) *ledger.Envelope {
	return &ledger.Envelope{
		Source:  SimulationAccount,
		BaseFee: p.baseFee,
		Op: ledger.Operation{
			Contract: string(contract),
			Method:   method,
			Args:     args,
		},
	}
}

// BuildWrite resolves the signer's account and its next sequence number, then
// assembles the envelope. It is the common entry point for all write paths.
func (p *Pipeline) BuildWrite(ctx context.Context, contract types.ContractAddress, method string, args []ledger.Val) (*ledger.Envelope, error) {
	source, err := p.SignerAccount()
	if err != nil {
		return nil, err
	}
	account, err := p.transport.GetAccount(ctx, string(source))
	if err != nil {
		return nil, errors.Wrapf(err, "fetching account %s", source)
	}
	return p.BuildInvocation(BuildInput{
		Contract: contract,
		Method:   method,
		Args:     args,
		Source:   source,
		Sequence: account.Sequence + 1,
	})
}

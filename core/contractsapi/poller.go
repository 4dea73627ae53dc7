package contractsapi

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hackpredict/sdk-go/core/ledger"
	"github.com/hackpredict/sdk-go/core/types"
)

// expiryGrace pads the validity bound before a NOT_FOUND transaction is
// declared expired, covering clock skew between client and ledger closes.
const expiryGrace = 5 * time.Second

// PollConfig bounds the finality poll. MaxAttempts is mandatory: an
// unresponsive network must surface as StatusTimedOut, never as a hang.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

func DefaultPollConfig() PollConfig {
	return PollConfig{Interval: 2 * time.Second, MaxAttempts: 30}
}

func (c PollConfig) Validate() error {
	if c.Interval <= 0 {
		return errors.New("poll config: interval must be positive")
	}
	if c.MaxAttempts <= 0 {
		return errors.New("poll config: max attempts must be positive")
	}
	return nil
}

// Submit sends a signed envelope to the network. Any acknowledgement other
// than PENDING is surfaced immediately as a submission failure; polling would
// not help a transaction the network never accepted.
func (p *Pipeline) Submit(ctx context.Context, signedEnvelope string) (string, error) {
	resp, err := p.transport.SendTransaction(ctx, signedEnvelope)
	if err != nil {
		return "", err
	}
	if resp.Status != ledger.SendStatusPending {
		return "", errors.Wrapf(types.ErrSubmissionFailed,
			"send acknowledged with status %s: %s", resp.Status, resp.ErrorResultXDR)
	}
	return resp.Hash, nil
}

// PollUntilFinal looks the transaction up at fixed intervals until it reaches
// a terminal status or attempts run out. The first lookup happens one full
// interval after submission; the network cannot have finality any sooner.
//
// A NOT_FOUND answer past the envelope's validity bound means the network
// dropped the transaction: the outcome is StatusExpired and the caller may
// safely rebuild and resubmit. Exhausting attempts yields StatusTimedOut with
// no error, which is not a failure verdict: the transaction may still land.
func (p *Pipeline) PollUntilFinal(ctx context.Context, hash string, validUntil int64) (*types.TransactionOutcome, error) {
	outcome := &types.TransactionOutcome{Hash: hash, Status: types.StatusPending}
	for attempt := 1; attempt <= p.poll.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return outcome, ctx.Err()
		case <-time.After(p.poll.Interval):
		}

		resp, err := p.transport.GetTransaction(ctx, hash)
		if err != nil {
			if errors.Is(err, types.ErrNetworkUnavailable) {
				p.logger.Warn("transaction lookup failed, retrying",
					zap.String("hash", hash), zap.Int("attempt", attempt), zap.Error(err))
				continue
			}
			return outcome, err
		}

		switch resp.Status {
		case ledger.TxStatusSuccess:
			outcome.Status = types.StatusSuccess
			outcome.ReturnValueXDR = resp.ReturnValueXDR
			return outcome, nil
		case ledger.TxStatusFailed:
			outcome.Status = types.StatusFailed
			outcome.ReturnValueXDR = resp.ReturnValueXDR
			return outcome, nil
		case ledger.TxStatusNotFound:
			if validUntil > 0 && time.Now().After(time.Unix(validUntil, 0).Add(expiryGrace)) {
				outcome.Status = types.StatusExpired
				return outcome, nil
			}
		case ledger.TxStatusPending:
			// still in flight
		default:
			return outcome, errors.Errorf("unknown transaction status %q for %s", resp.Status, hash)
		}
	}
	p.logger.Warn("transaction did not finalize within poll budget",
		zap.String("hash", hash), zap.Int("attempts", p.poll.MaxAttempts))
	outcome.Status = types.StatusTimedOut
	return outcome, nil
}

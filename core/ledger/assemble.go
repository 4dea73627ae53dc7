package ledger

import (
	"encoding/base64"
	"strconv"

	"github.com/pkg/errors"
)

// ErrAssembleUnsupported signals that the simulation payload uses a wire
// layout this package cannot assemble, typically protocol-version skew
// between client and RPC node. Callers fall back to manual preparation.
var ErrAssembleUnsupported = errors.New("simulation payload not assemblable at this protocol version")

// AssembleTransaction is the canonical preparation routine: it merges the
// simulation's footprint, authorization entries, and computed resource fee
// into a clone of the built envelope. The contract-call payload is left
// byte-identical.
func AssembleTransaction(env *Envelope, sim *SimulateResponse) (*Envelope, error) {
	if sim == nil || sim.Error != "" {
		return nil, errors.New("cannot assemble from a failed simulation")
	}
	if sim.TransactionDataXDR == "" {
		return nil, errors.Wrap(ErrAssembleUnsupported, "simulation carries no transaction data")
	}

	txData, err := DecodeTransactionDataBase64(sim.TransactionDataXDR)
	if err != nil {
		// Undecodable transaction data means the node speaks a newer
		// layout than we do, not a bad transaction.
		return nil, errors.Wrapf(ErrAssembleUnsupported, "decoding transaction data: %v", err)
	}

	fee := txData.ResourceFee
	if sim.MinResourceFee != "" {
		parsed, err := strconv.ParseUint(sim.MinResourceFee, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrAssembleUnsupported, "parsing min resource fee %q: %v", sim.MinResourceFee, err)
		}
		if parsed > fee {
			fee = parsed
		}
	}

	auth, err := decodeAuthEntries(sim)
	if err != nil {
		return nil, errors.Wrapf(ErrAssembleUnsupported, "decoding auth entries: %v", err)
	}

	out := env.Clone()
	out.Footprint = txData.Footprint
	out.ResourceFee = fee
	out.Auth = auth
	return out, nil
}

func decodeAuthEntries(sim *SimulateResponse) ([][]byte, error) {
	if len(sim.Results) == 0 {
		return nil, nil
	}
	entries := make([][]byte, 0, len(sim.Results[0].Auth))
	for i, a := range sim.Results[0].Auth {
		raw, err := base64.StdEncoding.DecodeString(a)
		if err != nil {
			return nil, errors.Wrapf(err, "auth entry %d", i)
		}
		entries = append(entries, raw)
	}
	return entries, nil
}

package contractsapi

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"strconv"

	"github.com/pkg/errors"

	"github.com/hackpredict/sdk-go/core/ledger"
)

// Preparer merges simulation results (footprint, auth entries, resource fee)
// into a built envelope. Implementations must work on a clone and must not
// touch the contract-call payload; the pipeline verifies byte-equivalence
// after every preparation.
type Preparer interface {
	Name() string
	Prepare(env *ledger.Envelope, sim *ledger.SimulateResponse) (*ledger.Envelope, error)
}

// NativePreparer delegates to the ledger package's canonical assembly. It is
// strict about the transaction-data layout and reports
// ledger.ErrAssembleUnsupported on version skew so the pipeline can fall
// back.
type NativePreparer struct{}

func (NativePreparer) Name() string { return "native" }

func (NativePreparer) Prepare(env *ledger.Envelope, sim *ledger.SimulateResponse) (*ledger.Envelope, error) {
	return ledger.AssembleTransaction(env, sim)
}

// ManualPreparer reconstructs the resource declaration field by field instead
// of through the strict codec. It reads only the fields it needs, tolerates
// newer layout versions and trailing bytes, and falls back to the advertised
// minimum fee when the declaration is absent entirely. Slower and more
// permissive than native assembly; used when the node runs ahead of the
// client.
type ManualPreparer struct{}

func (ManualPreparer) Name() string { return "manual" }

func (ManualPreparer) Prepare(env *ledger.Envelope, sim *ledger.SimulateResponse) (*ledger.Envelope, error) {
	if sim == nil || sim.Error != "" {
		return nil, errors.New("cannot prepare from a failed simulation")
	}

	var footprint ledger.Footprint
	var declaredFee uint64
	if sim.TransactionDataXDR != "" {
		raw, err := base64.StdEncoding.DecodeString(sim.TransactionDataXDR)
		if err != nil {
			return nil, errors.Wrap(err, "base64 transaction data")
		}
		footprint, declaredFee, err = scanTransactionData(raw)
		if err != nil {
			return nil, errors.Wrap(err, "scanning transaction data")
		}
	}

	fee := declaredFee
	if sim.MinResourceFee != "" {
		parsed, err := strconv.ParseUint(sim.MinResourceFee, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing min resource fee %q", sim.MinResourceFee)
		}
		if parsed > fee {
			fee = parsed
		}
	}
	if fee == 0 {
		return nil, errors.New("simulation declared no resource fee")
	}

	auth, err := decodeAuthStrings(sim)
	if err != nil {
		return nil, err
	}

	out := env.Clone()
	out.Footprint = footprint
	out.ResourceFee = fee
	out.Auth = auth
	return out, nil
}

// scanTransactionData reads the known prefix of the resource declaration:
// version byte, two key lists, fee. Unknown trailing fields from newer
// versions are ignored.
func scanTransactionData(raw []byte) (ledger.Footprint, uint64, error) {
	r := bytes.NewReader(raw)
	var fp ledger.Footprint

	version, err := r.ReadByte()
	if err != nil {
		return fp, 0, errors.Wrap(err, "reading version")
	}
	if version == 0 {
		return fp, 0, errors.New("transaction data version 0")
	}

	if fp.ReadOnly, err = scanKeyList(r); err != nil {
		return fp, 0, errors.Wrap(err, "reading read-only keys")
	}
	if fp.ReadWrite, err = scanKeyList(r); err != nil {
		return fp, 0, errors.Wrap(err, "reading read-write keys")
	}

	var fee uint64
	if err := binary.Read(r, binary.LittleEndian, &fee); err != nil {
		return fp, 0, errors.Wrap(err, "reading resource fee")
	}
	return fp, fee, nil
}

func scanKeyList(r *bytes.Reader) ([]string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if int(n) > r.Len() {
		return nil, errors.Errorf("key list length %d exceeds remaining input", n)
	}
	if n == 0 {
		return nil, nil
	}
	keys := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, err
		}
		if int(size) > r.Len() {
			return nil, errors.Errorf("key %d length %d exceeds remaining input", i, size)
		}
		buf := make([]byte, size)
		if _, err := r.Read(buf); err != nil {
			return nil, err
		}
		keys = append(keys, string(buf))
	}
	return keys, nil
}

func decodeAuthStrings(sim *ledger.SimulateResponse) ([][]byte, error) {
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

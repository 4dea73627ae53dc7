package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Transaction status strings returned by the ledger RPC.
const (
	SendStatusPending = "PENDING"
	SendStatusError   = "ERROR"

	TxStatusSuccess  = "SUCCESS"
	TxStatusFailed   = "FAILED"
	TxStatusNotFound = "NOT_FOUND"
	TxStatusPending  = "PENDING"
)

// SimulateResult is one simulated host-function result: the base64-encoded
// return value plus the authorization entries the call requires.
type SimulateResult struct {
	ReturnXDR string   `json:"xdr"`
	Auth      []string `json:"auth,omitempty"`
}

// SimulateResponse is the ledger's dry-run result. A non-empty Error means
// the call cannot succeed against current ledger state.
type SimulateResponse struct {
	Error              string           `json:"error,omitempty"`
	Results            []SimulateResult `json:"results,omitempty"`
	TransactionDataXDR string           `json:"transactionData,omitempty"`
	MinResourceFee     string           `json:"minResourceFee,omitempty"`
	LatestLedger       uint64           `json:"latestLedger,omitempty"`
}

// SendResponse is the immediate result of submitting a signed envelope. Any
// status other than PENDING is terminal at submission time.
type SendResponse struct {
	Status         string `json:"status"`
	Hash           string `json:"hash"`
	ErrorResultXDR string `json:"errorResult,omitempty"`
}

// GetTransactionResponse is one poll of a submitted transaction.
type GetTransactionResponse struct {
	Status         string `json:"status"`
	ReturnValueXDR string `json:"returnValue,omitempty"`
	Ledger         uint64 `json:"ledger,omitempty"`
	CreatedAt      int64  `json:"createdAt,omitempty"`
}

// Account is the ledger's view of an account, as needed for sequence-number
// selection when building envelopes.
type Account struct {
	ID       string `json:"id"`
	Sequence int64  `json:"sequence,string"`
}

// Transport abstracts the ledger RPC. The default implementation speaks
// JSON-RPC 2.0 over HTTP; tests substitute an in-memory mock. All
// implementations must be safe for concurrent use.
type Transport interface {
	// SimulateTransaction dry-runs an envelope against current ledger
	// state, discovering resource costs and required authorizations.
	SimulateTransaction(ctx context.Context, envelopeB64 string) (*SimulateResponse, error)

	// SendTransaction submits a signed envelope.
	SendTransaction(ctx context.Context, envelopeB64 string) (*SendResponse, error)

	// GetTransaction looks up a submitted transaction by hash.
	GetTransaction(ctx context.Context, hash string) (*GetTransactionResponse, error)

	// GetAccount fetches an account's current sequence number.
	GetAccount(ctx context.Context, accountID string) (*Account, error)
}

// TransactionData is the simulation's resource declaration: the storage
// footprint plus the computed resource fee. Travels base64-encoded in
// SimulateResponse.TransactionDataXDR.
type TransactionData struct {
	Footprint   Footprint
	ResourceFee uint64
}

const transactionDataVersion = 1

// MarshalBase64 encodes the transaction data in its RPC wire form.
func (d *TransactionData) MarshalBase64() (string, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(transactionDataVersion)
	if err := writeStringList(buf, d.Footprint.ReadOnly); err != nil {
		return "", err
	}
	if err := writeStringList(buf, d.Footprint.ReadWrite); err != nil {
		return "", err
	}
	if err := binary.Write(buf, binary.LittleEndian, d.ResourceFee); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeTransactionDataBase64 decodes the simulation's resource declaration.
func DecodeTransactionDataBase64(s string) (*TransactionData, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("base64 transaction data: %w", err)
	}
	r := bytes.NewReader(raw)

	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading transaction data version: %w", err)
	}
	if version != transactionDataVersion {
		return nil, fmt.Errorf("unsupported transaction data version %d", version)
	}

	d := &TransactionData{}
	if d.Footprint.ReadOnly, err = readStringList(r); err != nil {
		return nil, fmt.Errorf("reading read-only footprint: %w", err)
	}
	if d.Footprint.ReadWrite, err = readStringList(r); err != nil {
		return nil, fmt.Errorf("reading read-write footprint: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &d.ResourceFee); err != nil {
		return nil, fmt.Errorf("reading resource fee: %w", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after transaction data", r.Len())
	}
	return d, nil
}

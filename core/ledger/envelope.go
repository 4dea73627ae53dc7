package ledger

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"
)

// envelopeVersion is bumped on any change to the wire layout.
const envelopeVersion = 1

// Operation is a single contract invocation: target contract, method name,
// and positional typed arguments.
type Operation struct {
	Contract string
	Method   string
	Args     []Val
}

// Footprint is the set of ledger storage keys the transaction declares it
// reads and writes. Discovered by simulation; required for fee computation
// and conflict detection.
type Footprint struct {
	ReadOnly  []string
	ReadWrite []string
}

// Envelope is a transaction envelope around one Operation. A prepared,
// signed envelope is single-use: sequence numbers and fees are consumed on
// submission, so it must never be resubmitted verbatim.
type Envelope struct {
	Source      string // account id paying the fee
	Sequence    int64
	BaseFee     uint64
	ResourceFee uint64 // set by preparation
	ValidUntil  int64  // unix seconds; 0 means no bound

	Op Operation

	Footprint  Footprint // set by preparation
	Auth       [][]byte  // opaque authorization entries from simulation
	Signatures [][]byte
}

// Expired reports whether the envelope's time bound has passed. Expired
// envelopes must be rebuilt from scratch, not resent.
func (e *Envelope) Expired(now time.Time) bool {
	return e.ValidUntil > 0 && now.Unix() > e.ValidUntil
}

// Clone returns a deep copy. Preparation strategies work on a clone so the
// originally built envelope stays untouched for equivalence checks.
func (e *Envelope) Clone() *Envelope {
	out := *e
	out.Op.Args = append([]Val(nil), e.Op.Args...)
	out.Footprint.ReadOnly = append([]string(nil), e.Footprint.ReadOnly...)
	out.Footprint.ReadWrite = append([]string(nil), e.Footprint.ReadWrite...)
	out.Auth = cloneBlobs(e.Auth)
	out.Signatures = cloneBlobs(e.Signatures)
	return &out
}

func cloneBlobs(in [][]byte) [][]byte {
	if in == nil {
		return nil
	}
	out := make([][]byte, len(in))
	for i, b := range in {
		out[i] = append([]byte(nil), b...)
	}
	return out
}

// PayloadBytes returns the canonical encoding of the contract-call payload
// alone: contract, method, and arguments. Preparation may change fees,
// footprint, and auth entries, but must leave these bytes identical to the
// originally built transaction's.
func (e *Envelope) PayloadBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeLengthPrefixed(buf, []byte(e.Op.Contract)); err != nil {
		return nil, err
	}
	if err := writeLengthPrefixed(buf, []byte(e.Op.Method)); err != nil {
		return nil, err
	}
	args, err := EncodeVals(e.Op.Args)
	if err != nil {
		return nil, fmt.Errorf("encoding operation args: %w", err)
	}
	if err := writeLengthPrefixed(buf, args); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalBinary encodes the full envelope.
func (e *Envelope) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(envelopeVersion)

	if err := writeLengthPrefixed(buf, []byte(e.Source)); err != nil {
		return nil, err
	}
	for _, v := range []any{e.Sequence, e.BaseFee, e.ResourceFee, e.ValidUntil} {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	payload, err := e.PayloadBytes()
	if err != nil {
		return nil, err
	}
	if err := writeLengthPrefixed(buf, payload); err != nil {
		return nil, err
	}

	if err := writeStringList(buf, e.Footprint.ReadOnly); err != nil {
		return nil, err
	}
	if err := writeStringList(buf, e.Footprint.ReadWrite); err != nil {
		return nil, err
	}
	if err := writeBlobList(buf, e.Auth); err != nil {
		return nil, err
	}
	if err := writeBlobList(buf, e.Signatures); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalBase64 encodes the envelope in its RPC transport form.
func (e *Envelope) MarshalBase64() (string, error) {
	raw, err := e.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// UnmarshalEnvelope decodes a binary envelope.
func UnmarshalEnvelope(data []byte) (*Envelope, error) {
	r := bytes.NewReader(data)

	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading envelope version: %w", err)
	}
	if version != envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d (want %d)", version, envelopeVersion)
	}

	e := &Envelope{}
	src, err := readLengthPrefixed(r)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	e.Source = string(src)

	for _, target := range []any{&e.Sequence, &e.BaseFee, &e.ResourceFee, &e.ValidUntil} {
		if err := binary.Read(r, binary.LittleEndian, target); err != nil {
			return nil, fmt.Errorf("reading envelope header: %w", err)
		}
	}

	payload, err := readLengthPrefixed(r)
	if err != nil {
		return nil, fmt.Errorf("reading operation payload: %w", err)
	}
	if err := e.decodePayload(payload); err != nil {
		return nil, err
	}

	if e.Footprint.ReadOnly, err = readStringList(r); err != nil {
		return nil, fmt.Errorf("reading read-only footprint: %w", err)
	}
	if e.Footprint.ReadWrite, err = readStringList(r); err != nil {
		return nil, fmt.Errorf("reading read-write footprint: %w", err)
	}
	if e.Auth, err = readBlobList(r); err != nil {
		return nil, fmt.Errorf("reading auth entries: %w", err)
	}
	if e.Signatures, err = readBlobList(r); err != nil {
		return nil, fmt.Errorf("reading signatures: %w", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after envelope", r.Len())
	}
	return e, nil
}

// DecodeEnvelopeBase64 decodes an envelope from its RPC transport form.
func DecodeEnvelopeBase64(s string) (*Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("base64 envelope: %w", err)
	}
	return UnmarshalEnvelope(raw)
}

func (e *Envelope) decodePayload(payload []byte) error {
	r := bytes.NewReader(payload)
	contract, err := readLengthPrefixed(r)
	if err != nil {
		return fmt.Errorf("reading contract: %w", err)
	}
	method, err := readLengthPrefixed(r)
	if err != nil {
		return fmt.Errorf("reading method: %w", err)
	}
	argBytes, err := readLengthPrefixed(r)
	if err != nil {
		return fmt.Errorf("reading args: %w", err)
	}
	args, err := DecodeVals(argBytes)
	if err != nil {
		return fmt.Errorf("decoding args: %w", err)
	}
	if r.Len() != 0 {
		return fmt.Errorf("%d trailing bytes after operation payload", r.Len())
	}
	e.Op = Operation{Contract: string(contract), Method: string(method), Args: args}
	return nil
}

func writeStringList(buf *bytes.Buffer, ss []string) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(ss))); err != nil {
		return err
	}
	for _, s := range ss {
		if err := writeLengthPrefixed(buf, []byte(s)); err != nil {
			return err
		}
	}
	return nil
}

func readStringList(r *bytes.Reader) ([]string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if int(n) > r.Len() {
		return nil, fmt.Errorf("list length %d exceeds remaining input", n)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		b, err := readLengthPrefixed(r)
		if err != nil {
			return nil, err
		}
		out = append(out, string(b))
	}
	return out, nil
}

func writeBlobList(buf *bytes.Buffer, blobs [][]byte) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(blobs))); err != nil {
		return err
	}
	for _, b := range blobs {
		if err := writeLengthPrefixed(buf, b); err != nil {
			return err
		}
	}
	return nil
}

func readBlobList(r *bytes.Reader) ([][]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if int(n) > r.Len() {
		return nil, fmt.Errorf("list length %d exceeds remaining input", n)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([][]byte, 0, n)
	for i := uint32(0); i < n; i++ {
		b, err := readLengthPrefixed(r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

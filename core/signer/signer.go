// Package signer defines the external signing capability the SDK depends
// on. The SDK never assumes a concrete wallet implementation; anything that
// can produce a signature over an envelope satisfies Signer.
package signer

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/pkg/errors"

	"github.com/hackpredict/sdk-go/core/ledger"
	"github.com/hackpredict/sdk-go/core/types"
)

// SignOptions carry the network binding for one signature request. The
// passphrase is mixed into the signed digest so signatures cannot be
// replayed across networks.
type SignOptions struct {
	NetworkPassphrase string
	Address           string
}

// Signer is the external signing capability. Implementations may prompt a
// user, talk to a hardware wallet, or hold a key in memory; a user declining
// must surface as types.ErrSigningRejected.
type Signer interface {
	// GetAddress returns the account the signer signs for.
	GetAddress() (types.AccountID, error)

	// SignTransaction signs a base64 envelope and returns the signed
	// envelope in the same encoding.
	SignTransaction(envelopeXDR string, opts SignOptions) (string, error)

	// Disconnect releases any held wallet session.
	Disconnect() error
}

// LocalSigner signs with an in-memory ed25519 key. Intended for tests,
// examples, and server-side oracle automation; interactive wallets live
// behind the same interface in the surrounding application.
type LocalSigner struct {
	address types.AccountID
	key     ed25519.PrivateKey
}

var _ Signer = (*LocalSigner)(nil)

// NewLocalSigner wraps an ed25519 private key signing for address.
func NewLocalSigner(address types.AccountID, key ed25519.PrivateKey) (*LocalSigner, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("ed25519 private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(key))
	}
	if address == "" {
		return nil, errors.New("signer address is required")
	}
	return &LocalSigner{address: address, key: key}, nil
}

func (s *LocalSigner) GetAddress() (types.AccountID, error) {
	return s.address, nil
}

// SignTransaction appends an ed25519 signature over the network-bound
// envelope digest and re-encodes the envelope.
func (s *LocalSigner) SignTransaction(envelopeXDR string, opts SignOptions) (string, error) {
	env, err := ledger.DecodeEnvelopeBase64(envelopeXDR)
	if err != nil {
		return "", errors.Wrap(err, "decoding envelope to sign")
	}

	digest, err := SigningDigest(env, opts.NetworkPassphrase)
	if err != nil {
		return "", errors.Wrap(err, "computing signing digest")
	}

	env.Signatures = append(env.Signatures, ed25519.Sign(s.key, digest))
	signed, err := env.MarshalBase64()
	if err != nil {
		return "", errors.Wrap(err, "encoding signed envelope")
	}
	return signed, nil
}

func (s *LocalSigner) Disconnect() error { return nil }

// SigningDigest is the canonical digest a signature covers: the network
// passphrase followed by the unsigned envelope bytes, hashed with SHA-256.
func SigningDigest(env *ledger.Envelope, passphrase string) ([]byte, error) {
	unsigned := env.Clone()
	unsigned.Signatures = nil
	raw, err := unsigned.MarshalBinary()
	if err != nil {
		return nil, err
	}

	h := sha256.New()
	h.Write([]byte(passphrase))
	h.Write(raw)
	return h.Sum(nil), nil
}

package signer

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpredict/sdk-go/core/ledger"
	"github.com/hackpredict/sdk-go/core/types"
)

const testAddress = types.AccountID("GBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")

func testEnvelope() *ledger.Envelope {
	return &ledger.Envelope{
		Source:   string(testAddress),
		Sequence: 7,
		BaseFee:  100,
		Op: ledger.Operation{
			Contract: "CBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
			Method:   "claim_payout",
			Args:     []ledger.Val{ledger.AddressVal(string(testAddress))},
		},
	}
}

func TestLocalSignerSignTransaction(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	s, err := NewLocalSigner(testAddress, priv)
	require.NoError(t, err)

	unsigned, err := testEnvelope().MarshalBase64()
	require.NoError(t, err)

	signed, err := s.SignTransaction(unsigned, SignOptions{
		NetworkPassphrase: types.TestPassphrase,
		Address:           string(testAddress),
	})
	require.NoError(t, err)

	env, err := ledger.DecodeEnvelopeBase64(signed)
	require.NoError(t, err)
	require.Len(t, env.Signatures, 1)

	digest, err := SigningDigest(env, types.TestPassphrase)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pub, digest, env.Signatures[0]))

	// the payload must be untouched by signing
	original, err := testEnvelope().PayloadBytes()
	require.NoError(t, err)
	after, err := env.PayloadBytes()
	require.NoError(t, err)
	assert.Equal(t, original, after)
}

func TestSigningDigestBindsNetwork(t *testing.T) {
	env := testEnvelope()

	testDigest, err := SigningDigest(env, types.TestPassphrase)
	require.NoError(t, err)
	publicDigest, err := SigningDigest(env, types.PublicPassphrase)
	require.NoError(t, err)

	assert.NotEqual(t, testDigest, publicDigest,
		"a signature for one network must not replay on another")
}

func TestSigningDigestIgnoresExistingSignatures(t *testing.T) {
	env := testEnvelope()
	before, err := SigningDigest(env, types.TestPassphrase)
	require.NoError(t, err)

	env.Signatures = [][]byte{{0x01, 0x02}}
	after, err := SigningDigest(env, types.TestPassphrase)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNewLocalSignerValidation(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	_, err = NewLocalSigner("", priv)
	require.Error(t, err)

	_, err = NewLocalSigner(testAddress, priv[:10])
	require.Error(t, err)
}

// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-keycore.
//
// go-keycore is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package keys_test

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/p256"
	"github.com/jeremyhahn/go-keycore/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

const (
	testSecretB64    = "jpsQnnGQmL-YBIffH1136cspYG6-0iY7X1fCE9-E9LI"
	testMessage      = "This is a dummy message for use with tests"
	testSignatureHex = "241f765f19d4e6148452f2249d2fa69882244a6ad6e70aadb8848a6409d20712" +
		"4e85faf9587100247de7bdace13a3073b47ec8a531ca91c1375b2b6134344413"
)

func testKey(t *testing.T) keys.Key {
	t.Helper()
	secret, err := base64.RawURLEncoding.DecodeString(testSecretB64)
	require.NoError(t, err)
	k, err := keys.FromSecretBytes(types.KeyAlgP256, secret)
	require.NoError(t, err)
	return k
}

// publicOnly implements Key and nothing else.
type publicOnly struct{}

func (publicOnly) Algorithm() types.KeyAlg { return types.KeyAlgX25519 }
func (publicOnly) Destroy()                {}

func TestRegistry(t *testing.T) {
	assert.Contains(t, keys.Algorithms(), types.KeyAlgP256)

	f, err := keys.Lookup(types.KeyAlgP256)
	require.NoError(t, err)
	assert.Equal(t, types.KeyAlgP256, f.Algorithm())

	_, err = keys.Lookup(types.KeyAlgBls12381G1)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		keys.Register(p256.Factory{})
	})
}

func TestGenerate(t *testing.T) {
	k, err := keys.Generate(types.KeyAlgP256)
	require.NoError(t, err)
	assert.Equal(t, types.KeyAlgP256, k.Algorithm())

	for _, c := range keys.AllCapabilities() {
		assert.True(t, keys.Supports(k, c), c.String())
	}

	_, err = keys.Generate(types.KeyAlgA128GCM)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)

	_, err = keys.GenerateWithRand(types.KeyAlgP256, nil)
	assert.ErrorIs(t, err, keyerr.ErrUsage)
}

func TestGenerateWithRand(t *testing.T) {
	secret, err := base64.RawURLEncoding.DecodeString(testSecretB64)
	require.NoError(t, err)

	k, err := keys.GenerateWithRand(types.KeyAlgP256, bytes.NewReader(secret))
	require.NoError(t, err)
	assert.True(t, keys.Equal(k, testKey(t)))
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 32; i++ {
		k, err := keys.Generate(types.KeyAlgP256)
		require.NoError(t, err)
		kp, err := keys.ToKeypairBytes(k)
		require.NoError(t, err)
		seen[hex.EncodeToString(kp.Bytes())] = struct{}{}
		kp.Zeroize()
	}
	assert.Len(t, seen, 32)
}

func TestSupportsMissingCapabilities(t *testing.T) {
	var k keys.Key = publicOnly{}
	assert.Empty(t, keys.Capabilities(k))
	assert.False(t, keys.Supports(nil, keys.CapSign))

	_, err := keys.ToSecretBytes(k)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
	_, err = keys.ToPublicBytes(k)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
	_, err = keys.ToKeypairBytes(k)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
	_, err = keys.Sign(k, nil, types.SigDefault)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
	_, err = keys.Verify(k, nil, nil, types.SigDefault)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
	_, err = keys.KeyExchangeBytes(k, k)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
	_, err = keys.ToJwkPublic(k)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
	_, err = keys.ToJwkSecret(k)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
	_, err = keys.JwkThumbprint(k)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "sign", keys.CapSign.String())
	assert.Equal(t, "key-exchange", keys.CapKeyExchange.String())
	assert.Equal(t, "unknown", keys.Capability(99).String())
}

func TestByteConversions(t *testing.T) {
	k := testKey(t)

	secret, err := keys.ToSecretBytes(k)
	require.NoError(t, err)
	assert.Equal(t, testSecretB64, base64.RawURLEncoding.EncodeToString(secret.Bytes()))

	public, err := keys.ToPublicBytes(k)
	require.NoError(t, err)
	assert.Len(t, public, p256.PublicKeyLength)

	kp, err := keys.ToKeypairBytes(k)
	require.NoError(t, err)
	require.Equal(t, p256.KeypairLength, kp.Len())
	assert.Equal(t, secret.Bytes(), kp.Bytes()[:32])
	assert.Equal(t, public, kp.Bytes()[32:])

	restored, err := keys.FromKeypairBytes(types.KeyAlgP256, kp.Bytes())
	require.NoError(t, err)
	assert.True(t, keys.Equal(k, restored))

	pub, err := keys.FromPublicBytes(types.KeyAlgP256, public)
	require.NoError(t, err)
	_, err = keys.ToSecretBytes(pub)
	assert.ErrorIs(t, err, keyerr.ErrMissingSecretKey)
	_, err = keys.ToKeypairBytes(pub)
	assert.ErrorIs(t, err, keyerr.ErrMissingSecretKey)

	_, err = keys.FromKeypairBytes(types.KeyAlgP256, kp.Bytes()[:64])
	assert.ErrorIs(t, err, keyerr.ErrInvalidKeyData)
}

func TestSignVerify(t *testing.T) {
	k := testKey(t)

	sig, err := keys.Sign(k, []byte(testMessage), types.SigES256)
	require.NoError(t, err)
	assert.Equal(t, testSignatureHex, hex.EncodeToString(sig))

	ok, err := keys.Verify(k, []byte(testMessage), sig, types.SigDefault)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = keys.Verify(k, []byte("Not the message"), sig, types.SigDefault)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = keys.Sign(k, []byte(testMessage), types.SigES256K)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
}

func TestKeyExchangeBytes(t *testing.T) {
	a, err := keys.Generate(types.KeyAlgP256)
	require.NoError(t, err)
	b, err := keys.Generate(types.KeyAlgP256)
	require.NoError(t, err)

	ab, err := keys.KeyExchangeBytes(a, b)
	require.NoError(t, err)
	ba, err := keys.KeyExchangeBytes(b, a)
	require.NoError(t, err)

	assert.Equal(t, 32, ab.Len())
	assert.True(t, ab.Equal(ba))

	_, err = keys.KeyExchangeBytes(a, publicOnly{})
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
	_, err = keys.KeyExchangeBytes(a, nil)
	assert.ErrorIs(t, err, keyerr.ErrUsage)
}

func TestJwk(t *testing.T) {
	k := testKey(t)

	public, err := keys.ToJwkPublic(k)
	require.NoError(t, err)
	assert.NotContains(t, public, `"d"`)

	restored, err := keys.FromJwk([]byte(public))
	require.NoError(t, err)
	assert.Equal(t, types.KeyAlgP256, restored.Algorithm())
	assert.False(t, keys.Equal(k, restored))

	a, err := keys.JwkThumbprint(k)
	require.NoError(t, err)
	b, err := keys.JwkThumbprint(restored)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	full, err := keys.ToJwkSecret(k)
	require.NoError(t, err)
	defer full.Zeroize()
	assert.Contains(t, string(full.Bytes()), `"d":"`+testSecretB64+`"`)

	same, err := keys.FromJwk(full.Bytes())
	require.NoError(t, err)
	assert.True(t, keys.Equal(k, same))
}

func TestFromJwkDispatch(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind error
	}{
		{"garbage", `not a jwk`, keyerr.ErrInvalidKeyData},
		{"unknown kty", `{"kty":"XYZ"}`, keyerr.ErrUnsupported},
		{"unregistered curve", `{"kty":"EC","crv":"P-384","x":"AA","y":"AA"}`, keyerr.ErrUnsupported},
		{"unknown curve", `{"kty":"EC","crv":"P-521"}`, keyerr.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := keys.FromJwk([]byte(tt.data))
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	_, err := keys.FromJwkParts(nil)
	assert.ErrorIs(t, err, keyerr.ErrUsage)

	parts := &jwk.JWK{Kty: "EC", Crv: "P-256"}
	_, err = keys.FromJwkParts(parts)
	assert.ErrorIs(t, err, keyerr.ErrInvalidKeyData)
}

func TestEqual(t *testing.T) {
	a := testKey(t)
	b := testKey(t)
	assert.True(t, keys.Equal(a, b))

	c, err := keys.Generate(types.KeyAlgP256)
	require.NoError(t, err)
	assert.False(t, keys.Equal(a, c))

	assert.False(t, keys.Equal(a, publicOnly{}))
	assert.False(t, keys.Equal(a, nil))
	assert.True(t, keys.Equal(nil, nil))

	b.Destroy()
	assert.False(t, keys.Equal(a, b))
}

func TestDestroyLeavesPublicKey(t *testing.T) {
	k := testKey(t)
	before, err := keys.ToPublicBytes(k)
	require.NoError(t, err)

	k.Destroy()

	_, err = keys.ToSecretBytes(k)
	assert.ErrorIs(t, err, keyerr.ErrMissingSecretKey)
	_, err = keys.Sign(k, []byte(testMessage), types.SigDefault)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)

	after, err := keys.ToPublicBytes(k)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSignWriterError(t *testing.T) {
	s, ok := testKey(t).(keys.Signer)
	require.True(t, ok)
	err := s.WriteSignature([]byte(testMessage), types.SigDefault, errWriter{})
	assert.ErrorIs(t, err, keyerr.ErrUnexpected)
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, io.ErrShortWrite }

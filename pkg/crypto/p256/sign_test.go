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

package p256

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

func TestSignKnownAnswer(t *testing.T) {
	k := testKey(t)

	var buf bytes.Buffer
	require.NoError(t, k.WriteSignature([]byte(testMessage), types.SigES256, &buf))
	assert.Equal(t, mustHex(t, testSignatureHex), buf.Bytes())

	// default signature type is ES256 and signing is deterministic
	sig, err := k.Sign([]byte(testMessage))
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), sig)

	buf.Reset()
	require.NoError(t, k.WriteSignature([]byte(testMessage), types.SigDefault, &buf))
	assert.Equal(t, sig, buf.Bytes())
}

func TestVerifyKnownAnswer(t *testing.T) {
	k := testKey(t)
	sig := mustHex(t, testSignatureHex)

	ok, err := k.VerifySignature([]byte(testMessage), sig, types.SigES256)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = k.VerifySignature([]byte("Not the message"), sig, types.SigES256)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = k.VerifySignature([]byte(testMessage), make([]byte, 64), types.SigES256)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyWithPublicOnlyKey(t *testing.T) {
	k, err := FromPublicBytes(mustHex(t, testPublicHex))
	require.NoError(t, err)

	ok, err := k.VerifySignature([]byte(testMessage), mustHex(t, testSignatureHex), types.SigDefault)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMalformedSignatures(t *testing.T) {
	k := testKey(t)
	sig := mustHex(t, testSignatureHex)

	order := mustHex(t, "ffffffff00000000ffffffffffffffffbce6faada7179e84f3b9cac2fc632551")
	rIsOrder := append(bytes.Clone(order), sig[32:]...)

	for name, s := range map[string][]byte{
		"empty":      nil,
		"short":      sig[:63],
		"long":       append(bytes.Clone(sig), 0),
		"r is order": rIsOrder,
		"all ones":   bytes.Repeat([]byte{0xff}, 64),
	} {
		t.Run(name, func(t *testing.T) {
			ok, err := k.VerifySignature([]byte(testMessage), s, types.SigES256)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSignatureTypes(t *testing.T) {
	k := testKey(t)
	for _, st := range []types.SignatureType{types.SigES256K, types.SigES384, types.SigEdDSA, "bogus"} {
		t.Run(string(st), func(t *testing.T) {
			var buf bytes.Buffer
			err := k.WriteSignature([]byte(testMessage), st, &buf)
			assert.ErrorIs(t, err, keyerr.ErrUnsupported)
			assert.Zero(t, buf.Len())

			_, err = k.VerifySignature([]byte(testMessage), mustHex(t, testSignatureHex), st)
			assert.ErrorIs(t, err, keyerr.ErrUnsupported)
		})
	}
}

func TestSignWithoutSecret(t *testing.T) {
	k, err := FromPublicBytes(mustHex(t, testPublicHex))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = k.WriteSignature([]byte(testMessage), types.SigES256, &buf)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
	assert.Contains(t, err.Error(), "undefined secret key")
}

func TestSignInteropWithECDSA(t *testing.T) {
	k, err := Generate(constReader(0x5a))
	require.NoError(t, err)

	msg := []byte("interop")
	sig, err := k.Sign(msg)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)

	digest := sha256.Sum256(msg)
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	assert.True(t, ecdsa.Verify(k.ECDSAPublicKey(), digest[:], r, s))
}

func TestKeyExchangeSymmetry(t *testing.T) {
	a := testKey(t)
	b, err := FromSecretBytes(bytes.Repeat([]byte{0x0f}, 32))
	require.NoError(t, err)

	var ab, ba bytes.Buffer
	require.NoError(t, a.KeyExchange(b, &ab))
	require.NoError(t, b.KeyExchange(a, &ba))

	assert.Len(t, ab.Bytes(), SharedSecretLength)
	assert.Equal(t, ab.Bytes(), ba.Bytes())
	assert.Equal(t, mustHex(t, "1af7c9f5f6c3be7c204dc1d34f1370e82bc05b2a13f486a95133ffc66fd62206"), ab.Bytes())
}

func TestKeyExchangeWithPublicPeer(t *testing.T) {
	a := testKey(t)
	b, err := Generate(constReader(0x21))
	require.NoError(t, err)

	var pub []byte
	b.WithPublicBytes(func(p []byte) { pub = bytes.Clone(p) })
	peer, err := FromPublicBytes(pub)
	require.NoError(t, err)

	var x, y bytes.Buffer
	require.NoError(t, a.KeyExchange(peer, &x))
	require.NoError(t, b.KeyExchange(a, &y))
	assert.Equal(t, x.Bytes(), y.Bytes())
}

type otherKey struct{}

func (otherKey) Algorithm() types.KeyAlg { return types.KeyAlgEd25519 }
func (otherKey) Destroy()                {}

func TestKeyExchangeErrors(t *testing.T) {
	a := testKey(t)
	public, err := FromPublicBytes(mustHex(t, testPublicHex))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = public.KeyExchange(a, &buf)
	assert.ErrorIs(t, err, keyerr.ErrMissingSecretKey)

	err = a.KeyExchange(otherKey{}, &buf)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)

	err = a.KeyExchange(nil, &buf)
	assert.ErrorIs(t, err, keyerr.ErrUsage)
	assert.Zero(t, buf.Len())
}

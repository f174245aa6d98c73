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

package jwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/p256"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

func generate(t *testing.T) keys.Key {
	t.Helper()
	k, err := keys.Generate(types.KeyAlgP256)
	require.NoError(t, err)
	return k
}

func publicOf(t *testing.T, k keys.Key) keys.Key {
	t.Helper()
	b, err := keys.ToPublicBytes(k)
	require.NoError(t, err)
	pub, err := keys.FromPublicBytes(k.Algorithm(), b)
	require.NoError(t, err)
	return pub
}

type ed25519Stub struct{}

func (ed25519Stub) Algorithm() types.KeyAlg { return types.KeyAlgEd25519 }
func (ed25519Stub) Destroy()                {}

func TestNewSigningMethod(t *testing.T) {
	m, err := NewSigningMethod(types.KeyAlgP256)
	require.NoError(t, err)
	assert.Equal(t, "ES256", m.Alg())
	assert.Equal(t, types.KeyAlgP256, m.KeyAlgorithm())

	_, err = NewSigningMethod(types.KeyAlgA256GCM)
	assert.ErrorIs(t, err, ErrInvalidSignatureAlgorithm)
}

func TestSigningMethodSignVerify(t *testing.T) {
	k := generate(t)
	m, err := NewSigningMethod(types.KeyAlgP256)
	require.NoError(t, err)

	sig, err := m.Sign("header.payload", k)
	require.NoError(t, err)
	assert.Len(t, sig, p256.SignatureLength)

	assert.NoError(t, m.Verify("header.payload", sig, publicOf(t, k)))
	assert.ErrorIs(t, m.Verify("header.other", sig, k), jwt.ErrSignatureInvalid)
	assert.ErrorIs(t, m.Verify("header.payload", sig[:10], k), jwt.ErrSignatureInvalid)
}

func TestSigningMethodInvalidKeys(t *testing.T) {
	m, err := NewSigningMethod(types.KeyAlgP256)
	require.NoError(t, err)

	_, err = m.Sign("x", "not a key")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = m.Sign("x", ed25519Stub{})
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)

	_, err = m.Sign("x", publicOf(t, generate(t)))
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)

	assert.ErrorIs(t, m.Verify("x", nil, []byte("key")), ErrInvalidKey)
}

func TestSignAndParse(t *testing.T) {
	k := generate(t)
	claims := jwt.MapClaims{
		"sub": "user123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	token, err := Sign(claims, k)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	parsed, err := Parse(token, publicOf(t, k))
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "ES256", parsed.Method.Alg())

	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "user123", sub)
}

func TestSignWithKID(t *testing.T) {
	k := generate(t)
	kid, err := keys.JwkThumbprint(k)
	require.NoError(t, err)

	token, err := SignWithKID(jwt.MapClaims{"sub": "a"}, k, kid)
	require.NoError(t, err)

	parsed, err := Parse(token, k)
	require.NoError(t, err)
	assert.Equal(t, kid, parsed.Header["kid"])
}

func TestParseRejects(t *testing.T) {
	k := generate(t)
	other := generate(t)

	token, err := Sign(jwt.MapClaims{"sub": "a"}, k)
	require.NoError(t, err)

	_, err = Parse(token, other)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	_, err = Parse(tampered, k)
	assert.Error(t, err)

	_, err = Parse("not-a-token", k)
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)

	_, err = Parse(token, nil)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	k := generate(t)
	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a"})
	token, err := hs.SignedString([]byte("shared"))
	require.NoError(t, err)

	_, err = Parse(token, k)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseExpired(t *testing.T) {
	k := generate(t)
	token, err := Sign(jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}, k)
	require.NoError(t, err)

	_, err = Parse(token, k)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidClaims)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = Parse(token, k, jwt.WithLeeway(2*time.Hour))
	assert.NoError(t, err)
}

func TestInteropVerifyWithECDSA(t *testing.T) {
	k := generate(t)
	token, err := Sign(jwt.MapClaims{"sub": "interop"}, k)
	require.NoError(t, err)

	pk, ok := k.(*p256.KeyPair)
	require.True(t, ok)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return pk.ECDSAPublicKey(), nil
	}, jwt.WithValidMethods([]string{"ES256"}))
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
}

func TestInteropParseECDSAToken(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{"sub": "std"}).SignedString(priv)
	require.NoError(t, err)

	k, err := keys.FromSecretBytes(types.KeyAlgP256, priv.D.FillBytes(make([]byte, 32)))
	require.NoError(t, err)

	parsed, err := Parse(token, publicOf(t, k))
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "std", sub)
}

func TestAlgorithmForKey(t *testing.T) {
	tests := []struct {
		alg     types.KeyAlg
		name    string
		sigType types.SignatureType
		wantErr bool
	}{
		{types.KeyAlgP256, ES256, types.SigES256, false},
		{types.KeyAlgK256, ES256K, types.SigES256K, false},
		{types.KeyAlgP384, ES384, types.SigES384, false},
		{types.KeyAlgEd25519, EdDSA, types.SigEdDSA, false},
		{types.KeyAlgX25519, "", "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			name, sigType, err := AlgorithmForKey(tt.alg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSignatureAlgorithm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.sigType, sigType)
		})
	}
}

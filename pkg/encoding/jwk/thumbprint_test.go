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

package jwk

import (
	"crypto"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
)

func TestEncoderPublic(t *testing.T) {
	enc := NewEncoder(ModePublic)
	assert.False(t, enc.IsSecret())
	assert.False(t, enc.IsThumbprint())
	assert.Equal(t, ModePublic, enc.Mode())

	require.NoError(t, enc.AddStr("crv", "P-256"))
	require.NoError(t, enc.AddStr("kty", "EC"))
	require.NoError(t, enc.AddAsBase64("x", []byte{1, 2, 3}))

	out := enc.Finish()
	assert.Equal(t, `{"crv":"P-256","kty":"EC","x":"AQID"}`, string(out.Bytes()))
}

func TestEncoderEmpty(t *testing.T) {
	out := NewEncoder(ModeSecret).Finish()
	assert.Equal(t, `{}`, string(out.Bytes()))
}

func TestEncoderEscapesStrings(t *testing.T) {
	enc := NewEncoder(ModePublic)
	require.NoError(t, enc.AddStr("kid", `a"b`))
	assert.Equal(t, `{"kid":"a\"b"}`, string(enc.Finish().Bytes()))
}

func TestEncoderGrowth(t *testing.T) {
	enc := NewEncoder(ModeSecret)
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, enc.AddAsBase64("d", data))
	require.NoError(t, enc.AddAsBase64("x", data))

	out := enc.Finish()
	expected := `{"d":"` + base64.RawURLEncoding.EncodeToString(data) +
		`","x":"` + base64.RawURLEncoding.EncodeToString(data) + `"}`
	assert.Equal(t, expected, string(out.Bytes()))
}

func TestEncoderThumbprintOrder(t *testing.T) {
	enc := NewEncoder(ModeThumbprint)
	assert.True(t, enc.IsThumbprint())
	require.NoError(t, enc.AddStr("kty", "EC"))

	err := enc.AddStr("crv", "P-256")
	assert.ErrorIs(t, err, keyerr.ErrUnexpected)

	err = enc.AddStr("kty", "EC")
	assert.ErrorIs(t, err, keyerr.ErrUnexpected)
	enc.Discard()
}

func TestEncoderSecretModeAllowsAnyOrder(t *testing.T) {
	enc := NewEncoder(ModeSecret)
	require.NoError(t, enc.AddStr("kty", "EC"))
	require.NoError(t, enc.AddStr("crv", "P-256"))
	assert.Equal(t, `{"kty":"EC","crv":"P-256"}`, string(enc.Finish().Bytes()))
}

func TestToJwkEncoderSecretWritesDLast(t *testing.T) {
	key := &JWK{Kty: "EC", Crv: "P-256", X: "AQID", Y: "BAUG", D: Field("BwgJ"), Kid: "k1"}

	enc := NewEncoder(ModeSecret)
	require.NoError(t, key.ToJwkEncoder(enc))
	assert.Equal(t, `{"crv":"P-256","kid":"k1","kty":"EC","x":"AQID","y":"BAUG","d":"BwgJ"}`,
		string(enc.Finish().Bytes()))

	pub := NewEncoder(ModePublic)
	require.NoError(t, key.ToJwkEncoder(pub))
	assert.Equal(t, `{"crv":"P-256","kid":"k1","kty":"EC","x":"AQID","y":"BAUG"}`,
		string(pub.Finish().Bytes()))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "public", ModePublic.String())
	assert.Equal(t, "secret", ModeSecret.String())
	assert.Equal(t, "thumbprint", ModeThumbprint.String())
	assert.Equal(t, "unknown", Mode(42).String())
}

// RFC 7638 Section 3.1
func TestThumbprintRFC7638RSA(t *testing.T) {
	key := &JWK{
		Kty: "RSA",
		N:   "0vx7agoebGcQSuuPiLJXZptN9nndrQmbXEps2aiAFbWhM78LhWx4cbbfAAtVT86zwu1RK7aPFFxuhDR1L6tSoc_BJECPebWKRXjBZCiFV4n3oknjhMstn64tZ_2W-5JsGY4Hc5n9yBXArwl93lqt7_RN5w6Cf0h4QyQ5v-65YGjQR0_FDW2QvzqY368QQMicAtaSqzs8KJZgnYb9c7d0zgdAZHzu6qMQvRL5hajrn1n91CbOpbISD08qNLyrdkt-bFTWhAI4vMQFh6WeZu0fM4lFd2NcRwr3XPksINHaQ-G_xBniIqbw0Ls1jF44-csFCur-kEgU8awapJzKnqDKgw",
		E:   "AQAB",
		Alg: "RS256",
		Kid: "2011-04-29",
	}

	thumbprint, err := key.ThumbprintSHA256()
	require.NoError(t, err)
	assert.Equal(t, "NzbLsXh8uDCcd-6MNwXF4W_7noWXFZAfHkxZsRGC9Xs", thumbprint)
}

func TestThumbprintEC(t *testing.T) {
	key := &JWK{Kty: "EC", Crv: "P-256", X: testX, Y: testY}

	thumbprint, err := key.ThumbprintSHA256()
	require.NoError(t, err)
	assert.Equal(t, "8fm8079s3nu4FLV_7dVJoJ69A8XCXn7Za2mtaWCnxR4", thumbprint)

	// private and optional members are not part of the input
	withExtras := &JWK{Kty: "EC", Crv: "P-256", X: testX, Y: testY, D: Field("AQID"), Kid: "k", Use: "sig"}
	other, err := withExtras.ThumbprintSHA256()
	require.NoError(t, err)
	assert.Equal(t, thumbprint, other)
}

func TestThumbprintMatchesJOSE(t *testing.T) {
	key := &JWK{Kty: "EC", Crv: "P-256", X: testX, Y: testY}
	joseKey, err := key.ToJOSE()
	require.NoError(t, err)

	for _, h := range []crypto.Hash{crypto.SHA1, crypto.SHA256, crypto.SHA384, crypto.SHA512} {
		ours, err := key.Thumbprint(h)
		require.NoError(t, err)
		theirs, err := joseKey.Thumbprint(h)
		require.NoError(t, err)
		assert.Equal(t, base64.RawURLEncoding.EncodeToString(theirs), ours, h.String())
	}
}

func TestThumbprintOKPAndOct(t *testing.T) {
	okp := &JWK{Kty: "OKP", Crv: "Ed25519", X: "11qYAYKxCrfVS_7TyWQHOg7hcvPapiMlrwIaaPcHURo"}
	thumbprint, err := okp.ThumbprintSHA256()
	require.NoError(t, err)
	// RFC 8037 Appendix A.3
	assert.Equal(t, "kPrK_qmxVWaYVA9wwBF6Iuo3vVzz7TxHCTwXBygrS4k", thumbprint)

	oct := &JWK{Kty: "oct", K: Field("AQIDBA")}
	thumbprint, err = oct.ThumbprintSHA256()
	require.NoError(t, err)
	assert.Len(t, thumbprint, 43)
}

func TestThumbprintErrors(t *testing.T) {
	tests := []struct {
		name string
		key  *JWK
		kind error
	}{
		{"rsa missing n", &JWK{Kty: "RSA", E: "AQAB"}, keyerr.ErrInvalidKeyData},
		{"ec missing y", &JWK{Kty: "EC", Crv: "P-256", X: testX}, keyerr.ErrInvalidKeyData},
		{"okp missing x", &JWK{Kty: "OKP", Crv: "Ed25519"}, keyerr.ErrInvalidKeyData},
		{"oct missing k", &JWK{Kty: "oct"}, keyerr.ErrInvalidKeyData},
		{"unknown kty", &JWK{Kty: "XYZ"}, keyerr.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.key.ThumbprintSHA256()
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	key := &JWK{Kty: "EC", Crv: "P-256", X: testX, Y: testY}
	_, err := key.Thumbprint(crypto.MD5)
	assert.ErrorIs(t, err, keyerr.ErrUnsupported)
}

func TestEncodeParsedJWK(t *testing.T) {
	key := &JWK{Kty: "EC", Crv: "P-256", X: testX, Y: testY, D: Field("AQID"), Kid: "k1"}

	public, err := EncodePublic(key)
	require.NoError(t, err)
	assert.Equal(t, `{"crv":"P-256","kid":"k1","kty":"EC","x":"`+testX+`","y":"`+testY+`"}`, public)

	secretJwk, err := EncodeSecret(key)
	require.NoError(t, err)
	defer secretJwk.Zeroize()
	assert.Equal(t, `{"crv":"P-256","d":"AQID","kid":"k1","kty":"EC","x":"`+testX+`","y":"`+testY+`"}`, string(secretJwk.Bytes()))
}

func TestKeyAuthorization(t *testing.T) {
	key := &JWK{Kty: "EC", Crv: "P-256", X: testX, Y: testY}

	auth, err := KeyAuthorization("token123", key)
	require.NoError(t, err)
	assert.Equal(t, "token123.8fm8079s3nu4FLV_7dVJoJ69A8XCXn7Za2mtaWCnxR4", auth)
	assert.True(t, strings.HasPrefix(auth, "token123."))

	_, err = KeyAuthorization("token", &JWK{Kty: "EC"})
	assert.Error(t, err)
}

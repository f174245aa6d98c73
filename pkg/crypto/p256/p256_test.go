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
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

const (
	testSecretB64     = "jpsQnnGQmL-YBIffH1136cspYG6-0iY7X1fCE9-E9LI"
	testPublicHex     = "037fcdce2770f6c45d4183cbee6fdb4b7b580733357be9ef13bacf6e3c7bd15445"
	testUncompressHex = "047fcdce2770f6c45d4183cbee6fdb4b7b580733357be9ef13bacf6e3c7bd15445" +
		"c7f144cd1bbd9b7e872cdfedb9eeb9f4b3695d6ea90b24ad8a4623288588e5ad"
	testMessage      = "This is a dummy message for use with tests"
	testSignatureHex = "241f765f19d4e6148452f2249d2fa69882244a6ad6e70aadb8848a6409d20712" +
		"4e85faf9587100247de7bdace13a3073b47ec8a531ca91c1375b2b6134344413"
)

func testSecret(t *testing.T) []byte {
	t.Helper()
	b, err := base64.RawURLEncoding.DecodeString(testSecretB64)
	require.NoError(t, err)
	return b
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func testKey(t *testing.T) *KeyPair {
	t.Helper()
	k, err := FromSecretBytes(testSecret(t))
	require.NoError(t, err)
	return k
}

type constReader byte

func (c constReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(c)
	}
	return len(p), nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestConstants(t *testing.T) {
	assert.Equal(t, 33, PublicKeyLength)
	assert.Equal(t, 32, SecretKeyLength)
	assert.Equal(t, 65, KeypairLength)
	assert.Equal(t, 64, SignatureLength)
	assert.Equal(t, "EC", JwkKeyType)
	assert.Equal(t, "P-256", JwkCurve)
}

func TestFromSecretBytes(t *testing.T) {
	k := testKey(t)
	assert.Equal(t, types.KeyAlgP256, k.Algorithm())
	assert.True(t, k.HasSecret())

	k.WithPublicBytes(func(public []byte) {
		assert.Equal(t, mustHex(t, testPublicHex), public)
	})
	k.WithSecretBytes(func(s []byte) {
		assert.Equal(t, testSecret(t), s)
	})
}

func TestFromSecretBytesCopiesInput(t *testing.T) {
	in := testSecret(t)
	k, err := FromSecretBytes(in)
	require.NoError(t, err)
	clear(in)

	k.WithSecretBytes(func(s []byte) {
		assert.Equal(t, testSecret(t), s)
	})
}

func TestFromSecretBytesInvalid(t *testing.T) {
	order := mustHex(t, "ffffffff00000000ffffffffffffffffbce6faada7179e84f3b9cac2fc632551")
	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"short", make([]byte, 31)},
		{"long", make([]byte, 33)},
		{"zero", make([]byte, 32)},
		{"order", order},
		{"all ones", bytes.Repeat([]byte{0xff}, 32)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := FromSecretBytes(tt.in)
			assert.Nil(t, k)
			assert.ErrorIs(t, err, keyerr.ErrInvalidKeyData)
		})
	}
}

func TestFromPublicBytes(t *testing.T) {
	compressed, err := FromPublicBytes(mustHex(t, testPublicHex))
	require.NoError(t, err)
	assert.False(t, compressed.HasSecret())

	uncompressed, err := FromPublicBytes(mustHex(t, testUncompressHex))
	require.NoError(t, err)

	assert.True(t, compressed.ECDHPublicKey().Equal(uncompressed.ECDHPublicKey()))
	uncompressed.WithPublicBytes(func(public []byte) {
		assert.Equal(t, mustHex(t, testPublicHex), public)
	})

	compressed.WithSecretBytes(func(s []byte) {
		assert.Nil(t, s)
	})
	compressed.WithKeypairBytes(func(kp []byte) {
		assert.Nil(t, kp)
	})
}

func TestFromPublicBytesInvalid(t *testing.T) {
	notOnCurve := make([]byte, 33)
	notOnCurve[0] = 0x02
	notOnCurve[32] = 0x01

	badPrefix := mustHex(t, testPublicHex)
	badPrefix[0] = 0x05

	offCurve := mustHex(t, testUncompressHex)
	offCurve[64] ^= 0x01

	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"identity", []byte{0x00}},
		{"x not on curve", notOnCurve},
		{"bad prefix", badPrefix},
		{"uncompressed off curve", offCurve},
		{"truncated", mustHex(t, testPublicHex)[:32]},
		{"x equals p", append([]byte{0x02}, mustHex(t, "ffffffff00000001000000000000000000000000ffffffffffffffffffffffff")...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromPublicBytes(tt.in)
			assert.ErrorIs(t, err, keyerr.ErrInvalidKeyData)
		})
	}
}

func TestKeypairBytesRoundTrip(t *testing.T) {
	k, err := Generate(constReader(0x42))
	require.NoError(t, err)

	var kp []byte
	k.WithKeypairBytes(func(b []byte) {
		kp = bytes.Clone(b)
	})
	require.Len(t, kp, KeypairLength)

	k2, err := FromKeypairBytes(kp)
	require.NoError(t, err)

	k.WithSecretBytes(func(a []byte) {
		k2.WithSecretBytes(func(b []byte) {
			assert.Equal(t, a, b)
		})
	})
	k.WithPublicBytes(func(a []byte) {
		k2.WithPublicBytes(func(b []byte) {
			assert.Equal(t, a, b)
		})
	})
}

func TestKeypairBytesLayout(t *testing.T) {
	k := testKey(t)
	k.WithKeypairBytes(func(kp []byte) {
		assert.Equal(t, testSecret(t), kp[:SecretKeyLength])
		assert.Equal(t, mustHex(t, testPublicHex), kp[SecretKeyLength:])
	})
}

func TestFromKeypairBytesInvalid(t *testing.T) {
	good := append(testSecret(t), mustHex(t, testPublicHex)...)

	mismatched := bytes.Clone(good)
	mismatched[SecretKeyLength] ^= 0x01

	other, err := Generate(constReader(0x11))
	require.NoError(t, err)
	foreign := bytes.Clone(good)
	other.WithPublicBytes(func(public []byte) {
		copy(foreign[SecretKeyLength:], public)
	})

	tests := []struct {
		name string
		in   []byte
	}{
		{"64 bytes", good[:64]},
		{"66 bytes", append(bytes.Clone(good), 0)},
		{"zero secret", append(make([]byte, 32), good[32:]...)},
		{"flipped prefix", mismatched},
		{"foreign public", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromKeypairBytes(tt.in)
			assert.ErrorIs(t, err, keyerr.ErrInvalidKeyData)
		})
	}
}

func TestGenerateDeterministicReader(t *testing.T) {
	// An all-zero scalar is rejected and redrawn.
	rng := io.MultiReader(bytes.NewReader(make([]byte, 32)), bytes.NewReader(testSecret(t)))
	k, err := Generate(rng)
	require.NoError(t, err)
	k.WithPublicBytes(func(public []byte) {
		assert.Equal(t, mustHex(t, testPublicHex), public)
	})
}

func TestGenerateErrors(t *testing.T) {
	_, err := Generate(failingReader{})
	assert.ErrorIs(t, err, keyerr.ErrUnexpected)

	_, err = Generate(constReader(0xff))
	assert.ErrorIs(t, err, keyerr.ErrUnexpected)

	_, err = Generate(nil)
	assert.ErrorIs(t, err, keyerr.ErrUsage)
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		g, err := Generate(rand.Reader)
		require.NoError(t, err)
		g.WithKeypairBytes(func(kp []byte) {
			key := hex.EncodeToString(kp)
			assert.False(t, seen[key], "duplicate keypair generated")
			seen[key] = true
		})
	}
	assert.Len(t, seen, 64)
}

func TestDestroy(t *testing.T) {
	k := testKey(t)
	var held []byte
	k.WithSecretBytes(func(s []byte) { held = s })

	k.Destroy()
	assert.False(t, k.HasSecret())
	assert.Equal(t, make([]byte, SecretKeyLength), held)

	k.WithSecretBytes(func(s []byte) { assert.Nil(t, s) })
	k.WithPublicBytes(func(public []byte) {
		assert.Equal(t, mustHex(t, testPublicHex), public)
	})

	// idempotent
	k.Destroy()
}

func TestRedaction(t *testing.T) {
	k := testKey(t)
	secretHex := hex.EncodeToString(testSecret(t))

	for _, s := range []string{
		k.String(),
		k.GoString(),
		fmt.Sprintf("%v", k),
		fmt.Sprintf("%+v", k),
		fmt.Sprintf("%#v", k),
		fmt.Sprintf("%x", k),
		fmt.Sprintf("%s", k),
	} {
		assert.NotContains(t, s, secretHex)
		assert.NotContains(t, s, testSecretB64)
		assert.Contains(t, s, "REDACTED")
	}

	public, err := FromPublicBytes(mustHex(t, testPublicHex))
	require.NoError(t, err)
	assert.Contains(t, public.String(), "secret: none")
}

func TestECDSAPublicKey(t *testing.T) {
	k := testKey(t)
	pub := k.ECDSAPublicKey()
	assert.Equal(t, "P-256", pub.Curve.Params().Name)

	x := pub.X.FillBytes(make([]byte, 32))
	assert.Equal(t, mustHex(t, testUncompressHex)[1:33], x)
}

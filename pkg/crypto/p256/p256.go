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

// Package p256 implements the NIST P-256 (secp256r1) key pair: generation,
// SEC1 byte encodings, deterministic ES256 signatures, ECDH and JWK export.
//
// Importing the package registers it with the keys registry under
// types.KeyAlgP256.
package p256

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"fmt"
	"io"
	"math/big"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

const (
	// PublicKeyLength is the size of a SEC1 compressed public key.
	PublicKeyLength = 33

	// SecretKeyLength is the size of a big-endian secret scalar.
	SecretKeyLength = 32

	// KeypairLength is the size of secret || compressed public.
	KeypairLength = SecretKeyLength + PublicKeyLength

	// SignatureLength is the size of a fixed-width r || s signature.
	SignatureLength = 64

	// SharedSecretLength is the size of an ECDH shared secret.
	SharedSecretLength = 32

	JwkKeyType = "EC"
	JwkCurve   = "P-256"

	coordinateLength    = 32
	uncompressedLength  = 1 + 2*coordinateLength
	maxGenerateAttempts = 64
)

// KeyPair is a P-256 public key with an optional secret scalar.
//
// The secret is held in a secret.Bytes that is wiped by Destroy. Operations
// that need the scalar construct short-lived standard library key objects;
// those hold internal copies that are not under this package's control.
type KeyPair struct {
	secret *secret.Bytes
	public *ecdh.PublicKey
}

func curve() ecdh.Curve {
	return ecdh.P256()
}

// Generate creates a new key pair. Random scalars outside [1, n-1] are
// rejected and redrawn.
func Generate(rng io.Reader) (*KeyPair, error) {
	if rng == nil {
		return nil, keyerr.Usage("random source is required")
	}
	buf := secret.New(SecretKeyLength)
	for range maxGenerateAttempts {
		if _, err := io.ReadFull(rng, buf.Bytes()); err != nil {
			buf.Zeroize()
			return nil, keyerr.Unexpected("failed to read random bytes: %v", err)
		}
		priv, err := curve().NewPrivateKey(buf.Bytes())
		if err != nil {
			continue
		}
		return &KeyPair{secret: buf, public: priv.PublicKey()}, nil
	}
	buf.Zeroize()
	return nil, keyerr.Unexpected("random source did not produce a valid scalar")
}

// FromSecretBytes imports a 32-byte big-endian secret scalar and derives
// the public key from it.
func FromSecretBytes(b []byte) (*KeyPair, error) {
	priv, err := parseSecret(b)
	if err != nil {
		return nil, err
	}
	return &KeyPair{secret: secret.FromSlice(b), public: priv.PublicKey()}, nil
}

// FromPublicBytes imports a public-only key from its SEC1 compressed or
// uncompressed encoding.
func FromPublicBytes(b []byte) (*KeyPair, error) {
	pub, err := parsePublic(b)
	if err != nil {
		return nil, err
	}
	return &KeyPair{public: pub}, nil
}

// FromKeypairBytes imports secret(32) || compressed public(33). The public
// part must match the point derived from the secret.
func FromKeypairBytes(b []byte) (*KeyPair, error) {
	if len(b) != KeypairLength {
		return nil, keyerr.InvalidKeyData("keypair must be %d bytes, got %d", KeypairLength, len(b))
	}
	return fromParts(b[:SecretKeyLength], b[SecretKeyLength:])
}

func fromParts(secretPart, publicPart []byte) (*KeyPair, error) {
	priv, err := parseSecret(secretPart)
	if err != nil {
		return nil, err
	}
	pub, err := parsePublic(publicPart)
	if err != nil {
		return nil, err
	}
	if !priv.PublicKey().Equal(pub) {
		return nil, keyerr.InvalidKeyData("public key does not match secret key")
	}
	return &KeyPair{secret: secret.FromSlice(secretPart), public: pub}, nil
}

func parseSecret(b []byte) (*ecdh.PrivateKey, error) {
	if len(b) != SecretKeyLength {
		return nil, keyerr.InvalidKeyData("secret key must be %d bytes, got %d", SecretKeyLength, len(b))
	}
	priv, err := curve().NewPrivateKey(b)
	if err != nil {
		return nil, keyerr.InvalidKeyData("invalid secret scalar")
	}
	return priv, nil
}

func parsePublic(b []byte) (*ecdh.PublicKey, error) {
	switch {
	case len(b) == PublicKeyLength && (b[0] == 0x02 || b[0] == 0x03):
		x, y := elliptic.UnmarshalCompressed(elliptic.P256(), b)
		if x == nil {
			return nil, keyerr.InvalidKeyData("invalid compressed point")
		}
		return publicFromCoordinates(x, y)
	case len(b) == uncompressedLength && b[0] == 0x04:
		pub, err := curve().NewPublicKey(b)
		if err != nil {
			return nil, keyerr.InvalidKeyData("invalid uncompressed point")
		}
		return pub, nil
	default:
		return nil, keyerr.InvalidKeyData("invalid public key encoding of %d bytes", len(b))
	}
}

func publicFromCoordinates(x, y *big.Int) (*ecdh.PublicKey, error) {
	var u [uncompressedLength]byte
	u[0] = 0x04
	x.FillBytes(u[1 : 1+coordinateLength])
	y.FillBytes(u[1+coordinateLength:])
	pub, err := curve().NewPublicKey(u[:])
	if err != nil {
		return nil, keyerr.InvalidKeyData("point is not on the curve")
	}
	return pub, nil
}

// Algorithm returns types.KeyAlgP256.
func (k *KeyPair) Algorithm() types.KeyAlg {
	return types.KeyAlgP256
}

// Destroy wipes the secret scalar. The key remains usable as a public key.
func (k *KeyPair) Destroy() {
	if k.secret != nil {
		k.secret.Zeroize()
		k.secret = nil
	}
}

// HasSecret returns true if the key holds a secret scalar.
func (k *KeyPair) HasSecret() bool {
	return k.secret != nil
}

// WithSecretBytes calls fn with the secret scalar, or nil for a public key.
func (k *KeyPair) WithSecretBytes(fn func(secret []byte)) {
	if k.secret == nil {
		fn(nil)
		return
	}
	fn(k.secret.Bytes())
}

// WithPublicBytes calls fn with the compressed public key.
func (k *KeyPair) WithPublicBytes(fn func(public []byte)) {
	c := k.compressed()
	fn(c[:])
}

// WithKeypairBytes calls fn with secret || compressed public, or nil for a
// public key. The buffer is wiped afterwards.
func (k *KeyPair) WithKeypairBytes(fn func(keypair []byte)) {
	if k.secret == nil {
		fn(nil)
		return
	}
	_ = secret.Use(KeypairLength, func(buf []byte) error {
		copy(buf, k.secret.Bytes())
		c := k.compressed()
		copy(buf[SecretKeyLength:], c[:])
		fn(buf)
		return nil
	})
}

func (k *KeyPair) compressed() [PublicKeyLength]byte {
	var c [PublicKeyLength]byte
	u := k.public.Bytes()
	c[0] = 0x02 | (u[uncompressedLength-1] & 1)
	copy(c[1:], u[1:1+coordinateLength])
	return c
}

// ECDHPublicKey returns the public key as a crypto/ecdh key.
func (k *KeyPair) ECDHPublicKey() *ecdh.PublicKey {
	return k.public
}

// ECDSAPublicKey returns the public key as a crypto/ecdsa key.
func (k *KeyPair) ECDSAPublicKey() *ecdsa.PublicKey {
	u := k.public.Bytes()
	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(u[1 : 1+coordinateLength]),
		Y:     new(big.Int).SetBytes(u[1+coordinateLength:]),
	}
}

// String returns a description of the key that never includes the secret.
func (k *KeyPair) String() string {
	c := k.compressed()
	return fmt.Sprintf("p256.KeyPair{public: %s, secret: %s}",
		base64.RawURLEncoding.EncodeToString(c[:]), k.secretLabel())
}

// GoString implements fmt.GoStringer with the same redaction as String.
func (k *KeyPair) GoString() string {
	return k.String()
}

// Format implements fmt.Formatter so that every verb is redacted.
func (k *KeyPair) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, k.String())
}

func (k *KeyPair) secretLabel() string {
	if k.secret == nil {
		return "none"
	}
	return "REDACTED"
}

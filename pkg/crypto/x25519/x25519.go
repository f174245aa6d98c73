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

// Package x25519 implements the X25519 key agreement key pair.
//
// Importing the package registers it with the keys registry under
// types.KeyAlgX25519.
package x25519

import (
	"crypto/ecdh"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

const (
	// PublicKeyLength is the size of a Montgomery u-coordinate.
	PublicKeyLength = 32

	// SecretKeyLength is the size of an X25519 scalar.
	SecretKeyLength = 32

	// KeypairLength is the size of secret || public.
	KeypairLength = SecretKeyLength + PublicKeyLength

	// SharedSecretLength is the size of an X25519 shared secret.
	SharedSecretLength = 32

	JwkKeyType = "OKP"
	JwkCurve   = "X25519"
)

// KeyPair is an X25519 public key with an optional secret scalar.
type KeyPair struct {
	secret *secret.Bytes
	public *ecdh.PublicKey
}

func curve() ecdh.Curve {
	return ecdh.X25519()
}

// Generate creates a new key pair from 32 bytes of rng output.
func Generate(rng io.Reader) (*KeyPair, error) {
	if rng == nil {
		return nil, keyerr.Usage("random source is required")
	}
	buf := secret.New(SecretKeyLength)
	if _, err := io.ReadFull(rng, buf.Bytes()); err != nil {
		buf.Zeroize()
		return nil, keyerr.Unexpected("failed to read random bytes: %v", err)
	}
	priv, err := curve().NewPrivateKey(buf.Bytes())
	if err != nil {
		buf.Zeroize()
		return nil, keyerr.Unexpected("failed to generate X25519 key: %v", err)
	}
	return &KeyPair{secret: buf, public: priv.PublicKey()}, nil
}

// FromSecretBytes imports a 32-byte scalar and derives the public key.
func FromSecretBytes(b []byte) (*KeyPair, error) {
	priv, err := parseSecret(b)
	if err != nil {
		return nil, err
	}
	return &KeyPair{secret: secret.FromSlice(b), public: priv.PublicKey()}, nil
}

// FromPublicBytes imports a public-only key.
func FromPublicBytes(b []byte) (*KeyPair, error) {
	pub, err := parsePublic(b)
	if err != nil {
		return nil, err
	}
	return &KeyPair{public: pub}, nil
}

// FromKeypairBytes imports secret(32) || public(32). The public part must
// match the secret.
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
		return nil, keyerr.InvalidKeyData("invalid secret key: %v", err)
	}
	return priv, nil
}

func parsePublic(b []byte) (*ecdh.PublicKey, error) {
	if len(b) != PublicKeyLength {
		return nil, keyerr.InvalidKeyData("public key must be %d bytes, got %d", PublicKeyLength, len(b))
	}
	pub, err := curve().NewPublicKey(b)
	if err != nil {
		return nil, keyerr.InvalidKeyData("invalid public key: %v", err)
	}
	return pub, nil
}

// Algorithm returns types.KeyAlgX25519.
func (k *KeyPair) Algorithm() types.KeyAlg {
	return types.KeyAlgX25519
}

// Destroy wipes the secret. The key remains usable as a public key.
func (k *KeyPair) Destroy() {
	if k.secret != nil {
		k.secret.Zeroize()
		k.secret = nil
	}
}

// HasSecret returns true if the key holds a secret.
func (k *KeyPair) HasSecret() bool {
	return k.secret != nil
}

// WithSecretBytes calls fn with the secret, or nil for a public key.
func (k *KeyPair) WithSecretBytes(fn func(secret []byte)) {
	if k.secret == nil {
		fn(nil)
		return
	}
	fn(k.secret.Bytes())
}

// WithPublicBytes calls fn with the public u-coordinate.
func (k *KeyPair) WithPublicBytes(fn func(public []byte)) {
	fn(k.public.Bytes())
}

// WithKeypairBytes calls fn with secret || public, or nil for a public key.
func (k *KeyPair) WithKeypairBytes(fn func(keypair []byte)) {
	if k.secret == nil {
		fn(nil)
		return
	}
	_ = secret.Use(KeypairLength, func(buf []byte) error {
		copy(buf, k.secret.Bytes())
		copy(buf[SecretKeyLength:], k.public.Bytes())
		fn(buf)
		return nil
	})
}

// ECDHPublicKey returns the public key as a crypto/ecdh key.
func (k *KeyPair) ECDHPublicKey() *ecdh.PublicKey {
	return k.public
}

// KeyExchange writes the 32-byte X25519 shared secret to w. A peer whose
// public key is a low-order point is rejected.
func (k *KeyPair) KeyExchange(other keys.Key, w io.Writer) error {
	if other == nil {
		return keyerr.Usage("peer key is required")
	}
	peer, ok := other.(*KeyPair)
	if !ok {
		return keyerr.Unsupported("cannot exchange X25519 key with %s key", other.Algorithm())
	}
	if k.secret == nil {
		return keyerr.MissingSecretKey("")
	}

	priv, err := curve().NewPrivateKey(k.secret.Bytes())
	if err != nil {
		return keyerr.Unexpected("invalid secret key: %v", err)
	}
	shared, err := priv.ECDH(peer.public)
	if err != nil {
		return keyerr.InvalidKeyData("X25519 key agreement failed: %v", err)
	}
	defer secret.Wipe(shared)

	if _, err := w.Write(shared); err != nil {
		return keyerr.Unexpected("failed to write shared secret: %v", err)
	}
	return nil
}

// String returns a description of the key that never includes the secret.
func (k *KeyPair) String() string {
	label := "none"
	if k.secret != nil {
		label = "REDACTED"
	}
	return fmt.Sprintf("x25519.KeyPair{public: %s, secret: %s}",
		base64.RawURLEncoding.EncodeToString(k.public.Bytes()), label)
}

// GoString implements fmt.GoStringer with the same redaction as String.
func (k *KeyPair) GoString() string {
	return k.String()
}

// Format implements fmt.Formatter so that every verb is redacted.
func (k *KeyPair) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, k.String())
}

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

// Package ecdh derives symmetric keys from a key agreement between two keys
// of the same algorithm.
//
// Example usage:
//
//	alice, _ := keys.Generate(types.KeyAlgP256)
//	bob, _ := keys.Generate(types.KeyAlgP256)
//
//	// Each side only needs the other's public key
//	aliceSecret, _ := ecdh.DeriveSharedSecret(alice, bob)
//	bobSecret, _ := ecdh.DeriveSharedSecret(bob, alice)
//
//	// Derive an encryption key from the shared secret
//	encKey, _ := ecdh.DeriveKey(aliceSecret.Bytes(), nil, []byte("encryption"), 32)
package ecdh

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
)

// MaxKeyLength is the largest output HKDF-SHA256 can produce.
const MaxKeyLength = 255 * sha256.Size

// DeriveSharedSecret performs key agreement between the secret of private
// and the public part of peer. The result is the raw shared secret; use
// DeriveKey before using it as a key.
func DeriveSharedSecret(private, peer keys.Key) (*secret.Bytes, error) {
	if private == nil {
		return nil, keyerr.Usage("private key cannot be nil")
	}
	if peer == nil {
		return nil, keyerr.Usage("peer key cannot be nil")
	}
	if private.Algorithm() != peer.Algorithm() {
		return nil, keyerr.Unsupported("algorithm mismatch: %s and %s", private.Algorithm(), peer.Algorithm())
	}
	return keys.KeyExchangeBytes(private, peer)
}

// DeriveKey derives a key of keyLength bytes from a shared secret using
// HKDF-SHA256. Different info values produce independent keys from the same
// secret.
//
//	encKey, _ := DeriveKey(shared, nil, []byte("aes-256-gcm"), 32)
//	macKey, _ := DeriveKey(shared, nil, []byte("hmac-sha256"), 32)
func DeriveKey(sharedSecret, salt, info []byte, keyLength int) (*secret.Bytes, error) {
	if len(sharedSecret) == 0 {
		return nil, keyerr.Usage("shared secret cannot be empty")
	}
	if keyLength <= 0 || keyLength > MaxKeyLength {
		return nil, keyerr.Usage("key length must be between 1 and %d, got %d", MaxKeyLength, keyLength)
	}

	out := secret.New(keyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, sharedSecret, salt, info), out.Bytes()); err != nil {
		out.Zeroize()
		return nil, keyerr.Unexpected("HKDF derivation failed: %v", err)
	}
	return out, nil
}

// DeriveSymmetricKey runs DeriveSharedSecret followed by DeriveKey and wipes
// the intermediate shared secret.
func DeriveSymmetricKey(private, peer keys.Key, salt, info []byte, keyLength int) (*secret.Bytes, error) {
	shared, err := DeriveSharedSecret(private, peer)
	if err != nil {
		return nil, err
	}
	defer shared.Zeroize()
	return DeriveKey(shared.Bytes(), salt, info, keyLength)
}

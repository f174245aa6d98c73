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

package keys

import (
	"bytes"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

func unsupported(k Key, c Capability) error {
	if k == nil {
		return keyerr.Usage("key is required")
	}
	return keyerr.Unsupported("%s keys do not support %s", k.Algorithm(), c)
}

// ToSecretBytes returns a copy of the secret key bytes.
func ToSecretBytes(k Key) (*secret.Bytes, error) {
	exp, ok := k.(SecretBytesExporter)
	if !ok {
		return nil, unsupported(k, CapSecretBytes)
	}
	var out *secret.Bytes
	exp.WithSecretBytes(func(b []byte) {
		if b != nil {
			out = secret.FromSlice(b)
		}
	})
	if out == nil {
		return nil, keyerr.MissingSecretKey("")
	}
	return out, nil
}

// ToPublicBytes returns the canonical public key bytes.
func ToPublicBytes(k Key) ([]byte, error) {
	exp, ok := k.(PublicBytesExporter)
	if !ok {
		return nil, unsupported(k, CapPublicBytes)
	}
	var out []byte
	exp.WithPublicBytes(func(b []byte) {
		out = bytes.Clone(b)
	})
	return out, nil
}

// ToKeypairBytes returns a copy of the secret || public encoding.
func ToKeypairBytes(k Key) (*secret.Bytes, error) {
	exp, ok := k.(KeypairBytesExporter)
	if !ok {
		return nil, unsupported(k, CapKeypairBytes)
	}
	var out *secret.Bytes
	exp.WithKeypairBytes(func(b []byte) {
		if b != nil {
			out = secret.FromSlice(b)
		}
	})
	if out == nil {
		return nil, keyerr.MissingSecretKey("")
	}
	return out, nil
}

// Sign signs message and returns the signature bytes.
func Sign(k Key, message []byte, sigType types.SignatureType) ([]byte, error) {
	s, ok := k.(Signer)
	if !ok {
		return nil, unsupported(k, CapSign)
	}
	var buf bytes.Buffer
	if err := s.WriteSignature(message, sigType, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Verify checks signature over message.
func Verify(k Key, message, signature []byte, sigType types.SignatureType) (bool, error) {
	v, ok := k.(Verifier)
	if !ok {
		return false, unsupported(k, CapVerify)
	}
	return v.VerifySignature(message, signature, sigType)
}

// KeyExchangeBytes computes the shared secret between a's secret and b's
// public key.
func KeyExchangeBytes(a, b Key) (*secret.Bytes, error) {
	x, ok := a.(KeyExchanger)
	if !ok {
		return nil, unsupported(a, CapKeyExchange)
	}
	if b == nil {
		return nil, keyerr.Usage("peer key is required")
	}
	w := newSecretWriter()
	if err := x.KeyExchange(b, w); err != nil {
		w.buf.Zeroize()
		return nil, err
	}
	return w.buf, nil
}

// ToJwkPublic returns the public JWK of k.
func ToJwkPublic(k Key) (string, error) {
	enc, ok := k.(jwk.ToJwk)
	if !ok {
		return "", unsupported(k, CapJwk)
	}
	return jwk.EncodePublic(enc)
}

// ToJwkSecret returns the JWK of k including the private member when the
// key holds a secret.
func ToJwkSecret(k Key) (*secret.Bytes, error) {
	enc, ok := k.(jwk.ToJwk)
	if !ok {
		return nil, unsupported(k, CapJwk)
	}
	return jwk.EncodeSecret(enc)
}

// JwkThumbprint returns the RFC 7638 SHA-256 thumbprint of k.
func JwkThumbprint(k Key) (string, error) {
	enc, ok := k.(jwk.ToJwk)
	if !ok {
		return "", unsupported(k, CapJwk)
	}
	return jwk.ThumbprintSHA256(enc)
}

// Equal reports whether a and b are the same algorithm with the same public
// key and, when either holds a secret, equal secrets. Secrets are compared
// in constant time.
func Equal(a, b Key) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Algorithm() != b.Algorithm() {
		return false
	}

	pa, errA := ToPublicBytes(a)
	pb, errB := ToPublicBytes(b)
	if errA != nil || errB != nil || !bytes.Equal(pa, pb) {
		return false
	}

	sa, errA := ToSecretBytes(a)
	sb, errB := ToSecretBytes(b)
	defer sa.Zeroize()
	defer sb.Zeroize()
	switch {
	case errA != nil && errB != nil:
		return keyerr.KindOf(errA) == keyerr.KindOf(errB)
	case errA != nil || errB != nil:
		return false
	}
	return sa.Equal(sb)
}

// secretWriter collects output into a secret buffer, wiping the previous
// backing array whenever it grows.
type secretWriter struct {
	buf *secret.Bytes
}

func newSecretWriter() *secretWriter {
	return &secretWriter{buf: secret.New(0)}
}

func (w *secretWriter) Write(p []byte) (int, error) {
	next := secret.New(w.buf.Len() + len(p))
	copy(next.Bytes(), w.buf.Bytes())
	copy(next.Bytes()[w.buf.Len():], p)
	w.buf.Zeroize()
	w.buf = next
	return len(p), nil
}

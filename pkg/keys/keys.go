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

// Package keys defines the capability interfaces shared by every key
// algorithm, a registry of per-algorithm factories, and uniform entry points
// that dispatch on the algorithm identifier.
//
// A concrete key implements only the capabilities it supports. Callers can
// either type-assert directly or use Supports and the helper functions,
// which fail with keyerr.ErrUnsupported when a capability is missing.
package keys

import (
	"io"

	"github.com/jeremyhahn/go-keycore/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

// Key is implemented by every key.
type Key interface {
	// Algorithm returns the algorithm identifier of the key.
	Algorithm() types.KeyAlg

	// Destroy wipes any secret material held by the key. The key remains
	// usable for public operations.
	Destroy()
}

// SecretBytesExporter exposes the raw secret key bytes.
type SecretBytesExporter interface {
	// WithSecretBytes calls fn with the secret bytes, or with nil when the
	// key holds no secret. The slice must not be retained after fn returns.
	WithSecretBytes(fn func(secret []byte))
}

// PublicBytesExporter exposes the canonical public key bytes.
type PublicBytesExporter interface {
	WithPublicBytes(fn func(public []byte))
}

// KeypairBytesExporter exposes the secret and public key concatenated.
type KeypairBytesExporter interface {
	// WithKeypairBytes calls fn with the keypair bytes, or with nil when the
	// key holds no secret. The buffer is wiped after fn returns.
	WithKeypairBytes(fn func(keypair []byte))
}

// Signer produces signatures over messages.
type Signer interface {
	WriteSignature(message []byte, sigType types.SignatureType, w io.Writer) error
}

// Verifier checks signatures. A signature that does not verify, including
// one of the wrong length, yields false with a nil error.
type Verifier interface {
	VerifySignature(message, signature []byte, sigType types.SignatureType) (bool, error)
}

// KeyExchanger performs a Diffie-Hellman style key agreement.
type KeyExchanger interface {
	// KeyExchange writes the shared secret between this key's secret and
	// the public part of other to w.
	KeyExchange(other Key, w io.Writer) error
}

// Capability names one of the optional key interfaces.
type Capability int

const (
	CapSecretBytes Capability = iota
	CapPublicBytes
	CapKeypairBytes
	CapSign
	CapVerify
	CapKeyExchange
	CapJwk
)

var capabilityNames = map[Capability]string{
	CapSecretBytes:  "secret-bytes",
	CapPublicBytes:  "public-bytes",
	CapKeypairBytes: "keypair-bytes",
	CapSign:         "sign",
	CapVerify:       "verify",
	CapKeyExchange:  "key-exchange",
	CapJwk:          "jwk",
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "unknown"
}

// AllCapabilities returns every capability in declaration order.
func AllCapabilities() []Capability {
	return []Capability{
		CapSecretBytes,
		CapPublicBytes,
		CapKeypairBytes,
		CapSign,
		CapVerify,
		CapKeyExchange,
		CapJwk,
	}
}

// Supports reports whether k implements the interface for capability c.
func Supports(k Key, c Capability) bool {
	if k == nil {
		return false
	}
	var ok bool
	switch c {
	case CapSecretBytes:
		_, ok = k.(SecretBytesExporter)
	case CapPublicBytes:
		_, ok = k.(PublicBytesExporter)
	case CapKeypairBytes:
		_, ok = k.(KeypairBytesExporter)
	case CapSign:
		_, ok = k.(Signer)
	case CapVerify:
		_, ok = k.(Verifier)
	case CapKeyExchange:
		_, ok = k.(KeyExchanger)
	case CapJwk:
		_, ok = k.(jwk.ToJwk)
	}
	return ok
}

// Capabilities returns the capabilities implemented by k.
func Capabilities(k Key) []Capability {
	var caps []Capability
	for _, c := range AllCapabilities() {
		if Supports(k, c) {
			caps = append(caps, c)
		}
	}
	return caps
}

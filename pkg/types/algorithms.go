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

package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// Key Algorithm Identifiers
// =============================================================================
// Identifiers name a concrete algorithm and, for elliptic curve keys, the curve.
// They are compared by value and are safe to use as map keys.

// KeyAlg identifies a concrete key algorithm.
type KeyAlg string

const (
	// KeyAlgA128GCM is AES-128 in GCM mode.
	KeyAlgA128GCM KeyAlg = "a128gcm"

	// KeyAlgA256GCM is AES-256 in GCM mode.
	KeyAlgA256GCM KeyAlg = "a256gcm"

	// KeyAlgC20P is ChaCha20-Poly1305.
	KeyAlgC20P KeyAlg = "c20p"

	// KeyAlgXC20P is XChaCha20-Poly1305.
	KeyAlgXC20P KeyAlg = "xc20p"

	// KeyAlgBls12381G1 is BLS12-381 with public keys in G1.
	KeyAlgBls12381G1 KeyAlg = "bls12381g1"

	// KeyAlgEd25519 is the Ed25519 signature algorithm.
	KeyAlgEd25519 KeyAlg = "ed25519"

	// KeyAlgX25519 is the X25519 key agreement algorithm.
	KeyAlgX25519 KeyAlg = "x25519"

	// KeyAlgK256 is elliptic curve secp256k1.
	KeyAlgK256 KeyAlg = "k256"

	// KeyAlgP256 is elliptic curve secp256r1 (NIST P-256).
	KeyAlgP256 KeyAlg = "p256"

	// KeyAlgP384 is elliptic curve secp384r1 (NIST P-384).
	KeyAlgP384 KeyAlg = "p384"
)

// keyAlgAliases maps lowercase alternate spellings to their canonical KeyAlg.
var keyAlgAliases = map[string]KeyAlg{
	"aes128gcm":  KeyAlgA128GCM,
	"aes256gcm":  KeyAlgA256GCM,
	"chacha20":   KeyAlgC20P,
	"xchacha20":  KeyAlgXC20P,
	"bls12381":   KeyAlgBls12381G1,
	"secp256k1":  KeyAlgK256,
	"secp256r1":  KeyAlgP256,
	"prime256v1": KeyAlgP256,
	"p-256":      KeyAlgP256,
	"secp384r1":  KeyAlgP384,
	"p-384":      KeyAlgP384,
}

// AllKeyAlgs lists every known algorithm identifier.
var AllKeyAlgs = []KeyAlg{
	KeyAlgA128GCM,
	KeyAlgA256GCM,
	KeyAlgC20P,
	KeyAlgXC20P,
	KeyAlgBls12381G1,
	KeyAlgEd25519,
	KeyAlgX25519,
	KeyAlgK256,
	KeyAlgP256,
	KeyAlgP384,
}

// String returns the string representation.
func (a KeyAlg) String() string {
	return string(a)
}

// Equals performs case-insensitive comparison for protocol compatibility.
func (a KeyAlg) Equals(s string) bool {
	return strings.EqualFold(string(a), s)
}

// IsEcCurve returns true for elliptic curve algorithms using EC JWK fields.
func (a KeyAlg) IsEcCurve() bool {
	return a.EcCurve() != ""
}

// EcCurve returns the curve used by an EC algorithm, or an empty value for
// algorithms that are not EC curves.
func (a KeyAlg) EcCurve() EcCurve {
	switch a {
	case KeyAlgK256:
		return CurveSecp256k1
	case KeyAlgP256:
		return CurveSecp256r1
	case KeyAlgP384:
		return CurveSecp384r1
	default:
		return ""
	}
}

// ParseKeyAlg parses a canonical algorithm name or a known alias.
func ParseKeyAlg(s string) (KeyAlg, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, alg := range AllKeyAlgs {
		if string(alg) == lower {
			return alg, nil
		}
	}
	if alg, ok := keyAlgAliases[lower]; ok {
		return alg, nil
	}
	return "", fmt.Errorf("unknown key algorithm: %q", s)
}

// =============================================================================
// Elliptic Curves
// =============================================================================

// EcCurve identifies an elliptic curve by its SEC 2 name.
type EcCurve string

const (
	// CurveSecp256r1 is NIST P-256.
	CurveSecp256r1 EcCurve = "secp256r1"

	// CurveSecp256k1 is the Koblitz curve used by Bitcoin and Ethereum.
	CurveSecp256k1 EcCurve = "secp256k1"

	// CurveSecp384r1 is NIST P-384.
	CurveSecp384r1 EcCurve = "secp384r1"
)

// String returns the string representation.
func (c EcCurve) String() string {
	return string(c)
}

// JwkName returns the "crv" value registered for the curve in RFC 7518
// and RFC 8812.
func (c EcCurve) JwkName() string {
	switch c {
	case CurveSecp256r1:
		return "P-256"
	case CurveSecp256k1:
		return "secp256k1"
	case CurveSecp384r1:
		return "P-384"
	default:
		return ""
	}
}

// KeyAlgFromJwk maps the "kty" and "crv" members of a JWK to an algorithm.
func KeyAlgFromJwk(kty, crv string) (KeyAlg, error) {
	switch kty {
	case "EC":
		switch crv {
		case "P-256":
			return KeyAlgP256, nil
		case "P-384":
			return KeyAlgP384, nil
		case "secp256k1":
			return KeyAlgK256, nil
		}
	case "OKP":
		switch crv {
		case "Ed25519":
			return KeyAlgEd25519, nil
		case "X25519":
			return KeyAlgX25519, nil
		}
	default:
		return "", fmt.Errorf("unsupported JWK key type: %q", kty)
	}
	return "", fmt.Errorf("unsupported JWK curve %q for key type %q", crv, kty)
}

// =============================================================================
// Signature Types
// =============================================================================

// SignatureType names a signature scheme using its JWA identifier. The zero
// value selects the default scheme of the signing key.
type SignatureType string

const (
	// SigDefault selects the key's default signature scheme.
	SigDefault SignatureType = ""

	// SigEdDSA is pure EdDSA.
	SigEdDSA SignatureType = "EdDSA"

	// SigES256 is ECDSA using P-256 and SHA-256.
	SigES256 SignatureType = "ES256"

	// SigES256K is ECDSA using secp256k1 and SHA-256.
	SigES256K SignatureType = "ES256K"

	// SigES384 is ECDSA using P-384 and SHA-384.
	SigES384 SignatureType = "ES384"
)

// String returns the string representation.
func (s SignatureType) String() string {
	return string(s)
}

// ParseSignatureType parses a JWA signature identifier. An empty string
// yields SigDefault.
func ParseSignatureType(s string) (SignatureType, error) {
	for _, st := range []SignatureType{SigDefault, SigEdDSA, SigES256, SigES256K, SigES384} {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown signature type: %q", s)
}

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
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/go-jose/go-jose/v4"
	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
)

// JWK represents a JSON Web Key as defined in RFC 7517.
//
// Public members are plain strings. The private members d and k are held
// as Field values so they can be wiped with Zeroize once the key has been
// imported.
type JWK struct {
	// Common fields (all key types)
	Kty string `json:"kty"`           // Key Type (required)
	Use string `json:"use,omitempty"` // Public Key Use (sig, enc)
	Alg string `json:"alg,omitempty"` // Algorithm
	Kid string `json:"kid,omitempty"` // Key ID

	// RSA public key fields (RFC 7518 Section 6.3.1), parsed for thumbprints only
	N string `json:"n,omitempty"` // Modulus (base64url)
	E string `json:"e,omitempty"` // Exponent (base64url)

	// EC and OKP public key fields (RFC 7518 Section 6.2.1, RFC 8037)
	Crv string `json:"crv,omitempty"` // Curve (P-256, P-384, secp256k1, Ed25519, X25519)
	X   string `json:"x,omitempty"`   // X Coordinate (base64url)
	Y   string `json:"y,omitempty"`   // Y Coordinate (base64url)

	// Private key member (EC, OKP and RSA)
	D Field `json:"d,omitempty"`

	// Symmetric key field (RFC 7518 Section 6.4)
	K Field `json:"k,omitempty"`

	// Key Operations (optional)
	KeyOps []string `json:"key_ops,omitempty"`
}

// KeyType represents the key type (kty) parameter values
type KeyType string

const (
	KeyTypeRSA KeyType = "RSA"
	KeyTypeEC  KeyType = "EC"
	KeyTypeOKP KeyType = "OKP" // Octet Key Pair (Ed25519, X25519)
	KeyTypeOct KeyType = "oct" // Symmetric key
)

// Curve represents EC curve names
type Curve string

const (
	CurveP256      Curve = "P-256"
	CurveP384      Curve = "P-384"
	CurveSecp256k1 Curve = "secp256k1"
	CurveEd25519   Curve = "Ed25519"
	CurveX25519    Curve = "X25519"
)

// Field is the base64url text of a private JWK member. It is stored as a
// byte slice rather than a string so that it can be overwritten.
//
// A nil Field means the member was absent. A member given as "" decodes to
// a non-nil empty Field so it is still reported as present; when marshaled
// through JWK an empty Field is dropped by omitempty.
type Field []byte

// UnmarshalJSON copies the JSON string contents without allocating an
// intermediate Go string for the common case of an unescaped value.
func (f *Field) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("jwk: private member must be a string")
	}
	inner := data[1 : len(data)-1]
	if bytes.IndexByte(inner, '\\') < 0 {
		*f = append(Field{}, inner...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = Field(s)
	return nil
}

// MarshalJSON encodes the field as a JSON string.
func (f Field) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, len(f)+2)
	out = append(out, '"')
	out = append(out, f...)
	return append(out, '"'), nil
}

// IsPresent returns true if the member was present, even if empty.
func (f Field) IsPresent() bool {
	return f != nil
}

// Unmarshal parses the JSON-encoded data and stores the result in a JWK.
// Malformed input is reported as invalid key data.
func Unmarshal(data []byte) (*JWK, error) {
	var jwk JWK
	if err := json.Unmarshal(data, &jwk); err != nil {
		jwk.Zeroize()
		return nil, keyerr.InvalidKeyData("failed to unmarshal JWK: %v", err)
	}
	if jwk.Kty == "" {
		jwk.Zeroize()
		return nil, keyerr.InvalidKeyData("JWK missing required field: kty")
	}
	return &jwk, nil
}

// Marshal returns the JSON encoding of the JWK.
func (jwk *JWK) Marshal() ([]byte, error) {
	return json.Marshal(jwk)
}

// MarshalIndent returns the indented JSON encoding of the JWK.
func (jwk *JWK) MarshalIndent(prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(jwk, prefix, indent)
}

// Zeroize wipes the private members.
func (jwk *JWK) Zeroize() {
	secret.Wipe(jwk.D)
	secret.Wipe(jwk.K)
	jwk.D = nil
	jwk.K = nil
}

// IsPrivate returns true if the JWK contains private key parameters.
func (jwk *JWK) IsPrivate() bool {
	return jwk.D.IsPresent() || jwk.K.IsPresent()
}

// IsPublic returns true if the JWK represents a public key.
func (jwk *JWK) IsPublic() bool {
	return !jwk.IsPrivate() && (jwk.N != "" || jwk.X != "" || jwk.Crv != "")
}

// IsSymmetric returns true if the JWK represents a symmetric key.
func (jwk *JWK) IsSymmetric() bool {
	return jwk.Kty == string(KeyTypeOct)
}

// DecodeField decodes an unpadded base64url member into out and returns the
// number of bytes written. Values that would not fit in out, or that are
// not valid base64url, are invalid key data.
func DecodeField(name string, value []byte, out []byte) (int, error) {
	if len(value) == 0 {
		return 0, keyerr.InvalidKeyData("JWK missing required field: %s", name)
	}
	if base64.RawURLEncoding.DecodedLen(len(value)) > len(out) {
		return 0, keyerr.InvalidKeyData("JWK field %s too long", name)
	}
	n, err := base64.RawURLEncoding.Decode(out, value)
	if err != nil {
		secret.Wipe(out)
		return 0, keyerr.InvalidKeyData("failed to decode JWK field %s: %v", name, err)
	}
	return n, nil
}

// DecodeFixed decodes a base64url member into out and requires the decoded
// length to be exactly len(out).
func DecodeFixed(name string, value []byte, out []byte) error {
	n, err := DecodeField(name, value, out)
	if err != nil {
		return err
	}
	if n != len(out) {
		secret.Wipe(out)
		return keyerr.InvalidKeyData("JWK field %s must decode to %d bytes, got %d", name, len(out), n)
	}
	return nil
}

// ToJOSE converts the JWK into a go-jose JSONWebKey for use with JOSE
// tooling. Private members are carried over when present; the resulting
// go-jose key is outside the control of Zeroize.
func (jwk *JWK) ToJOSE() (*jose.JSONWebKey, error) {
	data, err := jwk.Marshal()
	if err != nil {
		return nil, err
	}
	defer secret.Wipe(data)

	var out jose.JSONWebKey
	if err := out.UnmarshalJSON(data); err != nil {
		return nil, keyerr.InvalidKeyData("go-jose rejected JWK: %v", err)
	}
	return &out, nil
}

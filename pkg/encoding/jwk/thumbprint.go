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
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"hash"
	"sort"

	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
)

// Thumbprint computes the RFC 7638 thumbprint of key using hashFunc.
// The canonical member set is produced by the key itself through an
// Encoder in ModeThumbprint, hashed and base64url encoded without padding.
func Thumbprint(key ToJwk, hashFunc crypto.Hash) (string, error) {
	canonical, err := Encode(key, ModeThumbprint)
	if err != nil {
		return "", err
	}
	defer canonical.Zeroize()
	return hashThumbprint(canonical.Bytes(), hashFunc)
}

// ThumbprintSHA256 computes the SHA-256 thumbprint of key.
func ThumbprintSHA256(key ToJwk) (string, error) {
	return Thumbprint(key, crypto.SHA256)
}

// Thumbprint computes the thumbprint of a parsed JWK. Private members are
// never part of the input, so this works for public and private keys alike.
func (jwk *JWK) Thumbprint(hashFunc crypto.Hash) (string, error) {
	return Thumbprint(jwk, hashFunc)
}

// ThumbprintSHA256 computes the SHA-256 thumbprint of a parsed JWK.
func (jwk *JWK) ThumbprintSHA256() (string, error) {
	return jwk.Thumbprint(crypto.SHA256)
}

// ToJwkEncoder writes the members of a parsed JWK. In thumbprint mode only
// the RFC 7638 Section 3.2 required members are written.
func (jwk *JWK) ToJwkEncoder(enc *Encoder) error {
	fields, err := jwk.requiredThumbprintFields()
	if err != nil {
		return err
	}
	if !enc.IsThumbprint() {
		if jwk.Alg != "" {
			fields["alg"] = jwk.Alg
		}
		if jwk.Kid != "" {
			fields["kid"] = jwk.Kid
		}
		if jwk.Use != "" {
			fields["use"] = jwk.Use
		}
	}

	names := make([]string, 0, len(fields)+1)
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	if enc.IsSecret() && jwk.D.IsPresent() {
		names = append(names, "d")
	}

	for _, name := range names {
		var err error
		if name == "d" {
			err = addRaw(enc, name, jwk.D)
		} else {
			err = enc.AddStr(name, fields[name])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// addRaw writes an already base64url encoded private member.
func addRaw(enc *Encoder, name string, value Field) error {
	decoded := make([]byte, base64.RawURLEncoding.DecodedLen(len(value)))
	defer clear(decoded)
	n, err := DecodeField(name, value, decoded)
	if err != nil {
		return err
	}
	return enc.AddAsBase64(name, decoded[:n])
}

// requiredThumbprintFields returns the required members per key type.
func (jwk *JWK) requiredThumbprintFields() (map[string]string, error) {
	fields := make(map[string]string)

	switch jwk.Kty {
	case string(KeyTypeRSA):
		if jwk.E == "" || jwk.N == "" {
			return nil, keyerr.InvalidKeyData("RSA JWK missing required fields for thumbprint")
		}
		fields["e"] = jwk.E
		fields["kty"] = jwk.Kty
		fields["n"] = jwk.N

	case string(KeyTypeEC):
		if jwk.Crv == "" || jwk.X == "" || jwk.Y == "" {
			return nil, keyerr.InvalidKeyData("EC JWK missing required fields for thumbprint")
		}
		fields["crv"] = jwk.Crv
		fields["kty"] = jwk.Kty
		fields["x"] = jwk.X
		fields["y"] = jwk.Y

	case string(KeyTypeOKP):
		if jwk.Crv == "" || jwk.X == "" {
			return nil, keyerr.InvalidKeyData("OKP JWK missing required fields for thumbprint")
		}
		fields["crv"] = jwk.Crv
		fields["kty"] = jwk.Kty
		fields["x"] = jwk.X

	case string(KeyTypeOct):
		if len(jwk.K) == 0 {
			return nil, keyerr.InvalidKeyData("symmetric JWK missing required fields for thumbprint")
		}
		fields["k"] = string(jwk.K)
		fields["kty"] = jwk.Kty

	default:
		return nil, keyerr.Unsupported("unsupported key type for thumbprint: %s", jwk.Kty)
	}

	return fields, nil
}

func hashThumbprint(canonical []byte, hashFunc crypto.Hash) (string, error) {
	var h hash.Hash
	switch hashFunc {
	case crypto.SHA1:
		h = sha1.New()
	case crypto.SHA256:
		h = sha256.New()
	case crypto.SHA384:
		h = sha512.New384()
	case crypto.SHA512:
		h = sha512.New()
	default:
		return "", keyerr.Unsupported("unsupported hash function: %v", hashFunc)
	}

	h.Write(canonical)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

// KeyAuthorization computes the RFC 8555 key authorization for an ACME
// challenge: token || '.' || base64url(SHA-256 thumbprint).
func KeyAuthorization(token string, key ToJwk) (string, error) {
	thumbprint, err := ThumbprintSHA256(key)
	if err != nil {
		return "", fmt.Errorf("failed to compute JWK thumbprint: %w", err)
	}
	return fmt.Sprintf("%s.%s", token, thumbprint), nil
}

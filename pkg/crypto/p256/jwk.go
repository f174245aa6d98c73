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
	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
)

// ToJwkEncoder writes crv, kty, x, y and, in secret mode, d.
func (k *KeyPair) ToJwkEncoder(enc *jwk.Encoder) error {
	u := k.public.Bytes()
	if len(u) != uncompressedLength {
		return keyerr.Unsupported("cannot encode the point at infinity")
	}
	if err := enc.AddStr("crv", JwkCurve); err != nil {
		return err
	}
	if err := enc.AddStr("kty", JwkKeyType); err != nil {
		return err
	}
	if err := enc.AddAsBase64("x", u[1:1+coordinateLength]); err != nil {
		return err
	}
	if err := enc.AddAsBase64("y", u[1+coordinateLength:]); err != nil {
		return err
	}
	if enc.IsSecret() && k.secret != nil {
		return enc.AddAsBase64("d", k.secret.Bytes())
	}
	return nil
}

// FromJwk parses a JWK document into a key pair.
func FromJwk(data []byte) (*KeyPair, error) {
	parts, err := jwk.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	defer parts.Zeroize()
	return FromJwkParts(parts)
}

// FromJwkParts imports an EC P-256 JWK. When d is present the public point
// derived from it must equal x, y.
func FromJwkParts(parts *jwk.JWK) (*KeyPair, error) {
	if parts == nil {
		return nil, keyerr.Usage("JWK is required")
	}
	if parts.Kty != JwkKeyType || parts.Crv != JwkCurve {
		return nil, keyerr.Unsupported("expected %s %s JWK, got kty=%q crv=%q", JwkKeyType, JwkCurve, parts.Kty, parts.Crv)
	}

	var u [uncompressedLength]byte
	u[0] = 0x04
	if err := jwk.DecodeFixed("x", []byte(parts.X), u[1:1+coordinateLength]); err != nil {
		return nil, err
	}
	if err := jwk.DecodeFixed("y", []byte(parts.Y), u[1+coordinateLength:]); err != nil {
		return nil, err
	}

	if !parts.D.IsPresent() {
		return FromPublicBytes(u[:])
	}

	d := secret.New(SecretKeyLength)
	defer d.Zeroize()
	if err := jwk.DecodeFixed("d", parts.D, d.Bytes()); err != nil {
		return nil, err
	}
	return fromParts(d.Bytes(), u[:])
}

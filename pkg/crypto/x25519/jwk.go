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

package x25519

import (
	"io"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

func init() {
	keys.Register(Factory{})
}

// ToJwkEncoder writes crv, kty, x and, in secret mode, d (RFC 8037).
func (k *KeyPair) ToJwkEncoder(enc *jwk.Encoder) error {
	if err := enc.AddStr("crv", JwkCurve); err != nil {
		return err
	}
	if err := enc.AddStr("kty", JwkKeyType); err != nil {
		return err
	}
	if err := enc.AddAsBase64("x", k.public.Bytes()); err != nil {
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

// FromJwkParts imports an OKP X25519 JWK.
func FromJwkParts(parts *jwk.JWK) (*KeyPair, error) {
	if parts == nil {
		return nil, keyerr.Usage("JWK is required")
	}
	if parts.Kty != JwkKeyType || parts.Crv != JwkCurve {
		return nil, keyerr.Unsupported("expected %s %s JWK, got kty=%q crv=%q", JwkKeyType, JwkCurve, parts.Kty, parts.Crv)
	}

	var x [PublicKeyLength]byte
	if err := jwk.DecodeFixed("x", []byte(parts.X), x[:]); err != nil {
		return nil, err
	}
	if !parts.D.IsPresent() {
		return FromPublicBytes(x[:])
	}

	d := secret.New(SecretKeyLength)
	defer d.Zeroize()
	if err := jwk.DecodeFixed("d", parts.D, d.Bytes()); err != nil {
		return nil, err
	}
	return fromParts(d.Bytes(), x[:])
}

// Factory adapts the package constructors to keys.Factory.
type Factory struct{}

func (Factory) Algorithm() types.KeyAlg {
	return types.KeyAlgX25519
}

func (Factory) Generate(rng io.Reader) (keys.Key, error) {
	return wrap(Generate(rng))
}

func (Factory) FromSecretBytes(b []byte) (keys.Key, error) {
	return wrap(FromSecretBytes(b))
}

func (Factory) FromPublicBytes(b []byte) (keys.Key, error) {
	return wrap(FromPublicBytes(b))
}

func (Factory) FromKeypairBytes(b []byte) (keys.Key, error) {
	return wrap(FromKeypairBytes(b))
}

func (Factory) FromJwkParts(parts *jwk.JWK) (keys.Key, error) {
	return wrap(FromJwkParts(parts))
}

func wrap(k *KeyPair, err error) (keys.Key, error) {
	if err != nil {
		return nil, err
	}
	return k, nil
}

var (
	_ keys.Key                  = (*KeyPair)(nil)
	_ keys.SecretBytesExporter  = (*KeyPair)(nil)
	_ keys.PublicBytesExporter  = (*KeyPair)(nil)
	_ keys.KeypairBytesExporter = (*KeyPair)(nil)
	_ keys.KeyExchanger         = (*KeyPair)(nil)
	_ jwk.ToJwk                 = (*KeyPair)(nil)
	_ keys.Factory              = Factory{}
)

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
	"io"

	"github.com/jeremyhahn/go-keycore/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

func init() {
	keys.Register(Factory{})
}

// Factory adapts the package constructors to keys.Factory.
type Factory struct{}

func (Factory) Algorithm() types.KeyAlg {
	return types.KeyAlgP256
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

// wrap keeps a nil *KeyPair from becoming a non-nil keys.Key.
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
	_ keys.Signer               = (*KeyPair)(nil)
	_ keys.Verifier             = (*KeyPair)(nil)
	_ keys.KeyExchanger         = (*KeyPair)(nil)
	_ jwk.ToJwk                 = (*KeyPair)(nil)
	_ keys.Factory              = Factory{}
)

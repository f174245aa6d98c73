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

package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

var (
	ErrInvalidSignatureAlgorithm = errors.New("jwt: invalid signature algorithm")
	ErrInvalidKey                = errors.New("jwt: invalid key type")
)

// JWS algorithm names.
const (
	ES256  = "ES256"
	ES256K = "ES256K"
	ES384  = "ES384"
	EdDSA  = "EdDSA"
)

var algorithms = map[types.KeyAlg]struct {
	name    string
	sigType types.SignatureType
}{
	types.KeyAlgP256:    {ES256, types.SigES256},
	types.KeyAlgK256:    {ES256K, types.SigES256K},
	types.KeyAlgP384:    {ES384, types.SigES384},
	types.KeyAlgEd25519: {EdDSA, types.SigEdDSA},
}

// AlgorithmForKey returns the JWS algorithm name and signature type used
// for keys of alg.
func AlgorithmForKey(alg types.KeyAlg) (string, types.SignatureType, error) {
	a, ok := algorithms[alg]
	if !ok {
		return "", "", ErrInvalidSignatureAlgorithm
	}
	return a.name, a.sigType, nil
}

// SigningMethodKey implements jwt.SigningMethod for keys.Key values that
// support signing and verification. It is not added to the golang-jwt
// registry, so the standard ES256 method keeps working with crypto keys.
type SigningMethodKey struct {
	algorithm string
	keyAlg    types.KeyAlg
	sigType   types.SignatureType
}

// NewSigningMethod creates a signing method for keys of alg.
func NewSigningMethod(alg types.KeyAlg) (*SigningMethodKey, error) {
	name, sigType, err := AlgorithmForKey(alg)
	if err != nil {
		return nil, err
	}
	return &SigningMethodKey{
		algorithm: name,
		keyAlg:    alg,
		sigType:   sigType,
	}, nil
}

// Alg returns the JWT algorithm string (ES256, EdDSA, etc.)
func (sm *SigningMethodKey) Alg() string {
	return sm.algorithm
}

// KeyAlgorithm returns the key algorithm this method signs with.
func (sm *SigningMethodKey) KeyAlgorithm() types.KeyAlg {
	return sm.keyAlg
}

// Sign signs the signing string. key must be a keys.Key of the method's
// algorithm that holds a secret.
func (sm *SigningMethodKey) Sign(signingString string, key interface{}) ([]byte, error) {
	k, err := sm.checkKey(key)
	if err != nil {
		return nil, err
	}
	return keys.Sign(k, []byte(signingString), sm.sigType)
}

// Verify verifies the signature of the signing string. A signature that
// does not match yields jwt.ErrSignatureInvalid.
func (sm *SigningMethodKey) Verify(signingString string, signature []byte, key interface{}) error {
	k, err := sm.checkKey(key)
	if err != nil {
		return err
	}
	ok, err := keys.Verify(k, []byte(signingString), signature, sm.sigType)
	if err != nil {
		return err
	}
	if !ok {
		return jwt.ErrSignatureInvalid
	}
	return nil
}

func (sm *SigningMethodKey) checkKey(key interface{}) (keys.Key, error) {
	k, ok := key.(keys.Key)
	if !ok || k == nil {
		return nil, ErrInvalidKey
	}
	if k.Algorithm() != sm.keyAlg {
		return nil, keyerr.Unsupported("%s signing method cannot use %s key", sm.algorithm, k.Algorithm())
	}
	return k, nil
}

var _ jwt.SigningMethod = (*SigningMethodKey)(nil)

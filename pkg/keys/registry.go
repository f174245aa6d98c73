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
	"io"
	"sort"
	"sync"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/rand"
	"github.com/jeremyhahn/go-keycore/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

// Factory constructs keys of a single algorithm.
type Factory interface {
	Algorithm() types.KeyAlg
	Generate(rng io.Reader) (Key, error)
	FromSecretBytes(secret []byte) (Key, error)
	FromPublicBytes(public []byte) (Key, error)
	FromKeypairBytes(keypair []byte) (Key, error)
	FromJwkParts(parts *jwk.JWK) (Key, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[types.KeyAlg]Factory)
)

// Register makes a factory available by its algorithm. It is intended to be
// called from the init function of an algorithm package and panics if the
// algorithm is registered twice.
func Register(f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	alg := f.Algorithm()
	if _, dup := registry[alg]; dup {
		panic("keys: Register called twice for algorithm " + alg.String())
	}
	registry[alg] = f
}

// Lookup returns the factory registered for alg.
func Lookup(alg types.KeyAlg) (Factory, error) {
	registryMu.RLock()
	f, ok := registry[alg]
	registryMu.RUnlock()
	if !ok {
		return nil, keyerr.Unsupported("unsupported key algorithm: %s", alg)
	}
	return f, nil
}

// Algorithms returns the registered algorithms in sorted order.
func Algorithms() []types.KeyAlg {
	registryMu.RLock()
	defer registryMu.RUnlock()
	algs := make([]types.KeyAlg, 0, len(registry))
	for alg := range registry {
		algs = append(algs, alg)
	}
	sort.Slice(algs, func(i, j int) bool { return algs[i] < algs[j] })
	return algs
}

// Generate creates a new random key using the default random source.
func Generate(alg types.KeyAlg) (Key, error) {
	return GenerateWithRand(alg, rand.Default())
}

// GenerateWithRand creates a new random key drawing entropy from rng.
func GenerateWithRand(alg types.KeyAlg, rng io.Reader) (Key, error) {
	f, err := Lookup(alg)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, keyerr.Usage("random source is required")
	}
	return f.Generate(rng)
}

// FromSecretBytes imports a key from its raw secret bytes.
func FromSecretBytes(alg types.KeyAlg, secret []byte) (Key, error) {
	f, err := Lookup(alg)
	if err != nil {
		return nil, err
	}
	return f.FromSecretBytes(secret)
}

// FromPublicBytes imports a public-only key.
func FromPublicBytes(alg types.KeyAlg, public []byte) (Key, error) {
	f, err := Lookup(alg)
	if err != nil {
		return nil, err
	}
	return f.FromPublicBytes(public)
}

// FromKeypairBytes imports a key from its secret || public encoding.
func FromKeypairBytes(alg types.KeyAlg, keypair []byte) (Key, error) {
	f, err := Lookup(alg)
	if err != nil {
		return nil, err
	}
	return f.FromKeypairBytes(keypair)
}

// FromJwk parses a JWK document and imports the key it describes. The
// algorithm is selected from the kty and crv members.
func FromJwk(data []byte) (Key, error) {
	parts, err := jwk.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	defer parts.Zeroize()
	return FromJwkParts(parts)
}

// FromJwkParts imports a key from an already parsed JWK.
func FromJwkParts(parts *jwk.JWK) (Key, error) {
	if parts == nil {
		return nil, keyerr.Usage("JWK is required")
	}
	alg, err := types.KeyAlgFromJwk(parts.Kty, parts.Crv)
	if err != nil {
		return nil, keyerr.Unsupported("%v", err)
	}
	f, err := Lookup(alg)
	if err != nil {
		return nil, err
	}
	return f.FromJwkParts(parts)
}

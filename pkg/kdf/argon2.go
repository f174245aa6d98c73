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

package kdf

import (
	"math"

	"golang.org/x/crypto/argon2"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
)

const (
	minMemoryCost   = 8
	minTimeCost     = 1
	minOutputLength = 4
	threads         = 1
)

// Argon2 derives keys with a fixed set of parameters.
type Argon2 struct {
	params Params
}

// NewArgon2 creates a deriver for params.
func NewArgon2(params Params) Argon2 {
	return Argon2{params: params}
}

// Params returns the deriver parameters.
func (a Argon2) Params() Params {
	return a.params
}

// DeriveKey fills output with the key derived from password and salt.
func (a Argon2) DeriveKey(password, salt, output []byte) error {
	return DeriveKey(password, salt, a.params, output)
}

// DeriveKey fills output with an Argon2 hash of password and salt, using a
// single lane and no secret or associated data. The salt must be at least
// SaltLength bytes.
func DeriveKey(password, salt []byte, params Params, output []byte) error {
	if len(salt) < SaltLength {
		return keyerr.Usage("invalid salt for argon2 hash: need at least %d bytes", SaltLength)
	}
	if uint64(len(output)) > math.MaxUint32 {
		return keyerr.Usage("output length exceeds max for argon2 hash")
	}
	if err := checkParams(params, len(output)); err != nil {
		return err
	}

	var derived []byte
	switch params.Algorithm {
	case AlgorithmArgon2i:
		derived = argon2.Key(password, salt, params.TimeCost, params.MemoryCost, threads, uint32(len(output)))
	case AlgorithmArgon2id:
		derived = argon2.IDKey(password, salt, params.TimeCost, params.MemoryCost, threads, uint32(len(output)))
	}
	copy(output, derived)
	secret.Wipe(derived)
	return nil
}

// checkParams rejects combinations that argon2 would panic on or cannot
// compute.
func checkParams(params Params, outputLen int) error {
	switch params.Algorithm {
	case AlgorithmArgon2i, AlgorithmArgon2id:
	case AlgorithmArgon2d:
		return keyerr.Unexpected("error creating hasher: argon2d is not available")
	default:
		return keyerr.Unexpected("error creating hasher: unknown algorithm %q", params.Algorithm)
	}
	if params.Version != Version13 {
		return keyerr.Unexpected("error creating hasher: unsupported version 0x%x", uint32(params.Version))
	}
	if params.TimeCost < minTimeCost {
		return keyerr.Unexpected("error creating hasher: time cost must be at least %d", minTimeCost)
	}
	if params.MemoryCost < minMemoryCost {
		return keyerr.Unexpected("error creating hasher: memory cost must be at least %d KiB", minMemoryCost)
	}
	if outputLen < minOutputLength {
		return keyerr.Unexpected("error deriving key: output must be at least %d bytes", minOutputLength)
	}
	return nil
}

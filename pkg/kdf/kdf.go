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

// Package kdf derives symmetric keys from passwords with Argon2.
package kdf

import (
	"fmt"
	"strings"
)

// Algorithm identifies the Argon2 variant.
type Algorithm string

const (
	// AlgorithmArgon2i is optimized against side-channel attacks.
	AlgorithmArgon2i Algorithm = "argon2i"

	// AlgorithmArgon2id is the hybrid of Argon2i and Argon2d.
	AlgorithmArgon2id Algorithm = "argon2id"

	// AlgorithmArgon2d is accepted by ParseAlgorithm and Params, but
	// golang.org/x/crypto/argon2 has no Argon2d, so DeriveKey returns an
	// Unexpected error for it.
	AlgorithmArgon2d Algorithm = "argon2d"
)

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}

// ParseAlgorithm parses an Argon2 variant name, ignoring case.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(s)); a {
	case AlgorithmArgon2i, AlgorithmArgon2id, AlgorithmArgon2d:
		return a, nil
	}
	return "", fmt.Errorf("unknown argon2 algorithm: %q", s)
}

// Version is the Argon2 version number.
type Version uint32

const (
	// Version10 is Argon2 version 1.0. It can be named in Params, but
	// golang.org/x/crypto/argon2 only computes version 1.3, so DeriveKey
	// returns an Unexpected error for it.
	Version10 Version = 0x10

	// Version13 is Argon2 version 1.3, the only version DeriveKey computes.
	Version13 Version = 0x13
)

// SaltLength is the minimum salt length in bytes.
const SaltLength = 16

// Params holds the Argon2 cost parameters. Parallelism is always 1.
type Params struct {
	Algorithm Algorithm
	Version   Version

	// MemoryCost is in KiB.
	MemoryCost uint32

	// TimeCost is the number of passes.
	TimeCost uint32
}

var (
	// ParamsInteractive is suitable for interactive logins.
	ParamsInteractive = Params{
		Algorithm:  AlgorithmArgon2i,
		Version:    Version13,
		MemoryCost: 32768,
		TimeCost:   4,
	}

	// ParamsModerate trades latency for stronger protection of stored keys.
	ParamsModerate = Params{
		Algorithm:  AlgorithmArgon2i,
		Version:    Version13,
		MemoryCost: 131072,
		TimeCost:   6,
	}
)

// Preset names accepted by ParsePreset.
const (
	PresetInteractive = "interactive"
	PresetModerate    = "moderate"
)

// ParsePreset returns the parameters for a named preset.
func ParsePreset(name string) (Params, error) {
	switch strings.ToLower(name) {
	case PresetInteractive:
		return ParamsInteractive, nil
	case PresetModerate:
		return ParamsModerate, nil
	}
	return Params{}, fmt.Errorf("unknown argon2 preset: %q", name)
}

// String describes the parameters.
func (p Params) String() string {
	return fmt.Sprintf("%s v=0x%x m=%d t=%d p=1", p.Algorithm, uint32(p.Version), p.MemoryCost, p.TimeCost)
}

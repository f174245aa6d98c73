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

// Package rand provides the cryptographically secure random number source
// used for key generation.
//
// # Overview
//
// Key generation never reaches for a global directly. Algorithms receive an
// io.Reader, and the uniform entry points in pkg/keys obtain it from the
// process-wide Resolver returned by Default. Applications may replace that
// resolver at startup with SetDefault, and tests may inject a deterministic
// reader through ModeReader.
//
// # RNG Sources
//
//   - Auto: the best available source, currently crypto/rand with an optional fallback
//   - Software: crypto/rand (stdlib secure random)
//   - Reader: a caller supplied io.Reader, serialized behind a mutex
//
// # Usage
//
//	rng, _ := rand.NewResolver(rand.ModeSoftware)
//	seed, _ := rng.Rand(32)
//
//	// Deterministic source for tests only
//	rng, _ = rand.NewResolver(&rand.Config{Mode: rand.ModeReader, Reader: fixture})
//
// # Thread Safety
//
// All Resolver implementations are safe for concurrent use.
package rand

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Mode specifies which RNG source to use.
type Mode string

const (
	// ModeAuto selects the best available source.
	ModeAuto Mode = "auto"

	// ModeSoftware uses crypto/rand (stdlib secure random).
	ModeSoftware Mode = "software"

	// ModeReader reads from Config.Reader.
	ModeReader Mode = "reader"
)

// ErrReaderRequired is returned when ModeReader is selected without a reader.
var ErrReaderRequired = errors.New("rand: reader mode requires Config.Reader")

// Config contains RNG configuration.
type Config struct {
	// Mode specifies the primary RNG source to use.
	// Defaults to ModeAuto if not specified.
	Mode Mode

	// FallbackMode specifies the RNG source to use if the primary source
	// fails. If not specified, failures are returned as errors.
	FallbackMode Mode

	// Reader is the entropy source for ModeReader.
	Reader io.Reader
}

// Resolver provides the main interface for generating random numbers.
// Applications should create a Resolver at startup and reuse it.
//
// Resolver implements io.Reader, making it usable anywhere an io.Reader is
// expected for random number generation.
type Resolver interface {
	// Rand returns n random bytes.
	Rand(n int) ([]byte, error)

	// Read fills p with random bytes. It returns an error unless p is
	// filled completely.
	Read(p []byte) (n int, err error)

	// Available returns true if the source is ready.
	Available() bool

	// Close releases any resources.
	Close() error
}

// NewResolver creates a new RNG resolver with the given configuration.
// config may be nil, a Mode or a *Config. A nil config selects ModeAuto.
func NewResolver(config interface{}) (Resolver, error) {
	cfg := normalizeConfig(config)
	primary, err := newResolver(cfg.Mode, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.FallbackMode == "" {
		return primary, nil
	}
	fallback, err := newResolver(cfg.FallbackMode, cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid fallback RNG: %w", err)
	}
	return &fallbackResolver{primary: primary, fallback: fallback}, nil
}

// normalizeConfig converts various config types to *Config.
func normalizeConfig(config interface{}) *Config {
	switch v := config.(type) {
	case Mode:
		return &Config{Mode: v}
	case *Config:
		if v == nil {
			return &Config{Mode: ModeAuto}
		}
		if v.Mode == "" {
			v.Mode = ModeAuto
		}
		return v
	default:
		return &Config{Mode: ModeAuto}
	}
}

func newResolver(mode Mode, cfg *Config) (Resolver, error) {
	switch mode {
	case ModeAuto, ModeSoftware:
		return &SoftwareResolver{}, nil
	case ModeReader:
		if cfg.Reader == nil {
			return nil, ErrReaderRequired
		}
		return &readerResolver{reader: cfg.Reader}, nil
	default:
		return nil, fmt.Errorf("unknown RNG mode: %s", mode)
	}
}

// SoftwareResolver uses crypto/rand from the Go standard library.
type SoftwareResolver struct{}

var _ Resolver = (*SoftwareResolver)(nil)

func (s *SoftwareResolver) Rand(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := rand.Read(buf)
	return buf, err
}

// Read implements io.Reader for compatibility with crypto/rand.Reader.
func (s *SoftwareResolver) Read(p []byte) (n int, err error) {
	return rand.Read(p)
}

func (s *SoftwareResolver) Available() bool {
	return true // crypto/rand always available
}

func (s *SoftwareResolver) Close() error {
	return nil
}

// readerResolver serializes access to a caller supplied reader.
type readerResolver struct {
	mu     sync.Mutex
	reader io.Reader
	closed bool
}

var _ Resolver = (*readerResolver)(nil)

func (r *readerResolver) Rand(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *readerResolver) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, errors.New("rand: resolver closed")
	}
	return io.ReadFull(r.reader, p)
}

func (r *readerResolver) Available() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

func (r *readerResolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// fallbackResolver tries the primary source and falls back on failure.
type fallbackResolver struct {
	primary  Resolver
	fallback Resolver
}

var _ Resolver = (*fallbackResolver)(nil)

func (f *fallbackResolver) Rand(n int) ([]byte, error) {
	result, err := f.primary.Rand(n)
	if err != nil {
		result, err = f.fallback.Rand(n)
	}
	return result, err
}

func (f *fallbackResolver) Read(p []byte) (int, error) {
	n, err := f.primary.Read(p)
	if err != nil {
		clear(p[:n])
		n, err = f.fallback.Read(p)
	}
	return n, err
}

func (f *fallbackResolver) Available() bool {
	return f.primary.Available() || f.fallback.Available()
}

func (f *fallbackResolver) Close() error {
	return errors.Join(f.primary.Close(), f.fallback.Close())
}

var (
	defaultMu       sync.RWMutex
	defaultResolver Resolver = &SoftwareResolver{}
)

// Default returns the process-wide resolver used by key generation.
func Default() Resolver {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultResolver
}

// SetDefault replaces the process-wide resolver and returns the previous
// one. A nil resolver restores crypto/rand.
func SetDefault(r Resolver) Resolver {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultResolver
	if r == nil {
		r = &SoftwareResolver{}
	}
	defaultResolver = r
	return prev
}

// Read fills p from the process-wide resolver.
func Read(p []byte) (int, error) {
	return Default().Read(p)
}

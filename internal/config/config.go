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

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/rand"
	"github.com/jeremyhahn/go-keycore/pkg/kdf"
	"github.com/jeremyhahn/go-keycore/pkg/logging"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

// Config represents the complete keycore configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Output  string        `yaml:"output"`
	RNG     RNGConfig     `yaml:"rng"`
	Keys    KeysConfig    `yaml:"keys"`
	KDF     KDFConfig     `yaml:"kdf"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RNGConfig selects the random source used for key generation
type RNGConfig struct {
	Mode string `yaml:"mode"` // auto, software
}

// KeysConfig contains key defaults
type KeysConfig struct {
	Algorithm string `yaml:"algorithm"`
}

// KDFConfig contains Argon2 settings. A preset supplies the base values;
// any non-zero field overrides it.
type KDFConfig struct {
	Preset     string `yaml:"preset"` // interactive, moderate
	Algorithm  string `yaml:"algorithm"`
	MemoryCost uint32 `yaml:"memory_cost"`
	TimeCost   uint32 `yaml:"time_cost"`
}

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
		Output: OutputText,
		RNG: RNGConfig{
			Mode: string(rand.ModeAuto),
		},
		Keys: KeysConfig{
			Algorithm: string(types.KeyAlgP256),
		},
		KDF: KDFConfig{
			Preset: kdf.PresetInteractive,
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults and
// applies environment variable overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - Config file path is provided by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("KEYCORE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("KEYCORE_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
	if output := os.Getenv("KEYCORE_OUTPUT"); output != "" {
		cfg.Output = output
	}
	if mode := os.Getenv("KEYCORE_RNG_MODE"); mode != "" {
		cfg.RNG.Mode = mode
	}
	if alg := os.Getenv("KEYCORE_KEY_ALGORITHM"); alg != "" {
		cfg.Keys.Algorithm = alg
	}
	if preset := os.Getenv("KEYCORE_KDF_PRESET"); preset != "" {
		cfg.KDF.Preset = preset
	}
	if memory := os.Getenv("KEYCORE_KDF_MEMORY_COST"); memory != "" {
		v, err := strconv.ParseUint(memory, 10, 32)
		if err != nil {
			log.Printf("Warning: invalid KEYCORE_KDF_MEMORY_COST value %q, using %d: %v",
				memory, cfg.KDF.MemoryCost, err)
		} else {
			cfg.KDF.MemoryCost = uint32(v)
		}
	}
	if timeCost := os.Getenv("KEYCORE_KDF_TIME_COST"); timeCost != "" {
		v, err := strconv.ParseUint(timeCost, 10, 32)
		if err != nil {
			log.Printf("Warning: invalid KEYCORE_KDF_TIME_COST value %q, using %d: %v",
				timeCost, cfg.KDF.TimeCost, err)
		} else {
			cfg.KDF.TimeCost = uint32(v)
		}
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	switch strings.ToLower(c.Output) {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("invalid output format: %s (must be text or json)", c.Output)
	}

	switch rand.Mode(strings.ToLower(c.RNG.Mode)) {
	case rand.ModeAuto, rand.ModeSoftware:
	default:
		return fmt.Errorf("invalid rng mode: %s (must be auto or software)", c.RNG.Mode)
	}

	if _, err := c.KeyAlgorithm(); err != nil {
		return err
	}

	if _, err := c.KDFParams(); err != nil {
		return err
	}

	return nil
}

// KeyAlgorithm returns the parsed default key algorithm
func (c *Config) KeyAlgorithm() (types.KeyAlg, error) {
	return types.ParseKeyAlg(c.Keys.Algorithm)
}

// RandConfig returns the resolver configuration for the rng section
func (c *Config) RandConfig() *rand.Config {
	return &rand.Config{
		Mode: rand.Mode(strings.ToLower(c.RNG.Mode)),
	}
}

// KDFParams resolves the kdf section into Argon2 parameters
func (c *Config) KDFParams() (kdf.Params, error) {
	preset := c.KDF.Preset
	if preset == "" {
		preset = kdf.PresetInteractive
	}
	params, err := kdf.ParsePreset(preset)
	if err != nil {
		return kdf.Params{}, err
	}

	if c.KDF.Algorithm != "" {
		alg, err := kdf.ParseAlgorithm(c.KDF.Algorithm)
		if err != nil {
			return kdf.Params{}, err
		}
		if alg == kdf.AlgorithmArgon2d {
			return kdf.Params{}, fmt.Errorf("kdf algorithm %s is not supported", alg)
		}
		params.Algorithm = alg
	}
	if c.KDF.MemoryCost != 0 {
		params.MemoryCost = c.KDF.MemoryCost
	}
	if c.KDF.TimeCost != 0 {
		params.TimeCost = c.KDF.TimeCost
	}
	return params, nil
}

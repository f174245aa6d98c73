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

package cli

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/kdf"
)

// ErrPasswordRequired is returned by derive when no password source is given
var ErrPasswordRequired = errors.New("password is required (use --password or --password-file)")

// newDeriveCmd creates the derive command
func (a *app) newDeriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive a key from a password with Argon2",
		Long: `Derive a symmetric key from a password with Argon2.

Parameters come from the kdf section of the configuration and may be
overridden with --preset, --algorithm, --memory-cost and --time-cost.
The salt must be at least 16 bytes. The key is printed hex encoded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saltText, _ := cmd.Flags().GetString("salt")
			saltHex, _ := cmd.Flags().GetString("salt-hex")
			length, _ := cmd.Flags().GetInt("length")

			params, err := a.deriveParams(cmd)
			if err != nil {
				return err
			}

			salt := []byte(saltText)
			if saltHex != "" {
				salt, err = hex.DecodeString(saltHex)
				if err != nil {
					return fmt.Errorf("invalid salt encoding: %w", err)
				}
			}

			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			defer secret.Wipe(password)

			if length < 0 {
				return fmt.Errorf("invalid output length: %d", length)
			}
			out := secret.New(length)
			defer out.Zeroize()

			a.logger.Debug("deriving key", "params", params.String(), "length", length)
			if err := kdf.NewArgon2(params).DeriveKey(password, salt, out.Bytes()); err != nil {
				return err
			}
			return a.printer(cmd).PrintSecret(params.String(), hex.EncodeToString(out.Bytes()))
		},
	}

	addPasswordFlags(cmd, "password to derive from")
	cmd.Flags().String("salt", "", "salt string (at least 16 bytes)")
	cmd.Flags().String("salt-hex", "", "hex encoded salt (at least 16 bytes)")
	cmd.Flags().Int("length", 32, "output length in bytes")
	cmd.Flags().String("preset", "", "parameter preset (interactive, moderate)")
	cmd.Flags().String("algorithm", "", "argon2 variant (argon2i, argon2id)")
	cmd.Flags().Uint32("memory-cost", 0, "memory cost in KiB")
	cmd.Flags().Uint32("time-cost", 0, "number of passes")
	cmd.MarkFlagsMutuallyExclusive("salt", "salt-hex")
	cmd.MarkFlagsOneRequired("salt", "salt-hex")
	return cmd
}

// deriveParams resolves Argon2 parameters from the configuration and flags
func (a *app) deriveParams(cmd *cobra.Command) (kdf.Params, error) {
	kdfCfg := a.cfg.KDF

	if preset, _ := cmd.Flags().GetString("preset"); preset != "" {
		// A preset on the command line replaces configured overrides.
		kdfCfg.Preset = preset
		kdfCfg.MemoryCost = 0
		kdfCfg.TimeCost = 0
		kdfCfg.Algorithm = ""
	}
	if alg, _ := cmd.Flags().GetString("algorithm"); alg != "" {
		kdfCfg.Algorithm = alg
	}
	if memory, _ := cmd.Flags().GetUint32("memory-cost"); memory != 0 {
		kdfCfg.MemoryCost = memory
	}
	if timeCost, _ := cmd.Flags().GetUint32("time-cost"); timeCost != 0 {
		kdfCfg.TimeCost = timeCost
	}

	cfg := *a.cfg
	cfg.KDF = kdfCfg
	return cfg.KDFParams()
}

// readPassword returns the password selected by --password or --password-file
func readPassword(cmd *cobra.Command) ([]byte, error) {
	if path, _ := cmd.Flags().GetString("password-file"); path != "" {
		// #nosec G304 - Password file path is provided by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read password file: %w", err)
		}
		return bytes.TrimRight(data, "\r\n"), nil
	}
	if !cmd.Flags().Changed("password") {
		return nil, ErrPasswordRequired
	}
	password, _ := cmd.Flags().GetString("password")
	return []byte(password), nil
}

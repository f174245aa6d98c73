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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
)

var (
	// ErrKeyFileRequired is returned when a command needs a key file
	ErrKeyFileRequired = errors.New("key file is required")

	// ErrKeyFileExists is returned when generate would overwrite a key
	ErrKeyFileExists = errors.New("key file already exists (use --force to overwrite)")
)

// readKey loads a key from a JWK file
func readKey(path string) (keys.Key, error) {
	if path == "" {
		return nil, ErrKeyFileRequired
	}
	// #nosec G304 - Key file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	defer secret.Wipe(data)

	key, err := keys.FromJwk(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key file %s: %w", path, err)
	}
	return key, nil
}

// writeKey stores key as a JWK at path with owner-only permissions. Keys
// without a secret are written as public JWKs.
func writeKey(path string, key keys.Key, force bool) error {
	if !keys.Supports(key, keys.CapJwk) {
		return fmt.Errorf("%s keys cannot be stored as JWK", key.Algorithm())
	}
	jwk, err := keys.ToJwkSecret(key)
	if keyerr.KindOf(err) == keyerr.KindMissingSecretKey {
		public, perr := keys.ToJwkPublic(key)
		if perr != nil {
			return perr
		}
		return writePrivateFile(path, []byte(public), force)
	}
	if err != nil {
		return err
	}
	defer jwk.Zeroize()
	return writePrivateFile(path, jwk.Bytes(), force)
}

// writePrivateFile writes data to a 0600 file, refusing to replace an
// existing file unless force is set
func writePrivateFile(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return ErrKeyFileExists
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0600)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return f.Close()
}

// readMessage returns the message selected by the --message or --in flags
func readMessage(cmd *cobra.Command) ([]byte, error) {
	if path, _ := cmd.Flags().GetString("in"); path != "" {
		// #nosec G304 - Input path is provided by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		return data, nil
	}
	message, _ := cmd.Flags().GetString("message")
	return []byte(message), nil
}

// addMessageFlags registers the --message and --in flags
func addMessageFlags(cmd *cobra.Command) {
	cmd.Flags().String("message", "", "message to process")
	cmd.Flags().String("in", "", "file containing the message to process")
	cmd.MarkFlagsMutuallyExclusive("message", "in")
	cmd.MarkFlagsOneRequired("message", "in")
}

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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keycore/pkg/encoding/jwe"
)

// newEncryptCmd creates the encrypt command
func (a *app) newEncryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a message to a key as a compact JWE",
		Long: `Encrypt a message to a recipient key using ECDH-ES key agreement.

The recipient may be a public or secret JWK; only the public part is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("key")
			alg, _ := cmd.Flags().GetString("alg")
			enc, _ := cmd.Flags().GetString("enc")

			message, err := readMessage(cmd)
			if err != nil {
				return err
			}
			key, err := readKey(path)
			if err != nil {
				return err
			}
			defer key.Destroy()

			encrypter, err := jwe.NewEncrypter(alg, enc, key)
			if err != nil {
				return err
			}
			token, err := encrypter.Encrypt(message)
			if err != nil {
				return err
			}
			a.logger.Debug("encrypted message", "kid", encrypter.KeyID(), "length", len(message))
			return a.printer(cmd).PrintJWE(token)
		},
	}

	cmd.Flags().String("key", "", "recipient JWK key file")
	cmd.Flags().String("alg", "", "key management algorithm (default ECDH-ES+A256KW)")
	cmd.Flags().String("enc", "", "content encryption algorithm (default A256GCM)")
	addMessageFlags(cmd)
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

// newDecryptCmd creates the decrypt command
func (a *app) newDecryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a compact JWE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("key")
			token, _ := cmd.Flags().GetString("token")

			if in, _ := cmd.Flags().GetString("in"); in != "" {
				// #nosec G304 - Input path is provided by the user
				data, err := os.ReadFile(in)
				if err != nil {
					return fmt.Errorf("failed to read input file: %w", err)
				}
				token = strings.TrimSpace(string(data))
			}

			key, err := readKey(path)
			if err != nil {
				return err
			}
			defer key.Destroy()

			plaintext, err := jwe.Decrypt(token, key)
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintPlaintext(plaintext)
		},
	}

	cmd.Flags().String("key", "", "secret JWK key file")
	cmd.Flags().String("token", "", "compact JWE")
	cmd.Flags().String("in", "", "file containing the compact JWE")
	cmd.MarkFlagsMutuallyExclusive("token", "in")
	cmd.MarkFlagsOneRequired("token", "in")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

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

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/encoding"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
)

// newExportCmd creates the export command
func (a *app) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a JWK key file as PEM",
		Long: `Export a key as PEM.

The secret key is written as PKCS#8. With --password or --password-file
it is encrypted with PBES2 (PBKDF2-SHA256, AES-256-CBC). With --public
only the SubjectPublicKeyInfo is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("key")
			public, _ := cmd.Flags().GetBool("public")
			out, _ := cmd.Flags().GetString("out")
			force, _ := cmd.Flags().GetBool("force")

			key, err := readKey(path)
			if err != nil {
				return err
			}
			defer key.Destroy()

			var data []byte
			if public {
				data, err = encoding.EncodePublicKeyPEM(key)
			} else {
				password, perr := optionalPassword(cmd)
				if perr != nil {
					return perr
				}
				defer secret.Wipe(password)
				data, err = encoding.EncodePrivateKeyPEM(key, password)
			}
			if err != nil {
				return err
			}
			defer secret.Wipe(data)

			a.logger.Debug("exported key", "algorithm", key.Algorithm(), "public", public)
			printer := a.printer(cmd)
			if out != "" {
				if err := writePrivateFile(out, data, force); err != nil {
					return err
				}
				thumbprint, err := keys.JwkThumbprint(key)
				if err != nil {
					return err
				}
				return printer.PrintKeyFile(key.Algorithm().String(), thumbprint, out)
			}
			return printer.PrintPEM(key.Algorithm().String(), data)
		},
	}

	cmd.Flags().String("key", "", "JWK key file")
	cmd.Flags().Bool("public", false, "export only the public key")
	cmd.Flags().String("out", "", "write the PEM to this file")
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	addPasswordFlags(cmd, "password to encrypt the private key with")
	_ = cmd.MarkFlagRequired("key")
	cmd.MarkFlagsMutuallyExclusive("public", "password")
	cmd.MarkFlagsMutuallyExclusive("public", "password-file")
	return cmd
}

// newImportCmd creates the import command
func (a *app) newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a PEM key as JWK",
		Long: `Import a PKCS#8, SEC1 or SubjectPublicKeyInfo PEM key.

Encrypted PKCS#8 keys need --password or --password-file. Without --out
the JWK is printed to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString("in")
			out, _ := cmd.Flags().GetString("out")
			force, _ := cmd.Flags().GetBool("force")

			// #nosec G304 - Input path is provided by the user
			data, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			defer secret.Wipe(data)

			password, err := optionalPassword(cmd)
			if err != nil {
				return err
			}
			defer secret.Wipe(password)

			key, err := encoding.DecodePEM(data, password)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", in, err)
			}
			defer key.Destroy()

			thumbprint, err := keys.JwkThumbprint(key)
			if err != nil {
				return err
			}
			a.logger.Info("imported key", "algorithm", key.Algorithm(), "thumbprint", thumbprint)

			printer := a.printer(cmd)
			if out != "" {
				if err := writeKey(out, key, force); err != nil {
					return err
				}
				return printer.PrintKeyFile(key.Algorithm().String(), thumbprint, out)
			}

			jwk, err := keys.ToJwkSecret(key)
			if err != nil {
				public, perr := keys.ToJwkPublic(key)
				if perr != nil {
					return perr
				}
				return printer.PrintKey(key.Algorithm().String(), thumbprint, public)
			}
			defer jwk.Zeroize()
			return printer.PrintKey(key.Algorithm().String(), thumbprint, string(jwk.Bytes()))
		},
	}

	cmd.Flags().String("in", "", "PEM key file")
	cmd.Flags().String("out", "", "write the JWK to this file")
	cmd.Flags().Bool("force", false, "overwrite an existing key file")
	addPasswordFlags(cmd, "password of an encrypted private key")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func addPasswordFlags(cmd *cobra.Command, usage string) {
	cmd.Flags().String("password", "", usage)
	cmd.Flags().String("password-file", "", "file containing the password (trailing newline is removed)")
	cmd.MarkFlagsMutuallyExclusive("password", "password-file")
}

// optionalPassword is readPassword for commands where a password is optional
func optionalPassword(cmd *cobra.Command) ([]byte, error) {
	if !cmd.Flags().Changed("password") && !cmd.Flags().Changed("password-file") {
		return nil, nil
	}
	return readPassword(cmd)
}

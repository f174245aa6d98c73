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
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keycore/pkg/keys"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

// newGenerateCmd creates the generate command
func (a *app) newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new key",
		Long: `Generate a new key pair and write it as a secret JWK.

Without --out the secret JWK is printed to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			algName, _ := cmd.Flags().GetString("algorithm")
			out, _ := cmd.Flags().GetString("out")
			force, _ := cmd.Flags().GetBool("force")

			if algName == "" {
				algName = a.cfg.Keys.Algorithm
			}
			alg, err := types.ParseKeyAlg(algName)
			if err != nil {
				return err
			}

			key, err := keys.Generate(alg)
			if err != nil {
				return err
			}
			defer key.Destroy()

			thumbprint, err := keys.JwkThumbprint(key)
			if err != nil {
				return err
			}
			a.logger.Info("generated key", "algorithm", alg, "thumbprint", thumbprint)

			printer := a.printer(cmd)
			if out != "" {
				if err := writeKey(out, key, force); err != nil {
					return err
				}
				return printer.PrintKeyFile(alg.String(), thumbprint, out)
			}

			jwk, err := keys.ToJwkSecret(key)
			if err != nil {
				return err
			}
			defer jwk.Zeroize()
			return printer.PrintKey(alg.String(), thumbprint, string(jwk.Bytes()))
		},
	}

	cmd.Flags().StringP("algorithm", "a", "", "key algorithm (default from config, p256)")
	cmd.Flags().String("out", "", "write the secret JWK to this file")
	cmd.Flags().Bool("force", false, "overwrite an existing key file")
	return cmd
}

// newPublicCmd creates the public command
func (a *app) newPublicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "public",
		Short: "Print the public JWK of a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("key")
			key, err := readKey(path)
			if err != nil {
				return err
			}
			defer key.Destroy()

			public, err := keys.ToJwkPublic(key)
			if err != nil {
				return err
			}
			thumbprint, err := keys.JwkThumbprint(key)
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintKey(key.Algorithm().String(), thumbprint, public)
		},
	}

	cmd.Flags().String("key", "", "JWK key file")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

// newThumbprintCmd creates the thumbprint command
func (a *app) newThumbprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thumbprint",
		Short: "Print the RFC 7638 SHA-256 thumbprint of a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("key")
			key, err := readKey(path)
			if err != nil {
				return err
			}
			defer key.Destroy()

			thumbprint, err := keys.JwkThumbprint(key)
			if err != nil {
				return err
			}
			a.logger.Debug("computed thumbprint", "algorithm", key.Algorithm(), "thumbprint", thumbprint)
			return a.printer(cmd).PrintThumbprint(thumbprint)
		},
	}

	cmd.Flags().String("key", "", "JWK key file")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

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
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keycore/pkg/keys"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

// ErrSignatureInvalid is returned by verify when the signature does not match
var ErrSignatureInvalid = errors.New("signature verification failed")

// newSignCmd creates the sign command
func (a *app) newSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message",
		Long: `Sign a message with a secret JWK.

The signature is printed base64url encoded without padding. P-256 keys
produce deterministic ES256 signatures (r || s, 64 bytes).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("key")
			sigName, _ := cmd.Flags().GetString("sig-type")

			sigType, err := types.ParseSignatureType(sigName)
			if err != nil {
				return err
			}
			message, err := readMessage(cmd)
			if err != nil {
				return err
			}
			key, err := readKey(path)
			if err != nil {
				return err
			}
			defer key.Destroy()

			a.logger.Debug("signing message",
				"algorithm", key.Algorithm(),
				"sig_type", sigType,
				"length", len(message))

			signature, err := keys.Sign(key, message, sigType)
			if err != nil {
				return err
			}
			return a.printer(cmd).PrintSignature(base64.RawURLEncoding.EncodeToString(signature))
		},
	}

	cmd.Flags().String("key", "", "secret JWK key file")
	cmd.Flags().String("sig-type", "", "signature type (ES256); empty selects the key default")
	addMessageFlags(cmd)
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

// newVerifyCmd creates the verify command
func (a *app) newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a message signature",
		Long: `Verify a base64url encoded signature over a message.

The command exits with an error when the signature does not match.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("key")
			sigName, _ := cmd.Flags().GetString("sig-type")
			encoded, _ := cmd.Flags().GetString("signature")

			sigType, err := types.ParseSignatureType(sigName)
			if err != nil {
				return err
			}
			signature, err := base64.RawURLEncoding.DecodeString(encoded)
			if err != nil {
				return fmt.Errorf("invalid signature encoding: %w", err)
			}
			message, err := readMessage(cmd)
			if err != nil {
				return err
			}
			key, err := readKey(path)
			if err != nil {
				return err
			}
			defer key.Destroy()

			valid, err := keys.Verify(key, message, signature, sigType)
			if err != nil {
				return err
			}
			a.logger.Debug("verified signature", "algorithm", key.Algorithm(), "valid", valid)

			if err := a.printer(cmd).PrintVerification(valid); err != nil {
				return err
			}
			if !valid {
				return ErrSignatureInvalid
			}
			return nil
		},
	}

	cmd.Flags().String("key", "", "JWK key file (public or secret)")
	cmd.Flags().String("signature", "", "base64url encoded signature")
	cmd.Flags().String("sig-type", "", "signature type (ES256); empty selects the key default")
	addMessageFlags(cmd)
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

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
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/ecdh"
	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
)

// newExchangeCmd creates the exchange command
func (a *app) newExchangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Compute an ECDH shared secret",
		Long: `Compute the ECDH shared secret between a secret key and a peer public key.

When --hkdf-info or --hkdf-salt is given, the shared secret is expanded
with HKDF-SHA256 into --length bytes. The result is printed hex encoded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keyPath, _ := cmd.Flags().GetString("key")
			peerPath, _ := cmd.Flags().GetString("peer")
			info, _ := cmd.Flags().GetString("hkdf-info")
			salt, _ := cmd.Flags().GetString("hkdf-salt")
			length, _ := cmd.Flags().GetInt("length")

			key, err := readKey(keyPath)
			if err != nil {
				return err
			}
			defer key.Destroy()

			peer, err := readKey(peerPath)
			if err != nil {
				return err
			}
			defer peer.Destroy()

			useHKDF := cmd.Flags().Changed("hkdf-info") || cmd.Flags().Changed("hkdf-salt")
			kind := "ecdh"

			var shared *secret.Bytes
			if useHKDF {
				kind = "ecdh+hkdf-sha256"
				shared, err = ecdh.DeriveSymmetricKey(key, peer, []byte(salt), []byte(info), length)
			} else {
				shared, err = keys.KeyExchangeBytes(key, peer)
			}
			if err != nil {
				return err
			}
			defer shared.Zeroize()

			a.logger.Debug("computed shared secret", "algorithm", key.Algorithm(), "kind", kind)
			return a.printer(cmd).PrintSecret(kind, hex.EncodeToString(shared.Bytes()))
		},
	}

	cmd.Flags().String("key", "", "secret JWK key file")
	cmd.Flags().String("peer", "", "peer JWK key file")
	cmd.Flags().String("hkdf-info", "", "HKDF info string")
	cmd.Flags().String("hkdf-salt", "", "HKDF salt string")
	cmd.Flags().Int("length", 32, "HKDF output length in bytes")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("peer")
	return cmd
}

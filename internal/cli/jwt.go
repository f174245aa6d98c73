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
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keycore/pkg/encoding/jwt"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
)

// newJWTCmd creates the jwt command group
func (a *app) newJWTCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jwt",
		Short: "Sign and verify JSON Web Tokens",
	}
	cmd.AddCommand(a.newJWTSignCmd())
	cmd.AddCommand(a.newJWTVerifyCmd())
	return cmd
}

// newJWTSignCmd creates the jwt sign command
func (a *app) newJWTSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Issue a signed JWT",
		Long: `Issue a JWT signed with a secret JWK. The token header carries the
key's RFC 7638 thumbprint as kid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("key")
			subject, _ := cmd.Flags().GetString("sub")
			issuer, _ := cmd.Flags().GetString("iss")
			audience, _ := cmd.Flags().GetStringSlice("aud")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			extra, _ := cmd.Flags().GetStringToString("claim")

			key, err := readKey(path)
			if err != nil {
				return err
			}
			defer key.Destroy()

			now := time.Now()
			claims := gojwt.MapClaims{"iat": now.Unix()}
			for k, v := range extra {
				claims[k] = v
			}
			if subject != "" {
				claims["sub"] = subject
			}
			if issuer != "" {
				claims["iss"] = issuer
			}
			if len(audience) > 0 {
				claims["aud"] = audience
			}
			if ttl > 0 {
				claims["exp"] = now.Add(ttl).Unix()
			}

			kid, err := keys.JwkThumbprint(key)
			if err != nil {
				return err
			}
			token, err := jwt.SignWithKID(claims, key, kid)
			if err != nil {
				return err
			}
			a.logger.Debug("issued token", "algorithm", key.Algorithm(), "kid", kid)
			return a.printer(cmd).PrintToken(token)
		},
	}

	cmd.Flags().String("key", "", "secret JWK key file")
	cmd.Flags().String("sub", "", "subject claim")
	cmd.Flags().String("iss", "", "issuer claim")
	cmd.Flags().StringSlice("aud", nil, "audience claim")
	cmd.Flags().Duration("ttl", time.Hour, "token lifetime (0 for no expiry)")
	cmd.Flags().StringToString("claim", nil, "additional string claims (name=value)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

// newJWTVerifyCmd creates the jwt verify command
func (a *app) newJWTVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a JWT and print its claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("key")
			tokenString, _ := cmd.Flags().GetString("token")
			issuer, _ := cmd.Flags().GetString("iss")
			audience, _ := cmd.Flags().GetString("aud")
			leeway, _ := cmd.Flags().GetDuration("leeway")

			key, err := readKey(path)
			if err != nil {
				return err
			}
			defer key.Destroy()

			opts := []gojwt.ParserOption{gojwt.WithLeeway(leeway)}
			if issuer != "" {
				opts = append(opts, gojwt.WithIssuer(issuer))
			}
			if audience != "" {
				opts = append(opts, gojwt.WithAudience(audience))
			}

			token, err := jwt.Parse(strings.TrimSpace(tokenString), key, opts...)
			if err != nil {
				return fmt.Errorf("invalid token: %w", err)
			}
			claims, ok := token.Claims.(gojwt.MapClaims)
			if !ok {
				return fmt.Errorf("unexpected claims type %T", token.Claims)
			}
			return a.printer(cmd).PrintClaims(claims)
		},
	}

	cmd.Flags().String("key", "", "JWK key file (public or secret)")
	cmd.Flags().String("token", "", "compact JWT")
	cmd.Flags().String("iss", "", "required issuer")
	cmd.Flags().String("aud", "", "required audience")
	cmd.Flags().Duration("leeway", 0, "clock skew tolerance")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

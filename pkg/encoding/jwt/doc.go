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

// Package jwt signs and verifies JSON Web Tokens with keycore keys.
//
// A jwt.SigningMethod backed by keys.Signer and keys.Verifier is registered
// with github.com/golang-jwt/jwt/v5 under the JOSE name of each supported
// algorithm (ES256 for P-256). Signatures use the fixed width r||s form.
//
//	token, err := jwt.SignWithKID(jwt.MapClaims{"sub": "alice"}, key, kid)
//
// Parse only accepts tokens whose alg matches the key, so a public key
// imported from a JWK is enough to verify:
//
//	parsed, err := jwt.Parse(token, publicKey, gojwt.WithIssuer("keycore"))
package jwt

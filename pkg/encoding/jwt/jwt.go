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

package jwt

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeremyhahn/go-keycore/pkg/keys"
)

// Sign creates a JWT with claims and signs it with key. The algorithm is
// determined from the key.
func Sign(claims jwt.Claims, key keys.Key) (string, error) {
	return SignWithKID(claims, key, "")
}

// SignWithKID is Sign with a Key ID in the header. An empty kid is
// omitted. The JWK thumbprint of the key is a natural choice.
func SignWithKID(claims jwt.Claims, key keys.Key, kid string) (string, error) {
	if key == nil {
		return "", ErrInvalidKey
	}
	method, err := NewSigningMethod(key.Algorithm())
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(method, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	return token.SignedString(key)
}

// Parse verifies tokenString with key and validates the registered claims
// (exp, nbf, iat and any configured by opts). Claims are decoded into
// jwt.MapClaims.
func Parse(tokenString string, key keys.Key, opts ...jwt.ParserOption) (*jwt.Token, error) {
	return ParseWithClaims(tokenString, jwt.MapClaims{}, key, opts...)
}

// ParseWithClaims is Parse with a caller supplied claims value.
//
// The header alg must match the algorithm of key; the method named in the
// header is never looked up in the golang-jwt registry.
func ParseWithClaims(tokenString string, claims jwt.Claims, key keys.Key, opts ...jwt.ParserOption) (*jwt.Token, error) {
	if key == nil {
		return nil, ErrInvalidKey
	}
	method, err := NewSigningMethod(key.Algorithm())
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(opts...)
	token, parts, err := parser.ParseUnverified(tokenString, claims)
	if err != nil {
		return token, err
	}
	if alg, _ := token.Header["alg"].(string); alg != method.Alg() {
		return token, fmt.Errorf("%w: signing method %q is invalid, expected %s",
			jwt.ErrTokenSignatureInvalid, alg, method.Alg())
	}
	token.Method = method

	token.Signature, err = parser.DecodeSegment(parts[2])
	if err != nil {
		return token, fmt.Errorf("%w: could not base64 decode signature: %v", jwt.ErrTokenMalformed, err)
	}
	if err := method.Verify(strings.Join(parts[0:2], "."), token.Signature, key); err != nil {
		return token, fmt.Errorf("%w: %w", jwt.ErrTokenSignatureInvalid, err)
	}

	if err := jwt.NewValidator(opts...).Validate(claims); err != nil {
		return token, fmt.Errorf("%w: %w", jwt.ErrTokenInvalidClaims, err)
	}
	token.Valid = true
	return token, nil
}

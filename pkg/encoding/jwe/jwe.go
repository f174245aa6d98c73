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

package jwe

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/go-jose/go-jose/v4"

	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
)

const (
	// DefaultKeyAlgorithm is used when NewEncrypter is given an empty alg.
	DefaultKeyAlgorithm = jose.ECDH_ES_A256KW

	// DefaultContentEncryption is used when NewEncrypter is given an empty enc.
	DefaultContentEncryption = jose.A256GCM
)

var (
	keyAlgorithms = []jose.KeyAlgorithm{
		jose.ECDH_ES,
		jose.ECDH_ES_A128KW,
		jose.ECDH_ES_A192KW,
		jose.ECDH_ES_A256KW,
	}
	contentEncryptions = []jose.ContentEncryption{
		jose.A128GCM,
		jose.A192GCM,
		jose.A256GCM,
		jose.A128CBC_HS256,
		jose.A192CBC_HS384,
		jose.A256CBC_HS512,
	}
)

// ecKey is implemented by keys whose public part converts to crypto/ecdsa.
type ecKey interface {
	keys.Key
	keys.SecretBytesExporter
	ECDSAPublicKey() *ecdsa.PublicKey
}

// Encrypter encrypts payloads to a single recipient key.
type Encrypter struct {
	keyAlg     jose.KeyAlgorithm
	contentAlg jose.ContentEncryption
	recipient  *ecdsa.PublicKey
	kid        string
}

// NewEncrypter creates an encrypter for recipient.
//
// Parameters:
//   - keyEncAlg: ECDH-ES, ECDH-ES+A128KW, ECDH-ES+A192KW or ECDH-ES+A256KW.
//     An empty string selects ECDH-ES+A256KW.
//   - encAlg: A128GCM, A192GCM, A256GCM, A128CBC-HS256, A192CBC-HS384 or
//     A256CBC-HS512. An empty string selects A256GCM.
//   - recipient: the recipient's key. Only the public part is used.
func NewEncrypter(keyEncAlg, encAlg string, recipient keys.Key) (*Encrypter, error) {
	if recipient == nil {
		return nil, keyerr.Usage("recipient key cannot be nil")
	}

	keyAlg, err := parseKeyAlgorithm(keyEncAlg)
	if err != nil {
		return nil, err
	}
	contentAlg, err := parseContentEncryption(encAlg)
	if err != nil {
		return nil, err
	}

	ec, ok := recipient.(ecKey)
	if !ok {
		return nil, keyerr.Unsupported("JWE encryption is not supported for %s keys", recipient.Algorithm())
	}
	kid, err := keys.JwkThumbprint(recipient)
	if err != nil {
		return nil, err
	}

	return &Encrypter{
		keyAlg:     keyAlg,
		contentAlg: contentAlg,
		recipient:  ec.ECDSAPublicKey(),
		kid:        kid,
	}, nil
}

// KeyID returns the kid written to every token, the recipient's thumbprint.
func (e *Encrypter) KeyID() string {
	return e.kid
}

// Encrypt encrypts plaintext to JWE compact serialization.
func (e *Encrypter) Encrypt(plaintext []byte) (string, error) {
	return e.EncryptWithHeader(plaintext, nil)
}

// EncryptWithHeader encrypts plaintext with extra protected header
// parameters such as typ or cty. A kid entry replaces the default.
func (e *Encrypter) EncryptWithHeader(plaintext []byte, header map[string]interface{}) (string, error) {
	if plaintext == nil {
		return "", keyerr.Usage("plaintext cannot be nil")
	}

	kid := e.kid
	extraHeaders := make(map[jose.HeaderKey]interface{})
	for k, v := range header {
		if k == "kid" {
			if s, ok := v.(string); ok {
				kid = s
			}
			continue
		}
		extraHeaders[jose.HeaderKey(k)] = v
	}

	recipient := jose.Recipient{
		Algorithm: e.keyAlg,
		Key:       e.recipient,
		KeyID:     kid,
	}
	opts := &jose.EncrypterOptions{
		Compression:  jose.NONE,
		ExtraHeaders: extraHeaders,
	}
	encrypter, err := jose.NewEncrypter(e.contentAlg, recipient, opts)
	if err != nil {
		return "", fmt.Errorf("failed to create encrypter: %w", err)
	}

	jwe, err := encrypter.Encrypt(plaintext)
	if err != nil {
		return "", fmt.Errorf("encryption failed: %w", err)
	}
	serialized, err := jwe.CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("failed to serialize JWE: %w", err)
	}
	return serialized, nil
}

// Decrypt decrypts a compact JWE with the secret part of key.
func Decrypt(jweString string, key keys.Key) ([]byte, error) {
	if jweString == "" {
		return nil, keyerr.Usage("JWE string cannot be empty")
	}
	if key == nil {
		return nil, keyerr.Usage("key cannot be nil")
	}

	priv, err := privateKey(key)
	if err != nil {
		return nil, err
	}
	defer clear(priv.D.Bits())

	jwe, err := jose.ParseEncrypted(jweString, keyAlgorithms, contentEncryptions)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWE: %w", err)
	}
	plaintext, err := jwe.Decrypt(priv)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

// KeyResolver returns the key registered under kid.
type KeyResolver func(kid string) (keys.Key, error)

// DecryptWithResolver reads the kid from the token header, resolves the
// key and decrypts.
func DecryptWithResolver(jweString string, resolve KeyResolver) ([]byte, error) {
	if resolve == nil {
		return nil, keyerr.Usage("key resolver cannot be nil")
	}
	kid, err := ExtractKID(jweString)
	if err != nil {
		return nil, err
	}
	if kid == "" {
		return nil, fmt.Errorf("JWE header has no kid")
	}
	key, err := resolve(kid)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve key %q: %w", kid, err)
	}
	return Decrypt(jweString, key)
}

// ExtractKID extracts the Key ID (kid) from a JWE header without decrypting.
// Returns an empty string if no kid is present in the header.
func ExtractKID(jweString string) (string, error) {
	if jweString == "" {
		return "", keyerr.Usage("JWE string cannot be empty")
	}

	parts := strings.Split(jweString, ".")
	if len(parts) != 5 {
		return "", fmt.Errorf("invalid JWE format: expected 5 parts, got %d", len(parts))
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("failed to decode header: %w", err)
	}

	var header struct {
		Kid string `json:"kid,omitempty"`
	}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return "", fmt.Errorf("failed to unmarshal header: %w", err)
	}
	return header.Kid, nil
}

// privateKey builds a short-lived crypto/ecdsa key from the secret of key.
func privateKey(key keys.Key) (*ecdsa.PrivateKey, error) {
	ec, ok := key.(ecKey)
	if !ok {
		return nil, keyerr.Unsupported("JWE decryption is not supported for %s keys", key.Algorithm())
	}
	var priv *ecdsa.PrivateKey
	ec.WithSecretBytes(func(s []byte) {
		if s == nil {
			return
		}
		priv = &ecdsa.PrivateKey{
			PublicKey: *ec.ECDSAPublicKey(),
			D:         new(big.Int).SetBytes(s),
		}
	})
	if priv == nil {
		return nil, keyerr.MissingSecretKey("")
	}
	return priv, nil
}

func parseKeyAlgorithm(alg string) (jose.KeyAlgorithm, error) {
	if alg == "" {
		return DefaultKeyAlgorithm, nil
	}
	for _, a := range keyAlgorithms {
		if string(a) == alg {
			return a, nil
		}
	}
	return "", keyerr.Unsupported("unsupported key algorithm: %s", alg)
}

func parseContentEncryption(enc string) (jose.ContentEncryption, error) {
	if enc == "" {
		return DefaultContentEncryption, nil
	}
	for _, c := range contentEncryptions {
		if string(c) == enc {
			return c, nil
		}
	}
	return "", keyerr.Unsupported("unsupported content encryption algorithm: %s", enc)
}

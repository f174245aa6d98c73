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

// Package encoding converts keys to and from PKCS#8, PKIX and PEM.
//
// Private keys are written as PKCS#8, optionally encrypted with PBES2
// (PBKDF2-SHA256 and AES-256-CBC). Decoding dispatches through the keys
// registry, so only registered algorithms can be imported.
package encoding

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/x509"
	"fmt"
	"strings"

	"github.com/youmark/pkcs8"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

// ecdhKey is implemented by keys on a crypto/ecdh curve.
type ecdhKey interface {
	keys.Key
	ECDHPublicKey() *ecdh.PublicKey
}

// EncodePKCS8 encodes the secret of key to ASN.1 DER PKCS#8 format.
// If a password is provided, the key will be encrypted.
//
// Example:
//
//	der, err := encoding.EncodePKCS8(key, []byte("mypassword"))
func EncodePKCS8(key keys.Key, password []byte) ([]byte, error) {
	priv, err := ecdhPrivateKey(key)
	if err != nil {
		return nil, err
	}

	der, err := pkcs8.MarshalPrivateKey(priv, password, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal PKCS#8: %w", err)
	}
	return der, nil
}

// DecodePKCS8 decodes ASN.1 DER PKCS#8 encoded data to a key.
// If the data is encrypted, a password must be provided.
//
// Example:
//
//	key, err := encoding.DecodePKCS8(derData, []byte("mypassword"))
func DecodePKCS8(data []byte, password []byte) (keys.Key, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	parsed, err := pkcs8.ParsePKCS8PrivateKey(data, password)
	if err != nil && len(password) > 0 && strings.Contains(err.Error(), "only PKCS #5") {
		// Not an EncryptedPrivateKeyInfo; the password is ignored.
		parsed, err = pkcs8.ParsePKCS8PrivateKey(data)
	}
	if err != nil {
		if isPasswordError(err) {
			if len(password) == 0 {
				return nil, ErrPasswordRequired
			}
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("failed to parse PKCS#8: %w", err)
	}
	return fromPrivateKey(parsed)
}

// EncodePublicKeyPKIX encodes the public part of key to ASN.1 DER PKIX
// (SubjectPublicKeyInfo) format.
func EncodePublicKeyPKIX(key keys.Key) ([]byte, error) {
	if key == nil {
		return nil, keyerr.Usage("key cannot be nil")
	}
	ek, ok := key.(ecdhKey)
	if !ok {
		return nil, keyerr.Unsupported("PKIX encoding is not supported for %s keys", key.Algorithm())
	}

	der, err := x509.MarshalPKIXPublicKey(ek.ECDHPublicKey())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal PKIX public key: %w", err)
	}
	return der, nil
}

// DecodePublicKeyPKIX decodes ASN.1 DER PKIX encoded data to a public key.
func DecodePublicKeyPKIX(data []byte) (keys.Key, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	parsed, err := x509.ParsePKIXPublicKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PKIX public key: %w", err)
	}

	var pub *ecdh.PublicKey
	switch k := parsed.(type) {
	case *ecdsa.PublicKey:
		pub, err = k.ECDH()
		if err != nil {
			return nil, keyerr.Unsupported("unsupported EC public key: %v", err)
		}
	case *ecdh.PublicKey:
		pub = k
	default:
		return nil, keyerr.Unsupported("unsupported public key type %T", parsed)
	}

	alg, err := curveAlgorithm(pub.Curve())
	if err != nil {
		return nil, err
	}
	return keys.FromPublicBytes(alg, pub.Bytes())
}

// ecdhPrivateKey builds a short-lived crypto/ecdh key from the secret of key.
func ecdhPrivateKey(key keys.Key) (*ecdh.PrivateKey, error) {
	if key == nil {
		return nil, keyerr.Usage("key cannot be nil")
	}
	ek, ok := key.(ecdhKey)
	if !ok {
		return nil, keyerr.Unsupported("PKCS#8 encoding is not supported for %s keys", key.Algorithm())
	}

	sk, err := keys.ToSecretBytes(key)
	if err != nil {
		return nil, err
	}
	defer sk.Zeroize()

	priv, err := ek.ECDHPublicKey().Curve().NewPrivateKey(sk.Bytes())
	if err != nil {
		return nil, keyerr.Unexpected("invalid secret key: %v", err)
	}
	return priv, nil
}

// fromPrivateKey imports a parsed standard library private key.
func fromPrivateKey(parsed interface{}) (keys.Key, error) {
	var priv *ecdh.PrivateKey
	switch k := parsed.(type) {
	case *ecdsa.PrivateKey:
		var err error
		priv, err = k.ECDH()
		if err != nil {
			return nil, keyerr.Unsupported("unsupported EC private key: %v", err)
		}
	case *ecdh.PrivateKey:
		priv = k
	default:
		return nil, keyerr.Unsupported("unsupported private key type %T", parsed)
	}

	alg, err := curveAlgorithm(priv.Curve())
	if err != nil {
		return nil, err
	}
	b := priv.Bytes()
	defer secret.Wipe(b)
	return keys.FromSecretBytes(alg, b)
}

func curveAlgorithm(c ecdh.Curve) (types.KeyAlg, error) {
	switch c {
	case ecdh.P256():
		return types.KeyAlgP256, nil
	case ecdh.X25519():
		return types.KeyAlgX25519, nil
	default:
		return "", keyerr.Unsupported("unsupported curve %v", c)
	}
}

// isPasswordError checks if an error is related to incorrect password.
// The pkcs8 package returns various error messages for password issues.
func isPasswordError(err error) bool {
	msg := err.Error()
	for _, s := range []string{
		"pkcs8: incorrect password",
		"asn1: structure error",
		"tags don't match",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

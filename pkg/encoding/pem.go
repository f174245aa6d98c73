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

package encoding

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/jeremyhahn/go-keycore/pkg/keys"
)

// PEM block types
const (
	PEMTypeECPrivateKey        = "EC PRIVATE KEY"
	PEMTypePrivateKey          = "PRIVATE KEY"
	PEMTypeEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
	PEMTypePublicKey           = "PUBLIC KEY"
)

// EncodePrivateKeyPEM encodes the secret of key to PEM. With a password
// the block is an encrypted PKCS#8 "ENCRYPTED PRIVATE KEY", otherwise a
// plain "PRIVATE KEY".
//
// Example:
//
//	pemData, err := encoding.EncodePrivateKeyPEM(key, []byte("password"))
func EncodePrivateKeyPEM(key keys.Key, password []byte) ([]byte, error) {
	der, err := EncodePKCS8(key, password)
	if err != nil {
		return nil, err
	}

	blockType := PEMTypePrivateKey
	if len(password) > 0 {
		blockType = PEMTypeEncryptedPrivateKey
	}
	return encodePEM(blockType, der)
}

// DecodePrivateKeyPEM decodes a PEM private key. PKCS#8 blocks, encrypted
// or not, and SEC1 "EC PRIVATE KEY" blocks are accepted.
func DecodePrivateKeyPEM(data []byte, password []byte) (keys.Key, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMEncoding
	}

	switch block.Type {
	case PEMTypeEncryptedPrivateKey:
		if len(password) == 0 {
			return nil, ErrPasswordRequired
		}
		return DecodePKCS8(block.Bytes, password)
	case PEMTypePrivateKey:
		return DecodePKCS8(block.Bytes, nil)
	case PEMTypeECPrivateKey:
		parsed, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse EC private key: %w", err)
		}
		return fromPrivateKey(parsed)
	default:
		return nil, fmt.Errorf("%w: unexpected block type %q", ErrInvalidPEMEncoding, block.Type)
	}
}

// EncodePublicKeyPEM encodes the public part of key as a PEM "PUBLIC KEY".
func EncodePublicKeyPEM(key keys.Key) ([]byte, error) {
	der, err := EncodePublicKeyPKIX(key)
	if err != nil {
		return nil, err
	}
	return encodePEM(PEMTypePublicKey, der)
}

// DecodePublicKeyPEM decodes a PEM "PUBLIC KEY" block.
func DecodePublicKeyPEM(data []byte) (keys.Key, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMEncoding
	}
	if block.Type != PEMTypePublicKey {
		return nil, fmt.Errorf("%w: unexpected block type %q", ErrInvalidPEMEncoding, block.Type)
	}
	return DecodePublicKeyPKIX(block.Bytes)
}

// DecodePEM decodes either a private or a public PEM key.
func DecodePEM(data []byte, password []byte) (keys.Key, error) {
	block, _ := pem.Decode(data)
	if block != nil && block.Type == PEMTypePublicKey {
		return DecodePublicKeyPEM(data)
	}
	return DecodePrivateKeyPEM(data, password)
}

func encodePEM(blockType string, der []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := pem.Encode(&buf, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		return nil, fmt.Errorf("failed to encode PEM: %w", err)
	}
	return buf.Bytes(), nil
}

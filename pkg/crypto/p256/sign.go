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

package p256

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/sha256"
	"io"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/types"
)

func checkSignatureType(sigType types.SignatureType) error {
	switch sigType {
	case types.SigDefault, types.SigES256:
		return nil
	default:
		return keyerr.Unsupported("unsupported signature type %q for P-256", sigType)
	}
}

// WriteSignature signs message with deterministic ECDSA (RFC 6979) over
// SHA-256 and writes the 64-byte r || s signature to w.
func (k *KeyPair) WriteSignature(message []byte, sigType types.SignatureType, w io.Writer) error {
	if err := checkSignatureType(sigType); err != nil {
		return err
	}
	if k.secret == nil {
		return keyerr.Unsupported("undefined secret key")
	}
	sig, err := k.Sign(message)
	if err != nil {
		return err
	}
	if _, err := w.Write(sig); err != nil {
		return keyerr.Unexpected("failed to write signature: %v", err)
	}
	return nil
}

// Sign returns the 64-byte ES256 signature of message.
func (k *KeyPair) Sign(message []byte) ([]byte, error) {
	if k.secret == nil {
		return nil, keyerr.Unsupported("undefined secret key")
	}
	priv := &ecdsa.PrivateKey{
		PublicKey: *k.ECDSAPublicKey(),
		D:         new(big.Int).SetBytes(k.secret.Bytes()),
	}
	defer clear(priv.D.Bits())

	digest := sha256.Sum256(message)
	// A nil random source selects RFC 6979 deterministic nonces.
	der, err := priv.Sign(nil, digest[:], crypto.SHA256)
	if err != nil {
		return nil, keyerr.Unexpected("ECDSA signing failed: %v", err)
	}
	return derToFixed(der)
}

func derToFixed(der []byte) ([]byte, error) {
	var (
		r, s  = new(big.Int), new(big.Int)
		inner cryptobyte.String
	)
	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, keyerr.Unexpected("malformed ECDSA signature")
	}
	if r.BitLen() > 8*coordinateLength || s.BitLen() > 8*coordinateLength {
		return nil, keyerr.Unexpected("ECDSA signature component out of range")
	}
	out := make([]byte, SignatureLength)
	r.FillBytes(out[:coordinateLength])
	s.FillBytes(out[coordinateLength:])
	return out, nil
}

// VerifySignature checks a 64-byte r || s signature over message. Any
// malformed signature is reported as false.
func (k *KeyPair) VerifySignature(message, signature []byte, sigType types.SignatureType) (bool, error) {
	if err := checkSignatureType(sigType); err != nil {
		return false, err
	}
	return k.Verify(message, signature), nil
}

// Verify reports whether signature is a valid ES256 signature of message.
func (k *KeyPair) Verify(message, signature []byte) bool {
	if len(signature) != SignatureLength {
		return false
	}
	r := new(big.Int).SetBytes(signature[:coordinateLength])
	s := new(big.Int).SetBytes(signature[coordinateLength:])
	digest := sha256.Sum256(message)
	return ecdsa.Verify(k.ECDSAPublicKey(), digest[:], r, s)
}

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
	"io"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
	"github.com/jeremyhahn/go-keycore/pkg/keys"
)

// KeyExchange writes the 32-byte ECDH shared secret, the x-coordinate of
// secret·peer, to w.
func (k *KeyPair) KeyExchange(other keys.Key, w io.Writer) error {
	if other == nil {
		return keyerr.Usage("peer key is required")
	}
	peer, ok := other.(*KeyPair)
	if !ok {
		return keyerr.Unsupported("cannot exchange P-256 key with %s key", other.Algorithm())
	}
	if k.secret == nil {
		return keyerr.MissingSecretKey("")
	}
	return secret.Use(SharedSecretLength, func(buf []byte) error {
		if err := k.ecdh(peer, buf); err != nil {
			return err
		}
		if _, err := w.Write(buf); err != nil {
			return keyerr.Unexpected("failed to write shared secret: %v", err)
		}
		return nil
	})
}

func (k *KeyPair) ecdh(peer *KeyPair, out []byte) error {
	priv, err := curve().NewPrivateKey(k.secret.Bytes())
	if err != nil {
		return keyerr.Unexpected("invalid secret scalar: %v", err)
	}
	shared, err := priv.ECDH(peer.public)
	if err != nil {
		return keyerr.Unexpected("ECDH failed: %v", err)
	}
	copy(out, shared)
	secret.Wipe(shared)
	return nil
}

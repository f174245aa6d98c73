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

package jwk

import (
	"encoding/base64"
	"encoding/json"

	"github.com/jeremyhahn/go-keycore/pkg/crypto/secret"
	"github.com/jeremyhahn/go-keycore/pkg/keyerr"
)

// Mode selects what an Encoder produces.
type Mode int

const (
	// ModePublic emits public members only.
	ModePublic Mode = iota

	// ModeSecret emits public members and, when the key holds one, the
	// private member d.
	ModeSecret

	// ModeThumbprint emits the RFC 7638 canonical form: required public
	// members only, in lexicographic order, without whitespace.
	ModeThumbprint
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModePublic:
		return "public"
	case ModeSecret:
		return "secret"
	case ModeThumbprint:
		return "thumbprint"
	default:
		return "unknown"
	}
}

// ToJwk is implemented by keys that can describe themselves as a JWK.
type ToJwk interface {
	// ToJwkEncoder writes the key members to enc in canonical order.
	ToJwkEncoder(enc *Encoder) error
}

// initialCapacity fits a P-256 secret JWK without growing.
const initialCapacity = 192

// Encoder writes JWK members, in the order they are added, into a compact
// JSON object. Growing the buffer copies it and wipes the old backing
// array so that no stale copies of private members are left behind.
type Encoder struct {
	mode    Mode
	buf     []byte
	lastKey string
	count   int
}

// NewEncoder creates an encoder for the given mode.
func NewEncoder(mode Mode) *Encoder {
	enc := &Encoder{
		mode: mode,
		buf:  make([]byte, 0, initialCapacity),
	}
	enc.buf = append(enc.buf, '{')
	return enc
}

// Mode returns the encoder mode.
func (e *Encoder) Mode() Mode {
	return e.mode
}

// IsSecret returns true if private members should be emitted.
func (e *Encoder) IsSecret() bool {
	return e.mode == ModeSecret
}

// IsThumbprint returns true if the encoder produces the canonical
// thumbprint input.
func (e *Encoder) IsThumbprint() bool {
	return e.mode == ModeThumbprint
}

// AddStr adds a member with a string value.
func (e *Encoder) AddStr(key, value string) error {
	if err := e.startMember(key); err != nil {
		return err
	}
	quoted, err := json.Marshal(value)
	if err != nil {
		return keyerr.Unexpected("failed to encode JWK member %s: %v", key, err)
	}
	e.grow(len(quoted))
	e.buf = append(e.buf, quoted...)
	return nil
}

// AddAsBase64 adds a member whose value is the unpadded base64url encoding
// of data. The encoding is written straight into the output buffer.
func (e *Encoder) AddAsBase64(key string, data []byte) error {
	if err := e.startMember(key); err != nil {
		return err
	}
	n := base64.RawURLEncoding.EncodedLen(len(data))
	e.grow(n + 2)
	e.buf = append(e.buf, '"')
	start := len(e.buf)
	e.buf = e.buf[:start+n]
	base64.RawURLEncoding.Encode(e.buf[start:], data)
	e.buf = append(e.buf, '"')
	return nil
}

// Finish closes the JSON object and moves the result into a secret buffer.
// The encoder must not be used afterwards.
func (e *Encoder) Finish() *secret.Bytes {
	e.grow(1)
	e.buf = append(e.buf, '}')
	out := secret.FromSlice(e.buf)
	e.Discard()
	return out
}

// Discard wipes the encoder buffer without producing output.
func (e *Encoder) Discard() {
	secret.Wipe(e.buf[:cap(e.buf)])
	e.buf = e.buf[:0]
}

func (e *Encoder) startMember(key string) error {
	if e.mode == ModeThumbprint && e.count > 0 && key <= e.lastKey {
		return keyerr.Unexpected("thumbprint members must be in lexicographic order: %q after %q", key, e.lastKey)
	}
	quoted, err := json.Marshal(key)
	if err != nil {
		return keyerr.Unexpected("failed to encode JWK member name: %v", err)
	}
	e.grow(len(quoted) + 2)
	if e.count > 0 {
		e.buf = append(e.buf, ',')
	}
	e.buf = append(e.buf, quoted...)
	e.buf = append(e.buf, ':')
	e.lastKey = key
	e.count++
	return nil
}

func (e *Encoder) grow(n int) {
	if cap(e.buf)-len(e.buf) >= n {
		return
	}
	next := make([]byte, len(e.buf), 2*cap(e.buf)+n)
	copy(next, e.buf)
	secret.Wipe(e.buf[:cap(e.buf)])
	e.buf = next
}

// Encode runs key through an encoder in the given mode.
func Encode(key ToJwk, mode Mode) (*secret.Bytes, error) {
	enc := NewEncoder(mode)
	if err := key.ToJwkEncoder(enc); err != nil {
		enc.Discard()
		return nil, err
	}
	return enc.Finish(), nil
}

// EncodePublic returns the public JWK of key as a JSON string.
func EncodePublic(key ToJwk) (string, error) {
	out, err := Encode(key, ModePublic)
	if err != nil {
		return "", err
	}
	return string(out.Bytes()), nil
}

// EncodeSecret returns the JWK of key including the private member d when
// the key holds a secret. The caller should Zeroize the result.
func EncodeSecret(key ToJwk) (*secret.Bytes, error) {
	return Encode(key, ModeSecret)
}

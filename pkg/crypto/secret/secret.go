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

// Package secret provides a fixed-size byte buffer for key material that is
// overwritten with zeros when it is no longer needed.
//
// A Bytes value is wiped explicitly by Zeroize, and as a backstop by a
// runtime cleanup once the value becomes unreachable. Use acquires a scratch
// buffer for the duration of a callback and wipes it on every exit path.
//
// Bytes never prints its contents: String, GoString and the fmt verbs all
// produce a redacted placeholder, and JSON/text marshaling is refused.
package secret

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"runtime"
)

// ErrMarshal is returned when secret bytes are passed to an encoder.
var ErrMarshal = errors.New("secret: refusing to marshal secret bytes")

const redacted = "secret.Bytes(REDACTED)"

// Bytes holds secret material in memory it exclusively owns.
type Bytes struct {
	buf []byte
}

// New allocates a zero-filled secret buffer of n bytes.
func New(n int) *Bytes {
	b := &Bytes{buf: make([]byte, n)}
	// buf's backing array is a separate allocation, so it does not keep b alive.
	runtime.AddCleanup(b, func(buf []byte) { clear(buf) }, b.buf)
	return b
}

// FromSlice copies data into a new secret buffer. The caller remains
// responsible for wiping data.
func FromSlice(data []byte) *Bytes {
	b := New(len(data))
	copy(b.buf, data)
	return b
}

// Use allocates a scratch buffer of n bytes, passes it to fn and wipes it
// after fn returns or panics.
func Use(n int, fn func(buf []byte) error) error {
	b := New(n)
	defer b.Zeroize()
	return fn(b.buf)
}

// Bytes returns the underlying buffer without copying. The slice is only
// valid until Zeroize is called.
func (b *Bytes) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.buf
}

// Len returns the buffer length.
func (b *Bytes) Len() int {
	if b == nil {
		return 0
	}
	return len(b.buf)
}

// IsZeroized reports whether the buffer is empty or holds only zero bytes.
func (b *Bytes) IsZeroized() bool {
	if b == nil {
		return true
	}
	var acc byte
	for _, v := range b.buf {
		acc |= v
	}
	return acc == 0
}

// Clone returns an independent copy.
func (b *Bytes) Clone() *Bytes {
	return FromSlice(b.Bytes())
}

// Equal compares two buffers in constant time.
func (b *Bytes) Equal(other *Bytes) bool {
	return subtle.ConstantTimeCompare(b.Bytes(), other.Bytes()) == 1
}

// Zeroize overwrites the buffer with zeros. The length is preserved so that
// callers holding the Bytes value can still observe the wiped contents.
func (b *Bytes) Zeroize() {
	if b == nil {
		return
	}
	clear(b.buf)
	// Keep the store observable so the compiler cannot drop it.
	runtime.KeepAlive(b.buf)
}

// Wipe overwrites an arbitrary slice with zeros.
func Wipe(buf []byte) {
	clear(buf)
	runtime.KeepAlive(buf)
}

// String implements fmt.Stringer without exposing the contents.
func (b *Bytes) String() string {
	return redacted
}

// GoString implements fmt.GoStringer without exposing the contents.
func (b *Bytes) GoString() string {
	return redacted
}

// Format implements fmt.Formatter so that every verb, including %x and %v,
// prints the redacted placeholder.
func (b *Bytes) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(redacted))
}

// MarshalJSON refuses to encode secret material.
func (b *Bytes) MarshalJSON() ([]byte, error) {
	return nil, ErrMarshal
}

// MarshalText refuses to encode secret material.
func (b *Bytes) MarshalText() ([]byte, error) {
	return nil, ErrMarshal
}

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

// Package keyerr defines the error taxonomy shared by every key type,
// codec and key derivation function in go-keycore.
//
// Errors are returned wrapped with context using fmt.Errorf and the %w verb.
// Callers classify them with errors.Is against the sentinels below, or with
// KindOf when a stable, printable classification is needed.
package keyerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKeyData indicates malformed or out-of-range input while
	// decoding key material: wrong length, invalid curve point, invalid scalar.
	ErrInvalidKeyData = errors.New("keyerr: invalid key data")

	// ErrUnsupported indicates an operation or algorithm combination that is
	// not implemented for the key.
	ErrUnsupported = errors.New("keyerr: unsupported operation")

	// ErrMissingSecretKey indicates the operation requires a secret key but
	// the key only holds public material.
	ErrMissingSecretKey = errors.New("keyerr: missing secret key")

	// ErrUsage indicates a caller supplied parameter violates a documented
	// precondition.
	ErrUsage = errors.New("keyerr: usage error")

	// ErrUnexpected indicates an internal failure not attributable to caller
	// input. It is not recoverable.
	ErrUnexpected = errors.New("keyerr: unexpected error")
)

// Kind classifies an error into one of the taxonomy members.
type Kind string

const (
	KindNone             Kind = ""
	KindInvalidKeyData   Kind = "InvalidKeyData"
	KindUnsupported      Kind = "Unsupported"
	KindMissingSecretKey Kind = "MissingSecretKey"
	KindUsage            Kind = "Usage"
	KindUnexpected       Kind = "Unexpected"
	KindOther            Kind = "Other"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// KindOf returns the taxonomy kind of err. A nil error yields KindNone and
// an error outside the taxonomy yields KindOther.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidKeyData):
		return KindInvalidKeyData
	case errors.Is(err, ErrMissingSecretKey):
		return KindMissingSecretKey
	case errors.Is(err, ErrUnsupported):
		return KindUnsupported
	case errors.Is(err, ErrUsage):
		return KindUsage
	case errors.Is(err, ErrUnexpected):
		return KindUnexpected
	default:
		return KindOther
	}
}

// InvalidKeyData returns ErrInvalidKeyData wrapped with a formatted message.
func InvalidKeyData(format string, args ...any) error {
	return wrap(ErrInvalidKeyData, format, args...)
}

// Unsupported returns ErrUnsupported wrapped with a formatted message.
func Unsupported(format string, args ...any) error {
	return wrap(ErrUnsupported, format, args...)
}

// MissingSecretKey returns ErrMissingSecretKey wrapped with a formatted message.
func MissingSecretKey(format string, args ...any) error {
	return wrap(ErrMissingSecretKey, format, args...)
}

// Usage returns ErrUsage wrapped with a formatted message.
func Usage(format string, args ...any) error {
	return wrap(ErrUsage, format, args...)
}

// Unexpected returns ErrUnexpected wrapped with a formatted message.
func Unexpected(format string, args ...any) error {
	return wrap(ErrUnexpected, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	if format == "" {
		return kind
	}
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

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

import "errors"

// Failures of the PEM and PKCS#8 containers. Problems with the key itself
// (unsupported curve, missing secret) are reported through keyerr.
var (
	ErrInvalidData        = errors.New("encoding: empty or malformed input")
	ErrInvalidPassword    = errors.New("encoding: incorrect password")
	ErrPasswordRequired   = errors.New("encoding: key is encrypted and no password was given")
	ErrInvalidPEMEncoding = errors.New("encoding: no usable PEM key block")
)

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

// Package jwe implements JSON Web Encryption (RFC 7516) for keycore keys
// on top of go-jose.
//
// Key management uses ECDH-ES (RFC 7518 section 4.6) with the recipient's
// EC public key. Content is encrypted with AES-GCM or AES-CBC-HMAC. Every
// token carries the recipient's RFC 7638 thumbprint as kid so a decrypter
// holding several keys can select the right one.
//
// Example usage:
//
//	encrypter, _ := jwe.NewEncrypter("ECDH-ES+A256KW", "A256GCM", recipient)
//	token, _ := encrypter.Encrypt(plaintext)
//
//	plaintext, _ := jwe.Decrypt(token, recipient)
package jwe

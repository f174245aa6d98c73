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

package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintKey prints a key summary along with its JWK. The JWK is printed
// verbatim in text mode and embedded as an object in JSON mode.
func (p *Printer) PrintKey(algorithm, thumbprint, jwk string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"algorithm":  algorithm,
			"thumbprint": thumbprint,
			"jwk":        json.RawMessage(jwk),
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, jwk)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintKeyFile prints the result of writing a key to disk
func (p *Printer) PrintKeyFile(algorithm, thumbprint, path string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"algorithm":  algorithm,
			"thumbprint": thumbprint,
			"path":       path,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Algorithm:  %s\n", algorithm)
		fmt.Fprintf(p.writer, "Thumbprint: %s\n", thumbprint)
		fmt.Fprintf(p.writer, "Path:       %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintThumbprint prints a JWK thumbprint
func (p *Printer) PrintThumbprint(thumbprint string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"thumbprint": thumbprint,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, thumbprint)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSignature prints a signature (base64url encoded)
func (p *Printer) PrintSignature(signature string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"signature": signature,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, signature)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintVerification prints the outcome of a signature check
func (p *Printer) PrintVerification(valid bool) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"valid": valid,
		})
	case OutputFormatText:
		if valid {
			fmt.Fprintln(p.writer, "Signature is valid")
		} else {
			fmt.Fprintln(p.writer, "Signature is invalid")
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSecret prints derived key material (hex encoded) with a label
// describing how it was produced.
func (p *Printer) PrintSecret(kind, encoded string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"kind":   kind,
			"secret": encoded,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, encoded)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintJWE prints a compact JWE
func (p *Printer) PrintJWE(token string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"jwe": token,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, token)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintPEM prints a PEM encoded key
func (p *Printer) PrintPEM(algorithm string, data []byte) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"algorithm": algorithm,
			"pem":       string(data),
		})
	case OutputFormatText:
		_, err := p.writer.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintPlaintext prints decrypted data. JSON output carries it base64url
// encoded.
func (p *Printer) PrintPlaintext(plaintext []byte) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"plaintext": base64.RawURLEncoding.EncodeToString(plaintext),
		})
	case OutputFormatText:
		_, err := p.writer.Write(plaintext)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintToken prints a compact JWT
func (p *Printer) PrintToken(token string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"token": token,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, token)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintClaims prints verified token claims, sorted by name in text mode
func (p *Printer) PrintClaims(claims map[string]interface{}) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"valid":  true,
			"claims": claims,
		})
	case OutputFormatText:
		names := make([]string, 0, len(claims))
		for name := range claims {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(p.writer, "Token is valid")
		for _, name := range names {
			fmt.Fprintf(p.writer, "  %s: %v\n", name, claims[name])
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status":  "success",
			"message": message,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keycore/internal/config"
	"github.com/jeremyhahn/go-keycore/pkg/crypto/rand"
	"github.com/jeremyhahn/go-keycore/pkg/logging"

	// Register the built-in key algorithms.
	_ "github.com/jeremyhahn/go-keycore/pkg/crypto/p256"
	_ "github.com/jeremyhahn/go-keycore/pkg/crypto/x25519"
)

// rootFlags holds the persistent flag values
type rootFlags struct {
	configFile string
	output     string
	logLevel   string
	verbose    bool
}

// app carries the state shared by every command of one root command tree
type app struct {
	flags  rootFlags
	cfg    *config.Config
	logger *logging.Logger
}

// NewRootCommand builds the keycore command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "keycore",
		Short: "keycore CLI - key generation, signing, key agreement and KDF tool",
		Long: `keycore provides a command-line interface to the keycore key library.
Keys are stored as JSON Web Keys (RFC 7517).

Supported algorithms:
  - p256:   NIST P-256 (ES256 signatures, ECDH)
  - x25519: X25519 (key agreement only)

Key derivation:
  - argon2i, argon2id (interactive and moderate presets)`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.configFile, "config", "",
		"config file (default is $KEYCORE_CONFIG)")
	pf.StringVarP(&a.flags.output, "output", "o", "",
		"output format (text, json)")
	pf.StringVar(&a.flags.logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false,
		"verbose output")

	// Add subcommands
	rootCmd.AddCommand(a.newVersionCmd())
	rootCmd.AddCommand(a.newGenerateCmd())
	rootCmd.AddCommand(a.newPublicCmd())
	rootCmd.AddCommand(a.newThumbprintCmd())
	rootCmd.AddCommand(a.newSignCmd())
	rootCmd.AddCommand(a.newVerifyCmd())
	rootCmd.AddCommand(a.newExchangeCmd())
	rootCmd.AddCommand(a.newDeriveCmd())
	rootCmd.AddCommand(a.newEncryptCmd())
	rootCmd.AddCommand(a.newDecryptCmd())
	rootCmd.AddCommand(a.newJWTCmd())
	rootCmd.AddCommand(a.newExportCmd())
	rootCmd.AddCommand(a.newImportCmd())

	return rootCmd
}

// Execute runs the root command and reports any error on stderr
func Execute() error {
	rootCmd := NewRootCommand()
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		format := config.OutputText
		if f, ferr := cmd.Flags().GetString("output"); ferr == nil && f == config.OutputJSON {
			format = f
		}
		_ = NewPrinter(format, os.Stderr).PrintError(err) // best-effort
	}
	return err
}

// setup loads the configuration, applies flag overrides and initializes
// logging and the random source.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	configFile := a.flags.configFile
	if configFile == "" {
		configFile = os.Getenv("KEYCORE_CONFIG")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if a.flags.output != "" {
		cfg.Output = a.flags.output
	}
	if a.flags.logLevel != "" {
		cfg.Logging.Level = a.flags.logLevel
	}
	if a.flags.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	resolver, err := rand.NewResolver(cfg.RandConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize random source: %w", err)
	}
	rand.SetDefault(resolver)

	a.cfg = cfg
	a.logger = logger.With("command", cmd.Name())
	a.logger.Debug("configuration loaded",
		"config", configFile,
		"output", cfg.Output,
		"rng", cfg.RNG.Mode)
	return nil
}

// printer returns a Printer writing to the command's stdout
func (a *app) printer(cmd *cobra.Command) *Printer {
	return NewPrinter(a.cfg.Output, cmd.OutOrStdout())
}

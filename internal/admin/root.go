// Package admin implements the tokenquest-admin maintenance commands. They
// operate on the local SQLite store through the same syncer and ledger the
// REPL uses, so every invariant the REPL keeps holds here too.
package admin

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds the global flags of every command.
type RootOptions struct {
	DataDir  string
	Database string
	Catalog  string
	LogFile  string
	Format   string // "json" | "text"
	Verbose  bool

	open func(ctx context.Context, opts *RootOptions) (*Env, error)
}

// ValidFormats are the accepted values of --format.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the admin CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{open: OpenEnv})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenquest-admin",
		Short: "Maintenance commands for the local tokenquest store",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", ".tokenquest", "client data directory")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "tokenquest.db", "client database file, relative to --data-dir")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "YAML catalog of default missions and rewards")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "log file (stderr when empty)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewAdjustEnergyCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))

	return cmd
}

// withEnv opens the store, runs fn and closes the store again.
func withEnv(ctx context.Context, opts *RootOptions, fn func(*Env) error) error {
	env, err := opts.open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()
	return fn(env)
}

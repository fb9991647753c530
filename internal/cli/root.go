// Package cli is the fraudctl operator command line. It talks to the same
// stores as the server and applies decisions through ban escalation, never by
// writing bans directly.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format   string // "json" | "text"
	Operator string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the fraudctl root command. open is called lazily by
// the subcommands that need storage.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "fraudctl",
		Short:         "Operate the fraudgate ban and claim stores",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Operator, "operator", defaultOperator(), "operator name recorded on decisions")

	cmd.AddCommand(newClaimsCommand(opts, open))
	cmd.AddCommand(newBansCommand(opts, open))
	cmd.AddCommand(newTokenCommand(opts, open))

	return cmd
}

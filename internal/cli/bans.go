package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	banmodels "fraudgate/internal/ban/models"
)

func newBansCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bans",
		Short: "Inspect the ban record",
	}
	cmd.AddCommand(newBansCheckCommand(opts, open))
	cmd.AddCommand(newBansListCommand(opts, open))
	return cmd
}

type checkOutput struct {
	Kind   string `json:"kind"`
	Value  string `json:"value"`
	Banned bool   `json:"banned"`
}

func newBansCheckCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "check origin|identity <value>",
		Short: "Report whether an origin or identity is banned",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := banmodels.ParseSubjectKind(args[0])
			if err != nil {
				return err
			}
			value := banmodels.Normalize(kind, args[1])
			if value == "" {
				return fmt.Errorf("%q is not a valid %s", args[1], kind)
			}

			return withBackends(cmd.Context(), open, func(b *Backends) error {
				banned, err := b.Bans.IsBanned(cmd.Context(), kind, value)
				if err != nil {
					return err
				}
				p := newPrinter(opts, cmd.OutOrStdout())
				if p.json() {
					return p.encode(checkOutput{Kind: string(kind), Value: value, Banned: banned})
				}
				state := "not banned"
				if banned {
					state = "banned"
				}
				_, err = fmt.Fprintf(p.w, "%s %s: %s\n", kind, value, state)
				return err
			})
		},
	}
}

func newBansListCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list origin|identity",
		Short: "List ban entries of one kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := banmodels.ParseSubjectKind(args[0])
			if err != nil {
				return err
			}
			return withBackends(cmd.Context(), open, func(b *Backends) error {
				entries, err := b.Bans.List(cmd.Context(), kind)
				if err != nil {
					return err
				}
				p := newPrinter(opts, cmd.OutOrStdout())
				if p.json() {
					if entries == nil {
						entries = []*banmodels.BanEntry{}
					}
					return p.encode(entries)
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						e.Value,
						string(e.Source),
						e.Reason,
						valueOr(e.ClaimID, "-"),
						valueOr(e.CreatedBy, "-"),
						e.CreatedAt.UTC().Format(time.RFC3339),
					})
				}
				return p.table([]string{"VALUE", "SOURCE", "REASON", "CLAIM", "BY", "CREATED"}, rows)
			})
		},
	}
}

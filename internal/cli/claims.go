package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	claimmodels "fraudgate/internal/claim/models"
	"fraudgate/pkg/requestcontext"
)

func newClaimsCommand(opts *RootOptions, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "List and decide purchase claims",
	}
	cmd.AddCommand(newClaimsListCommand(opts, open))
	cmd.AddCommand(newClaimsDecideCommand(opts, open))
	return cmd
}

func newClaimsListCommand(opts *RootOptions, open Opener) *cobra.Command {
	var (
		limit    int
		cursor   string
		statuses []string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List claims, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := claimmodels.ListQuery{Limit: limit}
			for _, s := range statuses {
				query.Statuses = append(query.Statuses, claimmodels.Status(s))
			}
			if cursor != "" {
				c, err := claimmodels.DecodeCursor(cursor)
				if err != nil {
					return err
				}
				query.After = c
			}

			return withBackends(cmd.Context(), open, func(b *Backends) error {
				page, err := b.Reviewer.List(cmd.Context(), query)
				if err != nil {
					return err
				}
				return printClaims(newPrinter(opts, cmd.OutOrStdout()), page)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", claimmodels.DefaultListLimit, "maximum claims to show")
	cmd.Flags().StringVar(&cursor, "cursor", "", "continue after this cursor")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "filter by status (pending_review, approved, fraud)")
	return cmd
}

type claimListOutput struct {
	Claims     []*claimmodels.Claim `json:"claims"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

func printClaims(p *printer, page *claimmodels.Page) error {
	next := ""
	if page.Next != nil {
		next = claimmodels.EncodeCursor(*page.Next)
	}
	if p.json() {
		claims := page.Claims
		if claims == nil {
			claims = []*claimmodels.Claim{}
		}
		return p.encode(claimListOutput{Claims: claims, NextCursor: next})
	}

	rows := make([][]string, 0, len(page.Claims))
	for _, c := range page.Claims {
		amount := "-"
		if c.ExpectedAmount != nil {
			amount = strconv.FormatFloat(*c.ExpectedAmount, 'f', 2, 64)
		}
		rows = append(rows, []string{
			c.ID,
			string(c.Status),
			fmt.Sprintf("%.0f%%", c.Verdict.Confidence*100),
			amount,
			valueOr(c.Identity, "-"),
			c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := p.table([]string{"ID", "STATUS", "CONFIDENCE", "AMOUNT", "IDENTITY", "CREATED"}, rows); err != nil {
		return err
	}
	if next != "" {
		fmt.Fprintf(p.w, "\nnext cursor: %s\n", next)
	}
	return nil
}

func newClaimsDecideCommand(opts *RootOptions, open Opener) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "decide <claim-id> fraud|legitimate",
		Short: "Apply an operator decision; fraud bans the claim's origin and identity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision, err := claimmodels.ParseDecision(strings.TrimSpace(args[1]))
			if err != nil {
				return err
			}
			ctx := requestcontext.WithAdmin(cmd.Context(), opts.Operator)

			return withBackends(ctx, open, func(b *Backends) error {
				claim, err := b.Reviewer.Decide(ctx, args[0], decision, reason)
				if err != nil {
					return err
				}
				p := newPrinter(opts, cmd.OutOrStdout())
				if p.json() {
					return p.encode(map[string]string{"claim_id": claim.ID, "status": string(claim.Status)})
				}
				_, err = fmt.Fprintf(p.w, "claim %s is now %s\n", claim.ID, claim.Status)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded on the decision and any bans")
	return cmd
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

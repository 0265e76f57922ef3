package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/wpmigrate/internal/migrate"
)

func newMigrateCmd(a *app, kind migrate.Kind) *cobra.Command {
	var (
		opts   migrate.Options
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "post <slug>",
		Short: "Migrate one post by slug",
		Long: `Migrate one post by slug into the posts collection.

The body is converted into a single rich-text field. A post whose slug
already exists is skipped unless --update is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateMigrate(); err != nil {
				return err
			}
			opts.Kind = kind
			opts.Slug = args[0]

			runner, closeClients := a.newRunner()
			defer closeClients()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := runner.Run(ctx, opts)
			if err != nil {
				a.log.Error("migration failed", "kind", kind, "slug", opts.Slug, "error", err)
				return err
			}
			return printResult(cmd.OutOrStdout(), res, asJSON)
		},
	}
	if kind == migrate.KindPage {
		cmd.Use = "page <uri>"
		cmd.Short = "Migrate one page by URI"
		cmd.Long = `Migrate one page by URI into the pages collection.

Layout rows become content blocks; the author/reviewer line and the table of
contents become their own blocks. A page whose slug already exists is skipped
unless --update is given.`
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Fetch and convert, print a preview, write nothing")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "Update the document when the slug already exists")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run result as JSON")
	return cmd
}

func printResult(w io.Writer, res *migrate.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	switch res.Status {
	case migrate.StatusDryRun:
		_, err := res.Preview.WriteTo(w)
		return err
	case migrate.StatusSkipped:
		_, err := fmt.Fprintf(w, "skipped: %s already exists (id %s)\n", res.Slug, res.ID)
		return err
	default:
		_, err := fmt.Fprintln(w, res.ID)
		return err
	}
}

package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/wpmigrate/internal/config"
	"github.com/dgallion1/wpmigrate/internal/convert"
	"github.com/dgallion1/wpmigrate/internal/logger"
	"github.com/dgallion1/wpmigrate/internal/media"
	"github.com/dgallion1/wpmigrate/internal/migrate"
	"github.com/dgallion1/wpmigrate/internal/payload"
	"github.com/dgallion1/wpmigrate/internal/sanitize"
	"github.com/dgallion1/wpmigrate/internal/wordpress"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state every subcommand shares, built once the arguments have
// been accepted.
type app struct {
	cfg  config.Config
	log  *slog.Logger
	conv *convert.Converter
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "wpmigrate",
		Short: "Migrate WordPress posts and pages into Payload CMS",
		Long: `wpmigrate fetches a WordPress post or page over WPGraphQL, cleans its
markup, converts it into Payload rich text or layout blocks and stores it.

Configuration is read from the environment and from a .env file:
  WORDPRESS_GRAPHQL_URL, PAYLOAD_URL, PAYLOAD_API_KEY, RULES_FILE, ...`,
		// Argument errors still print usage; anything later only prints the error.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.AddCommand(
		newMigrateCmd(a, migrate.KindPost),
		newMigrateCmd(a, migrate.KindPage),
		newConvertCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init(logOut io.Writer) error {
	a.cfg = config.Load()
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	a.log = logger.New(logOut, "wpmigrate", a.cfg.LogLevel, a.cfg.LogFormat)

	rules, err := config.LoadRules(a.cfg.RulesFile)
	if err != nil {
		return err
	}
	a.conv = convert.New(sanitize.New(rules.Sanitize), rules.Page, a.log)
	return nil
}

// newRunner wires the WordPress source, the Payload store and media transfer.
// The returned func releases the clients.
func (a *app) newRunner() (*migrate.Runner, func()) {
	wp := wordpress.NewClient(a.cfg.WordPressURL, a.cfg.HTTPTimeout)
	ps := payload.NewClient(a.cfg.PayloadURL, a.cfg.PayloadAuthCollection, a.cfg.PayloadAPIKey, a.cfg.HTTPTimeout)
	transfer := media.NewTransfer(ps, a.cfg.MediaCollection, a.cfg.HTTPTimeout)
	runner := migrate.NewRunner(wp, ps, transfer, a.conv, migrate.Collections{
		Posts:      a.cfg.PostsCollection,
		Pages:      a.cfg.PagesCollection,
		Categories: a.cfg.CategoriesCollection,
	}, a.log)
	return runner, ps.Close
}

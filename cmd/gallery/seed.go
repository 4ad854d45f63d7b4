package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/gallery/internal/config"
	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/internal/schema"
	"github.com/JaimeStill/gallery/internal/seed"
	"github.com/JaimeStill/gallery/internal/users"
	"github.com/JaimeStill/gallery/internal/workflows"
	"github.com/JaimeStill/gallery/pkg/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in catalog",
	Long: `Load the built-in prompts and workflows into empty collections and create
the admin account from GALLERY_ADMIN_USERNAME / GALLERY_ADMIN_PASSWORD.

With storage.mode = "server" the relational database is seeded (pass
--migrate to apply the schema first). Otherwise the local store is seeded.
Running seed twice changes nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		migrateFirst, _ := cmd.Flags().GetBool("migrate")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if cfg.Storage.Server() {
			res, err := seedServer(cmd.Context(), cfg, migrateFirst)
			if flagJSON {
				if werr := writeJSON(cmd.OutOrStdout(), res); werr != nil {
					return werr
				}
				return err
			}
			if err != nil {
				printWarning("Seeded %d prompt(s), %d workflow(s), admin created: %t", res.Prompts, res.Workflows, res.Admin)
				return err
			}
			printSuccess("Seeded %d prompt(s), %d workflow(s), admin created: %t", res.Prompts, res.Workflows, res.Admin)
			return nil
		}

		return withApp(cmd.Context(), func(a *app) error {
			if err := a.prompts.Load(cmd.Context()); err != nil {
				return err
			}
			if err := a.workflows.Load(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Local store holds %d prompt(s) and %d workflow(s)", len(a.prompts.Items()), len(a.workflows.Items()))
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().Bool("migrate", false, "apply schema migrations before seeding")
}

func seedServer(ctx context.Context, cfg *config.Config, migrateFirst bool) (seed.Result, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if migrateFirst {
		if err := schema.Up(cfg.Database.URL()); err != nil {
			return seed.Result{}, err
		}
	}

	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return seed.Result{}, fmt.Errorf("database init failed: %w", err)
	}
	defer db.Connection().Close()

	c, err := seed.Load()
	if err != nil {
		return seed.Result{}, err
	}

	conn := db.Connection()
	s := seed.New(
		c,
		prompts.New(conn, logger, cfg.API.Pagination),
		workflows.New(conn, logger, cfg.API.Pagination),
		users.New(conn, logger),
		logger,
	)
	return s.Run(ctx, cfg.Admin)
}

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/toolshelf/internal/app"
	"github.com/MrSnakeDoc/toolshelf/internal/config"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
	"github.com/MrSnakeDoc/toolshelf/internal/sources/homepage"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <bookmarks.yaml>",
		Short: "Import Homepage bookmarks into the catalog",
		Long: `Import reads a Homepage bookmarks.yaml file. Each group becomes a category
and each bookmark a tool. Bookmarks whose URL is already cataloged are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logger.New(cfg.LogLevel, cfg.PrettyLog)
			defer func() { _ = log.Sync() }()

			core, err := app.NewCore(cfg, log)
			if err != nil {
				return err
			}
			defer core.Close(context.Background())

			ctx := cmd.Context()
			if err := core.Catalog.Load(ctx); err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			res, err := homepage.NewImporter(args[0], log).Run(ctx, core.Catalog)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d added, %d already present\n",
				color.GreenString("✓"), res.Added, res.Skipped)
			if res.Invalid+res.Failed > 0 {
				fmt.Fprintf(out, "%s %d invalid, %d not saved\n",
					color.YellowString("!"), res.Invalid, res.Failed)
			}
			return nil
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/toolshelf/internal/app"
	"github.com/MrSnakeDoc/toolshelf/internal/config"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
	"github.com/MrSnakeDoc/toolshelf/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "toolshelf",
		Short: "Catalog of web tools backed by Redis",
		Long: `toolshelf keeps a catalog of web tool links (name, URL, description, category).

Running it without a subcommand starts the HTTP API, same as 'toolshelf serve'.
Configuration comes from TOOLSHELF_* environment variables.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newImportCmd(),
		newListCmd(),
	)
	return root
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	return a.Run()
}

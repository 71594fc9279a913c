package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/toolshelf/internal/app"
	"github.com/MrSnakeDoc/toolshelf/internal/config"
	"github.com/MrSnakeDoc/toolshelf/internal/domain"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
	"github.com/MrSnakeDoc/toolshelf/internal/mirror"
	"github.com/MrSnakeDoc/toolshelf/internal/utils"
)

type listOptions struct {
	category   string
	query      string
	sort       string
	offline    bool
	mirrorPath string
}

func newListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog",
		Long: `List prints the catalog, optionally filtered by category and sorted by
dateAdded (default), alphabetical or recentlyUsed.

With --offline it reads the local SQLite mirror instead of Redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := domain.ParseSort(opts.sort)
			if err != nil {
				return err
			}
			view := domain.View{Category: opts.category, Query: opts.query, Sort: mode}

			var tools []*domain.Tool
			if opts.offline {
				tools, err = listOffline(opts.mirrorPath, cmd.ErrOrStderr())
			} else {
				tools, err = listRemote(cmd.Context())
			}
			if err != nil {
				return err
			}

			printTools(cmd.OutOrStdout(), domain.Project(tools, view))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "Only show this category")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Only show tools matching this text")
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", string(domain.SortDateAdded), "dateAdded | alphabetical | recentlyUsed")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Read the local mirror instead of Redis")
	cmd.Flags().StringVar(&opts.mirrorPath, "mirror", os.Getenv("TOOLSHELF_MIRROR_PATH"), "Mirror database used with --offline")
	return cmd
}

func listRemote(ctx context.Context) ([]*domain.Tool, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	core, err := app.NewCore(cfg, log)
	if err != nil {
		return nil, err
	}
	defer core.Close(context.Background())

	if err := core.Catalog.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return core.Catalog.Snapshot(), nil
}

func listOffline(path string, stderr io.Writer) ([]*domain.Tool, error) {
	if path == "" {
		return nil, errors.New("--offline needs --mirror or TOOLSHELF_MIRROR_PATH")
	}
	m, err := mirror.Open(path)
	if err != nil {
		return nil, err
	}
	defer utils.Close(m)

	tools, updated, err := m.Read()
	if err != nil {
		return nil, err
	}
	if updated.IsZero() {
		fmt.Fprintln(stderr, color.YellowString("mirror is empty"))
	} else {
		fmt.Fprintf(stderr, "%s\n", color.HiBlackString("mirror from %s", updated.Format(time.RFC3339)))
	}
	return tools, nil
}

func printTools(w io.Writer, tools []*domain.Tool) {
	if len(tools) == 0 {
		fmt.Fprintln(w, "no tools")
		return
	}

	bold := color.New(color.Bold).SprintFunc()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", bold("NAME"), bold("CATEGORY"), bold("URL"), bold("LAST USED"))
	for _, t := range tools {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Name, t.Category, t.URL, t.LastUsed.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

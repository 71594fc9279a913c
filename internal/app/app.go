package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/toolshelf/internal/config"
	"github.com/MrSnakeDoc/toolshelf/internal/httpserver"
	"github.com/MrSnakeDoc/toolshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
	"github.com/MrSnakeDoc/toolshelf/internal/scheduler"
	"github.com/MrSnakeDoc/toolshelf/internal/sources/homepage"
	"github.com/MrSnakeDoc/toolshelf/internal/version"
)

type App struct {
	*Core
	cfg      *config.Config
	server   *httpserver.Server
	reloader *scheduler.StoreReloader
}

func New(cfg *config.Config, log logger.Logger) (*App, error) {
	core, err := NewCore(cfg, log)
	if err != nil {
		return nil, err
	}

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewStoreReloader(core.Catalog, log, cfg.ReloadInterval, reloadTrigger)

	d := deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Build:         version.Get(),
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		RateBurst:     cfg.RateLimitBurst,
		RatePerMinute: cfg.RateLimitPerMinute,
		Catalog:       core.Catalog,
		Notifications: core.Notifications,
		Store:         core.Store,
		ReloadTrigger: reloadTrigger,
	}

	return &App{
		Core:     core,
		cfg:      cfg,
		server:   httpserver.New(cfg, log, d),
		reloader: reloader,
	}, nil
}

func (a *App) Run() error {
	a.Logger.Infof("🚀 Starting toolshelf %s on %s", version.Version, a.cfg.ListenPort)
	a.Logger.Infof("toolshelf %s", version.Get())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// a failed first load is reported to the feed; the catalog starts empty
	if err := a.Catalog.Load(ctx); err != nil {
		a.Logger.Warn("initial load from store failed", logger.Error(err))
	} else if a.cfg.SeedFile != "" && a.Catalog.Len() == 0 {
		a.seed(ctx)
	}

	a.reloader.Start(ctx)
	a.Logger.Info("store reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	// finalizes a pending delete so it is not lost with the process
	a.Core.Close(shutdownCtx)

	if runErr == nil {
		a.Logger.Info("✅ toolshelf stopped cleanly")
	}
	return runErr
}

func (a *App) seed(ctx context.Context) {
	a.Logger.Info("empty catalog, importing seed bookmarks",
		logger.String("file", a.cfg.SeedFile))
	if _, err := homepage.NewImporter(a.cfg.SeedFile, a.Logger).Run(ctx, a.Catalog); err != nil {
		a.Logger.Warn("seed import failed", logger.Error(err))
	}
}

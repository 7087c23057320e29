// Package app assembles the service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/post-rating/internal/admin"
	"github.com/Clark-Hu/post-rating/internal/cache"
	"github.com/Clark-Hu/post-rating/internal/config"
	"github.com/Clark-Hu/post-rating/internal/host"
	httpserver "github.com/Clark-Hu/post-rating/internal/http"
	"github.com/Clark-Hu/post-rating/internal/i18n"
	"github.com/Clark-Hu/post-rating/internal/plugin"
	"github.com/Clark-Hu/post-rating/internal/presenter"
	"github.com/Clark-Hu/post-rating/internal/rating"
	"github.com/Clark-Hu/post-rating/internal/repository"
	"github.com/Clark-Hu/post-rating/internal/store"
)

// App is the fully wired service.
type App struct {
	Config   config.Config
	Store    *store.Store
	Repo     *repository.Repository
	Options  rating.OptionsStore
	Plugin   *plugin.Plugin
	Hooks    *host.Hooks
	Registry *host.Registry
	Catalog  *i18n.Catalog
	Server   *httpserver.Server

	cache  *cache.Cache
	logger *zap.Logger
}

// New connects to storage, registers the plugin and boots the host.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if cfg.DBMigrate {
		if err := store.Migrate(cfg.DBURL, logger); err != nil {
			return nil, err
		}
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	st, err := store.New(dbCtx, cfg.DBURL, store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a := &App{Config: cfg, Store: st, Repo: repository.New(st), logger: logger}
	a.Options = a.Repo.Options

	if cfg.RedisAddr != "" {
		c, err := cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
			cache.WithDB(cfg.RedisDB),
		)
		if err != nil {
			logger.Warn("redis unavailable, options cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			a.cache = c
			a.Options = cache.NewCachedOptions(a.Repo.Options, c, time.Duration(cfg.OptionsCacheTTLSecs)*time.Second, logger)
			logger.Info("options cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	catalog, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Catalog = catalog

	ratings := rating.NewStore(a.Repo.PostMeta, a.Options)
	var panel *admin.Panel
	if cfg.AdminEnabled {
		panel = admin.New(ratings, a.Repo.Posts)
	}
	a.Plugin = plugin.New(ratings, panel, presenter.New(ratings, a.Repo.Posts), logger)
	a.Hooks = host.NewHooks()
	a.Plugin.Register(a.Hooks, cfg.AdminEnabled)

	a.Registry, err = host.Boot(ctx, a.Hooks)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("boot host: %w", err)
	}

	a.Server = httpserver.New(cfg, httpserver.Dependencies{
		Health:   st,
		Posts:    a.Repo.Posts,
		Options:  a.Options,
		Plugin:   a.Plugin,
		Hooks:    a.Hooks,
		Registry: a.Registry,
		Catalog:  catalog,
	}, logger)
	return a, nil
}

// Run serves HTTP until ctx is cancelled or the listener fails, then shuts
// the server down gracefully. Run is the only caller of Server.Shutdown.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Server.Start(); err != nil {
			return err
		}
		// Closed by the shutdown task below.
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})
	a.logger.Info("listening", zap.String("port", a.Config.Port))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close releases the database pool and the cache client.
func (a *App) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.Store != nil {
		a.Store.Close()
	}
}

package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"ghcn-dashboard/internal/config"
	db "ghcn-dashboard/internal/db"
	"ghcn-dashboard/internal/ghcn"
	httpapi "ghcn-dashboard/internal/httpapi"
	"ghcn-dashboard/internal/migrate"
	climate "ghcn-dashboard/internal/modules/climate"
	"ghcn-dashboard/internal/modules/climate/repository"
	"ghcn-dashboard/internal/modules/climate/selection"
	"ghcn-dashboard/internal/modules/climate/service"
	"ghcn-dashboard/internal/modules/climate/stations"
	climateviews "ghcn-dashboard/internal/modules/climate/views"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"feedURLTemplate", cfg.FeedURLTemplate,
		"feedTimeout", cfg.FeedTimeout,
		"feedMaxRetries", cfg.FeedMaxRetries,
		"feedRetryWait", cfg.FeedRetryWait,
		"archivePath", cfg.ArchivePath,
	)

	if err := climateviews.LoadTemplates(); err != nil {
		return err
	}

	var (
		archive repository.ArchiveRepository
		pinger  httpapi.Pinger
	)
	if cfg.ArchiveEnabled() {
		dbConn, err := openArchive(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(dbConn); closeErr != nil {
				slog.Error("db close", "error", closeErr)
			}
		}()
		archive = repository.NewArchiveRepository(dbConn)
		pinger = archive
	}

	client := ghcn.NewClient(
		cfg.FeedURLTemplate,
		&http.Client{Timeout: cfg.FeedTimeout},
		feedRetryPolicy(cfg),
		ghcn.WithLogger(slog.Default().With("component", "ghcn")),
	)
	preparer := service.NewService(client, archive)

	slog.Info("loading stations", "count", len(stations.Default()))
	catalog := preparer.LoadAll(ctx, stations.Default())
	if err := ctx.Err(); err != nil {
		return err
	}
	slog.Info("stations ready", "usable", catalog.Len())

	view := selection.New(catalog)
	mux := httpapi.NewMux(catalog, pinger)
	climate.RegisterFeature(mux, view)

	return serve(ctx, httpapi.NewServer(cfg, mux))
}

func openArchive(cfg config.Config) (*sql.DB, error) {
	dbConn, err := db.Open(cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	if err := migrate.Run(dbConn); err != nil {
		_ = db.Close(dbConn)
		return nil, err
	}
	slog.Info("archive ready", "path", cfg.ArchivePath)
	return dbConn, nil
}

// serve runs srv until ctx is done, then shuts it down gracefully.
// feedRetryPolicy applies the configured retry count and first wait on top of
// the client defaults.
func feedRetryPolicy(cfg config.Config) ghcn.RetryPolicy {
	policy := ghcn.DefaultRetryPolicy()
	policy.MaxRetries = cfg.FeedMaxRetries
	if cfg.FeedRetryWait > 0 {
		policy.MinWait = cfg.FeedRetryWait
	}
	if policy.MaxWait < policy.MinWait {
		policy.MaxWait = policy.MinWait
	}
	return policy
}

func serve(ctx context.Context, srv *http.Server) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		slog.Info("http shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/plantstock/plantstock/internal/app"
	"github.com/plantstock/plantstock/internal/audit"
	"github.com/plantstock/plantstock/internal/auth"
	"github.com/plantstock/plantstock/internal/lines"
	"github.com/plantstock/plantstock/internal/materials"
	"github.com/plantstock/plantstock/internal/observability"
	"github.com/plantstock/plantstock/internal/platform/db"
	"github.com/plantstock/plantstock/internal/rbac"
	"github.com/plantstock/plantstock/internal/users"
	"github.com/plantstock/plantstock/internal/workflow"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	catalog, err := app.LoadCatalog(cfg, logger)
	if err != nil {
		logger.Error("load rbac policy", slog.Any("error", err))
		os.Exit(1)
	}
	checker := rbac.NewChecker(catalog)
	rbacMiddleware := rbac.Middleware{Checker: checker, Logger: logger}

	metrics := observability.NewMetrics()

	auditStore, closeAudit := app.NewAuditStore(ctx, cfg, audit.NewPGStore(pool), logger)
	defer closeAudit()
	journal := audit.NewService(auditStore, logger, audit.WithObserver(metrics))

	runner := workflow.NewRunner(checker, journal, logger,
		workflow.WithDuration(cfg.NotifyDuration),
		workflow.WithOutcomeObserver(metrics),
	)

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, checker)

	materialsService := materials.NewService(materials.NewRepository(pool), runner)
	linesService := lines.NewService(lines.NewRepository(pool), runner)
	usersService := users.NewService(users.NewRepository(pool), runner, users.BcryptHasher)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthHandler:        authHandler,
		MaterialsHandler:   materials.NewHandler(logger, materialsService, rbacMiddleware),
		LinesHandler:       lines.NewHandler(logger, linesService, rbacMiddleware),
		UsersHandler:       users.NewHandler(logger, usersService, rbacMiddleware),
		PermissionsHandler: rbac.NewPermissionsHandler(checker, rbacMiddleware),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: cfg.AppReadTimeout,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}

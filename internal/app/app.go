package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pyhumph/jriit-cms-sub001/internal/config"
	"github.com/pyhumph/jriit-cms-sub001/internal/handler"
	"github.com/pyhumph/jriit-cms-sub001/internal/middleware"
	"github.com/pyhumph/jriit-cms-sub001/internal/router"
	"github.com/pyhumph/jriit-cms-sub001/internal/service"
	"github.com/pyhumph/jriit-cms-sub001/internal/tracing"
	"github.com/pyhumph/jriit-cms-sub001/internal/websocket"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func(ctx context.Context)
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	provider, err := tracing.NewProvider(ctx, tracing.Config{
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SampleRate:   cfg.TracingSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	core, err := BuildCore(ctx, cfg)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	core.RecycleBin.SetTracer(provider.Tracer())
	slog.Info("recycle bin ready", "resource_types", len(core.Registry.Adapters()), "tracing", provider.Enabled())

	backgroundCtx, cancelBackground := context.WithCancel(context.Background())

	hub := websocket.NewHub(core.Bus)
	go hub.Run(backgroundCtx)

	publicService := service.NewPublicService(core.Registry, cfg.PublicCacheTTL)
	core.RecycleBin.AddInvalidator(publicService)

	if cfg.OrphanSweepSchedule != "" {
		if err := core.Sweeper.Start(backgroundCtx, cfg.OrphanSweepSchedule); err != nil {
			cancelBackground()
			core.Close()
			_ = provider.Shutdown(ctx)
			return nil, err
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(service.NewTokenService(cfg.JWTSecret, 0))

	appRouter := router.New(cfg, authMiddleware, provider.Tracer(), router.Handlers{
		RecycleBin: handler.NewRecycleBinHandler(core.RecycleBin),
		Public:     handler.NewPublicHandler(publicService),
		Audit:      handler.NewAuditHandler(core.Audit),
		Health:     handler.NewHealthHandler(core.DB),
		Docs:       handler.NewDocsHandler(cfg.DocsPath),
		Events:     websocket.NewHandler(hub, cfg.CORSOrigins),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(ctx context.Context){
			func(context.Context) {
				core.Sweeper.Stop()
			},
			func(context.Context) {
				cancelBackground()
			},
			func(context.Context) {
				core.Close()
			},
			func(ctx context.Context) {
				if err := provider.Shutdown(ctx); err != nil {
					slog.Warn("failed to flush traces", "error", err)
				}
			},
		},
	}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-stop:
	case runErr = <-serveErr:
		slog.Error("server failed", "error", runErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup(ctx)
	}

	slog.Info("server stopped")
	return runErr
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pyhumph/jriit-cms-sub001/internal/config"
	"github.com/pyhumph/jriit-cms-sub001/internal/database"
	"github.com/pyhumph/jriit-cms-sub001/internal/event"
	"github.com/pyhumph/jriit-cms-sub001/internal/repository"
	"github.com/pyhumph/jriit-cms-sub001/internal/service"
	"github.com/pyhumph/jriit-cms-sub001/internal/storage"
	"github.com/pyhumph/jriit-cms-sub001/internal/sweeper"
)

// Core is the recycle bin without its HTTP surface. The server and the
// operator CLI both build on it.
type Core struct {
	DB         *database.DB
	Storage    *storage.Storage
	Bus        *event.InMemoryBus
	Registry   *service.Registry
	Audit      *service.AuditService
	RecycleBin *service.RecycleBinService
	Sweeper    *sweeper.Sweeper
}

func BuildCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	store, err := storage.New(cfg.UploadRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload storage: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pool := db.Pool
	mediaRepo := repository.NewMediaRepository(pool)

	adapters := make([]service.ResourceAdapter, 0, len(repository.ContentTables)+1)
	for _, table := range repository.ContentTables {
		adapters = append(adapters, repository.NewDeletableRepository(pool, table))
	}
	adapters = append(adapters, service.NewMediaAdapter(mediaRepo, store))

	registry, err := service.NewRegistry(adapters...)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build resource registry: %w", err)
	}

	bus := event.NewBus()
	audit := service.NewAuditService(repository.NewAuditRepository(pool))

	return &Core{
		DB:         db,
		Storage:    store,
		Bus:        bus,
		Registry:   registry,
		Audit:      audit,
		RecycleBin: service.NewRecycleBinService(registry, audit, bus, cfg.CleanupTimeout),
		Sweeper:    sweeper.New(mediaRepo, store, bus, cfg.OrphanSweepDryRun),
	}, nil
}

func (c *Core) Close() {
	c.DB.Close()
}

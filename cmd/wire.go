package cmd

import (
	"context"
	"fmt"

	"beryll-inventory/core/bmc"
	"beryll-inventory/core/config"
	"beryll-inventory/core/database"
	"beryll-inventory/core/events"
	"beryll-inventory/core/logger"
	"beryll-inventory/core/storage"
	"beryll-inventory/feature/components/reconcile"
	"beryll-inventory/feature/components/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime bundles what every command needs.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &runtime{cfg: cfg, logger: l, db: db}, nil
}

// storageClient returns nil when the object storage client cannot be built.
func (r *runtime) storageClient() storage.Client {
	client, err := storage.NewClient(r.cfg.Storage)
	if err != nil {
		r.logger.Warn("Object storage unavailable", zap.Error(err))
		return nil
	}
	return client
}

// engine wires the reconciliation engine with its BMC client, publisher and archiver.
func (r *runtime) engine(ctx context.Context, client storage.Client) (*reconcile.Engine, bmc.Client, events.Publisher, error) {
	bmcClient, err := bmc.New(r.cfg.BMC, r.logger)
	if err != nil {
		return nil, nil, nil, err
	}

	publisher, err := events.NewPublisher(r.cfg.Events, r.logger)
	if err != nil {
		r.logger.Warn("Event publisher unavailable, events are dropped", zap.Error(err))
		publisher = events.Noop{}
	}

	engine := reconcile.NewEngine(store.New(r.db), bmcClient, reconcile.Config{
		Reconcile:  r.cfg.Reconcile,
		BMCTimeout: r.cfg.BMC.Timeout(),
	}, publisher, r.logger)

	if r.cfg.Reconcile.ArchiveSnapshots {
		if client == nil {
			r.logger.Warn("Snapshot archiving enabled but object storage is not configured")
		} else {
			if _, err := storage.EnsureBucket(ctx, client, r.cfg.Storage.Bucket, r.cfg.Storage.Region); err != nil {
				r.logger.Warn("Snapshot bucket check failed", zap.Error(err))
			}
			engine.WithArchiver(reconcile.NewSnapshotArchiver(client, r.cfg.Storage.Bucket, r.cfg.Storage.SnapshotRetention))
		}
	}

	return engine, bmcClient, publisher, nil
}

package integrity

import (
	"context"

	"beryll-inventory/core/storage"
	"beryll-inventory/feature/components/models"
	"beryll-inventory/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	region string
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new integrity service. client may be nil when object
// storage is not configured.
func NewService(client storage.Client, cfg storage.Config, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
		db:     db,
	}
}

// CheckSchema verifies the inventory tables.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, models.Server{}, models.ServerComponent{}, models.ComponentHistory{})
}

// CheckStorage inspects the snapshot bucket.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	return checks.CheckStorage(ctx, s.client, s.bucket)
}

// FixStorage creates the snapshot bucket if needed.
func (s *Service) FixStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	return checks.FixStorage(ctx, s.client, s.bucket, s.region, s.logger)
}

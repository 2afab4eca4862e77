package checks

import (
	"context"
	"fmt"

	"beryll-inventory/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageReport describes the snapshot bucket.
type StorageReport struct {
	Bucket    string `json:"bucket"`
	Exists    bool   `json:"exists"`
	Created   bool   `json:"created,omitempty"`
	Snapshots int    `json:"snapshots"`
}

// CheckStorage reports whether the snapshot bucket exists and how many raw
// BMC snapshots it holds.
func CheckStorage(ctx context.Context, client storage.Client, bucket string) (*StorageReport, error) {
	report := &StorageReport{Bucket: bucket}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.Exists = exists
	if !exists {
		return report, nil
	}

	opts := minio.ListObjectsOptions{Prefix: storage.SnapshotPrefix + "/", Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		report.Snapshots++
	}
	return report, nil
}

// FixStorage creates the snapshot bucket when it is missing.
func FixStorage(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) (*StorageReport, error) {
	created, err := storage.EnsureBucket(ctx, client, bucket, region)
	if err != nil {
		logger.Error("Failed to create snapshot bucket", zap.String("bucket", bucket), zap.Error(err))
		return nil, err
	}
	if created {
		logger.Info("Created snapshot bucket", zap.String("bucket", bucket))
	}

	report, err := CheckStorage(ctx, client, bucket)
	if err != nil {
		return nil, err
	}
	report.Created = created
	return report, nil
}

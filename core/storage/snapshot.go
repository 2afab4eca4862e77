package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// SnapshotPrefix is the object prefix for raw BMC inventory reports.
const SnapshotPrefix = "bmc-snapshots"

// SnapshotKey builds the object name for a server's report taken at ts.
// Keys sort chronologically within a server prefix.
func SnapshotKey(serverID uint, ts time.Time, runID string) string {
	return fmt.Sprintf("%s/%d/%s_%s.json", SnapshotPrefix, serverID, ts.UTC().Format("20060102T150405Z"), runID)
}

// PutJSON encodes v as JSON and uploads it as objectName.
func PutJSON(ctx context.Context, client Client, bucket, objectName string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", objectName, err)
	}

	_, err = client.PutObject(ctx, bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

// PruneSnapshots removes the oldest snapshots of a server beyond keep.
// It returns the number of objects removed.
func PruneSnapshots(ctx context.Context, client Client, bucket string, serverID uint, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	prefix := fmt.Sprintf("%s/%d/", SnapshotPrefix, serverID)
	var keys []string
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return 0, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			keys = append(keys, obj.Key)
		}
	}

	if len(keys) <= keep {
		return 0, nil
	}
	sort.Strings(keys)
	stale := keys[:len(keys)-keep]

	objectsCh := make(chan minio.ObjectInfo, len(stale))
	for _, k := range stale {
		objectsCh <- minio.ObjectInfo{Key: k}
	}
	close(objectsCh)

	for rErr := range client.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		return 0, fmt.Errorf("failed to remove snapshot %s: %w", rErr.ObjectName, rErr.Err)
	}
	return len(stale), nil
}

// EnsureBucket creates bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, client Client, bucket, region string) (created bool, err error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return false, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return true, nil
}

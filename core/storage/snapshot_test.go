package storage_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"beryll-inventory/core/storage"
	"beryll-inventory/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSnapshotKey(t *testing.T) {
	ts := time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)
	assert.Equal(t, "bmc-snapshots/7/20240305T102030Z_run1.json", storage.SnapshotKey(7, ts, "run1"))
}

func TestPutJSON(t *testing.T) {
	client := new(mocks.Client)
	var uploaded []byte

	client.On("PutObject", mock.Anything, "bucket", "obj.json", mock.Anything, mock.AnythingOfType("int64"), mock.Anything).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)

	err := storage.PutJSON(context.Background(), client, "bucket", "obj.json", map[string]int{"cpus": 2})
	require.NoError(t, err)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(uploaded, &decoded))
	assert.Equal(t, 2, decoded["cpus"])
}

func TestPutJSON_UploadError(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "bucket", "obj.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, assert.AnError)

	err := storage.PutJSON(context.Background(), client, "bucket", "obj.json", "x")
	assert.ErrorIs(t, err, assert.AnError)
}

func objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func TestPruneSnapshots(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(objects(
		"bmc-snapshots/1/20240103T000000Z_c.json",
		"bmc-snapshots/1/20240101T000000Z_a.json",
		"bmc-snapshots/1/20240102T000000Z_b.json",
	))

	var removed []string
	client.On("RemoveObjects", mock.Anything, "bucket", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			for obj := range args.Get(2).(<-chan minio.ObjectInfo) {
				removed = append(removed, obj.Key)
			}
		}).
		Return(nil)

	n, err := storage.PruneSnapshots(context.Background(), client, "bucket", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"bmc-snapshots/1/20240101T000000Z_a.json"}, removed)
}

func TestPruneSnapshots_UnderLimit(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(objects("bmc-snapshots/1/a.json"))

	n, err := storage.PruneSnapshots(context.Background(), client, "bucket", 1, 5)
	require.NoError(t, err)
	assert.Zero(t, n)
	client.AssertNotCalled(t, "RemoveObjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureBucket(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "bucket").Return(true, nil)

		created, err := storage.EnsureBucket(context.Background(), client, "bucket", "")
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("Created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "bucket").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "bucket", minio.MakeBucketOptions{Region: "eu"}).Return(nil)

		created, err := storage.EnsureBucket(context.Background(), client, "bucket", "eu")
		require.NoError(t, err)
		assert.True(t, created)
	})
}

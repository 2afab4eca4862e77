package reconcile

import (
	"context"
	"time"

	"beryll-inventory/core/bmc"
	"beryll-inventory/core/storage"
)

// Archiver keeps the raw BMC report of a run.
type Archiver interface {
	Archive(ctx context.Context, serverID uint, runID string, components []bmc.Component) error
}

// snapshot is the archived document.
type snapshot struct {
	ServerID   uint            `json:"serverId"`
	RunID      string          `json:"runId"`
	TakenAt    time.Time       `json:"takenAt"`
	Components []bmc.Component `json:"components"`
}

// SnapshotArchiver uploads raw reports to object storage and prunes old ones.
type SnapshotArchiver struct {
	client    storage.Client
	bucket    string
	retention int
	now       func() time.Time
}

// NewSnapshotArchiver returns an archiver keeping retention snapshots per server.
func NewSnapshotArchiver(client storage.Client, bucket string, retention int) *SnapshotArchiver {
	return &SnapshotArchiver{client: client, bucket: bucket, retention: retention, now: time.Now}
}

// Archive implements Archiver.
func (a *SnapshotArchiver) Archive(ctx context.Context, serverID uint, runID string, components []bmc.Component) error {
	taken := a.now().UTC()
	doc := snapshot{ServerID: serverID, RunID: runID, TakenAt: taken, Components: components}

	if err := storage.PutJSON(ctx, a.client, a.bucket, storage.SnapshotKey(serverID, taken, runID), doc); err != nil {
		return err
	}
	_, err := storage.PruneSnapshots(ctx, a.client, a.bucket, serverID, a.retention)
	return err
}

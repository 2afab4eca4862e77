// Package storage wraps the MinIO Go client for archiving raw BMC inventory reports.
//
// Every force/merge run can upload the exact report it reconciled against, so an
// operator can later see what the controller returned when a component was added or
// removed. Snapshots live under bmc-snapshots/<serverId>/ and are pruned to the
// configured retention.
//
// The Client interface keeps only the calls the service needs, which keeps the
// testify mock in core/storage/mocks small.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.PutJSON(ctx, client, cfg.Storage.Bucket, storage.SnapshotKey(id, time.Now(), runID), report)
package storage

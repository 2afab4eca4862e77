// Package integrity provides operational health checks for the inventory service.
//
// # Checks Provided
//
//   - Schema: Validates that the connected database has the inventory tables with
//     the columns (and, where declared, the types) the gorm models expect.
//   - Storage: Checks that the BMC snapshot bucket exists and counts the archived
//     snapshots. Supports creating the bucket.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
package integrity

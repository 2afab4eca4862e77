// Package store persists server components and their history with gorm.
//
// Serial numbers are unique fleet-wide. FindSerialConflict and
// EnsureSerialsUnique check both serial columns crosswise before a write, and
// unique index violations raised by the database come back as
// *SerialConflictError as well.
//
// History is append-only: the package exposes no way to update or delete an
// entry.
package store

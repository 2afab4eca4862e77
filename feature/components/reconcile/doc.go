// Package reconcile compares the persisted inventory of a server with the
// live report of its BMC and applies one of three policies:
//
//   - compare classifies only
//   - force mirrors the BMC, never deleting manually entered components
//   - merge adds and updates, and flags removals and serial changes for review
//
// Mutating runs happen in a single transaction that writes one history entry
// per applied change. Flagged components are settled through Resolve.
package reconcile

// Package components implements the server component inventory feature.
//
// A server's components are kept in sync with what its BMC reports through the
// reconcile subpackage, and edited by hand through the manual operations of
// Service. Every change is written together with a history entry in one
// transaction. Edits to a server fail with a conflict while a reconciliation
// holds it.
//
// # HTTP Endpoints
//
//   - GET    /servers/:id/components : inventory grouped by type
//   - GET    /servers/:id/components/compare : read-only classification against the BMC
//   - POST   /servers/:id/components/fetch : compare, force or merge
//   - PUT    /servers/:id/components/:componentId/resolve-discrepancy : keep or delete
//   - GET    /servers/:id/components/history : server history
//   - POST   /servers/:id/components : manual add
//   - GET    /servers/:id/bmc/check, PUT /servers/:id/bmc-address
//   - POST   /components/check-serial, GET /components/search, GET /components/scan
//   - GET, PUT, DELETE /components/:id, PUT /components/:id/serials,
//     POST /components/:id/replace, GET /components/:id/history
package components

// Package events publishes committed inventory changes to NATS so that other
// services (dashboards, audit collectors) can react without polling.
//
// Publishing happens after the database transaction commits and is best effort:
// a failed publish is logged by the caller and never rolls back a reconciliation.
package events

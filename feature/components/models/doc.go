// Package models defines the gorm models of the component inventory: servers,
// their components and the append-only component history.
package models

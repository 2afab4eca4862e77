package store

import (
	"errors"
	"fmt"
)

var (
	// ErrServerNotFound is returned when no server has the requested id.
	ErrServerNotFound = errors.New("server not found")
	// ErrComponentNotFound is returned when no component has the requested id
	// (or it belongs to another server).
	ErrComponentNotFound = errors.New("component not found")
	// ErrSerialConflict matches every *SerialConflictError.
	ErrSerialConflict = errors.New("serial number conflict")
)

// SerialConflictError reports a serial value already owned by another component.
type SerialConflictError struct {
	Serial      string `json:"serial"`
	ComponentID uint   `json:"componentId"`
	ServerID    uint   `json:"serverId"`
}

func (e *SerialConflictError) Error() string {
	if e.ComponentID == 0 {
		return fmt.Sprintf("serial %q is already in use", e.Serial)
	}
	return fmt.Sprintf("serial %q already belongs to component %d on server %d", e.Serial, e.ComponentID, e.ServerID)
}

func (e *SerialConflictError) Unwrap() error { return ErrSerialConflict }

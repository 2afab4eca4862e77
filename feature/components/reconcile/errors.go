package reconcile

import "errors"

var (
	// ErrReconciliationInProgress is returned when another run or edit holds the server.
	ErrReconciliationInProgress = errors.New("reconciliation already in progress for this server")
	// ErrBmcUnavailable wraps every failure to obtain the live inventory.
	ErrBmcUnavailable = errors.New("bmc unavailable")
	// ErrNotFlagged is returned when resolving a component that awaits no review.
	ErrNotFlagged = errors.New("component is not flagged for review")
	// ErrInvalidResolution is returned for resolutions other than keep and delete.
	ErrInvalidResolution = errors.New("invalid resolution (expected keep or delete)")
)

package reconcile

import (
	"context"
	"fmt"
	"strings"

	"beryll-inventory/core/events"
	"beryll-inventory/core/metrics"
	"beryll-inventory/core/utils"
	"beryll-inventory/feature/components/models"
	"beryll-inventory/feature/components/store"

	"go.uber.org/zap"
)

// Resolution is the human decision on a flagged component.
type Resolution string

const (
	// ResolutionKeep clears the flag and leaves the component untouched.
	ResolutionKeep Resolution = "keep"
	// ResolutionDelete removes the component.
	ResolutionDelete Resolution = "delete"
)

// ParseResolution parses keep or delete.
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(strings.ToLower(strings.TrimSpace(s))) {
	case ResolutionKeep:
		return ResolutionKeep, nil
	case ResolutionDelete:
		return ResolutionDelete, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidResolution, s)
}

// ResolveResult is returned by Resolve.
type ResolveResult struct {
	Success   bool                    `json:"success"`
	Action    string                  `json:"action"`
	Component *models.ServerComponent `json:"component,omitempty"`
}

const resolutionReason = "discrepancy resolution"

// Resolve applies a human decision to a component flagged by compare or merge.
func (e *Engine) Resolve(ctx context.Context, serverID, componentID uint, resolution Resolution, userID *uint) (*ResolveResult, error) {
	resolution, err := ParseResolution(string(resolution))
	if err != nil {
		return nil, err
	}

	unlock, ok := e.locks.TryLock(serverID)
	if !ok {
		return nil, fmt.Errorf("%w: server %d", ErrReconciliationInProgress, serverID)
	}
	defer unlock()

	var result *ResolveResult
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.GetServer(ctx, serverID); err != nil {
			return err
		}
		c, err := tx.GetForServer(ctx, serverID, componentID)
		if err != nil {
			return err
		}
		if !c.BMCDiscrepancy && !e.flagged.Contains(serverID, componentID) {
			return fmt.Errorf("%w: component %d", ErrNotFlagged, componentID)
		}

		switch resolution {
		case ResolutionDelete:
			if err := tx.Delete(ctx, c.ID); err != nil {
				return err
			}
			entry := &models.ComponentHistory{
				Action:      models.ActionRemoved,
				ComponentID: c.ID,
				ServerID:    serverID,
				UserID:      userID,
				OldValue:    c.Snapshot(),
				Reason:      utils.StringPtr(resolutionReason),
				PerformedAt: e.now(),
			}
			if err := tx.AppendHistory(ctx, entry); err != nil {
				return err
			}
			result = &ResolveResult{Success: true, Action: "deleted"}
		default:
			if err := tx.ClearDiscrepancy(ctx, c.ID); err != nil {
				return err
			}
			c.BMCDiscrepancy = false
			c.BMCDiscrepancyReason = nil
			result = &ResolveResult{Success: true, Action: "kept", Component: c}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.flagged.Remove(serverID, componentID)
	if resolution == ResolutionDelete {
		metrics.HistoryEntriesCounter.WithLabelValues(string(models.ActionRemoved)).Inc()
	}

	if err := e.publisher.Publish(ctx, events.Event{
		Type:     events.TypeResolved,
		ServerID: serverID,
		Action:   result.Action,
		UserID:   userID,
		Payload:  map[string]any{"componentId": componentID},
	}); err != nil {
		e.logger.Warn("Failed to publish resolution event", zap.Error(err))
	}

	e.logger.Info("Discrepancy resolved",
		zap.Uint("server_id", serverID),
		zap.Uint("component_id", componentID),
		zap.String("action", result.Action))

	return result, nil
}

// IsFlagged reports whether the last compare run on serverID flagged componentID.
func (e *Engine) IsFlagged(serverID, componentID uint) bool {
	return e.flagged.Contains(serverID, componentID)
}

package store

import (
	"context"
	"fmt"
	"time"

	"beryll-inventory/feature/components/models"
)

// HistoryFilter bounds a history query. Zero values mean unbounded.
type HistoryFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// AppendHistory inserts one history entry. Entries are never updated or deleted.
func (s *Store) AppendHistory(ctx context.Context, e *models.ComponentHistory) error {
	if e.PerformedAt.IsZero() {
		e.PerformedAt = time.Now().UTC()
	}
	if err := s.conn(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("append %s history for component %d: %w", e.Action, e.ComponentID, err)
	}
	return nil
}

// ComponentHistory returns the entries of one component, newest first.
func (s *Store) ComponentHistory(ctx context.Context, componentID uint, f HistoryFilter) ([]models.ComponentHistory, error) {
	return s.history(ctx, "component_id = ?", componentID, f)
}

// ServerHistory returns the entries of every component of a server, newest first.
func (s *Store) ServerHistory(ctx context.Context, serverID uint, f HistoryFilter) ([]models.ComponentHistory, error) {
	return s.history(ctx, "server_id = ?", serverID, f)
}

func (s *Store) history(ctx context.Context, where string, id uint, f HistoryFilter) ([]models.ComponentHistory, error) {
	q := s.conn(ctx).Where(where, id)
	if f.From != nil {
		q = q.Where("performed_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("performed_at <= ?", *f.To)
	}

	var out []models.ComponentHistory
	err := q.Order("performed_at DESC").Order("id DESC").
		Limit(clampLimit(f.Limit, defaultHistoryLimit, maxHistoryLimit)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return out, nil
}

package reconcile

import (
	"context"
	"fmt"
)

// Mutator executes single plan actions against a store.
type Mutator[T any] interface {
	Delete(ctx context.Context, a Action[T]) error
	Update(ctx context.Context, a Action[T]) error
	Insert(ctx context.Context, a Action[T]) error
	Flag(ctx context.Context, a Action[T]) error
	ClearFlag(ctx context.Context, a Action[T]) error
}

// UpdatePreparer is implemented by mutators that need to stage all updates
// before any of them runs (e.g. releasing unique values that move between rows).
type UpdatePreparer[T any] interface {
	PrepareUpdates(ctx context.Context, updates []Action[T]) error
}

// ApplyPlan executes the plan in a fixed order: deletes, updates, inserts,
// flags, cleared flags. Preserve actions are reporting only.
// It stops at the first error; callers run it inside a transaction.
func ApplyPlan[T any](ctx context.Context, plan *Plan[T], m Mutator[T]) (executed int, err error) {
	if plan == nil {
		return 0, nil
	}

	run := func(t ActionType, fn func(context.Context, Action[T]) error) error {
		for _, a := range plan.ByType(t) {
			if err := fn(ctx, a); err != nil {
				return fmt.Errorf("%s %s: %w", t, a.Key, err)
			}
			executed++
		}
		return nil
	}

	if err := run(ActionDelete, m.Delete); err != nil {
		return executed, err
	}

	if updates := plan.ByType(ActionUpdate); len(updates) > 0 {
		if p, ok := m.(UpdatePreparer[T]); ok {
			if err := p.PrepareUpdates(ctx, updates); err != nil {
				return executed, fmt.Errorf("prepare updates: %w", err)
			}
		}
	}

	steps := []struct {
		t  ActionType
		fn func(context.Context, Action[T]) error
	}{
		{ActionUpdate, m.Update},
		{ActionInsert, m.Insert},
		{ActionFlag, m.Flag},
		{ActionClearFlag, m.ClearFlag},
	}
	for _, s := range steps {
		if err := run(s.t, s.fn); err != nil {
			return executed, err
		}
	}

	return executed, nil
}

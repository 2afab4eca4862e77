package reconcile_test

import (
	"context"
	"testing"

	"beryll-inventory/core/events"
	corereconcile "beryll-inventory/core/reconcile"
	"beryll-inventory/feature/components/models"
	"beryll-inventory/feature/components/reconcile"
	"beryll-inventory/feature/components/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResolution(t *testing.T) {
	r, err := reconcile.ParseResolution(" Keep ")
	require.NoError(t, err)
	assert.Equal(t, reconcile.ResolutionKeep, r)

	_, err = reconcile.ParseResolution("ignore")
	assert.ErrorIs(t, err, reconcile.ErrInvalidResolution)
}

func TestResolveKeepAfterCompare(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	gone := seeded(1, models.TypeSSD, "Bay 1", "S1")
	f.seed(t, gone)
	f.live(t, 1)

	_, err := f.engine.Reconcile(ctx, 1, corereconcile.ModeCompare, nil)
	require.NoError(t, err)
	assert.True(t, f.engine.IsFlagged(1, gone.ID))

	res, err := f.engine.Resolve(ctx, 1, gone.ID, reconcile.ResolutionKeep, nil)
	require.NoError(t, err)
	assert.Equal(t, "kept", res.Action)
	require.NotNil(t, res.Component)
	assert.False(t, res.Component.BMCDiscrepancy)

	_, err = f.engine.Resolve(ctx, 1, gone.ID, reconcile.ResolutionKeep, nil)
	assert.ErrorIs(t, err, reconcile.ErrNotFlagged)
	assert.Empty(t, f.history(t, 1))
}

func TestResolveDeleteAfterMerge(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	gone := seeded(1, models.TypeSSD, "Bay 1", "S1")
	f.seed(t, gone)
	f.live(t, 1)

	_, err := f.engine.Reconcile(ctx, 1, corereconcile.ModeMerge, nil)
	require.NoError(t, err)

	user := uint(7)
	res, err := f.engine.Resolve(ctx, 1, gone.ID, reconcile.ResolutionDelete, &user)
	require.NoError(t, err)
	assert.Equal(t, "deleted", res.Action)
	assert.Nil(t, res.Component)

	_, err = f.store.Get(ctx, gone.ID)
	assert.ErrorIs(t, err, store.ErrComponentNotFound)

	h := f.history(t, 1)
	require.Len(t, h, 1)
	assert.Equal(t, models.ActionRemoved, h[0].Action)
	require.NotNil(t, h[0].Reason)
	assert.Equal(t, "discrepancy resolution", *h[0].Reason)
	assert.Equal(t, &user, h[0].UserID)

	last := f.publisher.events[len(f.publisher.events)-1]
	assert.Equal(t, events.TypeResolved, last.Type)
	assert.Equal(t, "deleted", last.Action)
}

func TestResolveErrors(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	ok := seeded(1, models.TypeCPU, "CPU0", "C0")
	f.seed(t, ok)

	_, err := f.engine.Resolve(ctx, 1, ok.ID, reconcile.ResolutionKeep, nil)
	assert.ErrorIs(t, err, reconcile.ErrNotFlagged)

	_, err = f.engine.Resolve(ctx, 2, ok.ID, reconcile.ResolutionKeep, nil)
	assert.ErrorIs(t, err, store.ErrComponentNotFound)

	_, err = f.engine.Resolve(ctx, 99, ok.ID, reconcile.ResolutionKeep, nil)
	assert.ErrorIs(t, err, store.ErrServerNotFound)

	_, err = f.engine.Resolve(ctx, 1, ok.ID, reconcile.Resolution("maybe"), nil)
	assert.ErrorIs(t, err, reconcile.ErrInvalidResolution)

	unlock, locked := f.engine.Locks().TryLock(1)
	require.True(t, locked)
	defer unlock()
	_, err = f.engine.Resolve(ctx, 1, ok.ID, reconcile.ResolutionKeep, nil)
	assert.ErrorIs(t, err, reconcile.ErrReconciliationInProgress)
}

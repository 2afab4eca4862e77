package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"compare", ModeCompare, false},
		{"FORCE", ModeForce, false},
		{" merge ", ModeMerge, false},
		{"sync", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMode_ErrorNamesInput(t *testing.T) {
	_, err := ParseMode("sync")
	require.ErrorIs(t, err, ErrInvalidMode)
	assert.EqualError(t, err, `invalid reconciliation mode: "sync" (expected compare, force or merge)`)
}

func TestMode_Mutates(t *testing.T) {
	assert.False(t, ModeCompare.Mutates())
	assert.True(t, ModeForce.Mutates())
	assert.True(t, ModeMerge.Mutates())
}

func TestPlan_AddKeepsSummary(t *testing.T) {
	var p Plan[string]
	p.Add(Action[string]{Type: ActionInsert, Key: "a"})
	p.Add(Action[string]{Type: ActionInsert, Key: "b"})
	p.Add(Action[string]{Type: ActionUpdate, Key: "c"})
	p.Add(Action[string]{Type: ActionDelete, Key: "d"})
	p.Add(Action[string]{Type: ActionFlag, Key: "e"})
	p.Add(Action[string]{Type: ActionClearFlag, Key: "f"})
	p.Add(Action[string]{Type: ActionPreserve, Key: "g"})

	assert.Equal(t, PlanSummary{Inserts: 2, Updates: 1, Deletes: 1, Flags: 1, Cleared: 1, Preserved: 1}, p.Summary)
	assert.Equal(t, 4, p.Summary.Mutations())
	assert.Len(t, p.ByType(ActionInsert), 2)
	assert.Empty(t, (&Plan[string]{}).ByType(ActionDelete))
}

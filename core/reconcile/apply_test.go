package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMutator struct {
	calls  []string
	failOn string
}

func (m *recordingMutator) record(prefix string, a Action[int]) error {
	call := prefix + ":" + a.Key
	m.calls = append(m.calls, call)
	if call == m.failOn {
		return errors.New("boom")
	}
	return nil
}

func (m *recordingMutator) Delete(_ context.Context, a Action[int]) error {
	return m.record("delete", a)
}
func (m *recordingMutator) Update(_ context.Context, a Action[int]) error {
	return m.record("update", a)
}
func (m *recordingMutator) Insert(_ context.Context, a Action[int]) error {
	return m.record("insert", a)
}
func (m *recordingMutator) Flag(_ context.Context, a Action[int]) error {
	return m.record("flag", a)
}
func (m *recordingMutator) ClearFlag(_ context.Context, a Action[int]) error {
	return m.record("clear", a)
}

type preparingMutator struct {
	recordingMutator
}

func (m *preparingMutator) PrepareUpdates(_ context.Context, updates []Action[int]) error {
	m.calls = append(m.calls, "prepare")
	return nil
}

func mixedPlan() *Plan[int] {
	p := &Plan[int]{}
	p.Add(Action[int]{Type: ActionInsert, Key: "i1"})
	p.Add(Action[int]{Type: ActionFlag, Key: "f1"})
	p.Add(Action[int]{Type: ActionUpdate, Key: "u1"})
	p.Add(Action[int]{Type: ActionPreserve, Key: "p1"})
	p.Add(Action[int]{Type: ActionDelete, Key: "d1"})
	p.Add(Action[int]{Type: ActionClearFlag, Key: "c1"})
	return p
}

func TestApplyPlan_Order(t *testing.T) {
	m := &recordingMutator{}
	executed, err := ApplyPlan(context.Background(), mixedPlan(), m)

	require.NoError(t, err)
	assert.Equal(t, 5, executed)
	assert.Equal(t, []string{"delete:d1", "update:u1", "insert:i1", "flag:f1", "clear:c1"}, m.calls)
}

func TestApplyPlan_PrepareUpdates(t *testing.T) {
	m := &preparingMutator{}
	_, err := ApplyPlan[int](context.Background(), mixedPlan(), m)

	require.NoError(t, err)
	assert.Equal(t, []string{"delete:d1", "prepare", "update:u1", "insert:i1", "flag:f1", "clear:c1"}, m.calls)
}

func TestApplyPlan_StopsOnError(t *testing.T) {
	m := &recordingMutator{failOn: "update:u1"}
	executed, err := ApplyPlan(context.Background(), mixedPlan(), m)

	assert.ErrorContains(t, err, "update u1")
	assert.Equal(t, 1, executed)
	assert.NotContains(t, m.calls, "insert:i1")
}

func TestApplyPlan_Nil(t *testing.T) {
	executed, err := ApplyPlan[int](context.Background(), nil, &recordingMutator{})
	assert.NoError(t, err)
	assert.Zero(t, executed)
}

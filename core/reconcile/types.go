package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the reconciliation policy.
type Mode string

const (
	// ModeCompare classifies only and never writes.
	ModeCompare Mode = "compare"
	// ModeForce mirrors the live report, keeping manual entries.
	ModeForce Mode = "force"
	// ModeMerge adds and updates conservatively, deferring identity changes to a human.
	ModeMerge Mode = "merge"
)

// ErrInvalidMode is returned by ParseMode for unknown values.
var ErrInvalidMode = errors.New("invalid reconciliation mode")

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCompare:
		return ModeCompare, nil
	case ModeForce:
		return ModeForce, nil
	case ModeMerge:
		return ModeMerge, nil
	default:
		return "", fmt.Errorf("%w: %q (expected compare, force or merge)", ErrInvalidMode, s)
	}
}

// Mutates reports whether the mode writes to the store.
func (m Mode) Mutates() bool {
	return m == ModeForce || m == ModeMerge
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionInsert creates a record from the live report.
	ActionInsert ActionType = "insert"
	// ActionUpdate overwrites fields of an existing record.
	ActionUpdate ActionType = "update"
	// ActionDelete removes an existing record.
	ActionDelete ActionType = "delete"
	// ActionFlag marks a record for human review.
	ActionFlag ActionType = "flag"
	// ActionClearFlag removes a stale review mark.
	ActionClearFlag ActionType = "clear_flag"
	// ActionPreserve records a deliberate no-op for reporting.
	ActionPreserve ActionType = "preserve"
)

// Action represents a planned mutation operation over items of type T.
type Action[T any] struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key identifies the target record (or the live item for inserts).
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Fields lists the fields touched by an update.
	Fields []string `json:"fields,omitempty"`

	// Item carries the data the mutator needs.
	Item T `json:"-"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	Inserts   int `json:"inserts"`
	Updates   int `json:"updates"`
	Deletes   int `json:"deletes"`
	Flags     int `json:"flags"`
	Cleared   int `json:"cleared"`
	Preserved int `json:"preserved"`
}

// Mutations counts actions that change stored records, flags excluded.
func (s PlanSummary) Mutations() int {
	return s.Inserts + s.Updates + s.Deletes
}

// Plan is an ordered list of actions with their summary.
type Plan[T any] struct {
	Actions []Action[T] `json:"actions"`
	Summary PlanSummary `json:"summary"`
}

// Add appends an action and updates the summary.
func (p *Plan[T]) Add(a Action[T]) {
	p.Actions = append(p.Actions, a)
	switch a.Type {
	case ActionInsert:
		p.Summary.Inserts++
	case ActionUpdate:
		p.Summary.Updates++
	case ActionDelete:
		p.Summary.Deletes++
	case ActionFlag:
		p.Summary.Flags++
	case ActionClearFlag:
		p.Summary.Cleared++
	case ActionPreserve:
		p.Summary.Preserved++
	}
}

// ByType returns the actions of one type in plan order.
func (p *Plan[T]) ByType(t ActionType) []Action[T] {
	var out []Action[T]
	for _, a := range p.Actions {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

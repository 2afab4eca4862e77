package reconcile

import (
	"encoding/json"
	"errors"

	"beryll-inventory/core/reconcile"
	"beryll-inventory/feature/components/models"
)

// Header is shared by every report variant.
type Header struct {
	Success bool           `json:"success"`
	Mode    reconcile.Mode `json:"mode"`
	RunID   string         `json:"runId"`
	Message string         `json:"message,omitempty"`
}

// CompareTotals counts both inputs of a compare run.
type CompareTotals struct {
	InDB  int `json:"inDb"`
	InBMC int `json:"inBmc"`
}

// CompareSummary counts the four classes of a compare run.
type CompareSummary struct {
	Total        CompareTotals `json:"total"`
	Matched      int           `json:"matched"`
	MissingInBMC int           `json:"missingInBmc"`
	NewInBMC     int           `json:"newInBmc"`
	Mismatches   int           `json:"mismatches"`
}

// CompareReport is the read-only classification.
type CompareReport struct {
	Header
	HasDiscrepancies bool           `json:"hasDiscrepancies"`
	Summary          CompareSummary `json:"summary"`
	Details          *MatchResult   `json:"details"`
}

// ForceReport is the result of mirroring the BMC.
type ForceReport struct {
	Header
	ManualPreserved int                      `json:"manualPreserved"`
	Components      []models.ServerComponent `json:"components"`
	Plan            reconcile.PlanSummary    `json:"plan"`
}

// MergeUpdate is one field-by-field update applied by merge.
type MergeUpdate struct {
	ID           uint                   `json:"id"`
	SerialNumber *string                `json:"serialNumber"`
	Changes      []reconcile.Difference `json:"changes"`
}

// MergeFlag is one mismatch left for human review.
type MergeFlag struct {
	ID           uint    `json:"id"`
	SerialNumber *string `json:"serialNumber"`
	Reason       string  `json:"reason"`
}

// MergeActions lists what merge did.
type MergeActions struct {
	Updated          []MergeUpdate            `json:"updated"`
	Added            []models.ServerComponent `json:"added"`
	Preserved        []models.ServerComponent `json:"preserved"`
	FlaggedForReview []MergeFlag              `json:"flaggedForReview"`
}

// MergeReport is the result of the conservative merge.
type MergeReport struct {
	Header
	Actions MergeActions          `json:"actions"`
	Plan    reconcile.PlanSummary `json:"plan"`
}

// Report holds exactly one of the mode-specific reports and serializes as it.
type Report struct {
	Compare *CompareReport
	Force   *ForceReport
	Merge   *MergeReport
}

// Mode returns the mode of the populated variant.
func (r *Report) Mode() reconcile.Mode {
	switch {
	case r.Compare != nil:
		return reconcile.ModeCompare
	case r.Force != nil:
		return reconcile.ModeForce
	case r.Merge != nil:
		return reconcile.ModeMerge
	}
	return ""
}

// MarshalJSON implements json.Marshaler.
func (r Report) MarshalJSON() ([]byte, error) {
	switch {
	case r.Compare != nil:
		return json.Marshal(r.Compare)
	case r.Force != nil:
		return json.Marshal(r.Force)
	case r.Merge != nil:
		return json.Marshal(r.Merge)
	}
	return nil, errors.New("empty reconciliation report")
}

func newCompareReport(runID string, res *MatchResult, inDB, inBMC int) *CompareReport {
	sum := CompareSummary{
		Total:        CompareTotals{InDB: inDB, InBMC: inBMC},
		Matched:      len(res.Matched),
		MissingInBMC: len(res.MissingInBMC),
		NewInBMC:     len(res.NewInBMC),
		Mismatches:   len(res.Mismatches),
	}
	has := sum.MissingInBMC+sum.NewInBMC+sum.Mismatches > 0

	msg := "Inventory matches BMC"
	if has {
		msg = "Inventory differs from BMC"
	}

	return &CompareReport{
		Header:           Header{Success: true, Mode: reconcile.ModeCompare, RunID: runID, Message: msg},
		HasDiscrepancies: has,
		Summary:          sum,
		Details:          res,
	}
}

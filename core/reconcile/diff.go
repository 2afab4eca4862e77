package reconcile

import "strings"

// Difference is one field whose stored and live values disagree.
type Difference struct {
	Field string `json:"field"`
	DB    any    `json:"db"`
	BMC   any    `json:"bmc"`
}

// Normalize trims a string pointer and maps blank values to nil.
func Normalize(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// DiffString reports a difference only when both sides carry a value and the values differ.
func DiffString(field string, db, bmc *string) (Difference, bool) {
	d, b := Normalize(db), Normalize(bmc)
	if d == nil || b == nil || *d == *b {
		return Difference{}, false
	}
	return Difference{Field: field, DB: *d, BMC: *b}, true
}

// DiffInt64 is DiffString for numeric fields. Zero counts as unknown.
func DiffInt64(field string, db, bmc *int64) (Difference, bool) {
	if db == nil || bmc == nil || *db == 0 || *bmc == 0 || *db == *bmc {
		return Difference{}, false
	}
	return Difference{Field: field, DB: *db, BMC: *bmc}, true
}

// Fields returns the field names of a difference list.
func Fields(diffs []Difference) []string {
	out := make([]string, 0, len(diffs))
	for _, d := range diffs {
		out = append(out, d.Field)
	}
	return out
}

// Touches reports whether any difference is on one of the given fields.
func Touches(diffs []Difference, fields ...string) bool {
	for _, d := range diffs {
		for _, f := range fields {
			if d.Field == f {
				return true
			}
		}
	}
	return false
}

package checks

import (
	"fmt"
	"reflect"
	"strings"

	"beryll-inventory/core/database"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema integrity check.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport describes one table.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// CheckSchema verifies that every model's table exists with the columns its
// gorm tags declare. Types are only compared for fields with an explicit type tag.
func CheckSchema(db *gorm.DB, models ...any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	for _, model := range models {
		typ := reflect.TypeOf(model)
		if typ.Kind() == reflect.Ptr {
			typ = typ.Elem()
		}
		tabler, ok := reflect.New(typ).Interface().(interface{ TableName() string })
		if !ok {
			return nil, fmt.Errorf("model %s does not implement TableName", typ.Name())
		}
		table := tabler.TableName()

		actual, err := database.TableColumns(db, table)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
			report.Matched = false
			continue
		}

		tbl := TableReport{MissingColumns: []string{}, TypeMismatches: []string{}, Status: "ok"}
		if len(actual) == 0 {
			tbl.Status = "missing"
			report.Tables[table] = tbl
			report.Matched = false
			continue
		}

		for i := 0; i < typ.NumField(); i++ {
			tag := typ.Field(i).Tag.Get("gorm")
			col := parseGormTag(tag, "column")
			if col == "" {
				continue
			}

			act, exists := actual[col]
			if !exists {
				tbl.MissingColumns = append(tbl.MissingColumns, col)
				tbl.Status = "error"
				report.Matched = false
				continue
			}

			if exp := strings.ToLower(parseGormTag(tag, "type")); exp != "" && !strings.Contains(act.Type, exp) {
				tbl.TypeMismatches = append(tbl.TypeMismatches, fmt.Sprintf("%s: expected %s, got %s", col, exp, act.Type))
				tbl.Status = "error"
				report.Matched = false
			}
		}

		report.Tables[table] = tbl
	}

	return report, nil
}

// parseGormTag returns the value of key in a gorm struct tag.
func parseGormTag(tag, key string) string {
	for _, p := range strings.Split(tag, ";") {
		if v, ok := strings.CutPrefix(p, key+":"); ok {
			return v
		}
	}
	return ""
}

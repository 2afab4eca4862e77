package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // Pointer because NULL default is possible
	Extra   string
}

// ColumnSet indexes the columns of one table by lowercase name.
type ColumnSet map[string]ColumnInfo

// Has reports whether the table has the named column.
func (s ColumnSet) Has(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}

// GetTableColumns retrieves the column definitions for a given table.
// In sqlite a missing table yields no columns and no error.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	if db.Dialector.Name() == DriverSQLite {
		return sqliteColumns(db, tableName)
	}

	var columns []ColumnInfo
	// SHOW COLUMNS keeps the exact type strings (varchar(255), bigint, ...).
	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// TableColumns returns the columns of tableName indexed by name.
func TableColumns(db *gorm.DB, tableName string) (ColumnSet, error) {
	cols, err := GetTableColumns(db, tableName)
	if err != nil {
		return nil, err
	}
	set := make(ColumnSet, len(cols))
	for _, c := range cols {
		set[c.Field] = c
	}
	return set, nil
}

func sqliteColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	type pragmaColumn struct {
		Cid       int
		Name      string
		Type      string
		Notnull   int
		DfltValue *string
		Pk        int
	}

	var rows []pragmaColumn
	// PRAGMA does not accept bound parameters; names come from model TableName methods.
	if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}

	columns := make([]ColumnInfo, 0, len(rows))
	for _, r := range rows {
		col := ColumnInfo{
			Field:   strings.ToLower(r.Name),
			Type:    strings.ToLower(r.Type),
			Null:    "YES",
			Default: r.DfltValue,
		}
		if r.Notnull == 1 {
			col.Null = "NO"
		}
		if r.Pk > 0 {
			col.Key = "PRI"
		}
		columns = append(columns, col)
	}
	return columns, nil
}

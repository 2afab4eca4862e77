// Package database handles database connections and schema inspection.
//
// It wraps GORM and configures either a MySQL connection (production) or a SQLite
// database (tests and single-node setups) from the application's configuration.
// Error translation is enabled so that unique index violations are reported as
// gorm.ErrDuplicatedKey regardless of the driver.
//
// # Schema Inspection
//
// GetTableColumns returns the live column definitions of a table. The integrity
// feature compares them with the inventory models to detect schema drift.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "beryll_server_components")
package database

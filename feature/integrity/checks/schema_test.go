package checks

import (
	"regexp"
	"testing"

	"beryll-inventory/core/database"
	"beryll-inventory/feature/components/models"
	"beryll-inventory/feature/components/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestCheckSchema_NilDB(t *testing.T) {
	report, err := CheckSchema(nil, models.Server{})
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckSchema_Migrated(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	report, err := CheckSchema(db, models.Server{}, &models.ServerComponent{}, models.ComponentHistory{})
	require.NoError(t, err)
	assert.True(t, report.Matched, "%+v", report.Tables)
	assert.Len(t, report.Tables, 3)
	assert.Equal(t, "ok", report.Tables["beryll_server_components"].Status)
}

func TestCheckSchema_MissingTable(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	report, err := CheckSchema(db, models.Server{})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, "missing", report.Tables["beryll_servers"].Status)
}

func TestCheckSchema_MySQLDrift(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment").
		AddRow("hostname", "varchar(255)", "YES", "", nil, "").
		AddRow("ip_address", "varchar(64)", "YES", "", nil, "").
		AddRow("bmc_address", "varchar(255)", "YES", "", nil, "").
		AddRow("created_at", "datetime(3)", "YES", "", nil, "").
		AddRow("updated_at", "datetime(3)", "YES", "", nil, "")
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `beryll_servers`")).WillReturnRows(rows)

	report, err := CheckSchema(db, models.Server{})
	require.NoError(t, err)
	assert.False(t, report.Matched)

	tbl := report.Tables["beryll_servers"]
	assert.Equal(t, "error", tbl.Status)
	assert.ElementsMatch(t, []string{"apk_serial_number", "last_components_fetch_at"}, tbl.MissingColumns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckSchema_TypeMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	cols := []string{"id", "server_id", "component_type", "name", "manufacturer", "model", "serial_number",
		"serial_number_yadro", "part_number", "slot", "status", "capacity", "speed", "firmware_version",
		"origin_source", "bmc_discrepancy", "bmc_discrepancy_reason", "last_updated_at", "created_at", "updated_at"}
	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	for _, c := range cols {
		rows.AddRow(c, "varchar(255)", "YES", "", nil, "")
	}
	rows.AddRow("metadata", "json", "YES", "", nil, "")
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `beryll_server_components`")).WillReturnRows(rows)

	report, err := CheckSchema(db, models.ServerComponent{})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	tbl := report.Tables["beryll_server_components"]
	assert.Empty(t, tbl.MissingColumns)
	assert.Equal(t, []string{"metadata: expected text, got json"}, tbl.TypeMismatches)
}

func TestCheckSchema_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `beryll_servers`")).WillReturnError(assert.AnError)

	report, err := CheckSchema(db, models.Server{})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "beryll_servers")
}

func TestParseGormTag(t *testing.T) {
	tag := "column:metadata;type:text;serializer:json"
	assert.Equal(t, "metadata", parseGormTag(tag, "column"))
	assert.Equal(t, "text", parseGormTag(tag, "type"))
	assert.Equal(t, "", parseGormTag(tag, "size"))
}

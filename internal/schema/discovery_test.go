package schema

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/querymind-labs/querymind/internal/testutil"
)

func createFixtureDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE departments (
			dept_id INTEGER PRIMARY KEY,
			dept_name TEXT NOT NULL
		)`,
		`CREATE TABLE staff (
			id INTEGER PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT,
			salary REAL DEFAULT 0,
			hired_on TEXT,
			dept_id INTEGER REFERENCES departments(dept_id)
		)`,
		`INSERT INTO departments VALUES (1, 'Engineering')`,
		`INSERT INTO staff VALUES (1, 'Ada Leclerc', 'ada@example.com', 95000, '2021-03-01', 1)`,
		`INSERT INTO staff VALUES (2, 'Brent Okafor', 'brent@example.com', 72000, '2022-07-15', 1)`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}
	return path
}

func TestDiscovery_Analyze(t *testing.T) {
	disc, err := Open(createFixtureDB(t), testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer disc.Close()

	info, err := disc.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", info.DatabaseType)
	require.Contains(t, info.Tables, "staff")
	require.Contains(t, info.Tables, "departments")

	staff := info.Tables["staff"]
	assert.Equal(t, int64(2), staff.RowCount)
	assert.Equal(t, []string{"id"}, staff.PrimaryKeys)
	assert.Len(t, staff.SampleData, 2)

	// Column metadata from PRAGMA table_info.
	var nameCol *Column
	for i := range staff.Columns {
		if staff.Columns[i].Name == "full_name" {
			nameCol = &staff.Columns[i]
		}
	}
	require.NotNil(t, nameCol)
	assert.True(t, nameCol.NotNull)
	assert.Equal(t, "TEXT", nameCol.Type)

	// Column purposes are detected from names and types.
	assert.Equal(t, "identifier", staff.ColumnPurposes["id"])
	assert.Equal(t, "name", staff.ColumnPurposes["full_name"])
	assert.Equal(t, "email", staff.ColumnPurposes["email"])
	assert.Equal(t, "monetary", staff.ColumnPurposes["salary"])
}

func TestDiscovery_ForeignKeysBecomeRelationships(t *testing.T) {
	disc, err := Open(createFixtureDB(t), testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer disc.Close()

	info, err := disc.Analyze(context.Background())
	require.NoError(t, err)

	rels, ok := info.Relationships["staff"]
	require.True(t, ok)
	require.Len(t, rels, 1)
	assert.Equal(t, "departments", rels[0].RemoteTable)
	assert.Equal(t, "dept_id", rels[0].LocalColumn)
}

func TestDiscovery_OpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.db"), testutil.NewTestLogger(t))
	assert.Error(t, err)
}

func TestDiscovery_SkipsInternalTables(t *testing.T) {
	path := createFixtureDB(t)

	// Force a sqlite_sequence table into the fixture.
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE log (id INTEGER PRIMARY KEY AUTOINCREMENT, msg TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	disc, err := Open(path, testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer disc.Close()

	info, err := disc.Analyze(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, info.Tables, "sqlite_sequence")
	assert.Contains(t, info.Tables, "log")
}

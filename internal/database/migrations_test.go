package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsIsRepeatable(t *testing.T) {
	conn, err := Open(Config{Path: filepath.Join(t.TempDir(), "w.db")})
	require.NoError(t, err)
	defer conn.Close()

	m := NewMigrationManager(conn, nil)
	require.NoError(t, m.RunMigrations())
	require.NoError(t, m.RunMigrations())

	applied, err := m.GetAppliedMigrations()
	require.NoError(t, err)
	assert.True(t, applied[1])
	assert.True(t, applied[2])

	for _, table := range []string{"reallocation_data", "reallocation_master", "api_integrations"} {
		var name string
		err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestLoadMigrationsSorted(t *testing.T) {
	m := NewMigrationManager(nil, nil)
	migrations, err := m.LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "002_api_integrations", migrations[1].Name)
}

func TestSetup(t *testing.T) {
	conn, err := Setup(Config{Path: filepath.Join(t.TempDir(), "nested", "w.db")})
	require.NoError(t, err)
	defer conn.Close()

	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&n))
	assert.Equal(t, 2, n)
}

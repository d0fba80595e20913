package db

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/d", ConvertToPgx5URL("postgres://u:p@h:5432/d"))
	assert.Equal(t, "pgx5://u:p@h:5432/d", ConvertToPgx5URL("postgresql://u:p@h:5432/d"))
	assert.Equal(t, "pgx5://already", ConvertToPgx5URL("pgx5://already"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFiles, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))

	body, err := fs.ReadFile(migrationFiles, "migrations/000001_create_kv_slots.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "kv_slots")
}

package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	t.Parallel()

	t.Run("postgres scheme is rewritten", func(t *testing.T) {
		got, err := migrationURL("postgres://cms:secret@db:5432/cms?sslmode=disable")
		require.NoError(t, err)
		require.Equal(t, "pgx5://cms:secret@db:5432/cms?sslmode=disable", got)
	})

	t.Run("postgresql scheme is rewritten", func(t *testing.T) {
		got, err := migrationURL("postgresql://localhost/cms")
		require.NoError(t, err)
		require.Equal(t, "pgx5://localhost/cms", got)
	})

	t.Run("other schemes are rejected", func(t *testing.T) {
		_, err := migrationURL("mysql://localhost/cms")
		require.Error(t, err)
	})
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	t.Parallel()

	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	require.Contains(t, names, "001_initial.up.sql")
	require.Contains(t, names, "001_initial.down.sql")
}

//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pyhumph/jriit-cms-sub001/internal/database"
	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Open(context.Background(), url, 4, 0)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestDeletableRepositoryLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewDeletableRepository(db.Pool, ContentTables[0])

	id := uuid.NewString()
	_, err := db.Pool.Exec(ctx, `INSERT INTO programs (id, name) VALUES ($1, $2)`, id, "Computer Science")
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = db.Pool.Exec(context.Background(), `DELETE FROM programs WHERE id = $1`, id) })

	before, err := repo.LiveStamp(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.MarkDeleted(ctx, id, "u1"))

	after, err := repo.LiveStamp(ctx)
	require.NoError(t, err)
	require.False(t, before.Equal(after))

	deleted, err := repo.ListDeleted(ctx)
	require.NoError(t, err)
	require.True(t, containsDeleted(deleted, id))

	live, err := repo.ListLive(ctx)
	require.NoError(t, err)
	require.False(t, containsLive(live, id))

	require.NoError(t, repo.ClearDeletion(ctx, id))
	require.NoError(t, repo.ClearDeletion(ctx, id))

	live, err = repo.ListLive(ctx)
	require.NoError(t, err)
	require.True(t, containsLive(live, id))

	require.ErrorIs(t, repo.Purge(ctx, id), model.ErrItemNotFound)
	live, err = repo.ListLive(ctx)
	require.NoError(t, err)
	require.True(t, containsLive(live, id))

	require.NoError(t, repo.MarkDeleted(ctx, id, "u1"))
	require.NoError(t, repo.Purge(ctx, id))
	require.ErrorIs(t, repo.Purge(ctx, id), model.ErrItemNotFound)
}

func TestMediaRepositoryPaths(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewMediaRepository(db.Pool)

	id := uuid.NewString()
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO media (id, filename, file_path) VALUES ($1, $2, $3)`,
		id, "campus.jpg", "media/"+id+".jpg")
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = db.Pool.Exec(context.Background(), `DELETE FROM media WHERE id = $1`, id) })

	_, err = repo.DeletedFilePath(ctx, id)
	require.ErrorIs(t, err, model.ErrItemNotFound)

	require.NoError(t, repo.MarkDeleted(ctx, id, "u1"))
	path, err := repo.DeletedFilePath(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "media/"+id+".jpg", path)

	paths, err := repo.ReferencedPaths(ctx)
	require.NoError(t, err)
	require.Contains(t, paths, path)

	_, err = repo.DeletedFilePath(ctx, uuid.NewString())
	require.ErrorIs(t, err, model.ErrItemNotFound)
}

func containsDeleted(items []model.DeletedItem, id string) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func containsLive(items []model.LiveItem, id string) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

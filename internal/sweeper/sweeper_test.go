package sweeper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhumph/jriit-cms-sub001/internal/event"
	"github.com/pyhumph/jriit-cms-sub001/internal/storage"
)

type stubPaths struct {
	paths map[string]struct{}
	err   error
}

func (s stubPaths) ReferencedPaths(context.Context) (map[string]struct{}, error) {
	return s.paths, s.err
}

func newUploadRoot(t *testing.T, files ...string) *storage.Storage {
	t.Helper()

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	for _, f := range files {
		require.NoError(t, store.WriteFile(f, []byte("data")))
		require.NoError(t, os.Chtimes(filepath.Join(store.RootAbs(), filepath.FromSlash(f)), old, old))
	}
	return store
}

func TestSweepRemovesUnreferencedFiles(t *testing.T) {
	store := newUploadRoot(t, "media/keep.jpg", "media/deleted-record.png", "media/orphan.pdf")
	referenced := stubPaths{paths: map[string]struct{}{
		"/media/keep.jpg":          {},
		"media/deleted-record.png": {},
	}}
	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	result, err := New(referenced, store, bus, false).Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Scanned)
	assert.Equal(t, 1, result.Orphaned)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, int64(4), result.FreedBytes)
	assert.Equal(t, []string{"media/orphan.pdf"}, result.Paths)

	exists, err := store.Exists("media/orphan.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.Exists("media/keep.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	require.Len(t, events, 1)
	assert.Equal(t, event.TypeOrphansSwept, (<-events).Type)
}

func TestSweepDryRunKeepsFiles(t *testing.T) {
	store := newUploadRoot(t, "a.txt", "b.txt")

	result, err := New(stubPaths{paths: map[string]struct{}{}}, store, nil, true).Sweep(context.Background())
	require.NoError(t, err)

	sort.Strings(result.Paths)
	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.Orphaned)
	assert.Zero(t, result.Removed)
	assert.Equal(t, []string{"a.txt", "b.txt"}, result.Paths)

	exists, err := store.Exists("a.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSweepSkipsFreshUploads(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.WriteFile("media/just-uploaded.jpg", []byte("x")))

	result, err := New(stubPaths{paths: map[string]struct{}{}}, store, nil, false).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Zero(t, result.Orphaned)
}

func TestSweepFailsWithoutReferences(t *testing.T) {
	store := newUploadRoot(t, "media/a.jpg")

	_, err := New(stubPaths{err: errors.New("db down")}, store, nil, false).Sweep(context.Background())
	require.Error(t, err)

	exists, err := store.Exists("media/a.jpg")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(stubPaths{}, newUploadRoot(t), nil, true)
	require.Error(t, s.Start(context.Background(), "every tuesday"))

	require.NoError(t, s.Start(context.Background(), "@daily"))
	s.Stop()
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "media/a.jpg", normalize("/media/a.jpg"))
	assert.Equal(t, "media/a.jpg", normalize(`media\a.jpg`))
	assert.Equal(t, "media/a.jpg", normalize("media/./x/../a.jpg"))
}

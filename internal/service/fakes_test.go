package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

type fakeRecord struct {
	name      string
	deletedAt *time.Time
	deletedBy *string
}

// fakeAdapter is an in-memory ResourceAdapter.
type fakeAdapter struct {
	mu        sync.Mutex
	rt        model.ResourceType
	records   map[string]*fakeRecord
	now       func() time.Time
	listErr   error
	mutations int
	version   int64
	liveCalls int
}

func newFakeAdapter(rt model.ResourceType) *fakeAdapter {
	return &fakeAdapter{
		rt:      rt,
		records: map[string]*fakeRecord{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (a *fakeAdapter) add(id string, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[id] = &fakeRecord{name: name}
	a.version++
}

// rename edits a record in place, as a write from another process would.
func (a *fakeAdapter) rename(id string, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records[id].name = name
	a.version++
}

func (a *fakeAdapter) addDeleted(id string, name string, at time.Time, by string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := &fakeRecord{name: name, deletedAt: &at}
	if by != "" {
		rec.deletedBy = &by
	}
	a.records[id] = rec
	a.version++
}

func (a *fakeAdapter) exists(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.records[id]
	return ok
}

func (a *fakeAdapter) ResourceType() model.ResourceType { return a.rt }

func (a *fakeAdapter) MarkDeleted(_ context.Context, id string, actorID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mutations++

	rec, ok := a.records[id]
	if !ok {
		return fmt.Errorf("%s %q: %w", a.rt, id, model.ErrItemNotFound)
	}
	at := a.now()
	rec.deletedAt = &at
	rec.deletedBy = nil
	if actorID != "" {
		rec.deletedBy = &actorID
	}
	a.version++
	return nil
}

func (a *fakeAdapter) ListDeleted(context.Context) ([]model.DeletedItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listErr != nil {
		return nil, a.listErr
	}

	items := make([]model.DeletedItem, 0)
	for id, rec := range a.records {
		if rec.deletedAt == nil {
			continue
		}
		items = append(items, model.DeletedItem{ID: id, DisplayName: rec.name, DeletedAt: *rec.deletedAt, DeletedBy: rec.deletedBy})
	}
	sort.Slice(items, func(i int, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (a *fakeAdapter) ClearDeletion(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mutations++

	rec, ok := a.records[id]
	if !ok {
		return fmt.Errorf("%s %q: %w", a.rt, id, model.ErrItemNotFound)
	}
	rec.deletedAt = nil
	rec.deletedBy = nil
	a.version++
	return nil
}

func (a *fakeAdapter) Purge(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mutations++

	rec, ok := a.records[id]
	if !ok || rec.deletedAt == nil {
		return fmt.Errorf("%s %q: %w", a.rt, id, model.ErrItemNotFound)
	}
	delete(a.records, id)
	a.version++
	return nil
}

func (a *fakeAdapter) ListLive(context.Context) ([]model.LiveItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.liveCalls++

	items := make([]model.LiveItem, 0)
	for id, rec := range a.records {
		if rec.deletedAt == nil {
			items = append(items, model.LiveItem{ID: id, Name: rec.name})
		}
	}
	sort.Slice(items, func(i int, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// LiveStamp uses a version counter bumped by every write in place of the
// newest update time.
func (a *fakeAdapter) LiveStamp(context.Context) (model.LiveStamp, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var live int64
	for _, rec := range a.records {
		if rec.deletedAt == nil {
			live++
		}
	}
	return model.LiveStamp{Count: live, LastUpdated: time.Unix(0, a.version).UTC()}, nil
}

func (a *fakeAdapter) listCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.liveCalls
}

// fakeMediaStore adds stored file paths to fakeAdapter.
type fakeMediaStore struct {
	*fakeAdapter
	paths map[string]string
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{fakeAdapter: newFakeAdapter(model.ResourceMedia), paths: map[string]string{}}
}

func (m *fakeMediaStore) addFile(id string, name string, path string) {
	m.add(id, name)
	m.paths[id] = path
}

func (m *fakeMediaStore) addDeletedFile(id string, name string, path string) {
	m.addDeleted(id, name, time.Now().UTC(), "u1")
	m.paths[id] = path
}

func (m *fakeMediaStore) DeletedFilePath(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.records[id]; !ok || rec.deletedAt == nil {
		return "", fmt.Errorf("media %q: %w", id, model.ErrItemNotFound)
	}
	return m.paths[id], nil
}

// fakeFiles is a FileRemover backed by a set of present paths.
type fakeFiles struct {
	mu      sync.Mutex
	present map[string]bool
	err     error
	delay   time.Duration
	calls   []string
}

func (f *fakeFiles) RemoveIfExists(path string) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if f.err != nil {
		return f.err
	}
	delete(f.present, path)
	return nil
}

type testFixture struct {
	adapters map[model.ResourceType]*fakeAdapter
	media    *fakeMediaStore
	files    *fakeFiles
	registry *Registry
}

func (f *testFixture) totalMutations() int {
	total := f.media.mutations
	for _, a := range f.adapters {
		total += a.mutations
	}
	return total
}

func newTestFixture() *testFixture {
	fx := &testFixture{
		adapters: map[model.ResourceType]*fakeAdapter{},
		media:    newFakeMediaStore(),
		files:    &fakeFiles{present: map[string]bool{}},
	}

	adapters := make([]ResourceAdapter, 0, len(model.ResourceTypes))
	for _, rt := range model.ResourceTypes {
		if rt == model.ResourceMedia {
			adapters = append(adapters, newMediaAdapter(fx.media, fx.files))
			continue
		}
		a := newFakeAdapter(rt)
		fx.adapters[rt] = a
		adapters = append(adapters, a)
	}

	registry, err := NewRegistry(adapters...)
	if err != nil {
		panic(err)
	}
	fx.registry = registry
	return fx
}

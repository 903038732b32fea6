package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
	"github.com/pyhumph/jriit-cms-sub001/pkg/apierror"
)

type fakeAuditStore struct {
	mu        sync.Mutex
	entries   []model.AuditEntry
	lastQuery model.AuditQuery
	logErr    error
}

func (s *fakeAuditStore) Log(_ context.Context, entry model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logErr != nil {
		return s.logErr
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeAuditStore) Query(_ context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = query
	return s.entries, model.NewMeta(1, 50, len(s.entries)), nil
}

func TestAuditServiceLog(t *testing.T) {
	t.Run("nil service is a no-op", func(t *testing.T) {
		var svc *AuditService
		svc.Log(context.Background(), model.AuditActionRestore, editor, "success", "page/pg1", nil, nil, "")
	})

	t.Run("store failure is swallowed", func(t *testing.T) {
		svc := NewAuditService(&fakeAuditStore{logErr: errors.New("db down")})
		svc.Log(context.Background(), model.AuditActionRestore, editor, "success", "page/pg1", nil, nil, "")
	})

	t.Run("canceled request still records", func(t *testing.T) {
		store := &fakeAuditStore{}
		svc := NewAuditService(store)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc.Log(ctx, model.AuditActionPermanentDelete, editor, "failed", "media/m1", nil, nil, "context canceled")
		require.Len(t, store.entries, 1)
		assert.Equal(t, "u1", store.entries[0].Actor.UserID)
		assert.NotEmpty(t, store.entries[0].OccurredAt)
	})
}

func TestAuditServiceQuery(t *testing.T) {
	store := &fakeAuditStore{}
	svc := NewAuditService(store)
	ctx := context.Background()

	_, _, err := svc.Query(ctx, model.AuditQuery{From: "2024-01-01T10:00:00+02:00", To: "2024-01-02T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T08:00:00Z", store.lastQuery.From)

	cases := map[string]model.AuditQuery{
		"bad from":      {From: "yesterday"},
		"bad to":        {To: "2024-13-01"},
		"from after to": {From: "2024-02-01T00:00:00Z", To: "2024-01-01T00:00:00Z"},
	}
	for name, query := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Query(ctx, query)
			var apiErr *apierror.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "BAD_REQUEST", apiErr.Code)
		})
	}
}

package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
	"github.com/pyhumph/jriit-cms-sub001/pkg/apierror"
)

type auditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

type AuditService struct {
	store auditStore
}

func NewAuditService(store auditStore) *AuditService {
	return &AuditService{store: store}
}

// Log records an entry. Failures are logged and never reach the caller, so a
// lifecycle operation is not undone by a broken audit table.
func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, before any, after any, errText string) {
	if s == nil || s.store == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Before:     before,
		After:      after,
		Error:      errText,
	}

	// The request may already be canceled; the entry is still worth keeping.
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.store.Log(logCtx, entry); err != nil {
		slog.Error("failed to write audit entry", "action", action, "resource", resource, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	from, err := parseOptionalAuditTime(query.From)
	if err != nil {
		return nil, model.Meta{}, apierror.New("BAD_REQUEST", "invalid 'from' datetime format", query.From, http.StatusBadRequest)
	}

	to, err := parseOptionalAuditTime(query.To)
	if err != nil {
		return nil, model.Meta{}, apierror.New("BAD_REQUEST", "invalid 'to' datetime format", query.To, http.StatusBadRequest)
	}

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, model.Meta{}, apierror.New("BAD_REQUEST", "'from' must not be after 'to'", "", http.StatusBadRequest)
	}

	if !from.IsZero() {
		query.From = from.Format(time.RFC3339Nano)
	}
	if !to.IsZero() {
		query.To = to.Format(time.RFC3339Nano)
	}

	return s.store.Query(ctx, query)
}

func parseOptionalAuditTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}

	return parseAuditTime(trimmed)
}

func parseAuditTime(raw string) (time.Time, error) {
	if value, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return value.UTC(), nil
	}

	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}

	return value.UTC(), nil
}

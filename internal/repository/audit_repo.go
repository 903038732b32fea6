package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	beforeJSON, err := marshalOptional(entry.Before)
	if err != nil {
		return fmt.Errorf("marshal before data: %w", err)
	}
	afterJSON, err := marshalOptional(entry.After)
	if err != nil {
		return fmt.Errorf("marshal after data: %w", err)
	}

	occurredAt := time.Now().UTC()
	if entry.OccurredAt != "" {
		if parsed, parseErr := time.Parse(time.RFC3339Nano, entry.OccurredAt); parseErr == nil {
			occurredAt = parsed
		}
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO audit_entries
		 (action, occurred_at, actor_user_id, actor_username, actor_role, actor_ip,
		  status, resource, before_data, after_data, error_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.Action, occurredAt,
		entry.Actor.UserID, entry.Actor.Username, entry.Actor.Role, entry.Actor.IP,
		entry.Status, entry.Resource, beforeJSON, afterJSON, entry.Error)
	if err != nil {
		return storageError("log audit entry", err)
	}
	return nil
}

func (r *AuditRepository) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	query = normalizeAuditQuery(query)
	whereClause, args := buildAuditFilter(query)
	argIdx := len(args) + 1

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM audit_entries "+whereClause, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, storageError("count audit entries", err)
	}
	meta := model.NewMeta(query.Page, query.Limit, total)

	offset := (query.Page - 1) * query.Limit
	dataQuery := fmt.Sprintf(
		`SELECT action, occurred_at, actor_user_id, actor_username, actor_role, actor_ip,
		        status, resource, before_data, after_data, error_text
		 FROM audit_entries %s
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`, whereClause, argIdx, argIdx+1)
	args = append(args, query.Limit, offset)

	rows, err := r.db.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, storageError("query audit entries", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		var occurredAt time.Time
		var beforeJSON, afterJSON []byte

		if err := rows.Scan(
			&e.Action, &occurredAt,
			&e.Actor.UserID, &e.Actor.Username, &e.Actor.Role, &e.Actor.IP,
			&e.Status, &e.Resource, &beforeJSON, &afterJSON, &e.Error,
		); err != nil {
			return nil, model.Meta{}, storageError("scan audit entry", err)
		}

		e.OccurredAt = occurredAt.UTC().Format(time.RFC3339Nano)
		e.Before = unmarshalOptional(beforeJSON)
		e.After = unmarshalOptional(afterJSON)

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Meta{}, storageError("query audit entries", err)
	}

	return entries, meta, nil
}

func normalizeAuditQuery(query model.AuditQuery) model.AuditQuery {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}
	return query
}

// buildAuditFilter returns the WHERE clause and its positional arguments.
func buildAuditFilter(query model.AuditQuery) (string, []any) {
	where := make([]string, 0)
	args := make([]any, 0)

	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if action := strings.TrimSpace(query.Action); action != "" {
		add("lower(action) = lower($%d)", action)
	}
	if actorID := strings.TrimSpace(query.ActorID); actorID != "" {
		add("actor_user_id = $%d", actorID)
	}
	if status := strings.TrimSpace(query.Status); status != "" {
		add("lower(status) = lower($%d)", status)
	}
	if resource := strings.TrimSpace(query.Resource); resource != "" {
		add("resource LIKE $%d", resource+"%")
	}
	if from := strings.TrimSpace(query.From); from != "" {
		add("occurred_at >= $%d::timestamptz", from)
	}
	if to := strings.TrimSpace(query.To); to != "" {
		add("occurred_at <= $%d::timestamptz", to)
	}

	if len(where) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(where, " AND "), args
}

func marshalOptional(value any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func unmarshalOptional(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

// DBTX is the subset of *pgxpool.Pool the repositories need.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Every live read path filters through liveOnly; the recycle bin reads
// through inRecycleBin. Together they partition each table.
const (
	liveOnly     = "deleted_at IS NULL"
	inRecycleBin = "deleted_at IS NOT NULL"
)

// ContentTable describes where one resource kind is stored.
type ContentTable struct {
	Type       model.ResourceType
	Table      string
	NameColumn string
}

// ContentTables covers every kind except media, which needs MediaRepository.
var ContentTables = []ContentTable{
	{Type: model.ResourceProgram, Table: "programs", NameColumn: "name"},
	{Type: model.ResourceDepartment, Table: "departments", NameColumn: "name"},
	{Type: model.ResourceFaculty, Table: "faculty", NameColumn: "full_name"},
	{Type: model.ResourcePage, Table: "pages", NameColumn: "title"},
	{Type: model.ResourceNews, Table: "news", NameColumn: "title"},
	{Type: model.ResourceEvent, Table: "events", NameColumn: "title"},
	{Type: model.ResourceComponent, Table: "components", NameColumn: "name"},
	{Type: model.ResourcePost, Table: "posts", NameColumn: "title"},
	{Type: model.ResourceBanner, Table: "banners", NameColumn: "title"},
	{Type: model.ResourceTemplate, Table: "templates", NameColumn: "name"},
}

var MediaTable = ContentTable{Type: model.ResourceMedia, Table: "media", NameColumn: "filename"}

// DeletableRepository implements the soft-delete lifecycle for one table.
type DeletableRepository struct {
	db         DBTX
	table      ContentTable
	tableIdent string
	nameIdent  string
	now        func() time.Time
}

func NewDeletableRepository(db DBTX, table ContentTable) *DeletableRepository {
	return &DeletableRepository{
		db:         db,
		table:      table,
		tableIdent: pgx.Identifier{table.Table}.Sanitize(),
		nameIdent:  pgx.Identifier{table.NameColumn}.Sanitize(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *DeletableRepository) ResourceType() model.ResourceType {
	return r.table.Type
}

func (r *DeletableRepository) MarkDeleted(ctx context.Context, id string, actorID string) error {
	var deletedBy *string
	if actorID != "" {
		deletedBy = &actorID
	}

	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET deleted_at = $2, deleted_by = $3, updated_at = $2 WHERE id = $1`, r.tableIdent),
		id, r.now(), deletedBy)
	if err != nil {
		return storageError("mark "+r.table.Table+" deleted", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %q: %w", r.table.Type, id, model.ErrItemNotFound)
	}
	return nil
}

func (r *DeletableRepository) ListDeleted(ctx context.Context) ([]model.DeletedItem, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT id, %s, deleted_at, deleted_by FROM %s WHERE %s ORDER BY deleted_at DESC`,
			r.nameIdent, r.tableIdent, inRecycleBin))
	if err != nil {
		return nil, storageError("list deleted "+r.table.Table, err)
	}
	defer rows.Close()

	items := make([]model.DeletedItem, 0)
	for rows.Next() {
		var item model.DeletedItem
		if err := rows.Scan(&item.ID, &item.DisplayName, &item.DeletedAt, &item.DeletedBy); err != nil {
			return nil, storageError("scan deleted "+r.table.Table, err)
		}
		item.DeletedAt = item.DeletedAt.UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list deleted "+r.table.Table, err)
	}
	return items, nil
}

// ClearDeletion does not look at the current deletion state, so clearing a
// live row succeeds without changing it.
func (r *DeletableRepository) ClearDeletion(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET deleted_at = NULL, deleted_by = NULL, updated_at = $2 WHERE id = $1`, r.tableIdent),
		id, r.now())
	if err != nil {
		return storageError("clear "+r.table.Table+" deletion", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %q: %w", r.table.Type, id, model.ErrItemNotFound)
	}
	return nil
}

// Purge removes a row that is in the recycle bin. A live row is reported as
// not found and left untouched.
func (r *DeletableRepository) Purge(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND %s`, r.tableIdent, inRecycleBin), id)
	if err != nil {
		return storageError("purge "+r.table.Table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %q: %w", r.table.Type, id, model.ErrItemNotFound)
	}
	return nil
}

func (r *DeletableRepository) ListLive(ctx context.Context) ([]model.LiveItem, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT id, %s FROM %s WHERE %s ORDER BY %s, id`,
			r.nameIdent, r.tableIdent, liveOnly, r.nameIdent))
	if err != nil {
		return nil, storageError("list live "+r.table.Table, err)
	}
	defer rows.Close()

	items := make([]model.LiveItem, 0)
	for rows.Next() {
		var item model.LiveItem
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, storageError("scan live "+r.table.Table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list live "+r.table.Table, err)
	}
	return items, nil
}

// LiveStamp reads the live row count and newest update time in one query.
func (r *DeletableRepository) LiveStamp(ctx context.Context) (model.LiveStamp, error) {
	var stamp model.LiveStamp
	var lastUpdated *time.Time

	err := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT count(*), max(updated_at) FROM %s WHERE %s`, r.tableIdent, liveOnly)).
		Scan(&stamp.Count, &lastUpdated)
	if err != nil {
		return model.LiveStamp{}, storageError("live stamp "+r.table.Table, err)
	}
	if lastUpdated != nil {
		stamp.LastUpdated = lastUpdated.UTC()
	}
	return stamp, nil
}

// storageError tags driver failures as ErrStorageUnavailable. Context
// cancellation is passed through untouched.
func storageError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrStorageUnavailable, err)
}

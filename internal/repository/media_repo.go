package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

// MediaRepository adds the stored file location on top of the shared
// lifecycle queries.
type MediaRepository struct {
	*DeletableRepository
}

func NewMediaRepository(db DBTX) *MediaRepository {
	return &MediaRepository{DeletableRepository: NewDeletableRepository(db, MediaTable)}
}

// DeletedFilePath returns the stored location of a media record in the
// recycle bin. Live media is reported as not found so its file is never
// touched by a purge.
func (r *MediaRepository) DeletedFilePath(ctx context.Context, id string) (string, error) {
	var path string
	err := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT file_path FROM %s WHERE id = $1 AND %s`, r.tableIdent, inRecycleBin), id).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%s %q: %w", model.ResourceMedia, id, model.ErrItemNotFound)
		}
		return "", storageError("media file path", err)
	}
	return path, nil
}

// ReferencedPaths returns every file_path still owned by a media row, live or
// in the recycle bin.
func (r *MediaRepository) ReferencedPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT file_path FROM %s`, r.tableIdent))
	if err != nil {
		return nil, storageError("media referenced paths", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, storageError("scan media path", err)
		}
		paths[path] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("media referenced paths", err)
	}
	return paths, nil
}

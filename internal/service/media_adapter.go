package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
	"github.com/pyhumph/jriit-cms-sub001/internal/repository"
)

// FileRemover deletes stored uploads. A file that is already gone is not an
// error.
type FileRemover interface {
	RemoveIfExists(storedPath string) error
}

type mediaStore interface {
	ResourceAdapter
	DeletedFilePath(ctx context.Context, id string) (string, error)
}

// MediaAdapter is the media resource adapter. It removes the uploaded file
// before the record is purged.
type MediaAdapter struct {
	mediaStore
	files FileRemover
}

// NewMediaAdapter pairs the media repository with the upload area that holds
// its files.
func NewMediaAdapter(repo *repository.MediaRepository, files FileRemover) *MediaAdapter {
	return newMediaAdapter(repo, files)
}

func newMediaAdapter(store mediaStore, files FileRemover) *MediaAdapter {
	return &MediaAdapter{mediaStore: store, files: files}
}

// PhysicalCleanup removes the file of a media record in the recycle bin.
// Live media keeps its file.
func (a *MediaAdapter) PhysicalCleanup(ctx context.Context, id string) error {
	path, err := a.DeletedFilePath(ctx, id)
	if err != nil {
		// The purge that follows reports the missing or live record.
		if errors.Is(err, model.ErrItemNotFound) {
			return nil
		}
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := a.files.RemoveIfExists(path); err != nil {
		return fmt.Errorf("remove media file %q: %w", path, err)
	}
	return nil
}

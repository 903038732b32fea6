package model

import "errors"

var (
	// Recycle bin lifecycle errors
	ErrUnknownResourceType = errors.New("unknown resource type")
	ErrItemNotFound        = errors.New("item not found")
	ErrCleanupFailed       = errors.New("physical cleanup failed")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

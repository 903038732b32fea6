package model

import "time"

// DeletedItem is one soft-deleted row as reported by a resource adapter.
type DeletedItem struct {
	ID          string
	DisplayName string
	DeletedAt   time.Time
	DeletedBy   *string
}

// RecycleBinEntry is the cross-type projection shown to operators. It is
// computed on demand and never stored.
type RecycleBinEntry struct {
	ItemType  ResourceType `json:"item_type"`
	ItemID    string       `json:"item_id"`
	ItemName  string       `json:"item_name"`
	DeletedAt time.Time    `json:"deleted_at"`
	DeletedBy *string      `json:"deleted_by"`
}

type RecycleBinListData struct {
	Items []RecycleBinEntry `json:"items"`
}

// LiveItem is the public projection of a record that is not in the recycle bin.
type LiveItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LiveStamp summarizes the live set of one table. Any soft delete, restore
// or edit of a live row changes it.
type LiveStamp struct {
	Count       int64
	LastUpdated time.Time
}

func (s LiveStamp) Equal(other LiveStamp) bool {
	return s.Count == other.Count && s.LastUpdated.Equal(other.LastUpdated)
}

type LiveListData struct {
	ItemType ResourceType `json:"item_type"`
	Items    []LiveItem   `json:"items"`
}

type SuccessData struct {
	Success bool `json:"success"`
}

package api

import "time"

// Note is the stored unit: a Markdown body with metadata. IDs are assigned
// by the store from an auto-incrementing sequence; 0 means "not yet saved".
type Note struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SortKey selects the ordering of list results.
type SortKey string

const (
	SortUpdated SortKey = "updated"
	SortCreated SortKey = "created"
	SortTitle   SortKey = "title"
)

// ParseSortKey validates a user-supplied sort name. The empty string maps to
// the default ordering (most recently updated first).
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case SortUpdated, SortCreated, SortTitle:
		return SortKey(s), true
	case "":
		return SortUpdated, true
	default:
		return "", false
	}
}

// ListQuery filters and orders notes for listing.
type ListQuery struct {
	Any         []string // match notes carrying ANY of these tags
	All         []string // match notes carrying ALL of these tags
	Since       time.Time
	Until       time.Time
	Sort        SortKey
	Reverse     bool
	Limit       int
	Offset      int
	IncludeBody bool
}

// SearchQuery is an FTS query, or an RE2 pattern when Regex is set.
type SearchQuery struct {
	Query   string
	Regex   bool
	Any     []string
	All     []string
	Since   time.Time
	Until   time.Time
	Limit   int
	Reverse bool
}

// Page describes a slice of a larger result set.
type Page struct {
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
	Offset  int  `json:"offset"`
}

// TagStat is a tag with its usage count.
type TagStat struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// NewNote builds an unsaved note with timestamps and version set.
func NewNote(title, body string, tags []string, now time.Time) Note {
	return Note{
		Version:   1,
		Title:     title,
		Body:      body,
		Tags:      append([]string(nil), tags...),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// Touch bumps UpdatedAt; call before persisting an update.
func (n *Note) Touch(now time.Time) { n.UpdatedAt = now.UTC() }

// Package db persists notes. Backends are selected by URL: sqlite://PATH
// for the durable store (WAL + FTS5) and mem:// for an in-memory store used
// in tests and as a scratch backend.
package db

import (
	"context"
	"errors"
	"strings"

	"github.com/halvard/notedown/pkg/api"
)

// Store is the note storage and query interface. Create assigns the
// auto-incremented ID; Update is compare-and-swap on the version the caller
// last saw.
type Store interface {
	Create(ctx context.Context, n api.Note) (api.Note, error)
	Get(ctx context.Context, id int64) (api.Note, error)
	Update(ctx context.Context, n api.Note, ifVersion int64) (api.Note, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q api.ListQuery) ([]api.Note, api.Page, error)
	Search(ctx context.Context, q api.SearchQuery) ([]api.Note, api.Page, error)
	ListTags(ctx context.Context) ([]api.TagStat, error)
	Close() error
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Open returns a Store for the given URL.
func Open(ctx context.Context, url string) (Store, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return openSQLite(ctx, strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "mem://"), url == "":
		return NewMem(), nil
	default:
		return nil, errors.New("unsupported store url: " + url)
	}
}

// normalizeTags lowercases, trims, and de-duplicates while keeping order.
func normalizeTags(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// hasAll reports whether tags contains every element of want.
func hasAll(tags, want []string) bool {
	for _, w := range want {
		found := false
		for _, t := range tags {
			if t == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// hasAny reports whether tags contains at least one element of want.
func hasAny(tags, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, t := range tags {
			if t == w {
				return true
			}
		}
	}
	return false
}

package db

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/halvard/notedown/pkg/api"
)

// memStore is a mutex-guarded map. Search approximates FTS with
// case-insensitive substring matching, which is close enough for tests and
// scratch use.
type memStore struct {
	mu     sync.Mutex
	notes  map[int64]api.Note
	nextID int64
}

// NewMem returns an empty in-memory Store.
func NewMem() Store {
	return &memStore{notes: make(map[int64]api.Note), nextID: 1}
}

func (m *memStore) Create(_ context.Context, n api.Note) (api.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.Version == 0 {
		n.Version = 1
	}
	n.ID = m.nextID
	m.nextID++
	n.Tags = normalizeTags(n.Tags)
	m.notes[n.ID] = n
	return n, nil
}

func (m *memStore) Get(_ context.Context, id int64) (api.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return api.Note{}, ErrNotFound
	}
	return n, nil
}

func (m *memStore) Update(_ context.Context, n api.Note, ifVersion int64) (api.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.notes[n.ID]
	if !ok {
		return api.Note{}, ErrNotFound
	}
	if cur.Version != ifVersion {
		return api.Note{}, ErrConflict
	}
	n.Tags = normalizeTags(n.Tags)
	n.CreatedAt = cur.CreatedAt
	m.notes[n.ID] = n
	return n, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *memStore) List(_ context.Context, q api.ListQuery) ([]api.Note, api.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.filtered(filter{Since: q.Since, Until: q.Until, Any: q.Any, All: q.All})
	sortNotes(out, q.Sort, q.Reverse)

	limit := q.Limit
	if limit <= 0 {
		limit = 1000
	}
	if q.Offset > len(out) {
		out = nil
	} else {
		out = out[q.Offset:]
	}
	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	if !q.IncludeBody {
		for i := range out {
			out[i].Body = ""
		}
	}
	return out, api.Page{Count: len(out), HasMore: hasMore, Offset: q.Offset}, nil
}

func (m *memStore) Search(_ context.Context, q api.SearchQuery) ([]api.Note, api.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var match func(api.Note) bool
	if q.Regex {
		re, err := regexp.Compile(q.Query)
		if err != nil {
			return nil, api.Page{}, err
		}
		match = func(n api.Note) bool {
			return re.MatchString(n.Title + "\n" + n.Body + "\n" + strings.Join(n.Tags, ","))
		}
	} else {
		needle := strings.ToLower(q.Query)
		match = func(n api.Note) bool {
			hay := strings.ToLower(n.Title + "\n" + n.Body + "\n" + strings.Join(n.Tags, ","))
			return strings.Contains(hay, needle)
		}
	}

	candidates := m.filtered(filter{Since: q.Since, Until: q.Until, Any: q.Any, All: q.All})
	sortNotes(candidates, api.SortUpdated, q.Reverse)

	limit := q.Limit
	if limit <= 0 {
		limit = 500
	}
	var out []api.Note
	for _, n := range candidates {
		if match(n) {
			out = append(out, n)
			if len(out) > limit {
				break
			}
		}
	}
	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	return out, api.Page{Count: len(out), HasMore: hasMore}, nil
}

func (m *memStore) ListTags(_ context.Context) ([]api.TagStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	for _, n := range m.notes {
		for _, t := range n.Tags {
			counts[t]++
		}
	}
	out := make([]api.TagStat, 0, len(counts))
	for t, c := range counts {
		out = append(out, api.TagStat{Tag: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

func (m *memStore) Close() error { return nil }

// filtered returns copies, so callers can mutate results freely.
func (m *memStore) filtered(f filter) []api.Note {
	var out []api.Note
	for _, n := range m.notes {
		if !f.Since.IsZero() && n.CreatedAt.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && n.CreatedAt.After(f.Until) {
			continue
		}
		if !hasAll(n.Tags, normalizeTags(f.All)) {
			continue
		}
		if !hasAny(n.Tags, normalizeTags(f.Any)) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func sortNotes(notes []api.Note, key api.SortKey, reverse bool) {
	less := func(i, j int) bool {
		a, b := notes[i], notes[j]
		switch key {
		case api.SortCreated:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		case api.SortTitle:
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if at != bt {
				return at < bt
			}
			return a.ID < b.ID
		default:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
			return a.ID > b.ID
		}
	}
	if reverse {
		sort.Slice(notes, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.Slice(notes, less)
}

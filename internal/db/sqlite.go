package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	_ "modernc.org/sqlite"

	"github.com/halvard/notedown/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

// filter composes a reusable CTE for tag/time constraints.
type filter struct {
	Since time.Time
	Until time.Time
	Any   []string
	All   []string
}

type prefilter struct {
	CTE  string
	Args []any
}

// buildPrefilter returns a CTE named "filtered" that selects candidate note
// ids, applying time filters and precise Any/All tag logic via HAVING.
func buildPrefilter(f filter) prefilter {
	args := []any{}
	q := "WITH filtered AS (\n  SELECT n.id\n  FROM notes n"
	all := normalizeTags(f.All)
	any := normalizeTags(f.Any)
	if len(all)+len(any) > 0 {
		q += "\n  JOIN note_tags nt ON nt.note_id = n.id"
	}
	conds := []string{}
	if !f.Since.IsZero() {
		conds = append(conds, "n.created_at >= ?")
		args = append(args, f.Since.UTC())
	}
	if !f.Until.IsZero() {
		conds = append(conds, "n.created_at <= ?")
		args = append(args, f.Until.UTC())
	}
	if len(conds) > 0 {
		q += "\n  WHERE " + strings.Join(conds, " AND ")
	}
	q += "\n  GROUP BY n.id"
	hav := []string{}
	if l := len(all); l > 0 {
		ph := placeholders(l)
		hav = append(hav, "SUM(CASE WHEN nt.tag IN ("+ph+") THEN 1 ELSE 0 END) = "+strconv.Itoa(l))
		for _, t := range all {
			args = append(args, t)
		}
	}
	if l := len(any); l > 0 {
		ph := placeholders(l)
		hav = append(hav, "SUM(CASE WHEN nt.tag IN ("+ph+") THEN 1 ELSE 0 END) >= 1")
		for _, t := range any {
			args = append(args, t)
		}
	}
	if len(hav) > 0 {
		q += "\n  HAVING " + strings.Join(hav, " AND ")
	}
	q += "\n)\n"
	return prefilter{CTE: q, Args: args}
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "?"
	}
	return strings.Join(ph, ",")
}

func (s *sqliteStore) Create(ctx context.Context, n api.Note) (api.Note, error) {
	if n.Version == 0 {
		n.Version = 1
	}
	n.Tags = normalizeTags(n.Tags)
	tagsJSON, _ := json.Marshal(n.Tags)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return api.Note{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO notes(version, title, body, tags, created_at, updated_at) VALUES(?,?,?,?,?,?)`,
		n.Version, n.Title, n.Body, string(tagsJSON), n.CreatedAt.UTC(), n.UpdatedAt.UTC())
	if err != nil {
		return api.Note{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return api.Note{}, err
	}
	n.ID = id

	if err := upsertNoteTags(ctx, tx, n.ID, n.Tags); err != nil {
		return api.Note{}, err
	}
	if err := upsertFTS(ctx, tx, n); err != nil {
		return api.Note{}, err
	}
	if err := tx.Commit(); err != nil {
		return api.Note{}, err
	}
	return n, nil
}

func (s *sqliteStore) Get(ctx context.Context, id int64) (api.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, version, title, body, tags, created_at, updated_at FROM notes WHERE id=?`, id)
	return scanNote(row)
}

func (s *sqliteStore) Update(ctx context.Context, n api.Note, ifVersion int64) (api.Note, error) {
	n.Tags = normalizeTags(n.Tags)
	tagsJSON, _ := json.Marshal(n.Tags)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return api.Note{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE notes SET version=?, title=?, body=?, tags=?, updated_at=? WHERE id=? AND version=?`,
		n.Version, n.Title, n.Body, string(tagsJSON), n.UpdatedAt.UTC(), n.ID, ifVersion)
	if err != nil {
		return api.Note{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		// Distinguish a stale version from a missing row.
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM notes WHERE id=?`, n.ID).Scan(&exists); err == sql.ErrNoRows {
			return api.Note{}, ErrNotFound
		}
		return api.Note{}, ErrConflict
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id=?`, n.ID); err != nil {
		return api.Note{}, err
	}
	if err := upsertNoteTags(ctx, tx, n.ID, n.Tags); err != nil {
		return api.Note{}, err
	}

	row := tx.QueryRowContext(ctx,
		`SELECT id, version, title, body, tags, created_at, updated_at FROM notes WHERE id=?`, n.ID)
	out, err := scanNote(row)
	if err != nil {
		return api.Note{}, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes_fts WHERE rowid=?`, n.ID); err != nil {
		return api.Note{}, err
	}
	if err := upsertFTS(ctx, tx, out); err != nil {
		return api.Note{}, err
	}
	if err := tx.Commit(); err != nil {
		return api.Note{}, err
	}
	return out, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id=?`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes_fts WHERE rowid=?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id=?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteStore) List(ctx context.Context, q api.ListQuery) ([]api.Note, api.Page, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 1000
	}
	bodySelect := "'' AS body"
	if q.IncludeBody {
		bodySelect = "n.body"
	}
	pf := buildPrefilter(filter{Since: q.Since, Until: q.Until, Any: q.Any, All: q.All})
	sqlq := pf.CTE + `SELECT n.id, n.version, n.title, ` + bodySelect + `, n.tags, n.created_at, n.updated_at
FROM filtered f
JOIN notes n ON n.id = f.id
` + orderClause(q.Sort, q.Reverse) + `
LIMIT ? OFFSET ?`
	args := append(pf.Args, limit+1, q.Offset)

	rows, err := s.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, api.Page{}, err
	}
	defer rows.Close()

	var out []api.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, api.Page{}, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, api.Page{}, err
	}
	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	return out, api.Page{Count: len(out), HasMore: hasMore, Offset: q.Offset}, nil
}

func (s *sqliteStore) Search(ctx context.Context, q api.SearchQuery) ([]api.Note, api.Page, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 500
	}
	var (
		ids     []int64
		hasMore bool
		err     error
	)
	if q.Regex {
		ids, hasMore, err = s.searchRegex(ctx, q, limit)
	} else {
		ids, hasMore, err = s.searchFTS(ctx, q, limit)
	}
	if err != nil {
		return nil, api.Page{}, err
	}
	out := make([]api.Note, 0, len(ids))
	for _, id := range ids {
		if n, err := s.Get(ctx, id); err == nil {
			out = append(out, n)
		}
	}
	if q.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, api.Page{Count: len(out), HasMore: hasMore}, nil
}

func (s *sqliteStore) searchFTS(ctx context.Context, q api.SearchQuery, limit int) ([]int64, bool, error) {
	pf := buildPrefilter(filter{Since: q.Since, Until: q.Until, Any: q.Any, All: q.All})
	sqlq := pf.CTE + `SELECT n.id
FROM filtered f
JOIN notes n ON n.id = f.id
JOIN notes_fts x ON x.rowid = n.id
WHERE x.notes_fts MATCH ?
ORDER BY n.updated_at DESC, n.id DESC
LIMIT ?`
	args := append(pf.Args, q.Query, limit+1)
	rows, err := s.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, false, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	hasMore := len(ids) > limit
	if hasMore {
		ids = ids[:limit]
	}
	return ids, hasMore, nil
}

func (s *sqliteStore) searchRegex(ctx context.Context, q api.SearchQuery, limit int) ([]int64, bool, error) {
	re, err := regexp.Compile(q.Query)
	if err != nil {
		return nil, false, fmt.Errorf("bad pattern: %w", err)
	}
	// Candidate cap keeps the Go-side scan bounded.
	cand := limit * 20
	if cand < limit {
		cand = limit
	}
	pf := buildPrefilter(filter{Since: q.Since, Until: q.Until, Any: q.Any, All: q.All})
	sqlq := pf.CTE + `SELECT n.id, n.title, n.body, n.tags
FROM filtered f
JOIN notes n ON n.id = f.id`
	args := append([]any{}, pf.Args...)
	// Narrow with FTS on the longest literal word, when the pattern has one.
	if token := longestWord(q.Query); token != "" {
		sqlq += "\nJOIN notes_fts x ON x.rowid = n.id\nWHERE x.notes_fts MATCH ?"
		args = append(args, token)
	}
	sqlq += "\nORDER BY n.updated_at DESC, n.id DESC\nLIMIT ?"
	args = append(args, cand)

	rows, err := s.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	out := make([]int64, 0, limit+1)
	for rows.Next() {
		var (
			id          int64
			title, body string
			tagsJSON    string
		)
		if err := rows.Scan(&id, &title, &body, &tagsJSON); err != nil {
			return nil, false, err
		}
		var tags []string
		_ = json.Unmarshal([]byte(tagsJSON), &tags)
		hay := title + "\n" + body + "\n" + strings.Join(tags, ",")
		if re.MatchString(hay) {
			out = append(out, id)
			if len(out) >= limit+1 {
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	return out, hasMore, nil
}

func (s *sqliteStore) ListTags(ctx context.Context) ([]api.TagStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag, COUNT(DISTINCT note_id) AS cnt FROM note_tags GROUP BY tag ORDER BY cnt DESC, tag ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []api.TagStat
	for rows.Next() {
		var t api.TagStat
		if err := rows.Scan(&t.Tag, &t.Count); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error { return s.db.Close() }

type rowScanner interface{ Scan(dest ...any) error }

func scanNote(row rowScanner) (api.Note, error) {
	var n api.Note
	var tagsJSON string
	if err := row.Scan(&n.ID, &n.Version, &n.Title, &n.Body, &tagsJSON, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return api.Note{}, ErrNotFound
		}
		return api.Note{}, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &n.Tags)
	return n, nil
}

func orderClause(sort api.SortKey, reverse bool) string {
	asc, desc := "ASC", "DESC"
	if reverse {
		asc, desc = desc, asc
	}
	switch sort {
	case api.SortCreated:
		return "ORDER BY n.created_at " + desc + ", n.id " + desc
	case api.SortTitle:
		return "ORDER BY LOWER(n.title) " + asc + ", n.id " + asc
	default: // SortUpdated and the zero value
		return "ORDER BY n.updated_at " + desc + ", n.id " + desc
	}
}

// longestWord extracts the longest alphanumeric run (>= 3 chars) for FTS
// narrowing of regex searches.
func longestWord(s string) string {
	s = strings.ToLower(s)
	best := ""
	run := make([]rune, 0, 32)

	flush := func() {
		if len(run) >= 3 && len(run) > len(best) {
			best = string(run)
		}
		run = run[:0]
	}

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			run = append(run, r)
		} else {
			flush()
		}
	}
	flush()
	return best
}

// openSQLite connects via the modernc.org/sqlite driver and ensures schema.
func openSQLite(ctx context.Context, path string) (Store, error) {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA foreign_keys=ON;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqliteStore{db: dbh}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS notes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  version INTEGER NOT NULL,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  tags TEXT NOT NULL DEFAULT '[]',
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at DESC, id);
CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created_at DESC, id);
CREATE INDEX IF NOT EXISTS idx_notes_title ON notes(title);
CREATE TABLE IF NOT EXISTS note_tags (
  note_id INTEGER NOT NULL,
  tag TEXT NOT NULL COLLATE NOCASE,
  PRIMARY KEY(note_id, tag),
  FOREIGN KEY(note_id) REFERENCES notes(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag, note_id);
CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
  title, body, tags,
  tokenize='unicode61'
);
`)
	return err
}

func upsertFTS(ctx context.Context, tx *sql.Tx, n api.Note) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO notes_fts(rowid, title, body, tags) VALUES(?,?,?,?)`,
		n.ID, n.Title, n.Body, strings.Join(n.Tags, " "))
	return err
}

func upsertNoteTags(ctx context.Context, tx *sql.Tx, noteID int64, tags []string) error {
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO note_tags(note_id, tag) VALUES(?,?)`, noteID, t); err != nil {
			return err
		}
	}
	return nil
}

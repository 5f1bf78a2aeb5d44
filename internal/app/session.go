// Package app holds the host-side application state around the converter:
// the currently open note, its unsaved draft, and the debounced auto-save.
// The converter itself stays pure; everything stateful lives here.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/halvard/notedown/internal/db"
	"github.com/halvard/notedown/pkg/api"
	"github.com/halvard/notedown/pkg/markdown"
)

// ErrNoNote is returned by draft operations when no note is open.
var ErrNoNote = errors.New("no note open")

// Session is a command-handler facade over an injected store and converter.
// All methods are safe for concurrent use.
type Session struct {
	store db.Store
	conv  *markdown.Converter
	delay time.Duration
	log   *log.Logger

	mu        sync.Mutex
	cur       *api.Note
	draft     string
	savedHash string
	sort      api.SortKey
	lastSaved time.Time
	lastErr   error
	timer     *time.Timer
}

// Status is a snapshot of the session for IPC/status surfaces.
type Status struct {
	NoteID    int64     `json:"note_id"`
	Title     string    `json:"title"`
	Dirty     bool      `json:"dirty"`
	LastSaved time.Time `json:"last_saved"`
	LastError string    `json:"last_error,omitempty"`
}

// NewSession wires a session. delay is the auto-save debounce; zero saves
// on the next SetDraft call's timer immediately.
func NewSession(store db.Store, conv *markdown.Converter, delay time.Duration, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{store: store, conv: conv, delay: delay, log: logger}
}

// Preview converts text without touching session state. This is the
// keystroke path: the returned fragment goes straight into the preview
// pane and must not be re-escaped by the caller.
func (s *Session) Preview(text string) string { return s.conv.Convert(text) }

// New creates an empty note and makes it current. Any pending draft of the
// previously open note is flushed first.
func (s *Session) New(ctx context.Context, title string, tags []string) (api.Note, error) {
	if _, err := s.Flush(ctx); err != nil && err != ErrNoNote {
		return api.Note{}, err
	}
	n, err := s.store.Create(ctx, api.NewNote(title, "", tags, time.Now()))
	if err != nil {
		return api.Note{}, err
	}
	s.mu.Lock()
	s.setCurrentLocked(n)
	s.mu.Unlock()
	return n, nil
}

// Open loads a note and makes it current, flushing the previous one.
func (s *Session) Open(ctx context.Context, id int64) (api.Note, error) {
	if _, err := s.Flush(ctx); err != nil && err != ErrNoNote {
		return api.Note{}, err
	}
	n, err := s.store.Get(ctx, id)
	if err != nil {
		return api.Note{}, err
	}
	s.mu.Lock()
	s.setCurrentLocked(n)
	s.mu.Unlock()
	return n, nil
}

func (s *Session) setCurrentLocked(n api.Note) {
	s.stopTimerLocked()
	s.cur = &n
	s.draft = n.Body
	s.savedHash = n.Hash()
	s.lastErr = nil
}

// SetDraft records the edited body, restarts the auto-save timer, and
// returns the preview fragment for the new text.
func (s *Session) SetDraft(text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return "", ErrNoNote
	}
	s.draft = text
	s.stopTimerLocked()
	s.timer = time.AfterFunc(s.delay, s.autoSave)
	return s.conv.Convert(text), nil
}

func (s *Session) autoSave() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.Flush(ctx); err != nil && err != ErrNoNote {
		s.log.Printf("auto-save failed: %v", err)
	}
}

// Flush persists the draft now. A draft whose content hash equals the last
// saved hash is skipped, so timer churn never writes no-op versions.
func (s *Session) Flush(ctx context.Context) (api.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *Session) flushLocked(ctx context.Context) (api.Note, error) {
	if s.cur == nil {
		return api.Note{}, ErrNoNote
	}
	s.stopTimerLocked()

	next := *s.cur
	next.Body = s.draft
	if next.Hash() == s.savedHash {
		return *s.cur, nil
	}
	prev := next.Version
	next.Version++
	next.Touch(time.Now())

	saved, err := s.store.Update(ctx, next, prev)
	if err != nil {
		s.lastErr = err
		return api.Note{}, err
	}
	s.cur = &saved
	s.savedHash = saved.Hash()
	s.lastSaved = time.Now()
	s.lastErr = nil
	return saved, nil
}

// SetSort sets the default ordering List applies when the query leaves its
// sort key empty.
func (s *Session) SetSort(key api.SortKey) {
	s.mu.Lock()
	s.sort = key
	s.mu.Unlock()
}

// List queries the store, applying the session's sort when q has none.
func (s *Session) List(ctx context.Context, q api.ListQuery) ([]api.Note, api.Page, error) {
	s.mu.Lock()
	if q.Sort == "" {
		q.Sort = s.sort
	}
	s.mu.Unlock()
	return s.store.List(ctx, q)
}

// Search runs a store search on behalf of the session.
func (s *Session) Search(ctx context.Context, q api.SearchQuery) ([]api.Note, api.Page, error) {
	return s.store.Search(ctx, q)
}

// Rename changes the current note's title; persisted on the next flush.
func (s *Session) Rename(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return ErrNoNote
	}
	s.cur.Title = title
	return nil
}

// Delete removes a note; deleting the current note also clears the session.
func (s *Session) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	if s.cur != nil && s.cur.ID == id {
		s.stopTimerLocked()
		s.cur = nil
		s.draft = ""
		s.savedHash = ""
	}
	s.mu.Unlock()
	return nil
}

// Status reports the session snapshot.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{LastSaved: s.lastSaved}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if s.cur == nil {
		return st
	}
	st.NoteID = s.cur.ID
	st.Title = s.cur.Title
	probe := *s.cur
	probe.Body = s.draft
	st.Dirty = probe.Hash() != s.savedHash
	return st
}

// Close stops the timer and flushes any pending draft.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.flushLocked(ctx); err != nil && err != ErrNoNote {
		return err
	}
	return nil
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

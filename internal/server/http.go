// Package server exposes the preview HTTP API: CRUD over notes plus
// conversion endpoints that return rendered HTML.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/halvard/notedown/internal/db"
	"github.com/halvard/notedown/internal/render"
	"github.com/halvard/notedown/pkg/api"
)

// Server serves the preview API backed by a Store and a Renderer.
type Server struct {
	cfg      *viper.Viper
	store    db.Store
	renderer *render.Renderer
	log      *log.Logger
}

func New(cfg *viper.Viper, store db.Store, renderer *render.Renderer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cfg: cfg, store: store, renderer: renderer, log: logger}
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /v1/notes", s.auth(s.handleList))
	mux.HandleFunc("POST /v1/notes", s.auth(s.handleCreate))
	mux.HandleFunc("GET /v1/notes/{id}", s.auth(s.handleGet))
	mux.HandleFunc("PUT /v1/notes/{id}", s.auth(s.handleUpdate))
	mux.HandleFunc("DELETE /v1/notes/{id}", s.auth(s.handleDelete))
	mux.HandleFunc("GET /v1/notes/{id}/html", s.auth(s.handleNoteHTML))
	mux.HandleFunc("POST /v1/preview", s.auth(s.handlePreview))
	return mux
}

// auth enforces the bearer token when auth.token is configured. An empty
// token leaves the API open, which is the default for a loopback preview
// server.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimSpace(s.cfg.GetString("auth.token"))
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get("Authorization")
		if !strings.HasPrefix(got, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(got, "Bearer ")) != tok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("write response: %v", err)
	}
}

func (s *Server) writeStoreErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, db.ErrConflict):
		http.Error(w, "version conflict", http.StatusConflict)
	default:
		s.log.Printf("store error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

type listResponse struct {
	Notes []api.Note `json:"notes"`
	Page  api.Page   `json:"page"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lq := api.ListQuery{
		Any:         splitParam(q.Get("tags_any")),
		All:         splitParam(q.Get("tags_all")),
		Reverse:     q.Get("reverse") == "true",
		IncludeBody: q.Get("body") == "true",
	}
	if v := q.Get("sort"); v != "" {
		key, ok := api.ParseSortKey(v)
		if !ok {
			http.Error(w, "bad sort", http.StatusBadRequest)
			return
		}
		lq.Sort = key
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		lq.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad offset", http.StatusBadRequest)
			return
		}
		lq.Offset = n
	}

	notes, page, err := s.store.List(r.Context(), lq)
	if err != nil {
		s.writeStoreErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, listResponse{Notes: notes, Page: page})
}

type noteRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Tags      []string `json:"tags"`
	IfVersion int64    `json:"if_version"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	n, err := s.store.Create(r.Context(), api.NewNote(req.Title, req.Body, req.Tags, nowUTC()))
	if err != nil {
		s.writeStoreErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	n, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, n)
}

// handleUpdate is compare-and-swap: if_version must carry the version the
// client last saw.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.IfVersion <= 0 {
		http.Error(w, "if_version required", http.StatusBadRequest)
		return
	}
	cur, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreErr(w, err)
		return
	}
	cur.Title = req.Title
	cur.Body = req.Body
	cur.Tags = req.Tags
	cur.Version = req.IfVersion + 1
	cur.Touch(nowUTC())

	n, err := s.store.Update(r.Context(), cur, req.IfVersion)
	if err != nil {
		s.writeStoreErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeStoreErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleNoteHTML returns the note rendered as a standalone HTML page.
func (s *Server) handleNoteHTML(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	n, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, s.renderer.Page(n.Title, n.Body))
}

// handlePreview converts the raw request body to an HTML fragment without
// touching the store. This is the hot path behind the live preview pane.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, s.renderer.HTML(string(b)))
}

func nowUTC() time.Time { return time.Now().UTC() }

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

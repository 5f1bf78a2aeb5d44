package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/notedown/internal/db"
	"github.com/halvard/notedown/internal/render"
	"github.com/halvard/notedown/pkg/api"
)

func newTestServer(t *testing.T, token string) (*httptest.Server, db.Store) {
	t.Helper()
	cfg := viper.New()
	cfg.Set("auth.token", token)
	store := db.NewMem()
	srv := httptest.NewServer(New(cfg, store, render.New(false), nil).Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decodeNote(t *testing.T, resp *http.Response) api.Note {
	t.Helper()
	defer resp.Body.Close()
	var n api.Note
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&n))
	return n
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, "")
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNoteLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp := postJSON(t, srv.URL+"/v1/notes", noteRequest{Title: "todo", Body: "# Plan", Tags: []string{"work"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeNote(t, resp)
	assert.Equal(t, int64(1), created.Version)

	resp, err := http.Get(srv.URL + "/v1/notes/1")
	require.NoError(t, err)
	got := decodeNote(t, resp)
	assert.Equal(t, "todo", got.Title)

	// CAS update with the right version succeeds.
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/v1/notes/1", jsonBody(t, noteRequest{Title: "todo", Body: "# Plan\n\ndone", IfVersion: created.Version}))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeNote(t, resp)
	assert.Equal(t, int64(2), updated.Version)

	// Replaying the old version conflicts.
	req, _ = http.NewRequest(http.MethodPut, srv.URL+"/v1/notes/1", jsonBody(t, noteRequest{Title: "stale", IfVersion: created.Version}))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/v1/notes/1", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/v1/notes/1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func TestListWithFilters(t *testing.T) {
	srv, _ := newTestServer(t, "")
	postJSON(t, srv.URL+"/v1/notes", noteRequest{Title: "a", Tags: []string{"work"}}).Body.Close()
	postJSON(t, srv.URL+"/v1/notes", noteRequest{Title: "b", Tags: []string{"home"}}).Body.Close()

	resp, err := http.Get(srv.URL + "/v1/notes?tags_any=work")
	require.NoError(t, err)
	defer resp.Body.Close()
	var out listResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Notes, 1)
	assert.Equal(t, "a", out.Notes[0].Title)

	resp, err = http.Get(srv.URL + "/v1/notes?limit=bogus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreviewConvertsBody(t *testing.T) {
	srv, _ := newTestServer(t, "")
	resp, err := http.Post(srv.URL+"/v1/preview", "text/plain", strings.NewReader("**hi** <s>"))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<p><strong>hi</strong> &lt;s&gt;</p>", string(b))
}

func TestNoteHTMLPage(t *testing.T) {
	srv, _ := newTestServer(t, "")
	postJSON(t, srv.URL+"/v1/notes", noteRequest{Title: "page", Body: "# Top"}).Body.Close()

	resp, err := http.Get(srv.URL + "/v1/notes/1/html")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<!DOCTYPE html>")
	assert.Contains(t, string(b), "<h1>Top</h1>")
}

func TestAuthToken(t *testing.T) {
	srv, _ := newTestServer(t, "sekrit")

	// Health stays open; the API does not.
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/v1/notes")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/notes", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

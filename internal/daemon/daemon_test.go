package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/notedown/internal/app"
	"github.com/halvard/notedown/internal/db"
	"github.com/halvard/notedown/internal/ipc"
	"github.com/halvard/notedown/pkg/api"
	"github.com/halvard/notedown/pkg/markdown"
)

func newHandler(t *testing.T) (func(ipc.Message) ipc.Response, db.Store, *bool) {
	t.Helper()
	store := db.NewMem()
	sess := app.NewSession(store, markdown.New(), time.Hour, nil)
	t.Cleanup(func() { _ = sess.Close(context.Background()) })
	stopped := false
	h := Handler(context.Background(), sess, func() { stopped = true })
	return h, store, &stopped
}

func TestHandlerSessionFlow(t *testing.T) {
	h, store, _ := newHandler(t)

	resp := h(ipc.Message{Name: "new", Title: "draft me", Tags: []string{"x"}})
	require.True(t, resp.OK, resp.Msg)
	require.NotNil(t, resp.Note)
	id := resp.Note.ID

	resp = h(ipc.Message{Name: "draft", Body: "# One"})
	require.True(t, resp.OK, resp.Msg)
	assert.Equal(t, "<h1>One</h1>", resp.HTML)

	resp = h(ipc.Message{Name: "status"})
	require.True(t, resp.OK)
	require.NotNil(t, resp.Status)
	assert.True(t, resp.Status.Dirty)
	assert.Equal(t, id, resp.Status.NoteID)

	resp = h(ipc.Message{Name: "flush"})
	require.True(t, resp.OK, resp.Msg)
	assert.Equal(t, int64(2), resp.Note.Version)

	saved, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "# One", saved.Body)
}

func TestHandlerErrors(t *testing.T) {
	h, _, _ := newHandler(t)

	resp := h(ipc.Message{Name: "draft", Body: "x"})
	assert.False(t, resp.OK)

	resp = h(ipc.Message{Name: "open"})
	assert.False(t, resp.OK)
	assert.Equal(t, "missing id", resp.Msg)

	resp = h(ipc.Message{Name: "nope"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Msg, "unknown command")
}

func TestHandlerPreviewIsStateless(t *testing.T) {
	h, _, _ := newHandler(t)
	resp := h(ipc.Message{Name: "preview", Body: "*i*"})
	require.True(t, resp.OK)
	assert.Equal(t, "<p><em>i</em></p>", resp.HTML)

	st := h(ipc.Message{Name: "status"})
	assert.Equal(t, int64(0), st.Status.NoteID)
}

func TestHandlerListAndSearch(t *testing.T) {
	h, store, _ := newHandler(t)

	_, err := store.Create(context.Background(), api.NewNote("apples", "buy apples", []string{"shop"}, time.Now()))
	require.NoError(t, err)
	_, err = store.Create(context.Background(), api.NewNote("zebra", "stripes", nil, time.Now()))
	require.NoError(t, err)

	resp := h(ipc.Message{Name: "list", TagsAny: []string{"shop"}})
	require.True(t, resp.OK, resp.Msg)
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, "apples", resp.Notes[0].Title)

	resp = h(ipc.Message{Name: "sort", Sort: "title"})
	require.True(t, resp.OK, resp.Msg)

	resp = h(ipc.Message{Name: "list"})
	require.True(t, resp.OK, resp.Msg)
	require.Len(t, resp.Notes, 2)
	assert.Equal(t, "apples", resp.Notes[0].Title)
	assert.Equal(t, "zebra", resp.Notes[1].Title)

	resp = h(ipc.Message{Name: "search", Query: "stripes"})
	require.True(t, resp.OK, resp.Msg)
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, "zebra", resp.Notes[0].Title)

	resp = h(ipc.Message{Name: "sort", Sort: "bogus"})
	assert.False(t, resp.OK)

	resp = h(ipc.Message{Name: "list", Since: "not a time"})
	assert.False(t, resp.OK)
}

func TestHandlerStop(t *testing.T) {
	h, _, stopped := newHandler(t)
	resp := h(ipc.Message{Name: "stop"})
	assert.True(t, resp.OK)
	assert.True(t, *stopped)
}

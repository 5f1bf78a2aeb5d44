// Package daemon runs the preview server: the HTTP API plus the Unix socket
// control channel that drives the shared editing session.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/halvard/notedown/internal/app"
	"github.com/halvard/notedown/internal/ipc"
	"github.com/halvard/notedown/internal/server"
	"github.com/halvard/notedown/internal/util"
	"github.com/halvard/notedown/internal/wire"
	"github.com/halvard/notedown/pkg/api"
)

// Run starts the daemon using the already-wired App. The caller controls
// the lifecycle via ctx; a "stop" IPC message also shuts it down.
func Run(ctx context.Context, a *wire.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	debounce := time.Duration(a.Cfg.GetInt("preview.debounce_ms")) * time.Millisecond
	sess := app.NewSession(a.Store, a.Renderer.Converter(), debounce, a.Log)
	defer func() { _ = sess.Close(context.Background()) }()

	addr := strings.TrimSpace(a.Cfg.GetString("http_addr"))
	if addr == "" {
		addr = ":7465"
	}
	srv := &http.Server{Addr: addr, Handler: server.New(a.Cfg, a.Store, a.Renderer, a.Log).Router()}

	sock, err := ipc.SocketPath()
	if err != nil {
		return err
	}
	go func() {
		_ = ipc.Serve(ctx, sock, Handler(ctx, sess, cancel))
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 3*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.Log.Printf("daemon listening on %s (socket %s)", addr, sock)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Handler maps IPC messages onto the session. stop is invoked on the "stop"
// command to end the daemon.
func Handler(ctx context.Context, sess *app.Session, stop context.CancelFunc) func(ipc.Message) ipc.Response {
	return func(m ipc.Message) ipc.Response {
		switch m.Name {
		case "status":
			st := sess.Status()
			return ipc.Response{OK: true, Status: &st}
		case "new":
			n, err := sess.New(ctx, m.Title, m.Tags)
			if err != nil {
				return ipc.FailErr(err)
			}
			return ipc.Response{OK: true, Note: &n}
		case "open":
			if m.ID <= 0 {
				return ipc.Fail("missing id")
			}
			n, err := sess.Open(ctx, m.ID)
			if err != nil {
				return ipc.FailErr(err)
			}
			return ipc.Response{OK: true, Note: &n}
		case "draft":
			html, err := sess.SetDraft(m.Body)
			if err != nil {
				return ipc.FailErr(err)
			}
			return ipc.Response{OK: true, HTML: html}
		case "rename":
			if err := sess.Rename(m.Title); err != nil {
				return ipc.FailErr(err)
			}
			return ipc.Response{OK: true}
		case "flush":
			n, err := sess.Flush(ctx)
			if err != nil {
				return ipc.FailErr(err)
			}
			return ipc.Response{OK: true, Note: &n}
		case "preview":
			return ipc.Response{OK: true, HTML: sess.Preview(m.Body)}
		case "sort":
			key, ok := api.ParseSortKey(m.Sort)
			if !ok {
				return ipc.Fail("unknown sort key: " + m.Sort)
			}
			sess.SetSort(key)
			return ipc.Response{OK: true}
		case "list":
			q, err := listQuery(m)
			if err != nil {
				return ipc.FailErr(err)
			}
			notes, page, err := sess.List(ctx, q)
			if err != nil {
				return ipc.FailErr(err)
			}
			return ipc.Response{OK: true, Notes: notes, Page: &page}
		case "search":
			q, err := searchQuery(m)
			if err != nil {
				return ipc.FailErr(err)
			}
			notes, page, err := sess.Search(ctx, q)
			if err != nil {
				return ipc.FailErr(err)
			}
			return ipc.Response{OK: true, Notes: notes, Page: &page}
		case "stop":
			stop()
			return ipc.Response{OK: true, Msg: "stopping"}
		default:
			return ipc.Fail("unknown command: " + m.Name)
		}
	}
}

func listQuery(m ipc.Message) (api.ListQuery, error) {
	q := api.ListQuery{
		Any:     m.TagsAny,
		All:     m.TagsAll,
		Reverse: m.Reverse,
		Limit:   m.Limit,
		Offset:  m.Offset,
	}
	if m.Sort != "" {
		key, ok := api.ParseSortKey(m.Sort)
		if !ok {
			return q, fmt.Errorf("unknown sort key %q", m.Sort)
		}
		q.Sort = key
	}
	s, u, err := util.ParseTimeRange(m.Since, m.Until)
	if err != nil {
		return q, err
	}
	q.Since, q.Until = s, u
	return q, nil
}

func searchQuery(m ipc.Message) (api.SearchQuery, error) {
	q := api.SearchQuery{
		Query:   m.Query,
		Regex:   m.Regex,
		Any:     m.TagsAny,
		All:     m.TagsAll,
		Reverse: m.Reverse,
		Limit:   m.Limit,
	}
	s, u, err := util.ParseTimeRange(m.Since, m.Until)
	if err != nil {
		return q, err
	}
	q.Since, q.Until = s, u
	return q, nil
}

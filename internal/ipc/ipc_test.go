package ipc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "nd-ipc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	sock := filepath.Join(dir, "d.sock")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, sock, func(m Message) Response {
			if m.Name != "draft" {
				return Fail("unknown command: " + m.Name)
			}
			return Response{OK: true, HTML: "<p>" + m.Body + "</p>"}
		})
	}()

	// Wait for the socket to appear.
	require.Eventually(t, func() bool {
		_, err := os.Stat(sock)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	resp, err := Request(ctx, sock, Message{Name: "draft", Body: "hi"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "<p>hi</p>", resp.HTML)

	resp, err = Request(ctx, sock, Message{Name: "bogus"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Msg, "unknown command")

	cancel()
	assert.NoError(t, <-done)
}

func TestSocketPathUsesRuntimeDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	p, err := SocketPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "notedown", "daemon.sock"), p)

	info, err := os.Stat(filepath.Dir(p))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

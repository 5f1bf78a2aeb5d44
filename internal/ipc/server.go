package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"os"
)

// Serve listens on a Unix domain socket at path and handles one JSON
// Message per connection, replying with a JSON Response. It returns when
// ctx is canceled.
func Serve(ctx context.Context, path string, handle func(Message) Response) error {
	// Remove stale socket if present
	_ = os.Remove(path)
	l, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	defer l.Close()
	_ = os.Chmod(path, 0o600)

	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	for {
		c, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("ipc accept error: %v", err)
			return err
		}
		go func(conn net.Conn) {
			defer conn.Close()
			var m Message
			if err := json.NewDecoder(bufio.NewReader(conn)).Decode(&m); err != nil {
				_ = json.NewEncoder(conn).Encode(Fail("bad request"))
				return
			}
			_ = json.NewEncoder(conn).Encode(handle(m))
		}(c)
	}
}

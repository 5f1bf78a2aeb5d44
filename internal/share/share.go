// Package share sends single notes between machines over QUIC. One stream
// carries one JSON-encoded note; the receiver acks with "ok" once the note
// has been handed to the sink.
package share

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	quic "github.com/quic-go/quic-go"

	"github.com/halvard/notedown/pkg/api"
)

const alpn = "notedown-share/1"

const maxNoteBytes = 8 << 20

var (
	ErrMissingTLS = errors.New("missing TLS configuration")
	ErrBadAck     = errors.New("peer did not acknowledge note")
)

// Sink receives inbound notes. Returning an error refuses the note and the
// sender sees a failed ack.
type Sink func(ctx context.Context, n api.Note) error

// Serve listens for inbound notes on addr until ctx is done. Each accepted
// stream is decoded and passed to sink.
func Serve(ctx context.Context, addr string, tlsConf *tls.Config, sink Sink, logger *log.Logger) error {
	if tlsConf == nil {
		return ErrMissingTLS
	}
	if logger == nil {
		logger = log.Default()
	}
	ensureALPN(tlsConf)

	l, err := quic.ListenAddr(addr, tlsConf, &quic.Config{})
	if err != nil {
		return err
	}
	defer l.Close()

	errc := make(chan error, 1)
	go func() {
		for {
			conn, err := l.Accept(ctx)
			if err != nil {
				errc <- err
				return
			}
			go handleConn(ctx, conn, sink, logger)
		}
	}()

	select {
	case <-ctx.Done():
		_ = l.Close()
		return nil
	case err := <-errc:
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
}

func handleConn(ctx context.Context, conn quic.Connection, sink Sink, logger *log.Logger) {
	s, err := conn.AcceptStream(ctx)
	if err != nil {
		return
	}
	defer s.Close()

	var n api.Note
	dec := json.NewDecoder(io.LimitReader(s, maxNoteBytes))
	if err := dec.Decode(&n); err != nil {
		logger.Printf("share: decode from %s: %v", conn.RemoteAddr(), err)
		_, _ = s.Write([]byte("err\n"))
		return
	}
	if err := sink(ctx, n); err != nil {
		logger.Printf("share: sink rejected note %q: %v", n.Title, err)
		_, _ = s.Write([]byte("err\n"))
		return
	}
	logger.Printf("share: received note %q from %s", n.Title, conn.RemoteAddr())
	_, _ = s.Write([]byte("ok\n"))
}

// Send transmits one note to addr and waits for the ack. insecure skips
// certificate verification for self-signed receivers.
func Send(ctx context.Context, addr string, n api.Note, insecure bool) error {
	tlsConf := &tls.Config{InsecureSkipVerify: insecure, NextProtos: []string{alpn}}
	conn, err := quic.DialAddr(ctx, addr, tlsConf, &quic.Config{})
	if err != nil {
		return err
	}
	defer conn.CloseWithError(0, "done")

	s, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(s).Encode(n); err != nil {
		_ = s.Close()
		return err
	}
	// Half-close the write side so the receiver sees EOF after the payload.
	if err := s.Close(); err != nil {
		return err
	}

	buf := make([]byte, 3)
	if _, err := io.ReadFull(s, buf); err != nil {
		return fmt.Errorf("read ack: %w", err)
	}
	if string(buf) != "ok\n" {
		return ErrBadAck
	}
	return nil
}

func ensureALPN(tlsConf *tls.Config) {
	for _, p := range tlsConf.NextProtos {
		if p == alpn {
			return
		}
	}
	tlsConf.NextProtos = append(tlsConf.NextProtos, alpn)
}

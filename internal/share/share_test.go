package share

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/notedown/pkg/api"
)

func TestSendReceiveLoopback(t *testing.T) {
	tlsConf, err := SelfSignedTLS()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan api.Note, 1)
	done := make(chan error, 1)
	addr := "127.0.0.1:17466"
	go func() {
		done <- Serve(ctx, addr, tlsConf, func(_ context.Context, n api.Note) error {
			received <- n
			return nil
		}, nil)
	}()

	want := api.Note{ID: 3, Version: 2, Title: "shared", Body: "# hi", Tags: []string{"x"}}

	// The listener needs a moment to bind; retry the dial briefly.
	require.Eventually(t, func() bool {
		sendCtx, sendCancel := context.WithTimeout(ctx, time.Second)
		defer sendCancel()
		return Send(sendCtx, addr, want, true) == nil
	}, 5*time.Second, 50*time.Millisecond)

	select {
	case got := <-received:
		assert.Equal(t, want.Title, got.Title)
		assert.Equal(t, want.Body, got.Body)
	case <-time.After(time.Second):
		t.Fatal("note never arrived")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestSendRejectedBySink(t *testing.T) {
	tlsConf, err := SelfSignedTLS()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := "127.0.0.1:17467"
	go func() {
		_ = Serve(ctx, addr, tlsConf, func(context.Context, api.Note) error {
			return errors.New("nope")
		}, nil)
	}()

	var sendErr error
	require.Eventually(t, func() bool {
		sendCtx, sendCancel := context.WithTimeout(ctx, time.Second)
		defer sendCancel()
		sendErr = Send(sendCtx, addr, api.Note{Title: "x"}, true)
		// Dial errors mean the listener is not up yet; ack errors are final.
		return sendErr == nil || errors.Is(sendErr, ErrBadAck)
	}, 5*time.Second, 50*time.Millisecond)
	assert.ErrorIs(t, sendErr, ErrBadAck)
}

func TestServeRequiresTLS(t *testing.T) {
	err := Serve(context.Background(), "127.0.0.1:0", nil, nil, nil)
	assert.ErrorIs(t, err, ErrMissingTLS)
}

func TestManagedTLSRequiresDomain(t *testing.T) {
	_, err := ManagedTLS(context.Background(), "", "")
	assert.Error(t, err)
}

package server

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nroche/timebomb/internal/auth"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(nil, auth.NewSigner("test-secret", time.Hour), log.New(io.Discard))
}

func TestHandleWebSocketAfterStop(t *testing.T) {
	srv := newTestServer(t)
	srv.Start()
	require.NoError(t, srv.Stop())

	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		// Refusing the upgrade outright is fine too.
		return
	}
	defer func() { _ = conn.Close() }()

	// The stopped server must drop the connection promptly instead of parking
	// the handler on the exited lifecycle loop and leaving the socket open.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	var nerr net.Error
	if errors.As(err, &nerr) {
		assert.False(t, nerr.Timeout(), "socket idled until the deadline instead of being closed")
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	srv := newTestServer(t)
	srv.Start()
	defer func() { _ = srv.Stop() }()

	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		srv.mu.RLock()
		defer srv.mu.RUnlock()
		return len(srv.connections) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		srv.mu.RLock()
		defer srv.mu.RUnlock()
		return len(srv.connections) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

package manifold

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// serverConn is one accepted connection on the test server; closed is closed
// when the server-side read loop sees the connection die.
type serverConn struct {
	conn   *websocket.Conn
	closed chan struct{}
}

func newWSTestServer(t *testing.T) (*httptest.Server, chan *serverConn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	conns := make(chan *serverConn, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		sc := &serverConn{conn: c, closed: make(chan struct{})}
		conns <- sc
		go func() {
			defer close(sc.closed)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	t.Cleanup(srv.Close)

	return srv, conns
}

func wsURLOf(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func acceptConn(t *testing.T, conns chan *serverConn) *serverConn {
	t.Helper()
	select {
	case sc := <-conns:
		return sc
	case <-time.After(2 * time.Second):
		t.Fatal("server did not accept a connection")
		return nil
	}
}

func TestWSClientReconnectClosesPreviousConnection(t *testing.T) {
	srv, conns := newWSTestServer(t)

	client := NewWSClient(wsURLOf(srv))
	defer client.Close()

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("first Connect: %v", err)
	}
	first := acceptConn(t, conns)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	acceptConn(t, conns)

	// The superseded connection must be torn down, not left dangling until
	// the server times it out.
	select {
	case <-first.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("previous connection still open after reconnect")
	}
}

func TestWSClientCloseTearsDownConnection(t *testing.T) {
	srv, conns := newWSTestServer(t)

	client := NewWSClient(wsURLOf(srv))
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	sc := acceptConn(t, conns)

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-sc.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection still open after Close")
	}

	if err := client.Connect(context.Background()); !errors.Is(err, ErrTransport) {
		t.Errorf("Connect after Close error = %v, want ErrTransport", err)
	}
}

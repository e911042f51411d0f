package wsconn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pushServer accepts one socket per request and hands it to serve. It
// returns the ws:// url.
func pushServer(t *testing.T, serve func(r *http.Request, conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		if serve != nil {
			serve(r, conn)
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// drain reads until the client goes away.
func drain(conn *websocket.Conn, each func([]byte)) {
	for {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			return
		}
		if each != nil {
			each(data)
		}
	}
}

func connect(t *testing.T, cfg Config, setup func(*Client)) *Client {
	t.Helper()
	cfg.PingInterval = 0
	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	if setup != nil {
		setup(c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	return c
}

func TestNew_RejectsNonWebSocketURL(t *testing.T) {
	for _, raw := range []string{"http://localhost:8000/ws", "", "://bad"} {
		_, err := New(DefaultConfig(raw, "push"))
		assert.Error(t, err, raw)
	}
}

func TestClient_Connect(t *testing.T) {
	t.Run("reports connecting then connected", func(t *testing.T) {
		url := pushServer(t, func(_ *http.Request, conn *websocket.Conn) { drain(conn, nil) })

		var (
			mu     sync.Mutex
			states []State
		)
		c := connect(t, DefaultConfig(url, "push"), func(c *Client) {
			c.OnStateChange(func(s State, _ error) {
				mu.Lock()
				states = append(states, s)
				mu.Unlock()
			})
		})

		assert.True(t, c.IsConnected())
		mu.Lock()
		defer mu.Unlock()
		require.GreaterOrEqual(t, len(states), 2)
		assert.Equal(t, []State{StateConnecting, StateConnected}, states[:2])
	})

	t.Run("unreachable server", func(t *testing.T) {
		cfg := DefaultConfig("ws://127.0.0.1:1/push", "push")
		cfg.PingInterval = 0
		c, err := New(cfg)
		require.NoError(t, err)
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.Error(t, c.Connect(ctx))
		assert.Equal(t, StateDisconnected, c.State())
	})

	t.Run("sends configured headers", func(t *testing.T) {
		auth := make(chan string, 1)
		url := pushServer(t, func(r *http.Request, conn *websocket.Conn) {
			auth <- r.Header.Get("Authorization")
			drain(conn, nil)
		})

		cfg := DefaultConfig(url, "push")
		cfg.Header = http.Header{"Authorization": {"Bearer tok-1"}}
		connect(t, cfg, nil)

		select {
		case got := <-auth:
			assert.Equal(t, "Bearer tok-1", got)
		case <-time.After(2 * time.Second):
			t.Fatal("server never saw the handshake")
		}
	})
}

func TestClient_DeliversFrames(t *testing.T) {
	frame := `{"type":"invalidate","keys":[["signals"],["signal-stats"]]}`
	url := pushServer(t, func(_ *http.Request, conn *websocket.Conn) {
		_ = conn.Write(context.Background(), websocket.MessageText, []byte(frame))
		drain(conn, nil)
	})

	got := make(chan []byte, 1)
	connect(t, DefaultConfig(url, "push"), func(c *Client) {
		c.OnMessage(func(_ context.Context, msg []byte) { got <- msg })
	})

	select {
	case msg := <-got:
		assert.JSONEq(t, frame, string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("frame not delivered")
	}
}

func TestClient_SendJSON(t *testing.T) {
	const senders, each = 8, 5

	var (
		count atomic.Int32
		first = make(chan []byte, 1)
	)
	url := pushServer(t, func(_ *http.Request, conn *websocket.Conn) {
		drain(conn, func(b []byte) {
			if count.Add(1) == 1 {
				first <- b
			}
		})
	})
	c := connect(t, DefaultConfig(url, "push"), nil)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := range senders {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range each {
				assert.NoError(t, c.SendJSON(ctx, map[string]any{"type": "ack", "sender": id, "seq": j}))
			}
		}(i)
	}
	wg.Wait()

	var msg map[string]any
	require.NoError(t, json.Unmarshal(<-first, &msg))
	assert.Equal(t, "ack", msg["type"])
	assert.Eventually(t, func() bool { return count.Load() == senders*each }, 2*time.Second, 20*time.Millisecond)
}

func TestClient_DropsOversizedFrame(t *testing.T) {
	url := pushServer(t, func(_ *http.Request, conn *websocket.Conn) {
		_ = conn.Write(context.Background(), websocket.MessageText, []byte(strings.Repeat("A", 4096)))
		time.Sleep(200 * time.Millisecond)
	})

	cfg := DefaultConfig(url, "push")
	cfg.MaxMessageSize = 100
	cfg.InitialBackoff = time.Minute
	c := connect(t, cfg, nil)

	assert.Eventually(t, func() bool { return !c.IsConnected() }, 2*time.Second, 20*time.Millisecond)
}

func TestClient_ReconnectsAfterServerDrop(t *testing.T) {
	var conns atomic.Int32
	url := pushServer(t, func(_ *http.Request, conn *websocket.Conn) {
		if conns.Add(1) == 1 {
			return
		}
		drain(conn, nil)
	})

	cfg := DefaultConfig(url, "push")
	cfg.InitialBackoff = 20 * time.Millisecond
	cfg.MaxBackoff = 50 * time.Millisecond

	reconnected := make(chan struct{}, 1)
	var dropped atomic.Bool
	connect(t, cfg, func(c *Client) {
		c.OnStateChange(func(s State, _ error) {
			switch s {
			case StateReconnecting:
				dropped.Store(true)
			case StateConnected:
				if dropped.Load() {
					select {
					case reconnected <- struct{}{}:
					default:
					}
				}
			}
		})
	})

	select {
	case <-reconnected:
	case <-time.After(3 * time.Second):
		t.Fatal("client did not reconnect")
	}
	assert.GreaterOrEqual(t, conns.Load(), int32(2))
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	url := pushServer(t, func(_ *http.Request, conn *websocket.Conn) { drain(conn, nil) })
	c := connect(t, DefaultConfig(url, "push"), nil)

	require.NoError(t, c.Close())
	assert.Equal(t, StateClosed, c.State())
	assert.NoError(t, c.Close())
	assert.Error(t, c.Send(context.Background(), []byte("late")))
}

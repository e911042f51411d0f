// Package push feeds server-sent invalidation messages into the query cache.
//
// Messages look like:
//
//	{"type": "invalidate", "keys": [["signals"], ["signal-stats"]]}
package push

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/fd1az/naijatrade/internal/logger"
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/wsconn"
)

// MessageInvalidate is the only message type acted on.
const MessageInvalidate = "invalidate"

// Message is one push frame.
type Message struct {
	Type string     `json:"type"`
	Keys [][]string `json:"keys"`
}

// Invalidator is the cache entry point.
type Invalidator interface {
	Invalidate(prefixes ...query.Key)
}

// TokenSource supplies the bearer token. It is read on every dial so a
// reconnect after a token refresh sends the current token.
type TokenSource interface {
	AccessToken() (string, bool)
}

// Listener owns the push connection.
type Listener struct {
	url    string
	tokens TokenSource
	inv    Invalidator
	log    logger.LoggerInterface
	ws     atomic.Pointer[wsconn.Client]
}

// NewListener creates a listener for url. tokens may be nil.
func NewListener(url string, tokens TokenSource, inv Invalidator, log logger.LoggerInterface) *Listener {
	if log == nil {
		log = logger.Nop()
	}
	return &Listener{url: url, tokens: tokens, inv: inv, log: log}
}

// Start connects and keeps the connection alive until Close.
func (l *Listener) Start(ctx context.Context) error {
	cfg := wsconn.DefaultConfig(l.url, "push")
	cfg.Logger = l.log
	cfg.HeaderFunc = l.header

	ws, err := wsconn.New(cfg)
	if err != nil {
		return err
	}
	ws.OnMessage(l.Handle)
	ws.OnStateChange(func(state wsconn.State, err error) {
		if err != nil {
			l.log.Warn(ctx, "push channel state changed", "state", string(state), "error", err)
			return
		}
		l.log.Debug(ctx, "push channel state changed", "state", string(state))
	})

	if err := ws.Connect(ctx); err != nil {
		return err
	}
	l.ws.Store(ws)
	l.log.Info(ctx, "push channel connected", "url", l.url)
	return nil
}

func (l *Listener) header() http.Header {
	if l.tokens == nil {
		return nil
	}
	tok, ok := l.tokens.AccessToken()
	if !ok {
		return nil
	}
	return http.Header{"Authorization": {"Bearer " + tok}}
}

// Handle applies one frame. Unknown types and malformed frames are ignored.
func (l *Listener) Handle(ctx context.Context, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		l.log.Debug(ctx, "push frame ignored", "error", err)
		return
	}
	if msg.Type != MessageInvalidate {
		return
	}

	keys := make([]query.Key, 0, len(msg.Keys))
	for _, k := range msg.Keys {
		if len(k) > 0 {
			keys = append(keys, query.Key(k))
		}
	}
	if len(keys) == 0 {
		return
	}
	l.inv.Invalidate(keys...)
}

// Connected reports whether the push connection is up.
func (l *Listener) Connected() bool {
	ws := l.ws.Load()
	return ws != nil && ws.IsConnected()
}

// Close stops the connection.
func (l *Listener) Close() error {
	ws := l.ws.Load()
	if ws == nil {
		return nil
	}
	return ws.Close()
}

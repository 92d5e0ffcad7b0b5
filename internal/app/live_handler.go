// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	liveSendBuffer   = 8
	liveWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// liveClient is one websocket subscriber of the sample stream.
type liveClient struct {
	conn *websocket.Conn
	send chan []byte
}

// liveHub fans samples out to websocket clients. A client that cannot keep
// up is disconnected rather than slowing down the others.
type liveHub struct {
	mu      sync.Mutex
	clients map[*liveClient]struct{}
	logger  zerolog.Logger
}

func newLiveHub(logger zerolog.Logger) *liveHub {
	return &liveHub{
		clients: make(map[*liveClient]struct{}),
		logger:  logger,
	}
}

func (h *liveHub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("dropping slow websocket client")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *liveHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *liveHub) remove(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// serve upgrades the request and streams payloads until the client goes
// away. initial, when not nil, is sent first.
func (h *liveHub) serve(w http.ResponseWriter, r *http.Request, initial []byte) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade error")
		return
	}

	c := &liveClient{conn: conn, send: make(chan []byte, liveSendBuffer)}
	if initial != nil {
		c.send <- initial
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("websocket client connected")

	go c.writeLoop()

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Msg("websocket error")
			}
			break
		}
	}
	h.remove(c)
}

func (c *liveClient) writeLoop() {
	defer c.conn.Close()
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

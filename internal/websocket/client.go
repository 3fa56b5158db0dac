// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package websocket

import (
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// clientIDCounter gives clients a stable delivery order.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	id        uint64
	profileID string
	hub       *Hub
	conn      *websocket.Conn
	send      chan Message // closed by the hub

	// pong is owned by the client and never closed, so readPump can
	// answer pings without racing the hub closing send.
	pong chan struct{}
}

// NewClient creates a client for one profile.
func NewClient(hub *Hub, conn *websocket.Conn, profileID string) *Client {
	return &Client{
		id:        clientIDCounter.Add(1),
		profileID: profileID,
		hub:       hub,
		conn:      conn,
		send:      make(chan Message, 64),
		pong:      make(chan struct{}, 1),
	}
}

// ID returns the client's delivery-order identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// ProfileID returns the owning profile.
func (c *Client) ProfileID() string {
	return c.profileID
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("read").Inc()
				logging.Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}

		if msg.Type == MessageTypePing {
			select {
			case c.pong <- struct{}{}:
			default:
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				logging.Debug().Err(err).Msg("failed to write websocket message")
				return
			}

		case <-c.pong:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(Message{Type: MessageTypePong}); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// ProfileFunc resolves the profile of an upgrade request.
type ProfileFunc func(r *http.Request) string

// Handler upgrades GET requests and registers the connection under the
// caller's profile. Requests without a profile are refused.
func Handler(hub *Hub, allowedOrigins []string, profileOf ProfileFunc) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			return CheckOrigin(r, allowedOrigins)
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		profileID := profileOf(r)
		if profileID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the error response.
			metrics.WSErrors.WithLabelValues("upgrade").Inc()
			logging.Ctx(r.Context()).Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := NewClient(hub, conn, profileID)
		if !hub.Register(client) {
			metrics.WSErrors.WithLabelValues("hub_stopped").Inc()
			closing := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, closing, time.Now().Add(writeWait))
			_ = conn.Close()
			return
		}
		client.Start()
	}
}

// CheckOrigin accepts same-host origins and those in allowed ("*" allows any).
// A missing Origin header is rejected: browsers always send one.
func CheckOrigin(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	logging.Warn().Str("origin", logging.SanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

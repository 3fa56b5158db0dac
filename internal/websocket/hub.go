// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types
const (
	MessageTypeWatchlistUpdated = "watchlist_updated"
	MessageTypePing             = "ping"
	MessageTypePong             = "pong"
)

// Message is the wire envelope.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// envelope is a message plus the profile whose connections receive it.
type envelope struct {
	profileID string
	msg       Message
}

// WatchlistUpdatedData is the payload of watchlist_updated.
type WatchlistUpdatedData struct {
	ProfileID string `json:"profileId"`
	Count     int    `json:"count"`
	Timestamp string `json:"timestamp"`
}

// Hub maintains the set of active clients and routes messages to them.
//
// done is open while a run is in progress (or before the first one) and is
// closed when the run returns, so Register and Unregister never block on a
// stopped hub. A supervisor restart opens a fresh one.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Register hands c to the running hub. It returns false once the hub has
// stopped; the caller then still owns c's connection.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped():
		return false
	}
}

// Unregister removes c. It returns immediately if the hub has stopped, since
// shutdown already closed every client.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped():
	}
}

func (h *Hub) stopped() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.done
}

// open readies the hub for a run, replacing a done channel closed by the
// previous one.
func (h *Hub) open() chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		h.done = make(chan struct{})
	default:
	}
	return h.done
}

// RunWithContext processes hub events until ctx is done, then closes every
// client and returns ctx.Err().
//
// Each iteration checks, in order: shutdown, client lifecycle, messages.
// Lifecycle events are drained before messages so a message never races a
// registration that was already queued.
func (h *Hub) RunWithContext(ctx context.Context) error {
	done := h.open()
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.register:
			h.addClient(client)
			continue
		case client := <-h.unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(total))
	logging.Debug().Int("total_clients", total).Str("profile_id", client.profileID).Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(total))
	logging.Debug().Int("total_clients", total).Msg("websocket client disconnected")
}

func (h *Hub) shutdown(ctx context.Context) {
	count := h.GetClientCount()
	h.closeAllClients()
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", count).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClients returns clients in id order. Caller holds h.mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// deliver sends env to its audience in client id order. Clients that cannot
// keep up are dropped.
func (h *Hub) deliver(env envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var toRemove []*Client
	for _, client := range h.sortedClients() {
		if client.profileID != env.profileID {
			continue
		}
		select {
		case client.send <- env.msg:
			metrics.WSMessagesSent.Inc()
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSErrors.WithLabelValues("slow_client").Inc()
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.sortedClients() {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

func (h *Hub) enqueue(env envelope) bool {
	select {
	case h.broadcast <- env:
		return true
	default:
		logging.Warn().Str("message_type", env.msg.Type).Msg("broadcast channel full, dropping message")
		return false
	}
}

// BroadcastToProfile sends a message to one profile's clients only.
// An empty profileID is a no-op.
func (h *Hub) BroadcastToProfile(profileID, messageType string, data interface{}) {
	if profileID == "" {
		return
	}
	h.enqueue(envelope{profileID: profileID, msg: Message{Type: messageType, Data: data}})
}

// WatchlistChanged implements watchlist.Notifier.
func (h *Hub) WatchlistChanged(profileID string, count int) {
	h.BroadcastToProfile(profileID, MessageTypeWatchlistUpdated, WatchlistUpdatedData{
		ProfileID: profileID,
		Count:     count,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

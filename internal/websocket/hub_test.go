// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

// setupHub starts a hub that stops when the test ends.
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// createTestClient creates a client with no connection.
func createTestClient(hub *Hub, profileID string) *Client {
	return &Client{id: clientIDCounter.Add(1), profileID: profileID, hub: hub, send: make(chan Message, 8)}
}

func registerClient(hub *Hub, client *Client) {
	_ = hub.Register(client)
	time.Sleep(20 * time.Millisecond)
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		return msg, ok
	case <-time.After(200 * time.Millisecond):
		return Message{}, false
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub.clients == nil || hub.broadcast == nil || hub.register == nil || hub.unregister == nil || hub.done == nil {
		t.Fatal("NewHub left fields uninitialized")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.GetClientCount())
	}
	if hub.String() != "websocket-hub" {
		t.Errorf("unexpected service name %q", hub.String())
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub, "p1")
	registerClient(hub, client)

	if hub.GetClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.GetClientCount())
	}

	hub.Unregister(client)
	time.Sleep(20 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.GetClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after unregister")
	}
}

func TestHub_WatchlistChangedReachesOnlyThatProfile(t *testing.T) {
	hub := setupHub(t)
	alice1 := createTestClient(hub, "alice")
	alice2 := createTestClient(hub, "alice")
	bob := createTestClient(hub, "bob")
	for _, c := range []*Client{alice1, alice2, bob} {
		registerClient(hub, c)
	}

	hub.WatchlistChanged("alice", 3)

	for _, c := range []*Client{alice1, alice2} {
		msg, ok := receive(t, c)
		if !ok {
			t.Fatal("alice client did not receive the notification")
		}
		if msg.Type != MessageTypeWatchlistUpdated {
			t.Errorf("expected %s, got %s", MessageTypeWatchlistUpdated, msg.Type)
		}
		data, ok := msg.Data.(WatchlistUpdatedData)
		if !ok || data.Count != 3 || data.ProfileID != "alice" {
			t.Errorf("unexpected payload %#v", msg.Data)
		}
	}

	if _, ok := receive(t, bob); ok {
		t.Error("bob must not receive alice's notification")
	}
}

func TestHub_BroadcastToProfileEmptyIsNoop(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub, "p1")
	registerClient(hub, c)

	hub.BroadcastToProfile("", MessageTypeWatchlistUpdated, nil)
	if _, ok := receive(t, c); ok {
		t.Error("empty profile must not broadcast")
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := setupHub(t)
	slow := &Client{id: clientIDCounter.Add(1), profileID: "p1", hub: hub, send: make(chan Message)}
	registerClient(hub, slow)

	hub.WatchlistChanged("p1", 1)
	time.Sleep(50 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Errorf("slow client should be dropped, have %d clients", hub.GetClientCount())
	}
}

func TestHub_RunWithContextClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.Serve(ctx) }()

	c := createTestClient(hub, "p1")
	registerClient(hub, c)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if hub.GetClientCount() != 0 {
		t.Error("clients should be closed on shutdown")
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed on shutdown")
	}
}

func TestGetShutdownReason(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(ctx); got != ShutdownReasonContextCanceled {
		t.Errorf("got %s", got)
	}

	ctx, cancel = context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	if got := getShutdownReason(ctx); got != ShutdownReasonContextDeadline {
		t.Errorf("got %s", got)
	}
}

// stoppedHub returns a hub whose only run has already returned.
func stoppedHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()
	cancel()
	select {
	case <-errCh:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	return hub
}

func TestHub_RegisterAfterStopDoesNotBlock(t *testing.T) {
	hub := stoppedHub(t)
	c := createTestClient(hub, "p1")

	returned := make(chan bool, 1)
	go func() { returned <- hub.Register(c) }()
	select {
	case ok := <-returned:
		if ok {
			t.Error("a stopped hub must refuse registration")
		}
	case <-time.After(time.Second):
		t.Fatal("Register blocked on a stopped hub")
	}

	unregistered := make(chan struct{})
	go func() {
		hub.Unregister(c)
		close(unregistered)
	}()
	select {
	case <-unregistered:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked on a stopped hub")
	}
}

func TestHub_AcceptsClientsAfterRestart(t *testing.T) {
	hub := stoppedHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()
	defer func() {
		cancel()
		<-errCh
	}()

	c := createTestClient(hub, "p1")
	registered := make(chan bool, 1)
	go func() { registered <- hub.Register(c) }()
	select {
	case ok := <-registered:
		if !ok {
			t.Fatal("restarted hub refused registration")
		}
	case <-time.After(time.Second):
		t.Fatal("Register blocked on a restarted hub")
	}
	if hub.GetClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", hub.GetClientCount())
	}
}

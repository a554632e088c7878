package hub

import (
	"context"
	"testing"
	"time"
)

func startHub(t *testing.T, h *Hub) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return cancel
}

func newTestClient(h *Hub, buffer int) *Client {
	c := &Client{hub: h, send: make(chan Message, buffer)}
	h.register <- c
	return c
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case m, ok := <-c.send:
		return m, ok
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for message")
		return Message{}, false
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for condition")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	h := New("test")
	startHub(t, h)

	a := newTestClient(h, 4)
	b := newTestClient(h, 4)
	waitFor(t, func() bool { return h.ClientCount() == 2 })

	if err := h.BroadcastJSON(map[string]string{"phase": "Painting"}); err != nil {
		t.Fatalf("BroadcastJSON failed: %v", err)
	}
	for _, c := range []*Client{a, b} {
		m, ok := receive(t, c)
		if !ok || m.Type != JSONMessage || string(m.Data) != `{"phase":"Painting"}` {
			t.Errorf("Unexpected message %q (ok=%v)", m.Data, ok)
		}
	}
}

func TestHub_RetainLastGreetsNewClients(t *testing.T) {
	h := New("status", RetainLast())
	startHub(t, h)

	h.BroadcastBinary([]byte{1, 2, 3})
	waitFor(t, func() bool { return len(h.broadcast) == 0 })
	// a client registered after the broadcast still gets it
	time.Sleep(10 * time.Millisecond)
	c := newTestClient(h, 4)

	m, ok := receive(t, c)
	if !ok || m.Type != BinaryMessage || len(m.Data) != 3 {
		t.Errorf("Expected retained binary message, got %+v (ok=%v)", m, ok)
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New("test")
	startHub(t, h)

	slow := newTestClient(h, 1)
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	h.BroadcastBinary([]byte{1})
	h.BroadcastBinary([]byte{2})
	waitFor(t, func() bool { return h.ClientCount() == 0 })

	if _, ok := receive(t, slow); !ok {
		t.Error("Expected the first message before the close")
	}
	if _, ok := receive(t, slow); ok {
		t.Error("Expected the send channel to be closed")
	}
}

func TestHub_UnregisterAndStop(t *testing.T) {
	h := New("test")
	cancel := startHub(t, h)
	waitFor(t, h.IsRunning)

	c := newTestClient(h, 1)
	h.unregister <- c
	if _, ok := receive(t, c); ok {
		t.Error("Expected closed channel after unregister")
	}

	d := newTestClient(h, 1)
	cancel()
	if _, ok := receive(t, d); ok {
		t.Error("Expected closed channel after stop")
	}
	waitFor(t, func() bool { return !h.IsRunning() })

	// late registrations do not block once the hub is gone
	late := NewClient(h, nil)
	if _, ok := <-late.send; ok {
		t.Error("Expected late client to be closed")
	}
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	h := New("idle") // not running
	for i := 0; i < cap(h.broadcast)+10; i++ {
		h.BroadcastBinary([]byte{byte(i)})
	}
	if h.Dropped() != 10 {
		t.Errorf("Expected 10 dropped, got %d", h.Dropped())
	}
}

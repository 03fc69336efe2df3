package devtools

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// stalledClient registers a client whose queue nobody drains.
func stalledClient(h *hub) *client {
	c := &client{send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c
}

func TestBroadcastDropsStalledClient(t *testing.T) {
	h := newHub()
	c := stalledClient(h)

	start := time.Now()
	for i := 0; i <= sendBuffer; i++ {
		h.broadcast(Message{Type: "change", Event: &Event{Seq: uint64(i)}})
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("broadcast blocked for %v", elapsed)
	}

	if n := h.clientCount(); n != 0 {
		t.Errorf("clients = %d, want 0", n)
	}
	queued := 0
	for range c.send {
		queued++
	}
	if queued != sendBuffer {
		t.Errorf("queued = %d, want %d", queued, sendBuffer)
	}

	// Later broadcasts and close must not touch the dropped client.
	h.broadcast(Message{Type: "change"})
	h.close()
}

func TestStalledClientDoesNotBlockMutations(t *testing.T) {
	f := newFixture(t)
	if _, err := f.srv.Watch("count", false); err != nil {
		t.Fatal(err)
	}
	stalledClient(f.srv.hub)

	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}

	const n = sendBuffer + 8
	start := time.Now()
	for i := 1; i <= n; i++ {
		f.expect(t, "POST", "/mutate", fmt.Sprintf(`{"op":"set","path":"count","value":%d}`, 100+i), http.StatusOK)

		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read change %d: %v", i, err)
		}
		if msg.Event == nil || msg.Event.New != float64(100+i) {
			t.Fatalf("change %d = %+v", i, msg)
		}
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("%d mutations took %v", n, elapsed)
	}

	if got := f.srv.hub.clientCount(); got != 1 {
		t.Errorf("clients = %d, want only the reading client", got)
	}
}

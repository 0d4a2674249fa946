package bus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"fleetops/internal/models"
)

func TestSubscribeDeliversInOrder(t *testing.T) {
	b := New(Options{URL: "ws://unused"})

	var mu sync.Mutex
	var got []string
	b.Subscribe(models.EventAlert, func(msg models.PushMessage) {
		mu.Lock()
		got = append(got, "first")
		mu.Unlock()
	})
	b.Subscribe(models.EventAlert, func(msg models.PushMessage) {
		mu.Lock()
		got = append(got, "second")
		mu.Unlock()
	})
	b.Subscribe(models.EventTelemetry, func(msg models.PushMessage) {
		mu.Lock()
		got = append(got, "telemetry")
		mu.Unlock()
	})

	b.PublishLocal(models.EventAlert, map[string]any{"id": "a1"})

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("unexpected delivery order: %v", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(Options{URL: "ws://unused"})

	calls := 0
	unsub := b.Subscribe(models.EventMlEvent, func(msg models.PushMessage) { calls++ })

	b.PublishLocal(models.EventMlEvent, nil)
	unsub()
	b.PublishLocal(models.EventMlEvent, nil)

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestPanickingHandlerIsIsolated(t *testing.T) {
	b := New(Options{URL: "ws://unused"})

	survived := false
	b.Subscribe(models.EventHealthStatus, func(msg models.PushMessage) {
		panic("subscriber bug")
	})
	b.Subscribe(models.EventHealthStatus, func(msg models.PushMessage) {
		survived = true
	})

	b.PublishLocal(models.EventHealthStatus, nil)

	if !survived {
		t.Fatal("panic in first handler prevented delivery to second")
	}
}

func TestPublishLocalRejectsUnknownType(t *testing.T) {
	b := New(Options{URL: "ws://unused"})

	calls := 0
	b.Subscribe(models.EventAlert, func(msg models.PushMessage) { calls++ })
	b.PublishLocal(models.EventType("bogus"), nil)

	if calls != 0 {
		t.Fatalf("unknown type reached a subscriber")
	}
}

func TestBackoffDelaysAreBoundedAndNonDecreasing(t *testing.T) {
	b := New(Options{
		URL:       "ws://unused",
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  time.Second,
	})

	prev := time.Duration(0)
	for attempt := 1; attempt <= 8; attempt++ {
		d := b.backoffDelay(attempt)
		if d < prev {
			t.Fatalf("delay decreased at attempt %d: %v < %v", attempt, d, prev)
		}
		if d > time.Second {
			t.Fatalf("delay exceeds cap at attempt %d: %v", attempt, d)
		}
		prev = d
	}
	if b.backoffDelay(1) != 100*time.Millisecond {
		t.Fatalf("first delay should be the base delay")
	}
}

func TestRetryCeilingLeavesBusDisconnected(t *testing.T) {
	// Port 1 is never listening, so every dial fails immediately.
	b := New(Options{
		URL:         "ws://127.0.0.1:1/ws",
		BaseDelay:   5 * time.Millisecond,
		MaxDelay:    20 * time.Millisecond,
		MaxAttempts: 3,
		DialTimeout: 100 * time.Millisecond,
	})

	b.Connect()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if b.State() == Disconnected {
			// Give a pending timer the chance to fire if one leaked.
			time.Sleep(50 * time.Millisecond)
			if got := b.State(); got != Disconnected {
				t.Fatalf("bus resumed retrying after ceiling: %s", got)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("bus never settled into Disconnected, state=%s", b.State())
}

func TestDisconnectIsIdempotent(t *testing.T) {
	b := New(Options{URL: "ws://unused"})
	b.Disconnect()
	b.Disconnect()
	if b.State() != Disconnected {
		t.Fatalf("state=%s after Disconnect", b.State())
	}
}

func TestConnectReceivesServerFrames(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		frame := `{"type":"alert","data":{"id":"a1","status":"Acknowledged"},"timestamp":"2026-01-01T00:00:00Z"}`
		conn.WriteMessage(websocket.TextMessage, []byte(frame))
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	b := New(Options{
		URL:         "ws" + strings.TrimPrefix(srv.URL, "http"),
		DialTimeout: 2 * time.Second,
	})
	defer b.Disconnect()

	received := make(chan models.PushMessage, 1)
	b.Subscribe(models.EventAlert, func(msg models.PushMessage) {
		received <- msg
	})

	b.Connect()

	select {
	case msg := <-received:
		doc, ok := msg.Data.(map[string]any)
		if !ok {
			t.Fatalf("frame data decoded as %T", msg.Data)
		}
		if doc["id"] != "a1" {
			t.Fatalf("unexpected frame payload: %v", doc)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no frame delivered")
	}
	if b.State() != Connected {
		t.Fatalf("state=%s after successful connect", b.State())
	}
}

package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fleetops/internal/models"
)

func TestHubPushEventReachesClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	go hub.Run()

	r := gin.New()
	r.GET("/ws", hub.HandleWebSocket())
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered, count = %d", hub.GetClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Poll the count while frames go out, so counting and the broadcast
	// eviction path run at the same time.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			hub.GetClientCount()
			time.Sleep(time.Millisecond)
		}
	}()

	hub.PushEvent(models.EventAlert, map[string]any{"id": "alert-1"})

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var msg models.PushMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if msg.Type != models.EventAlert {
		t.Errorf("frame type = %q, want %q", msg.Type, models.EventAlert)
	}
	<-done
}

func TestHubDropsUnknownEventType(t *testing.T) {
	hub := NewHub(nil)
	// No Run loop: a refused frame must never reach the broadcast channel,
	// so this returns instead of blocking.
	hub.PushEvent(models.EventType("bogus"), nil)
	if n := hub.GetClientCount(); n != 0 {
		t.Errorf("client count = %d, want 0", n)
	}
}

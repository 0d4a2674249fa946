// Package bus delivers server-originated entity updates to subscribers over a
// reconnecting websocket. Subscribers register per event type and receive
// frames in subscription order; a dropped connection is retried with bounded
// exponential backoff up to an attempt ceiling, after which the bus stays
// disconnected until Connect is called again.
package bus

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fleetops/internal/models"
	"fleetops/internal/utils"
)

// State is the bus connection state visible to the UI.
type State string

const (
	Disconnected State = "disconnected"
	Connecting   State = "connecting"
	Connected    State = "connected"
)

// Handler receives one push message. Handlers must not assume any particular
// goroutine; deliveries for all types are serialized by the bus.
type Handler func(msg models.PushMessage)

const (
	defaultBaseDelay   = time.Second
	defaultMaxDelay    = 30 * time.Second
	defaultMaxAttempts = 5
	defaultDialTimeout = 10 * time.Second
)

// Options configures a Bus. Zero values fall back to defaults.
type Options struct {
	URL         string
	Token       string
	Logger      *utils.Logger
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	DialTimeout time.Duration
}

type subscription struct {
	id      int
	handler Handler
}

// Bus is the client side of the realtime channel.
type Bus struct {
	opts Options

	mu        sync.Mutex
	state     State
	conn      *websocket.Conn
	gen       int
	attempts  int
	timer     *time.Timer
	exhausted bool

	subMu  sync.Mutex
	subs   map[models.EventType][]subscription
	nextID int

	// dispatchMu serializes handler invocation so subscribers observe
	// frames one at a time, in order.
	dispatchMu sync.Mutex
}

// New builds a disconnected bus for the given endpoint.
func New(opts Options) *Bus {
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultMaxDelay
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	return &Bus{
		opts:  opts,
		state: Disconnected,
		subs:  make(map[models.EventType][]subscription),
	}
}

// State returns the current connection state.
func (b *Bus) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Connect starts the connection attempt sequence. Calling Connect while
// already connecting or connected is a no-op; calling it after the retry
// ceiling was exhausted starts a fresh sequence.
func (b *Bus) Connect() {
	b.mu.Lock()
	if b.state != Disconnected {
		b.mu.Unlock()
		return
	}
	b.gen++
	gen := b.gen
	b.attempts = 0
	b.exhausted = false
	b.state = Connecting
	b.mu.Unlock()

	go b.dial(gen)
}

// Disconnect drops the connection and cancels any pending reconnect. It is
// idempotent.
func (b *Bus) Disconnect() {
	b.mu.Lock()
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	conn := b.conn
	b.conn = nil
	b.state = Disconnected
	b.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Subscribe registers a handler for one event type and returns a function
// that removes it. Handlers for a type run in subscription order.
func (b *Bus) Subscribe(t models.EventType, h Handler) func() {
	b.subMu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[t] = append(b.subs[t], subscription{id: id, handler: h})
	b.subMu.Unlock()

	return func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		list := b.subs[t]
		for i, s := range list {
			if s.id == id {
				b.subs[t] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// PublishLocal dispatches a message to subscribers without a server round
// trip. Used by tests and by in-process producers.
func (b *Bus) PublishLocal(t models.EventType, data any) {
	if !models.ValidEventType(t) {
		b.logf("event bus: dropping message with unknown type %q", t)
		return
	}
	b.dispatch(models.PushMessage{Type: t, Data: data, Timestamp: time.Now().UTC()})
}

func (b *Bus) dial(gen int) {
	dialer := &websocket.Dialer{HandshakeTimeout: b.opts.DialTimeout}
	header := http.Header{}
	if b.opts.Token != "" {
		header.Set("Authorization", "Bearer "+b.opts.Token)
	}
	conn, resp, err := dialer.Dial(b.opts.URL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		b.attempts++
		if b.attempts >= b.opts.MaxAttempts {
			b.state = Disconnected
			report := !b.exhausted
			b.exhausted = true
			attempts := b.attempts
			b.mu.Unlock()
			if report {
				b.logf("event bus: giving up after %d failed connection attempts: %v", attempts, err)
			}
			return
		}
		delay := b.backoffDelay(b.attempts)
		b.state = Connecting
		b.timer = time.AfterFunc(delay, func() {
			b.mu.Lock()
			current := gen == b.gen
			b.mu.Unlock()
			if current {
				b.dial(gen)
			}
		})
		b.mu.Unlock()
		return
	}

	b.conn = conn
	b.state = Connected
	b.attempts = 0
	b.mu.Unlock()
	b.logf("event bus: connected to %s", b.opts.URL)

	go b.readLoop(gen, conn)
}

func (b *Bus) readLoop(gen int, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			b.mu.Lock()
			if gen != b.gen {
				b.mu.Unlock()
				return
			}
			b.conn = nil
			b.state = Connecting
			b.attempts = 0
			b.mu.Unlock()
			conn.Close()
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.logf("event bus: connection dropped: %v", err)
			}
			b.dial(gen)
			return
		}

		var msg models.PushMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			b.logf("event bus: dropping malformed frame: %v", err)
			continue
		}
		if !models.ValidEventType(msg.Type) {
			b.logf("event bus: dropping frame with unknown type %q", msg.Type)
			continue
		}
		b.dispatch(msg)
	}
}

// backoffDelay returns the wait before retry number attempt (1-based):
// base doubled per attempt, capped at MaxDelay.
func (b *Bus) backoffDelay(attempt int) time.Duration {
	delay := b.opts.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= b.opts.MaxDelay {
			return b.opts.MaxDelay
		}
	}
	if delay > b.opts.MaxDelay {
		return b.opts.MaxDelay
	}
	return delay
}

func (b *Bus) dispatch(msg models.PushMessage) {
	b.subMu.Lock()
	subs := append([]subscription(nil), b.subs[msg.Type]...)
	b.subMu.Unlock()

	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()
	for _, s := range subs {
		b.invoke(s, msg)
	}
}

// invoke runs one handler, containing panics so a faulty subscriber cannot
// break delivery to the others.
func (b *Bus) invoke(s subscription, msg models.PushMessage) {
	defer func() {
		if r := recover(); r != nil {
			b.logf("event bus: handler panic for %s: %v", msg.Type, r)
		}
	}()
	s.handler(msg)
}

func (b *Bus) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if b.opts.Logger != nil {
		b.opts.Logger.Write(msg)
		return
	}
	log.Println(msg)
}

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seungho-m/jikgwan/internal/common/uuid"
	"github.com/seungho-m/jikgwan/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// State is the lifecycle state of a connection
type State string

const (
	// StateIdle means Connect has not been called yet
	StateIdle State = "idle"

	// StateConnecting means a dial or a reconnect is in progress
	StateConnecting State = "connecting"

	// StateConnected means the subscription is live
	StateConnected State = "connected"

	// StateDisconnected is terminal: the caller disconnected, or the
	// reconnect budget ran out
	StateDisconnected State = "disconnected"
)

// ErrNotConnected is returned by Send while the push channel is down; the
// caller is expected to fall back to the synchronous send path.
var ErrNotConnected = errors.New("push channel not connected")

// Config holds configuration for a connection
type Config struct {
	// URL is the broker websocket endpoint
	URL string

	// RoomID scopes the subscription; one connection serves one room
	RoomID int64

	// Token is the bearer credential presented on the handshake
	Token string

	// Dialer is the websocket dialer; nil means a default dialer
	Dialer *websocket.Dialer

	// UUIDGenerator mints subscription IDs; nil means the default generator
	UUIDGenerator uuid.UUID

	// ReconnectBase is the first reconnect delay; zero means 3s
	ReconnectBase time.Duration

	// ReconnectCap bounds the backoff; zero means 30s
	ReconnectCap time.Duration

	// MaxReconnectAttempts bounds consecutive failed reconnects before the
	// connection goes terminally disconnected; zero means 5
	MaxReconnectAttempts int

	// OnMessage receives every broker-delivered message for the room
	OnMessage func(msg models.Message)

	// OnConnected fires after each successful dial+subscribe
	OnConnected func()

	// OnDisconnected fires when the transport drops, including before a
	// reconnect attempt
	OnDisconnected func()

	// OnError receives every failure: handshake rejection, transport
	// error, broker ERROR frame. The kinds are not distinguished.
	OnError func(err error)
}

// Connection maintains one duplexed broker connection for one open chat
// room: it subscribes to the room's topic on connect and exposes publish
// and receive through the configured callbacks.
type Connection struct {
	cfg Config

	mu        sync.Mutex
	state     State
	conn      *websocket.Conn
	send      chan Frame
	done      chan struct{}
	subID     string
	attempts  int
	reconnect *time.Timer
	closed    bool
}

// New creates a connection manager for one room. Nothing is dialed until
// Connect.
func New(cfg *Config) (*Connection, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.URL == "" {
		return nil, errors.New("URL cannot be empty")
	}
	if cfg.RoomID == 0 {
		return nil, errors.New("room ID cannot be empty")
	}

	c := &Connection{cfg: *cfg, state: StateIdle}
	if c.cfg.Dialer == nil {
		c.cfg.Dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}
	if c.cfg.ReconnectBase == 0 {
		c.cfg.ReconnectBase = 3 * time.Second
	}
	if c.cfg.ReconnectCap == 0 {
		c.cfg.ReconnectCap = 30 * time.Second
	}
	if c.cfg.MaxReconnectAttempts == 0 {
		c.cfg.MaxReconnectAttempts = 5
	}
	if c.cfg.UUIDGenerator == nil {
		c.cfg.UUIDGenerator = uuid.New()
	}
	return c, nil
}

// State returns the current lifecycle state
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the broker, authenticates with the bearer credential and
// subscribes to the room's topic. At most one subscription is active per
// room per connection; calling Connect on a live connection is a no-op.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("connection is closed")
	}
	if c.state == StateConnected || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	if err := c.dial(ctx); err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		c.reportError(err)
		c.scheduleReconnect()
		return err
	}
	return nil
}

func (c *Connection) dial(ctx context.Context) error {
	header := http.Header{}
	if c.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	conn, resp, err := c.cfg.Dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("broker handshake failed (%d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("broker dial failed: %w", err)
	}

	send := make(chan Frame, 256)
	done := make(chan struct{})
	subID := c.cfg.UUIDGenerator.NewUUID()

	c.mu.Lock()
	c.conn = conn
	c.send = send
	c.done = done
	c.subID = subID
	c.state = StateConnected
	c.attempts = 0
	c.mu.Unlock()

	// One subscription per room per connection
	send <- Frame{Type: FrameSubscribe, SubscriptionID: subID, Destination: TopicFor(c.cfg.RoomID)}

	go c.writePump(conn, send, done)
	go c.readPump(conn)

	if c.cfg.OnConnected != nil {
		c.cfg.OnConnected()
	}
	return nil
}

// Send publishes a message frame to the room's inbound destination. While
// the connection is not active it fails with ErrNotConnected, which the
// caller detects to take the fallback path.
func (c *Connection) Send(content string) error {
	c.mu.Lock()
	if c.state != StateConnected || c.send == nil {
		c.mu.Unlock()
		log.Printf("realtime: dropping send for room %d: %v", c.cfg.RoomID, ErrNotConnected)
		return ErrNotConnected
	}
	send := c.send
	done := c.done
	c.mu.Unlock()

	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	// The send channel stays open for the connection's lifetime; a
	// teardown is signalled through done, so a racing enqueue can never
	// hit a closed channel.
	select {
	case <-done:
		log.Printf("realtime: dropping send for room %d: %v", c.cfg.RoomID, ErrNotConnected)
		return ErrNotConnected
	case send <- Frame{Type: FrameSend, Destination: InboundFor(c.cfg.RoomID), Body: body}:
		return nil
	default:
		log.Printf("realtime: send buffer full for room %d", c.cfg.RoomID)
		return ErrNotConnected
	}
}

// Disconnect unsubscribes, closes the transport and cancels any pending
// reconnect. It is idempotent and safe to call at any time.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.state = StateDisconnected
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	conn := c.conn
	send := c.send
	done := c.done
	subID := c.subID
	c.conn = nil
	c.send = nil
	c.done = nil
	c.mu.Unlock()

	if send != nil {
		// Best effort; the broker drops the subscription on close anyway
		select {
		case send <- Frame{Type: FrameUnsubscribe, SubscriptionID: subID, Destination: TopicFor(c.cfg.RoomID)}:
		default:
		}
	}
	if done != nil {
		close(done)
	}
	if conn != nil {
		conn.Close()
	}
}

func (c *Connection) readPump(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		c.handleDrop()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.reportError(fmt.Errorf("push channel read failed: %w", err))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("realtime: dropping malformed frame: %v", err)
			continue
		}

		switch frame.Type {
		case FrameMessage:
			var msg models.Message
			if err := json.Unmarshal(frame.Body, &msg); err != nil {
				log.Printf("realtime: dropping malformed message body: %v", err)
				continue
			}
			if c.cfg.OnMessage != nil {
				c.cfg.OnMessage(msg)
			}
		case FrameError:
			c.reportError(fmt.Errorf("broker error: %s", frame.Message))
		default:
			// Broker acks and unknown frames are ignored
		}
	}
}

func (c *Connection) writePump(conn *websocket.Conn, send chan Frame, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				c.reportError(fmt.Errorf("push channel write failed: %w", err))
				return
			}
		case <-done:
			// Flush anything already queued, the unsubscribe included
			for {
				select {
				case frame := <-send:
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					if conn.WriteJSON(frame) != nil {
						return
					}
				default:
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleDrop runs when the transport fails underneath a live connection
func (c *Connection) handleDrop() {
	c.mu.Lock()
	if c.closed || c.state != StateConnected {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.conn = nil
	c.send = nil
	done := c.done
	c.done = nil
	c.mu.Unlock()

	if done != nil {
		close(done)
	}

	if c.cfg.OnDisconnected != nil {
		c.cfg.OnDisconnected()
	}
	c.scheduleReconnect()
}

// scheduleReconnect arms the backoff timer, or goes terminally
// disconnected once the attempt budget is spent.
func (c *Connection) scheduleReconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if c.attempts >= c.cfg.MaxReconnectAttempts {
		c.state = StateDisconnected
		c.mu.Unlock()
		c.reportError(fmt.Errorf("push channel gave up after %d reconnect attempts", c.cfg.MaxReconnectAttempts))
		if c.cfg.OnDisconnected != nil {
			c.cfg.OnDisconnected()
		}
		return
	}

	delay := backoffDelay(c.cfg.ReconnectBase, c.cfg.ReconnectCap, c.attempts)
	c.attempts++
	attempt := c.attempts

	c.reconnect = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.state = StateConnecting
		c.mu.Unlock()

		log.Printf("realtime: reconnect attempt %d for room %d", attempt, c.cfg.RoomID)
		if err := c.dial(context.Background()); err != nil {
			c.mu.Lock()
			c.state = StateIdle
			c.mu.Unlock()
			c.reportError(err)
			c.scheduleReconnect()
		}
	})
	c.mu.Unlock()
}

// backoffDelay doubles base once per attempt, saturating at max. Doubling
// step by step instead of shifting keeps an arbitrarily large attempt
// count from overflowing into a zero or negative delay.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 || base >= max {
		return max
	}
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= max || delay <= 0 {
			return max
		}
	}
	return delay
}

func (c *Connection) reportError(err error) {
	if c.cfg.OnError != nil {
		c.cfg.OnError(err)
	}
}

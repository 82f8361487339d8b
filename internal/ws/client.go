package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"mines-client/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

var (
	ErrNotConnected = errors.New("not_connected")
	ErrSendBuffer   = errors.New("send_buffer_full")
)

// Client keeps one connection to the authority alive and hands inbound
// events to a single consumer in arrival order.
type Client struct {
	url            string
	reconnectDelay time.Duration
	clock          clockwork.Clock
	dialer         *websocket.Dialer

	events chan Event

	mu   sync.Mutex
	send chan []byte
}

func NewClient(url string, reconnectDelay time.Duration, clock clockwork.Clock) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		url:            url,
		reconnectDelay: reconnectDelay,
		clock:          clock,
		dialer:         websocket.DefaultDialer,
		events:         make(chan Event, 64),
	}
}

// Events is closed when Run returns.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Emit queues an outbound event on the live connection.
func (c *Client) Emit(event string, payload any) error {
	msg, err := Encode(event, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.send == nil {
		return ErrNotConnected
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSendBuffer
	}
}

// Run dials and re-dials until ctx is done.
func (c *Client) Run(ctx context.Context) {
	defer close(c.events)
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}
		if attempt > 0 {
			metrics.ReconnectsTotal.Inc()
		}
		attempt++
		if err := c.connectAndListen(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Str("url", c.url).Dur("retry_in", c.reconnectDelay).Msg("authority connection closed")
		}
		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(c.reconnectDelay):
		}
	}
}

func (c *Client) connectAndListen(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info().Str("url", c.url).Msg("connected to authority")

	send := make(chan []byte, sendBuffer)
	done := make(chan struct{})
	c.mu.Lock()
	c.send = send
	c.mu.Unlock()
	metrics.Connected.Set(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop(conn, send, done)
	}()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })

	defer func() {
		stop()
		c.mu.Lock()
		c.send = nil
		c.mu.Unlock()
		close(done)
		wg.Wait()
		metrics.Connected.Set(0)
		c.push(ctx, Event{Name: EventDisconnected})
	}()

	if !c.push(ctx, Event{Name: EventConnected}) {
		return ctx.Err()
	}
	return c.readLoop(ctx, conn)
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		ev, err := Parse(msg)
		if err != nil {
			reason := "invalid_payload"
			if errors.Is(err, ErrUnknownEvent) {
				reason = "unknown_event"
			}
			metrics.EventsDroppedTotal.WithLabelValues(reason).Inc()
			log.Warn().Err(err).Msg("dropping inbound frame")
			continue
		}
		if !c.push(ctx, ev) {
			return nil
		}
	}
}

func (c *Client) writeLoop(conn *websocket.Conn, send <-chan []byte, done <-chan struct{}) {
	ticker := c.clock.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case msg := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Warn().Err(err).Msg("write to authority failed")
				_ = conn.Close()
				return
			}
		case <-ticker.Chan():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// push blocks until the consumer takes ev or ctx ends.
func (c *Client) push(ctx context.Context, ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

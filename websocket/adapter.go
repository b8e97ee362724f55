package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/pongsant/Assignment-4-Collaboration/domain"
	"github.com/pongsant/Assignment-4-Collaboration/metrics"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	DefaultSendBuffer = 256
)

var ErrSendBufferFull = errors.New("send buffer full")

type Options struct {
	SendBuffer int
	// Rate caps inbound frames per second; zero disables the cap.
	Rate    float64
	Burst   int
	Metrics *metrics.Relay
}

type Conn struct {
	id          string
	ws          *websocket.Conn
	send        chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	limiter     *rate.Limiter
	metrics     *metrics.Relay
	broadcaster domain.Broadcaster
	handler     domain.MessageHandler
}

func NewConn(id string, ws *websocket.Conn, b domain.Broadcaster, h domain.MessageHandler, opts Options) *Conn {
	buffer := opts.SendBuffer
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Conn{
		id:          id,
		ws:          ws,
		send:        make(chan []byte, buffer),
		done:        make(chan struct{}),
		limiter:     rate.NewLimiter(limit, burst),
		metrics:     opts.Metrics,
		broadcaster: b,
		handler:     h,
	}
}

// allow reports whether an inbound frame fits the rate. Frames over the
// rate are dropped; the connection stays up.
func (c *Conn) allow() bool {
	if c.limiter.Allow() {
		return true
	}
	slog.Debug("rate limited", "clientId", c.id)
	if c.metrics != nil {
		c.metrics.Dropped.WithLabelValues(metrics.ReasonRateLimited).Inc()
	}
	return false
}

func (c *Conn) ID() string { return c.id }

// Send queues data for the write pump. It never blocks.
func (c *Conn) Send(data []byte) error {
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("client %s: %w", c.id, ErrSendBufferFull)
	}
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

// Start joins the connection to the relay and runs its pumps. A relay at
// capacity gets a "try again later" close frame instead.
func (c *Conn) Start() {
	if err := c.broadcaster.Register(c); err != nil {
		slog.Info("closing rejected connection", "clientId", c.id, "error", err)
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error())
		c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	defer func() {
		c.broadcaster.Unregister(c)
		c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("read error", "clientId", c.id, "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			slog.Debug("ignoring non-text frame", "clientId", c.id, "kind", kind)
			continue
		}
		if !c.allow() {
			continue
		}

		c.handler.Handle(c, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

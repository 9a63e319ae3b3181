package transport

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/er1ck02/blobbet-server/internal/protocol"
)

// Client frames are tiny; anything larger is dropped with the connection
const maxFrameSize = 4096

var (
	ErrQueueFull = errors.New("send queue full")
	ErrClosed    = errors.New("connection closed")
)

// Conn wraps one WebSocket client. Writes go through a bounded queue drained
// by a single writer goroutine, so Send never blocks the caller.
type Conn struct {
	ID    string
	ws    *websocket.Conn
	codec protocol.Codec
	log   *zap.Logger

	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	dropped      atomic.Uint64
	writeTimeout time.Duration
	readTimeout  time.Duration
}

// NewConn wraps ws and starts its writer
func NewConn(ws *websocket.Conn, codec protocol.Codec, queue int, writeTimeout, readTimeout time.Duration, log *zap.Logger) *Conn {
	c := &Conn{
		ID:           uuid.NewString(),
		ws:           ws,
		codec:        codec,
		send:         make(chan []byte, queue),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		readTimeout:  readTimeout,
	}
	c.log = log.With(zap.String("session", c.ID), zap.String("codec", codec.Name()))
	go c.writePump()
	return c
}

// Send encodes msg with the connection's codec and queues it
func (c *Conn) Send(msg any) error {
	data, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		c.dropped.Add(1)
		return ErrQueueFull
	}
}

// Dropped returns how many messages were discarded because the queue was full
func (c *Conn) Dropped() uint64 {
	return c.dropped.Load()
}

// Close stops the writer and closes the socket. Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

func (c *Conn) frameType() int {
	if c.codec.Binary() {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// writePump is the only goroutine writing to ws. It also keeps the peer
// alive with pings at 90% of the read timeout.
func (c *Conn) writePump() {
	ping := time.NewTicker(c.readTimeout * 9 / 10)
	defer ping.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteMessage(c.frameType(), data); err != nil {
				c.log.Debug("write failed", zap.Error(err))
				c.Close()
				return
			}
		case <-ping.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				c.log.Debug("ping failed", zap.Error(err))
				c.Close()
				return
			}
		}
	}
}

// ReadLoop decodes client frames until the connection fails or closes and
// hands each valid message to handle. Bad frames are logged and skipped.
func (c *Conn) ReadLoop(handle func(protocol.Inbound)) {
	c.ws.SetReadLimit(maxFrameSize)
	c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Info("read error", zap.Error(err))
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))

		in, err := c.codec.Decode(raw)
		if err != nil {
			c.log.Debug("bad message", zap.Error(err))
			continue
		}
		handle(in)
	}
}

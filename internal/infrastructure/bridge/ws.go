package wsbridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/otcdesk/walletd/internal/core/ports"

	log "github.com/sirupsen/logrus"
)

const writeTimeout = 10 * time.Second

var ErrNoExtension = fmt.Errorf("no extension connected")

// Hub tracks the message channel to the browser-extension signer. The
// extension dials in over a websocket, at most one connection is live: a new
// one replaces the previous.
type Hub struct {
	lock    *sync.Mutex
	channel *channel
}

func NewHub() *Hub {
	return &Hub{lock: &sync.Mutex{}}
}

// Attach adopts a fresh websocket connection as the live channel.
func (h *Hub) Attach(conn *websocket.Conn) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.channel != nil {
		// nolint:all
		h.channel.Close()
	}
	h.channel = newChannel(conn)
	log.Debug("extension signer attached")
}

// Channel returns the live channel, ErrNoExtension when the extension never
// connected or went away.
func (h *Hub) Channel() (ports.MsgChannel, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.channel == nil || h.channel.closed() {
		return nil, ErrNoExtension
	}
	return h.channel, nil
}

type channel struct {
	conn *websocket.Conn

	writeLock *sync.Mutex
	incoming  chan []byte
	done      chan struct{}
	closeOnce *sync.Once
}

func newChannel(conn *websocket.Conn) *channel {
	ch := &channel{
		conn:      conn,
		writeLock: &sync.Mutex{},
		incoming:  make(chan []byte, 32),
		done:      make(chan struct{}),
		closeOnce: &sync.Once{},
	}
	go ch.readPump()
	return ch
}

func (c *channel) Post(ctx context.Context, msg []byte) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	deadline := time.Now().Add(writeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	// nolint:all
	c.conn.SetWriteDeadline(deadline)
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *channel) Incoming() <-chan []byte {
	return c.incoming
}

func (c *channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *channel) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *channel) readPump() {
	defer close(c.incoming)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed() {
				log.WithError(err).Debug("extension channel closed")
				// nolint:all
				c.Close()
			}
			return
		}
		select {
		case c.incoming <- msg:
		case <-c.done:
			return
		}
	}
}

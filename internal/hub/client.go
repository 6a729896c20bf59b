package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/relaylabs/chatrelay/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Client is one WebSocket connection registered in a room.
type Client struct {
	ID   string
	User string
	Room string

	conn      *websocket.Conn
	send      chan models.Envelope
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient wraps an upgraded connection. The caller must start WritePump
// and drive reads via ReadText.
func NewClient(conn *websocket.Conn, user, room string) *Client {
	c := &Client{
		ID:   uuid.NewString(),
		User: user,
		Room: room,
		conn: conn,
		send: make(chan models.Envelope, sendBuffer),
		done: make(chan struct{}),
	}
	if conn != nil {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
	}
	return c
}

// TrySend queues an envelope for delivery without blocking. It reports false
// when the client is closed or its send buffer is full.
func (c *Client) TrySend(env models.Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// ReadText blocks for the next text payload from the client.
func (c *Client) ReadText() (string, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WritePump drains the send queue onto the connection and keeps it alive
// with pings. It owns all writes; it exits when the client is closed or a
// write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case env := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close marks the client closed, releasing its WritePump. Safe to call more
// than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

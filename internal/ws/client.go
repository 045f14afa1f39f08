package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"room-chat-service/internal/models"
	"room-chat-service/internal/observability"
)

// Client owns one websocket. Events are queued by Deliver and written by the
// write pump; a client whose queue overflows is closed instead of stalling
// the room that feeds it.
type Client struct {
	conn *websocket.Conn
	info ConnInfo
	cfg  Config

	send      chan models.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, info ConnInfo, cfg Config) *Client {
	return &Client{
		conn: conn,
		info: info,
		cfg:  cfg,
		send: make(chan models.Event, cfg.SendBuffer),
		done: make(chan struct{}),
	}
}

// Deliver queues event for the write pump without blocking.
func (c *Client) Deliver(event models.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- event:
		return true
	case <-c.done:
		return false
	default:
		log.Printf("websocket send buffer full socket_id=%s event=%s", c.info.SocketID, event.Type)
		c.Close()
		return false
	}
}

// Close stops the write pump, which closes the socket.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the client has been asked to stop.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteJSON(event); err != nil {
				log.Printf("websocket write error: %v", err)
				c.Close()
				return
			}
			observability.IncWSEvent("out", event.Type)
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(c.cfg.WriteWait),
			)
			return
		}
	}
}

// readLoop feeds every text frame to handle until the socket fails and
// returns the close reason.
func (c *Client) readLoop(handle func([]byte)) string {
	c.conn.SetReadLimit(c.cfg.MaxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("lifecycle", "ws_error")
			}
			return err.Error()
		}
		if msgType != websocket.TextMessage {
			continue
		}
		handle(data)
	}
}

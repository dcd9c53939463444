package model

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	connectionWriteWait  = 10 * time.Second
	connectionPongWait   = 60 * time.Second
	connectionPingPeriod = 50 * time.Second
	connectionBufferSize = 64
)

// Connection is a websocket subscriber to one game's broadcast packets.
type Connection struct {
	GameID string
	Conn   *websocket.Conn
	Header *http.Header
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func NewConnection(conn *websocket.Conn, header *http.Header, gameID string) *Connection {
	connection := &Connection{
		GameID: gameID,
		Conn:   conn,
		Header: header,
		send:   make(chan []byte, connectionBufferSize),
		done:   make(chan struct{}),
	}
	slog.Info("client connected", "game_id", gameID, "remote_addr", conn.RemoteAddr().String())
	return connection
}

// Send queues a packet without blocking. A subscriber that cannot keep up is closed.
func (c *Connection) Send(packet BroadcastPacket) {
	data, err := json.Marshal(packet)
	if err != nil {
		slog.Error("failed to marshal packet", "game_id", c.GameID, "error", err)
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		slog.Warn("subscriber is too slow, closing", "game_id", c.GameID, "remote_addr", c.Conn.RemoteAddr().String())
		c.Close()
	}
}

func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Serve runs the read and write loops until the peer goes away or Close is called.
func (c *Connection) Serve() {
	go c.readLoop()
	ticker := time.NewTicker(connectionPingPeriod)
	defer ticker.Stop()
	defer c.Conn.Close()
	for {
		select {
		case <-c.done:
			c.flush()
			c.Conn.SetWriteDeadline(time.Now().Add(connectionWriteWait))
			c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(connectionWriteWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Warn("failed to write packet", "game_id", c.GameID, "error", err)
				c.Close()
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(connectionWriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// flush writes whatever is still queued, such as the final packet of a finished game.
func (c *Connection) flush() {
	for {
		select {
		case data := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(connectionWriteWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Connection) readLoop() {
	defer c.Close()
	c.Conn.SetReadDeadline(time.Now().Add(connectionPongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(connectionPongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("connection closed unexpectedly", "game_id", c.GameID, "error", err)
			}
			return
		}
	}
}

func (c *Connection) Close() {
	c.once.Do(func() {
		close(c.done)
		slog.Info("client disconnected", "game_id", c.GameID)
	})
}

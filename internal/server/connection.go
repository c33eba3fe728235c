package server

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBufferSize = 256

	maxChatLength = 280
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

// Connection is one websocket client seated at the table
type Connection struct {
	id     string
	conn   *websocket.Conn
	server *Server
	send   chan []byte
	logger *log.Logger

	mu     sync.Mutex
	closed bool
}

// NewConnection wraps an upgraded websocket for player id
func NewConnection(id string, conn *websocket.Conn, server *Server, logger *log.Logger) *Connection {
	return &Connection{
		id:     id,
		conn:   conn,
		server: server,
		send:   make(chan []byte, sendBufferSize),
		logger: logger.WithPrefix("conn").With("player", id),
	}
}

// ID returns the player id assigned to this connection
func (c *Connection) ID() string {
	return c.id
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Send queues an encoded frame. A client that cannot keep up is closed.
func (c *Connection) Send(raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- raw:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		c.closeSendLocked()
		return ErrSendBufferFull
	}
}

// SendMessage encodes and queues a message
func (c *Connection) SendMessage(messageType protocol.MessageType, data any) {
	raw, err := protocol.Encode(messageType, data)
	if err != nil {
		c.logger.Error("Failed to encode message", "type", messageType, "error", err)
		return
	}
	_ = c.Send(raw)
}

// SendError sends an error to this client only
func (c *Connection) SendError(code, message string) {
	c.SendMessage(protocol.TypeError, protocol.ErrorData{Code: code, Message: message})
}

// CloseSend stops accepting frames. The write pump flushes what is queued,
// sends a close frame and closes the socket.
func (c *Connection) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeSendLocked()
}

func (c *Connection) closeSendLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.server.disconnect(c)
		c.CloseSend()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.SendError(protocol.CodeInvalidMessage, "Failed to parse message")
			continue
		}

		if !c.handleMessage(&msg) {
			return
		}
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes one client message. It returns false once the
// client has left.
func (c *Connection) handleMessage(msg *protocol.Message) bool {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case protocol.TypeSetName:
		var data protocol.SetNameData
		if err := msg.Decode(&data); err != nil {
			c.SendError(protocol.CodeInvalidMessage, "Failed to parse set_name data")
			return true
		}
		c.reply(c.server.table.SetName(c.id, data.Name))

	case protocol.TypePlaceBet:
		var data protocol.PlaceBetData
		if err := msg.Decode(&data); err != nil {
			c.SendError(protocol.CodeInvalidMessage, "Failed to parse place_bet data")
			return true
		}
		c.reply(c.server.table.PlaceBet(c.id, data.Amount))

	case protocol.TypeAction:
		var data protocol.ActionData
		if err := msg.Decode(&data); err != nil {
			c.SendError(protocol.CodeInvalidMessage, "Failed to parse action data")
			return true
		}
		action, err := game.ParseAction(data.Action)
		if err != nil {
			c.reply(err)
			return true
		}
		c.reply(c.server.table.Act(c.id, action))

	case protocol.TypeChat:
		var data protocol.ChatData
		if err := msg.Decode(&data); err != nil {
			c.SendError(protocol.CodeInvalidMessage, "Failed to parse chat data")
			return true
		}
		text := strings.TrimSpace(data.Text)
		if text == "" {
			return true
		}
		if utf8.RuneCountInString(text) > maxChatLength {
			text = string([]rune(text)[:maxChatLength])
		}
		c.server.relayChat(c.id, text)

	case protocol.TypeLeave:
		c.logger.Info("Player leaving")
		return false

	default:
		c.SendError(protocol.CodeUnknownMessageType, "Unknown message type: "+msg.Type.String())
	}

	return true
}

// reply reports a rejected change back to the client
func (c *Connection) reply(err error) {
	if err == nil {
		return
	}
	c.logger.Debug("Rejected message", "error", err)
	c.SendError(errorCode(err), err.Error())
}

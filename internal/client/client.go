package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/protocol"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 54 * time.Second
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrSendFull     = errors.New("send buffer full")
)

// Client is a websocket client for the blackjack table
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *protocol.Message
	receive   chan *protocol.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	writeDone chan struct{}
	closeOnce sync.Once

	mu        sync.RWMutex
	connected bool
	playerID  string
	handlers  map[protocol.MessageType][]EventHandler
	waiters   []*waiter
}

// EventHandler handles one incoming message. Handlers run one at a time in
// arrival order, so a slow handler delays the ones after it.
type EventHandler func(*protocol.Message)

type waiter struct {
	messageType protocol.MessageType
	ch          chan *protocol.Message
}

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		send:      make(chan *protocol.Message, 256),
		receive:   make(chan *protocol.Message, 256),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		writeDone: make(chan struct{}),
		handlers:  make(map[protocol.MessageType][]EventHandler),
	}
}

// WebSocketURL converts a server URL such as http://host:8080 into the
// table's websocket endpoint
func WebSocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Connect dials the server and waits for the welcome message that carries
// the assigned player id
func (c *Client) Connect(ctx context.Context) error {
	wsURL, err := WebSocketURL(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Info("Connecting to server", "url", wsURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	welcome := c.register(protocol.TypeWelcome)

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	go c.eventProcessor()

	select {
	case <-welcome.ch:
		c.logger.Info("Connected to server", "player", c.PlayerID())
		return nil
	case <-ctx.Done():
		_ = c.Disconnect()
		return ctx.Err()
	case <-c.done:
		return ErrNotConnected
	}
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn != nil {
			select {
			case <-c.writeDone:
			case <-time.After(writeWait):
				_ = conn.Close()
			}
		}

		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()

		c.logger.Info("Disconnected from server")
	})
	return nil
}

// Done is closed once the connection has ended and every received message
// has been dispatched
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// PlayerID returns the id the server assigned on welcome
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SendMessage queues a message for the server
func (c *Client) SendMessage(messageType protocol.MessageType, data any) error {
	msg, err := protocol.NewMessage(messageType, data)
	if err != nil {
		return err
	}

	select {
	case <-c.ctx.Done():
		return ErrNotConnected
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSendFull
	}
}

// SetName changes the display name
func (c *Client) SetName(name string) error {
	return c.SendMessage(protocol.TypeSetName, protocol.SetNameData{Name: name})
}

// PlaceBet stakes amount on the next round
func (c *Client) PlaceBet(amount int) error {
	return c.SendMessage(protocol.TypePlaceBet, protocol.PlaceBetData{Amount: amount})
}

// Act sends a playing decision
func (c *Client) Act(action game.Action) error {
	return c.SendMessage(protocol.TypeAction, protocol.ActionData{Action: string(action)})
}

// Chat sends a chat line to the table
func (c *Client) Chat(text string) error {
	return c.SendMessage(protocol.TypeChat, protocol.ChatData{Text: strings.TrimSpace(text)})
}

// Leave asks the server to remove the player; the server then closes the
// connection
func (c *Client) Leave() error {
	return c.SendMessage(protocol.TypeLeave, protocol.LeaveData{})
}

// AddEventHandler adds an event handler for a specific message type
func (c *Client) AddEventHandler(messageType protocol.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers[messageType] = append(c.handlers[messageType], handler)
}

// OnTableUpdate registers a handler for decoded table updates
func (c *Client) OnTableUpdate(fn func(game.Snapshot)) {
	c.AddEventHandler(protocol.TypeTableUpdate, func(msg *protocol.Message) {
		var snap protocol.TableUpdateData
		if err := msg.Decode(&snap); err != nil {
			c.logger.Error("Bad table update", "error", err)
			return
		}
		fn(snap)
	})
}

// OnChat registers a handler for relayed chat
func (c *Client) OnChat(fn func(protocol.ChatData)) {
	c.AddEventHandler(protocol.TypeChat, func(msg *protocol.Message) {
		var data protocol.ChatData
		if err := msg.Decode(&data); err != nil {
			c.logger.Error("Bad chat message", "error", err)
			return
		}
		fn(data)
	})
}

// OnError registers a handler for errors reported by the server
func (c *Client) OnError(fn func(protocol.ErrorData)) {
	c.AddEventHandler(protocol.TypeError, func(msg *protocol.Message) {
		var data protocol.ErrorData
		if err := msg.Decode(&data); err != nil {
			c.logger.Error("Bad error message", "error", err)
			return
		}
		fn(data)
	})
}

// WaitForMessage waits for the next message of a type
func (c *Client) WaitForMessage(messageType protocol.MessageType, timeout time.Duration) (*protocol.Message, error) {
	w := c.register(messageType)
	defer c.unregister(w)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-w.ch:
		return msg, nil
	case <-timer.C:
		return nil, fmt.Errorf("timeout waiting for %s", messageType)
	case <-c.done:
		return nil, ErrNotConnected
	}
}

func (c *Client) register(messageType protocol.MessageType) *waiter {
	w := &waiter{messageType: messageType, ch: make(chan *protocol.Message, 1)}
	c.mu.Lock()
	c.waiters = append(c.waiters, w)
	c.mu.Unlock()
	return w
}

func (c *Client) unregister(w *waiter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, other := range c.waiters {
		if other == w {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.receive)
	}()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		close(c.writeDone)
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// eventProcessor dispatches received messages in order. When the read side
// ends it cancels the client and closes Done.
func (c *Client) eventProcessor() {
	defer func() {
		c.cancel()
		close(c.done)
	}()

	for msg := range c.receive {
		c.handleMessage(msg)
	}
}

// handleMessage dispatches a message to waiters and registered handlers
func (c *Client) handleMessage(msg *protocol.Message) {
	if msg.Type == protocol.TypeWelcome {
		var data protocol.WelcomeData
		if err := msg.Decode(&data); err != nil {
			c.logger.Error("Bad welcome message", "error", err)
		}
		c.mu.Lock()
		c.playerID = data.PlayerID
		c.mu.Unlock()
	}

	c.mu.Lock()
	handlers := c.handlers[msg.Type]
	kept := c.waiters[:0]
	var fire []*waiter
	for _, w := range c.waiters {
		if w.messageType == msg.Type {
			fire = append(fire, w)
			continue
		}
		kept = append(kept, w)
	}
	c.waiters = kept
	c.mu.Unlock()

	for _, w := range fire {
		w.ch <- msg
	}

	if len(handlers) == 0 && len(fire) == 0 {
		c.logger.Debug("No handler for message type", "type", msg.Type)
	}
	for _, handler := range handlers {
		handler(msg)
	}
}

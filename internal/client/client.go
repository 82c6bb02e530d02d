package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/hundred/internal/game"
	"github.com/lox/hundred/internal/server" // Reuse message types
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

// Client is a WebSocket client seated in one room
type Client struct {
	serverURL string
	http      *http.Client
	conn      *websocket.Conn
	send      chan *server.Message
	receive   chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	closeOnce sync.Once

	// Event handlers
	eventHandlers map[server.MessageType][]EventHandler
}

// EventHandler is a function that handles incoming events. Handlers run one
// at a time in arrival order.
type EventHandler func(*server.Message)

// NewClient creates a new client for the server at serverURL (http or ws
// scheme)
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL:     strings.TrimRight(serverURL, "/"),
		http:          &http.Client{Timeout: 10 * time.Second},
		send:          make(chan *server.Message, 256),
		receive:       make(chan *server.Message, 256),
		logger:        logger.WithPrefix("client"),
		ctx:           ctx,
		cancel:        cancel,
		eventHandlers: make(map[server.MessageType][]EventHandler),
	}
}

func (c *Client) endpoint(scheme func(string) string, path string) (*url.URL, error) {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	u.Scheme = scheme(u.Scheme)
	u.Path = path
	return u, nil
}

func httpScheme(s string) string {
	switch s {
	case "ws":
		return "http"
	case "wss":
		return "https"
	}
	return s
}

func wsScheme(s string) string {
	switch s {
	case "http":
		return "ws"
	case "https":
		return "wss"
	}
	return s
}

// CreateRoom asks the server for a new room
func (c *Client) CreateRoom(ctx context.Context) (server.RoomInfo, error) {
	u, err := c.endpoint(httpScheme, "/api/rooms")
	if err != nil {
		return server.RoomInfo{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return server.RoomInfo{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return server.RoomInfo{}, fmt.Errorf("failed to create room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return server.RoomInfo{}, fmt.Errorf("failed to create room: %s", resp.Status)
	}

	var info server.RoomInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return server.RoomInfo{}, fmt.Errorf("failed to decode room: %w", err)
	}
	return info, nil
}

// Connect joins roomID. A non-empty token claims the host seat.
func (c *Client) Connect(ctx context.Context, roomID, token string) error {
	u, err := c.endpoint(wsScheme, "/api/rooms/"+url.PathEscape(roomID)+"/ws")
	if err != nil {
		return err
	}
	if token != "" {
		u.RawQuery = url.Values{"token": {token}}.Encode()
	}

	c.logger.Info("Connecting to room", "room", roomID, "host", token != "")

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to join room: %s", resp.Status)
		}
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	go c.eventProcessor()

	c.logger.Info("Connected to room", "room", roomID)
	return nil
}

// Done is closed when the client has disconnected
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close() // Ignore close errors during shutdown
			c.connected = false
		}

		c.logger.Info("Disconnected from server")
	})
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage queues a message for the server
func (c *Client) SendMessage(msg *server.Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

func (c *Client) sendTyped(msgType server.MessageType, data any) error {
	msg, err := server.NewMessage(msgType, data)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		_ = c.Disconnect()
	}()

	for {
		var msg server.Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
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
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
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

// eventProcessor processes incoming messages and dispatches to handlers
func (c *Client) eventProcessor() {
	for {
		select {
		case msg := <-c.receive:
			c.handleMessage(msg)
		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches messages to registered handlers
func (c *Client) handleMessage(msg *server.Message) {
	c.mu.RLock()
	handlers, exists := c.eventHandlers[msg.Type]
	c.mu.RUnlock()

	if !exists {
		c.logger.Debug("No handler for message type", "type", msg.Type)
		return
	}
	for _, handler := range handlers {
		handler(msg)
	}
}

// AddEventHandler adds an event handler for a specific message type
func (c *Client) AddEventHandler(messageType server.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eventHandlers[messageType] = append(c.eventHandlers[messageType], handler)
}

// CommitName sets the display name of this client's seat
func (c *Client) CommitName(name string) error {
	return c.sendTyped(server.MessageTypeCommitName, server.NameData{Name: name})
}

// SetConfig changes the room's NPC difficulty and game type (host only)
func (c *Client) SetConfig(difficulty, gameType string) error {
	return c.sendTyped(server.MessageTypeHostSetConfig, server.HostSetConfigData{
		NPCDifficulty: difficulty,
		GameType:      gameType,
	})
}

// StartGame starts the game (host only)
func (c *Client) StartGame() error {
	return c.sendTyped(server.MessageTypeHostStart, nil)
}

// RestartGame deals a new game in a locked room (host only)
func (c *Client) RestartGame() error {
	return c.sendTyped(server.MessageTypeHostRestart, nil)
}

// SendAction sends a play keyed to the decision point it was chosen for
func (c *Client) SendAction(action game.Action, key game.TurnKey) error {
	data := server.PlayData{Key: &key}
	if action.JokerValue != 0 {
		v := float64(action.JokerValue)
		data.JokerValue = &v
	}

	if action.Kind == game.DrawPlay {
		return c.sendTyped(server.MessageTypeDrawPlay, data)
	}
	idx := action.HandIndex
	data.HandIndex = &idx
	return c.sendTyped(server.MessageTypePlayHand, data)
}

// Leave gives this client's seat back to an NPC
func (c *Client) Leave() error {
	return c.sendTyped(server.MessageTypeLeave, nil)
}

// Disband closes the room for everyone (host only)
func (c *Client) Disband() error {
	return c.sendTyped(server.MessageTypeHostDisband, nil)
}

// WaitForMessage waits for a specific message type with timeout
func (c *Client) WaitForMessage(messageType server.MessageType, timeout time.Duration) (*server.Message, error) {
	responseChan := make(chan *server.Message, 1)

	handler := func(msg *server.Message) {
		select {
		case responseChan <- msg:
		default:
		}
	}

	c.AddEventHandler(messageType, handler)

	select {
	case msg := <-responseChan:
		return msg, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for %s", messageType)
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

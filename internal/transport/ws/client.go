package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"shiritori/internal/app"
	"shiritori/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client is a browser connection. The browser hosts the speech recognizer,
// so a Client is both the Recognizer and the Observer of the game it plays.
type Client struct {
	conn         *websocket.Conn
	hub          *app.GameHub
	clientID     string
	startingWord string
	send         chan []byte
	done         chan struct{}
	logger       *slog.Logger
	mu           sync.Mutex
	closed       bool

	gameMu    sync.Mutex
	game      *app.GameController
	listening bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *app.GameHub, clientID, startingWord string, logger *slog.Logger) *Client {
	return &Client{
		conn:         conn,
		hub:          hub,
		clientID:     clientID,
		startingWord: startingWord,
		send:         make(chan []byte, sendBufferSize),
		done:         make(chan struct{}),
		logger:       logger.With("clientID", clientID),
	}
}

// Send queues a message for the write pump
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped")
		return nil
	}
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Start implements app.Recognizer. Starting a running recognizer is a no-op.
func (c *Client) Start() error {
	c.gameMu.Lock()
	if c.listening {
		c.gameMu.Unlock()
		return nil
	}
	c.listening = true
	c.gameMu.Unlock()

	return c.Send(NewServerMessage(MsgRecognizerStart, "", nil))
}

// Stop implements app.Recognizer
func (c *Client) Stop() error {
	c.gameMu.Lock()
	c.listening = false
	c.gameMu.Unlock()

	return c.Send(NewServerMessage(MsgRecognizerStop, "", nil))
}

// PhaseChanged implements app.Observer
func (c *Client) PhaseChanged(sessionID string, payload *domain.PhaseChangedPayload) {
	c.Send(NewServerMessage(MsgPhaseChanged, sessionID, payload))
}

// SessionEnded implements app.Observer
func (c *Client) SessionEnded(sessionID string, payload *domain.SessionEndedPayload) {
	c.gameMu.Lock()
	if c.game != nil && c.game.ID() == sessionID {
		c.game = nil
	}
	c.gameMu.Unlock()

	c.Send(NewServerMessage(MsgSessionEnded, sessionID, payload))
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.endGame()
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgStartGame:
		c.handleStartGame()
	case MsgQuitGame:
		c.handleQuitGame()
	case MsgRecognitionResult:
		c.handleRecognitionResult(msg.Payload)
	case MsgRecognitionEnd:
		c.handleRecognitionEnd()
	case MsgRecognitionError:
		c.handleRecognitionError(msg.Payload)
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleStartGame handles a start_game message, replacing any running game
func (c *Client) handleStartGame() {
	c.endGame()

	game, err := c.hub.StartSession(c, c)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManySessions):
			c.sendError(ErrCodeTooManySessions, "Too many games are running, try again later")
		default:
			c.sendError(ErrCodeInternalError, err.Error())
		}
		return
	}

	c.gameMu.Lock()
	c.game = game
	c.gameMu.Unlock()

	c.Send(NewServerMessage(MsgGameStarted, game.ID(), &GameStartedPayload{SessionID: game.ID()}))
}

// handleQuitGame handles a quit_game message
func (c *Client) handleQuitGame() {
	if c.currentGame() == nil {
		c.sendError(ErrCodeNoActiveGame, "No game is running")
		return
	}
	c.endGame()
}

// handleRecognitionResult handles a recognition_result message
func (c *Client) handleRecognitionResult(payload interface{}) {
	payloadMap, ok := payload.(map[string]interface{})
	if !ok {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	text, _ := payloadMap["text"].(string)
	isFinal, _ := payloadMap["isFinal"].(bool)

	game := c.currentGame()
	if game == nil {
		c.logger.Debug("recognition result without a game")
		return
	}
	game.OnResult(text, isFinal)
}

// handleRecognitionEnd handles a recognition_end message
func (c *Client) handleRecognitionEnd() {
	c.gameMu.Lock()
	c.listening = false
	game := c.game
	c.gameMu.Unlock()

	if game != nil {
		game.OnEnd()
	}
}

// handleRecognitionError handles a recognition_error message
func (c *Client) handleRecognitionError(payload interface{}) {
	message := "unknown recognizer error"
	if payloadMap, ok := payload.(map[string]interface{}); ok {
		if m, ok := payloadMap["message"].(string); ok && m != "" {
			message = m
		}
	}

	game := c.currentGame()
	if game == nil {
		return
	}
	game.OnError(errors.New(message))
}

func (c *Client) currentGame() *app.GameController {
	c.gameMu.Lock()
	defer c.gameMu.Unlock()
	return c.game
}

// endGame tears down the running game and waits for it to stop
func (c *Client) endGame() {
	c.gameMu.Lock()
	game := c.game
	c.game = nil
	c.gameMu.Unlock()

	if game == nil {
		return
	}
	game.Close()
	<-game.Done()
}

// sendConnected sends the connected message to the client
func (c *Client) sendConnected() {
	payload := &ConnectedPayload{
		ClientID:     c.clientID,
		StartingWord: c.startingWord,
	}

	c.Send(NewServerMessage(MsgConnected, "", payload))
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	c.Send(NewServerMessage(MsgError, "", payload))
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	c.Send(NewServerMessage(MsgPong, "", nil))
}

package ws

import "time"

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgStartGame         MessageType = "start_game"
	MsgQuitGame          MessageType = "quit_game"
	MsgRecognitionResult MessageType = "recognition_result"
	MsgRecognitionEnd    MessageType = "recognition_end"
	MsgRecognitionError  MessageType = "recognition_error"
	MsgPing              MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected       MessageType = "connected"
	MsgError           MessageType = "error"
	MsgGameStarted     MessageType = "game_started"
	MsgPhaseChanged    MessageType = "phase_changed"
	MsgSessionEnded    MessageType = "session_ended"
	MsgRecognizerStart MessageType = "recognizer_start"
	MsgRecognizerStop  MessageType = "recognizer_stop"
	MsgPong            MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, sessionID string, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		SessionID: sessionID,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// RecognitionResultPayload is the payload for recognition_result message
type RecognitionResultPayload struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// RecognitionErrorPayload is the payload for recognition_error message
type RecognitionErrorPayload struct {
	Message string `json:"message"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	ClientID     string `json:"clientId"`
	StartingWord string `json:"startingWord"`
}

// GameStartedPayload is the payload for game_started message
type GameStartedPayload struct {
	SessionID string `json:"sessionId"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage  = "INVALID_MESSAGE"
	ErrCodeNoActiveGame    = "NO_ACTIVE_GAME"
	ErrCodeTooManySessions = "TOO_MANY_SESSIONS"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload,omitempty"`
}

// Client actions.
const (
	ActionPing  = "ping"
	ActionPong  = "pong"
	ActionError = "error"
)

// Encode marshals a message, logging and returning nil on failure.
func Encode(action string, payload interface{}) []byte {
	b, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode websocket message")
		return nil
	}
	return b
}

// NewErrorMessage builds an error frame for a client.
func NewErrorMessage(message string) []byte {
	return Encode(ActionError, map[string]string{"message": message})
}

package proto

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
)

// Inbound actions.
const (
	ActionTurn    = "game:turn"
	ActionRestart = "game:restart"
)

// Outbound actions.
const (
	ActionSession       = "session"
	ActionCellChanged   = "cell:changed"
	ActionStatusChanged = "status:changed"
	ActionGameOver      = "game:over"
)

// Message represents a message with an action type and a payload.
type Message struct {
	Action    string          `json:"action" validate:"required"`
	SessionID string          `json:"session_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type TurnPayload struct {
	Cell *int `json:"cell" validate:"required,min=0,max=8"`
}

type SessionPayload struct {
	Players entity.Players `json:"players"`
	Board   entity.Board   `json:"board"`
}

type CellPayload struct {
	Cell int           `json:"cell"`
	Mark entity.Marker `json:"mark"`
}

func NewMessage(action string, payload any) (Message, error) {
	msg := Message{Action: action}
	if payload == nil {
		return msg, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}
	msg.Payload = raw

	return msg, nil
}

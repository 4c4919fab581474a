package proto

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
)

type memorySender struct {
	messages []Message
	err      error
}

func (that *memorySender) Send(_ context.Context, msg Message) error {
	that.messages = append(that.messages, msg)
	return that.err
}

func TestEmitter(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	t.Run("Events become tagged messages", func(t *testing.T) {
		// Given: an emitter over an in-memory sender
		sender := &memorySender{}
		emitter := NewEmitter("s-1", sender, logger)

		// When: every kind of event is emitted
		emitter.Session(ctx, entity.NewGame(entity.DefaultPlayers()))
		emitter.OnCellChanged(ctx, 4, entity.PlayerO)
		emitter.OnStatusChanged(ctx, entity.Status{Phase: entity.PhaseOpponentTurn, Turn: entity.PlayerX, Message: "AI's turn (X)"})
		emitter.OnGameOver(ctx, entity.WinResult(entity.PlayerX))

		// Then: each one is a message with the session id and a JSON payload
		require.Len(t, sender.messages, 4)

		actions := make([]string, 0, len(sender.messages))
		for _, msg := range sender.messages {
			assert.Equal(t, "s-1", msg.SessionID)
			actions = append(actions, msg.Action)
		}
		assert.Equal(t, []string{ActionSession, ActionCellChanged, ActionStatusChanged, ActionGameOver}, actions)

		var cell CellPayload
		require.NoError(t, json.Unmarshal(sender.messages[1].Payload, &cell))
		assert.Equal(t, CellPayload{Cell: 4, Mark: entity.PlayerO}, cell)

		assert.JSONEq(t, `{"phase":"opponent_turn","turn":"X","message":"AI's turn (X)"}`, string(sender.messages[2].Payload))
		assert.JSONEq(t, `{"winner":"X"}`, string(sender.messages[3].Payload))
	})

	t.Run("Send failures are only logged", func(t *testing.T) {
		sender := &memorySender{err: errors.New("broken pipe")}
		emitter := NewEmitter("s-1", sender, logger)

		assert.NotPanics(t, func() { emitter.OnGameOver(ctx, entity.DrawResult()) })
		assert.Len(t, sender.messages, 1)
	})
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(ActionRestart, nil)
	require.NoError(t, err)
	assert.Equal(t, Message{Action: ActionRestart}, msg)

	_, err = NewMessage(ActionTurn, func() {})
	require.Error(t, err)
}

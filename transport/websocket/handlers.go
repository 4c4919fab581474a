package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/mechanical-tictactoe/pkg/proto"
)

// handleGameTurn - plays the human move. Rejected moves change nothing and get no reply.
func (that *Server) handleGameTurn(ctx context.Context, session *usecase.Session, msg *proto.Message) error {
	var payload proto.TurnPayload

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if err := that.validate.Struct(&payload); err != nil {
		return fmt.Errorf("invalid turn payload: %w", err)
	}

	if err := session.ApplyHumanMove(ctx, *payload.Cell); err != nil {
		return fmt.Errorf("failed to make turn: %w", err)
	}

	return nil
}

func (that *Server) handleRestart(ctx context.Context, session *usecase.Session, _ *proto.Message) error {
	session.Restart(ctx)

	return nil
}

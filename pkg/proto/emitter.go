package proto

import (
	"context"
	"log/slog"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
)

// Sender delivers one message to whatever renders the game.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Emitter turns session events into messages for a Sender.
type Emitter struct {
	sessionID string
	sender    Sender
	logger    *slog.Logger
}

func NewEmitter(sessionID string, sender Sender, logger *slog.Logger) *Emitter {
	return &Emitter{
		sessionID: sessionID,
		sender:    sender,
		logger:    logger,
	}
}

func (that *Emitter) OnCellChanged(ctx context.Context, cell int, mark entity.Marker) {
	that.emit(ctx, ActionCellChanged, CellPayload{Cell: cell, Mark: mark})
}

func (that *Emitter) OnStatusChanged(ctx context.Context, status entity.Status) {
	that.emit(ctx, ActionStatusChanged, status)
}

func (that *Emitter) OnGameOver(ctx context.Context, result entity.Result) {
	that.emit(ctx, ActionGameOver, result)
}

// Session announces the session to the renderer.
func (that *Emitter) Session(ctx context.Context, game entity.Game) {
	that.emit(ctx, ActionSession, SessionPayload{Players: game.Players, Board: game.Board})
}

func (that *Emitter) emit(ctx context.Context, action string, payload any) {
	log := that.logger.With("method", "emit", "action", action)

	msg, err := NewMessage(action, payload)
	if err != nil {
		log.Error("failed to build message", "error", err)
		return
	}
	msg.SessionID = that.sessionID

	if err = that.sender.Send(ctx, msg); err != nil {
		log.Error("failed to send message", "error", err)
	}
}

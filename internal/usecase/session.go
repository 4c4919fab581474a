package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/service"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/tictactoe"
)

var tracer = otel.Tracer("usecase.session")

type botService interface {
	SelectMove(board entity.Board, opponent, human entity.Marker) (int, service.Strategy, error)
}

type Options struct {
	Players       entity.Players
	ThinkingDelay time.Duration
}

// Session runs one game between the human and the opponent.
// The opponent answers asynchronously after ThinkingDelay; human input is rejected meanwhile.
type Session struct {
	id       string
	logger   *slog.Logger
	bot      botService
	listener Listener
	delay    time.Duration

	mu         sync.Mutex
	game       entity.Game
	generation uint64
	cancelMove context.CancelFunc
	closed     bool

	pending sync.WaitGroup
}

func NewSession(id string, logger *slog.Logger, bot botService, listener Listener, opts Options) *Session {
	if listener == nil {
		listener = Listeners()
	}

	return &Session{
		id:       id,
		logger:   logger.With("component", "session", "session_id", id),
		bot:      bot,
		listener: listener,
		delay:    opts.ThinkingDelay,
		game:     entity.NewGame(opts.Players),
	}
}

func (that *Session) ID() string {
	return that.id
}

// Snapshot returns a copy of the current game.
func (that *Session) Snapshot() entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.game
}

// Start announces the initial state.
func (that *Session) Start(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "Session.Start", trace.WithAttributes(
		attribute.String("session.id", that.id),
	))
	defer span.End()

	that.mu.Lock()
	defer that.mu.Unlock()

	that.listener.OnStatusChanged(ctx, that.status())
	that.logger.Info("game started", "human", that.game.Players.Human, "opponent", that.game.Players.Opponent)
}

// ApplyHumanMove plays cell for the human. Rejected moves leave the state untouched.
func (that *Session) ApplyHumanMove(ctx context.Context, cell int) error {
	ctx, span := tracer.Start(ctx, "Session.ApplyHumanMove", trace.WithAttributes(
		attribute.String("session.id", that.id),
		attribute.Int("move.cell", cell),
	))
	defer span.End()

	log := that.logger.With("method", "ApplyHumanMove")

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return apperror.ErrSessionClosed
	}

	next, err := tictactoe.MakeTurn(that.game, that.game.Players.Human, cell)
	if err != nil {
		log.Debug("move rejected", "cell", cell, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "move rejected")

		return fmt.Errorf("human move: %w", err)
	}
	span.SetAttributes(attribute.Bool("move.valid", true))

	log.Debug("human moved", "cell", cell)
	that.commit(ctx, cell, next)

	return nil
}

// Restart drops any pending opponent move and starts a fresh game.
func (that *Session) Restart(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "Session.Restart", trace.WithAttributes(
		attribute.String("session.id", that.id),
	))
	defer span.End()

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	that.dropPendingMove()

	previous := that.game.Board
	that.game.Reset()

	for cell, mark := range previous {
		if mark != entity.EmptyCell {
			that.listener.OnCellChanged(ctx, cell, entity.EmptyCell)
		}
	}
	that.listener.OnStatusChanged(ctx, that.status())

	that.logger.Info("game restarted")
}

// Close cancels a pending opponent move and waits for it to finish.
func (that *Session) Close() {
	that.mu.Lock()
	that.closed = true
	that.dropPendingMove()
	that.mu.Unlock()

	that.pending.Wait()
}

// commit stores the next state and tells the listener about it. Caller holds mu.
func (that *Session) commit(ctx context.Context, cell int, next entity.Game) {
	that.game = next
	that.listener.OnCellChanged(ctx, cell, next.Board[cell])
	that.listener.OnStatusChanged(ctx, that.status())

	if next.IsFinished() {
		that.listener.OnGameOver(ctx, next.Result)
		that.logger.Info("game over", "result", next.Result.String())

		return
	}

	if next.Phase() == entity.PhaseOpponentTurn {
		that.scheduleOpponentMove(ctx)
	}
}

// scheduleOpponentMove starts the delayed opponent move. Caller holds mu.
func (that *Session) scheduleOpponentMove(ctx context.Context) {
	moveCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	that.cancelMove = cancel
	generation := that.generation

	that.pending.Add(1)
	go func() {
		defer that.pending.Done()

		timer := time.NewTimer(that.delay)
		defer timer.Stop()

		select {
		case <-moveCtx.Done():
			return
		case <-timer.C:
		}

		that.opponentMove(moveCtx, generation)
	}()
}

func (that *Session) opponentMove(ctx context.Context, generation uint64) {
	ctx, span := tracer.Start(ctx, "Session.opponentMove", trace.WithAttributes(
		attribute.String("session.id", that.id),
	))
	defer span.End()

	log := that.logger.With("method", "opponentMove")

	that.mu.Lock()
	defer that.mu.Unlock()

	// a restart or close happened while the opponent was thinking
	if generation != that.generation || ctx.Err() != nil {
		return
	}

	if cancel := that.cancelMove; cancel != nil {
		that.cancelMove = nil
		defer cancel()
	}

	if that.game.Phase() != entity.PhaseOpponentTurn {
		return
	}

	players := that.game.Players
	cell, strategy, err := that.bot.SelectMove(that.game.Board, players.Opponent, players.Human)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "opponent failed to select a move")

		if errors.Is(err, apperror.ErrNoAvailableMoves) {
			that.recoverNoMoves(ctx)
			return
		}

		log.Error("opponent failed to select a move", "error", err)
		return
	}

	next, err := tictactoe.MakeTurn(that.game, players.Opponent, cell)
	if err != nil {
		log.Error("opponent selected an invalid move", "cell", cell, "strategy", strategy, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "opponent selected an invalid move")

		return
	}

	span.SetAttributes(attribute.Int("move.cell", cell), attribute.String("move.strategy", string(strategy)))
	log.Debug("opponent moved", "cell", cell, "strategy", strategy)

	that.commit(ctx, cell, next)
}

// recoverNoMoves handles an opponent turn without a free cell: the draw check was skipped.
// Caller holds mu.
func (that *Session) recoverNoMoves(ctx context.Context) {
	log := that.logger.With("method", "recoverNoMoves")

	next, forced := tictactoe.ForceDraw(that.game)
	if !forced {
		log.Error("opponent found no move on an active game", "board", that.game.Board)
		return
	}

	log.Warn("opponent found no move, forcing a draw")

	that.game = next
	that.listener.OnStatusChanged(ctx, that.status())
	that.listener.OnGameOver(ctx, next.Result)
}

// dropPendingMove cancels the scheduled opponent move, if any. Caller holds mu.
func (that *Session) dropPendingMove() {
	that.generation++

	if that.cancelMove != nil {
		that.cancelMove()
		that.cancelMove = nil
	}
}

// status - the message a renderer shows for the current state. Caller holds mu.
func (that *Session) status() entity.Status {
	game := that.game
	players := game.Players
	phase := game.Phase()

	status := entity.Status{Phase: phase}

	switch phase {
	case entity.PhaseHumanTurn:
		status.Turn = players.Human
		status.Message = fmt.Sprintf("Your turn (%s)", players.Human)
	case entity.PhaseOpponentTurn:
		status.Turn = players.Opponent
		status.Message = fmt.Sprintf("AI's turn (%s)", players.Opponent)
	case entity.PhaseWon:
		if game.Result.Winner == players.Human {
			status.Message = fmt.Sprintf("You (%s) won!", players.Human)
		} else {
			status.Message = fmt.Sprintf("AI (%s) won!", game.Result.Winner)
		}
	case entity.PhaseDraw:
		status.Message = "Draw!"
	}

	return status
}

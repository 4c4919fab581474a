package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
)

// MakeTurn applies mark on cell and evaluates the result. The passed game is not modified.
func MakeTurn(game entity.Game, mark entity.Marker, cell int) (entity.Game, error) {
	if game.IsFinished() {
		return game, apperror.ErrGameFinished
	}

	if err := validateMove(game, mark, cell); err != nil {
		return game, fmt.Errorf("invalid turn: %w", err)
	}

	next := game
	if err := next.Place(cell, mark); err != nil {
		return game, fmt.Errorf("invalid turn: %w", err)
	}

	return Evaluate(next), nil
}

// validateMove - checks if the move is valid.
func validateMove(game entity.Game, mark entity.Marker, cell int) error {
	if !entity.IsValidCell(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if game.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// Evaluate - checks the terminal conditions for the player who just moved:
// win first, then draw, otherwise the turn passes.
func Evaluate(game entity.Game) entity.Game {
	switch {
	case game.Board.CheckWin(game.Turn):
		game.Active = false
		game.Result = entity.WinResult(game.Turn)
	case game.Board.CheckDraw():
		game.Active = false
		game.Result = entity.DrawResult()
	default:
		game.Turn = game.Players.Other(game.Turn)
	}

	return game
}

// ForceDraw ends an active game with a full board as a draw. It reports whether it did.
func ForceDraw(game entity.Game) (entity.Game, bool) {
	if game.IsFinished() || !game.Board.CheckDraw() {
		return game, false
	}

	game.Active = false
	game.Result = entity.DrawResult()

	return game, true
}

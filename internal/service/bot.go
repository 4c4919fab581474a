package service

import (
	"math/rand/v2"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
)

// Strategy names the rule that picked a move.
type Strategy string

const (
	StrategyWin      Strategy = "win"
	StrategyBlock    Strategy = "block"
	StrategyCenter   Strategy = "center"
	StrategyCorner   Strategy = "corner"
	StrategySide     Strategy = "side"
	StrategyFallback Strategy = "fallback"
)

// Chooser picks a number in [0, n). *rand.Rand satisfies it.
type Chooser interface {
	IntN(n int) int
}

type BotService interface {
	SelectMove(board entity.Board, opponent, human entity.Marker) (int, Strategy, error)
}

type botService struct {
	chooser Chooser
}

// NewBotService returns the greedy opponent. A nil chooser falls back to the global source.
func NewBotService(chooser Chooser) BotService {
	if chooser == nil {
		chooser = globalChooser{}
	}

	return &botService{
		chooser: chooser,
	}
}

// SelectMove picks the opponent's cell: win, block, center, corner, side, then the first free cell.
// The block only sees the first threat by index; a double threat is not handled.
func (that *botService) SelectMove(board entity.Board, opponent, human entity.Marker) (int, Strategy, error) {
	if len(board.EmptyCells()) == 0 {
		return -1, "", apperror.ErrNoAvailableMoves
	}

	if cell, ok := completingMove(board, opponent); ok {
		return cell, StrategyWin, nil
	}

	if cell, ok := completingMove(board, human); ok {
		return cell, StrategyBlock, nil
	}

	if board.IsEmpty(entity.Center) {
		return entity.Center, StrategyCenter, nil
	}

	if cell, ok := that.pickRandom(board, entity.Corners); ok {
		return cell, StrategyCorner, nil
	}

	if cell, ok := that.pickRandom(board, entity.Sides); ok {
		return cell, StrategySide, nil
	}

	return board.EmptyCells()[0], StrategyFallback, nil
}

// completingMove - the first empty cell (by index) that wins the game for mark.
func completingMove(board entity.Board, mark entity.Marker) (int, bool) {
	for _, cell := range board.EmptyCells() {
		candidate := board
		candidate[cell] = mark

		if candidate.CheckWin(mark) {
			return cell, true
		}
	}

	return -1, false
}

func (that *botService) pickRandom(board entity.Board, cells [4]int) (int, bool) {
	available := make([]int, 0, len(cells))
	for _, cell := range cells {
		if board.IsEmpty(cell) {
			available = append(available, cell)
		}
	}

	if len(available) == 0 {
		return -1, false
	}

	return available[that.chooser.IntN(len(available))], true
}

type globalChooser struct{}

func (globalChooser) IntN(n int) int {
	return rand.IntN(n) //nolint: gosec // move variety, not security
}

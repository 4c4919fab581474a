package entity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/apperror"
)

const (
	BoardSize = 9
	Center    = 4
)

var (
	ErrInvalidPlayers = errors.New("invalid players")

	// WinCombos - every line that wins the game: rows, columns, diagonals.
	WinCombos = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}

	Corners = [4]int{0, 2, 6, 8}
	Sides   = [4]int{1, 3, 5, 7}
)

// Board holds the 9 cells left-to-right, top-to-bottom.
type Board [BoardSize]Marker

// CheckWin reports whether any winning line is fully occupied by mark.
func (that Board) CheckWin(mark Marker) bool {
	if mark == EmptyCell {
		return false
	}

	for _, combo := range WinCombos {
		if that[combo[0]] == mark && that[combo[1]] == mark && that[combo[2]] == mark {
			return true
		}
	}

	return false
}

// CheckDraw reports whether the board is full. Only meaningful once no win exists.
func (that Board) CheckDraw() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// EmptyCells returns the free cell indices in ascending order.
func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that Board) IsEmpty(cell int) bool {
	return IsValidCell(cell) && that[cell] == EmptyCell
}

// String renders the board as a grid, free cells show their index.
func (that Board) String() string {
	var sb strings.Builder

	sb.WriteString("-------------\n")
	for row := 0; row < 3; row++ {
		sb.WriteString("|")
		for col := 0; col < 3; col++ {
			i := row*3 + col
			label := string(that[i])
			if that[i] == EmptyCell {
				label = strconv.Itoa(i)
			}
			sb.WriteString(" " + label + " |")
		}
		sb.WriteString("\n-------------\n")
	}

	return sb.String()
}

func IsValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

// Result is the outcome of a finished game: a winner or a draw.
type Result struct {
	Winner Marker `json:"winner,omitempty"`
	Draw   bool   `json:"draw,omitempty"`
}

func WinResult(mark Marker) Result {
	return Result{Winner: mark}
}

func DrawResult() Result {
	return Result{Draw: true}
}

func (that Result) IsZero() bool {
	return that.Winner == EmptyCell && !that.Draw
}

func (that Result) String() string {
	switch {
	case that.Draw:
		return "draw"
	case that.Winner != EmptyCell:
		return "win:" + string(that.Winner)
	default:
		return "none"
	}
}

// Phase is the state of the turn system.
type Phase string

const (
	PhaseHumanTurn    Phase = "human_turn"
	PhaseOpponentTurn Phase = "opponent_turn"
	PhaseWon          Phase = "won"
	PhaseDraw         Phase = "draw"
)

func (that Phase) IsTerminal() bool {
	return that == PhaseWon || that == PhaseDraw
}

// Status is what a renderer shows above the board.
type Status struct {
	Phase   Phase  `json:"phase"`
	Turn    Marker `json:"turn,omitempty"`
	Message string `json:"message"`
}

// Game is the whole state of one game. It is a value: copying it copies the board.
type Game struct {
	Board   Board   `json:"board"`
	Players Players `json:"players"`
	Turn    Marker  `json:"turn"`
	Active  bool    `json:"active"`
	Result  Result  `json:"result"`
}

func NewGame(players Players) Game {
	game := Game{Players: players}
	game.Reset()

	return game
}

// Reset clears the board and hands the turn to the human.
func (that *Game) Reset() {
	that.Board = Board{}
	that.Turn = that.Players.Human
	that.Active = true
	that.Result = Result{}
}

// Place puts mark on cell. It does not evaluate the result or pass the turn.
func (that *Game) Place(cell int, mark Marker) error {
	if !that.Active {
		return apperror.ErrGameFinished
	}

	if !IsValidCell(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Board[cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that.Board[cell] = mark

	return nil
}

func (that Game) Phase() Phase {
	switch {
	case that.Result.Draw:
		return PhaseDraw
	case that.Result.Winner != EmptyCell:
		return PhaseWon
	case that.Turn == that.Players.Opponent:
		return PhaseOpponentTurn
	default:
		return PhaseHumanTurn
	}
}

func (that Game) IsFinished() bool {
	return !that.Active
}

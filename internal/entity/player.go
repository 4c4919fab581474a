package entity

import "fmt"

// Marker is the symbol occupying a cell. EmptyCell marks a free cell.
type Marker string

const (
	PlayerX Marker = "X"
	PlayerO Marker = "O"

	EmptyCell Marker = ""
)

// Players binds markers to the two sides of the game. The human always starts.
type Players struct {
	Human    Marker `json:"human"`
	Opponent Marker `json:"opponent"`
}

// DefaultPlayers - the human plays O, the opponent plays X.
func DefaultPlayers() Players {
	return Players{Human: PlayerO, Opponent: PlayerX}
}

// Other returns the marker of the other side.
func (that Players) Other(mark Marker) Marker {
	if mark == that.Human {
		return that.Opponent
	}
	return that.Human
}

func (that Players) Validate() error {
	if that.Human == EmptyCell || that.Opponent == EmptyCell {
		return fmt.Errorf("%w: markers must not be empty", ErrInvalidPlayers)
	}

	if that.Human == that.Opponent {
		return fmt.Errorf("%w: both sides use %q", ErrInvalidPlayers, that.Human)
	}

	return nil
}

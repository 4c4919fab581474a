package console

import (
	"context"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
)

// renderer narrates the opponent and wakes the prompt loop.
type renderer struct {
	console  *Console
	opponent entity.Marker
}

func (that *renderer) OnCellChanged(_ context.Context, cell int, mark entity.Marker) {
	if mark != entity.EmptyCell && mark == that.opponent {
		that.console.printf("AI (%s) chooses square %d\n", mark, cell)
	}

	that.console.notify()
}

func (that *renderer) OnStatusChanged(_ context.Context, status entity.Status) {
	if status.Phase == entity.PhaseOpponentTurn {
		that.opponent = status.Turn
		that.console.printf("AI (%s) is thinking...\n", status.Turn)
	}

	that.console.notify()
}

func (that *renderer) OnGameOver(context.Context, entity.Result) {
	that.console.notify()
}

package usecase

import (
	"context"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
)

// Listener receives everything a renderer needs. Calls are serialized per session and
// made while the session is locked, so a listener must not call back into the session.
type Listener interface {
	OnCellChanged(ctx context.Context, cell int, mark entity.Marker)
	OnStatusChanged(ctx context.Context, status entity.Status)
	OnGameOver(ctx context.Context, result entity.Result)
}

// Listeners dispatches every event to all of the given listeners in order.
func Listeners(listeners ...Listener) Listener {
	flat := make(multiListener, 0, len(listeners))
	for _, listener := range listeners {
		if listener != nil {
			flat = append(flat, listener)
		}
	}

	return flat
}

type multiListener []Listener

func (that multiListener) OnCellChanged(ctx context.Context, cell int, mark entity.Marker) {
	for _, listener := range that {
		listener.OnCellChanged(ctx, cell, mark)
	}
}

func (that multiListener) OnStatusChanged(ctx context.Context, status entity.Status) {
	for _, listener := range that {
		listener.OnStatusChanged(ctx, status)
	}
}

func (that multiListener) OnGameOver(ctx context.Context, result entity.Result) {
	for _, listener := range that {
		listener.OnGameOver(ctx, result)
	}
}

package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/service"
)

func newTestManager(delay time.Duration, observers ...ListenerFactory) *GameManager {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	bot := service.NewBotService(firstChooser{})

	return NewGameManager(logger, bot, Options{Players: entity.DefaultPlayers(), ThinkingDelay: delay}, observers...)
}

func record(listener *recorder) ListenerFactory {
	return func(string) Listener { return listener }
}

func TestGameManager_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("Sessions are registered under fresh ids", func(t *testing.T) {
		// Given: an empty manager
		manager := newTestManager(0)

		// When: two renderers connect
		first := manager.Open(ctx, record(&recorder{}))
		second := manager.Open(ctx, record(&recorder{}))

		// Then: each gets its own session
		assert.NotEqual(t, first.ID(), second.ID())
		assert.Equal(t, 2, manager.Count())

		got, ok := manager.Get(first.ID())
		require.True(t, ok)
		assert.Same(t, first, got)
	})

	t.Run("Observers see the same events as the renderer", func(t *testing.T) {
		// Given: an observer factory recording the ids it was built for
		observer := &recorder{}
		var observedIDs []string
		manager := newTestManager(0, func(sessionID string) Listener {
			observedIDs = append(observedIDs, sessionID)
			return observer
		})
		renderer := &recorder{}

		// When: a session is opened and played
		session := manager.Open(ctx, record(renderer))
		session.Start(ctx)
		require.NoError(t, session.ApplyHumanMove(ctx, 0))

		// Then: the observer was bound to that session and got every event
		assert.Equal(t, []string{session.ID()}, observedIDs)
		require.Eventually(t, func() bool {
			return len(observer.Events()) == len(renderer.Events()) && session.Snapshot().Turn == entity.PlayerO
		}, waitFor, tick)
		assert.Equal(t, renderer.Events(), observer.Events())
	})
}

func TestGameManager_Close(t *testing.T) {
	ctx := context.Background()

	t.Run("Closed session stops accepting moves", func(t *testing.T) {
		manager := newTestManager(time.Hour)
		session := manager.Open(ctx, nil)

		manager.Close(session.ID())

		_, ok := manager.Get(session.ID())
		assert.False(t, ok)
		assert.Zero(t, manager.Count())
		require.Error(t, session.ApplyHumanMove(ctx, 0))
	})

	t.Run("Unknown id is ignored", func(t *testing.T) {
		manager := newTestManager(0)

		assert.NotPanics(t, func() { manager.Close("missing") })
	})

	t.Run("Shutdown cancels pending opponent moves", func(t *testing.T) {
		// Given: a session waiting on a slow opponent
		manager := newTestManager(time.Hour)
		listener := &recorder{}
		session := manager.Open(ctx, record(listener))
		require.NoError(t, session.ApplyHumanMove(ctx, 4))

		// When: the manager shuts down
		manager.Shutdown()

		// Then: nothing is left and the opponent never moved
		assert.Zero(t, manager.Count())
		assert.Len(t, session.Snapshot().Board.EmptyCells(), 8)
	})
}

package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/pkg"
)

// ListenerFactory builds an extra listener for every new session, e.g. an event publisher.
type ListenerFactory func(sessionID string) Listener

// GameManager owns the live sessions, one per connected renderer.
type GameManager struct {
	logger    *slog.Logger
	bot       botService
	opts      Options
	observers []ListenerFactory

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewGameManager(logger *slog.Logger, bot botService, opts Options, observers ...ListenerFactory) *GameManager {
	return &GameManager{
		logger:    logger.With("component", "game_manager"),
		bot:       bot,
		opts:      opts,
		observers: observers,

		sessions: make(map[string]*Session),
	}
}

// Open creates a session that reports to the renderer and to every observer.
// The session is registered but not started.
func (that *GameManager) Open(ctx context.Context, renderer ListenerFactory) *Session {
	id := pkg.GenerateNewSessionID()

	listeners := make([]Listener, 0, len(that.observers)+1)
	if renderer != nil {
		listeners = append(listeners, renderer(id))
	}
	for _, observer := range that.observers {
		listeners = append(listeners, observer(id))
	}

	session := NewSession(id, that.logger, that.bot, Listeners(listeners...), that.opts)

	that.mu.Lock()
	that.sessions[id] = session
	that.mu.Unlock()

	that.logger.InfoContext(ctx, "session opened", "session_id", id)

	return session
}

// Get returns the live session with the given id.
func (that *GameManager) Get(id string) (*Session, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[id]

	return session, ok
}

// Close stops the session and forgets it. Unknown ids are ignored.
func (that *GameManager) Close(id string) {
	that.mu.Lock()
	session, ok := that.sessions[id]
	delete(that.sessions, id)
	that.mu.Unlock()

	if !ok {
		return
	}

	session.Close()
	that.logger.Info("session closed", "session_id", id)
}

func (that *GameManager) Count() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.sessions)
}

// Shutdown closes every live session.
func (that *GameManager) Shutdown() {
	that.mu.Lock()
	sessions := that.sessions
	that.sessions = make(map[string]*Session)
	that.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}

	that.logger.Info("all sessions closed", "count", len(sessions))
}

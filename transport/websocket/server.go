package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/mechanical-tictactoe/pkg/proto"
)

var tracer = otel.Tracer("transport.websocket")

type gameManager interface {
	Open(ctx context.Context, renderer usecase.ListenerFactory) *usecase.Session
	Close(id string)
}

type handler func(ctx context.Context, session *usecase.Session, msg *proto.Message) error

// Server upgrades browser connections and gives each one its own game session.
type Server struct {
	logger   *slog.Logger
	games    gameManager
	upgrader websocket.Upgrader
	validate *validator.Validate

	handlers map[string]handler

	mu    sync.Mutex
	conns map[*connection]struct{}
}

func New(logger *slog.Logger, games gameManager) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		games:  games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		validate: validator.New(validator.WithRequiredStructEnabled()),

		handlers: make(map[string]handler),
		conns:    make(map[*connection]struct{}),
	}

	server.handlers[proto.ActionTurn] = server.handleGameTurn
	server.handlers[proto.ActionRestart] = server.handleRestart

	return server
}

// ServeHTTP - upgrades the request and plays one game over the connection until it closes.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	ctx, span := tracer.Start(req.Context(), "Server.ServeHTTP", trace.WithAttributes(
		attribute.String("http.url", req.URL.String()),
	))
	defer span.End()

	log := that.logger.With("method", "ServeHTTP")

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upgrade connection")

		return
	}

	conn := newConnection(ws)
	that.track(conn)
	defer that.untrack(conn)

	var emitter *proto.Emitter
	session := that.games.Open(ctx, func(sessionID string) usecase.Listener {
		emitter = proto.NewEmitter(sessionID, conn, that.logger.With("session_id", sessionID))
		return emitter
	})
	defer that.games.Close(session.ID())

	span.SetAttributes(attribute.String("session.id", session.ID()))
	log = log.With("session_id", session.ID())
	log.Info("WebSocket connection established")

	emitter.Session(ctx, session.Snapshot())
	session.Start(ctx)

	that.handleMessages(ctx, conn, session)

	log.Info("WebSocket connection closed")
}

// Close drops every open connection; their handlers then close the sessions.
func (that *Server) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for conn := range that.conns {
		_ = conn.Close()
	}
}

// handleMessages - processes messages from the client until the connection fails.
func (that *Server) handleMessages(ctx context.Context, conn *connection, session *usecase.Session) {
	log := that.logger.With("method", "handleMessages", "session_id", session.ID())

	for {
		data, err := conn.Read()
		if err != nil {
			if !isNormalClose(err) {
				log.Warn("connection error", "error", err)
			}

			return
		}

		var msg proto.Message
		if err = json.Unmarshal(data, &msg); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			continue
		}

		if err = that.validate.Struct(&msg); err != nil {
			log.Warn("invalid message", "error", err)
			continue
		}

		handle, ok := that.handlers[msg.Action]
		if !ok {
			log.Warn("unknown action", "action", msg.Action)
			continue
		}

		if err = handle(ctx, session, &msg); err != nil {
			log.Debug("message ignored", "action", msg.Action, "error", err)
		}
	}
}

func (that *Server) track(conn *connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[conn] = struct{}{}
}

func (that *Server) untrack(conn *connection) {
	that.mu.Lock()
	delete(that.conns, conn)
	that.mu.Unlock()

	_ = conn.Close()
}

func isNormalClose(err error) bool {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return false
	}

	return closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway
}

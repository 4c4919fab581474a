package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type sessionCounter interface {
	Count() int
}

type Server struct {
	logger *slog.Logger
	engine *gin.Engine
}

// New - routes the board page, the health check, the stats and the websocket endpoint.
func New(logger *slog.Logger, ws http.Handler, sessions sessionCounter) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	handlers := NewHandlers(sessions)

	engine.GET("/", handlers.Index)
	engine.GET("/ping", handlers.Ping)
	engine.GET("/stats", handlers.Stats)
	engine.GET("/ws", gin.WrapH(ws))

	return &Server{
		logger: logger.With("component", "http"),
		engine: engine,
	}
}

func (that *Server) Handler() http.Handler {
	return that.engine
}

// Start - serves on port until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	log := that.logger.With("method", "Start")

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "port", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	log.Info("HTTP server stopped")

	return nil
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/config"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/service"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/telemetry"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/transport/redis"
	"github.com/rocketscienceinc/mechanical-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/mechanical-tictactoe/transport/console"
	"github.com/rocketscienceinc/mechanical-tictactoe/transport/rest"
	"github.com/rocketscienceinc/mechanical-tictactoe/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if conf.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, conf.Telemetry.ServiceName, os.Stderr)
		if err != nil {
			return fmt.Errorf("could not init tracer: %w", err)
		}

		defer func() {
			if err = shutdown(context.WithoutCancel(ctx)); err != nil {
				log.Error("could not shutdown tracer", "error", err)
			}
		}()
	}

	var observers []usecase.ListenerFactory

	if conf.Redis.Enabled {
		client, err := redis.Connect(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis: %w", err)
		}

		defer func() {
			if err = client.Close(); err != nil {
				log.Error("could not close redis client", "error", err)
			}
		}()

		publisher := redis.NewPublisher(logger, client, conf.Redis.Channel)
		observers = append(observers, func(sessionID string) usecase.Listener {
			return publisher.Listener(sessionID)
		})
	}

	bot := service.NewBotService(nil)
	games := usecase.NewGameManager(logger, bot, usecase.Options{
		Players:       conf.Game.Players(),
		ThinkingDelay: conf.Game.ThinkingDelay,
	}, observers...)
	defer games.Shutdown()

	if conf.Mode == config.ModeCLI {
		log.Info("Starting console game")

		return console.New(logger, games, os.Stdin, os.Stdout).Run(ctx)
	}

	wsServer := websocket.New(logger, games)
	defer wsServer.Close()

	log.Info("Starting HTTP server", "port", conf.HTTPPort)

	if err := rest.New(logger, wsServer, games).Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/mechanical-tictactoe/pkg/proto"
)

// Publisher fans session events out to a redis channel for external observers.
type Publisher struct {
	logger  *slog.Logger
	client  *redis.Client
	channel string
}

// Connect - dials redis at addr and checks the connection.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return conn, nil
}

func NewPublisher(logger *slog.Logger, client *redis.Client, channel string) *Publisher {
	return &Publisher{
		logger:  logger.With("component", "redis_publisher", "channel", channel),
		client:  client,
		channel: channel,
	}
}

// Send - publishes msg on the channel.
func (that *Publisher) Send(ctx context.Context, msg proto.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	receivers, err := that.client.Publish(ctx, that.channel, data).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event in Redis: %w", err)
	}

	that.logger.Debug("event published", "action", msg.Action, "session_id", msg.SessionID, "receivers", receivers)

	return nil
}

// Listener - session listener publishing every event of the session.
func (that *Publisher) Listener(sessionID string) *proto.Emitter {
	return proto.NewEmitter(sessionID, that, that.logger)
}

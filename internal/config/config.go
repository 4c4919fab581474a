package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/mechanical-tictactoe/internal/entity"
)

const (
	ModeWeb = "web"
	ModeCLI = "cli"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	Mode      string    `yaml:"mode" env:"MODE" env-default:"web" validate:"oneof=web cli"`
	HTTPPort  string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090" validate:"required,numeric"`
	Game      Game      `yaml:"game"`
	Redis     Redis     `yaml:"redis"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type Game struct {
	HumanMarker    string        `yaml:"human-marker" env:"GAME_HUMAN_MARKER" env-default:"O" validate:"required,len=1,excludesall=0123456789,nefield=OpponentMarker"`
	OpponentMarker string        `yaml:"opponent-marker" env:"GAME_OPPONENT_MARKER" env-default:"X" validate:"required,len=1,excludesall=0123456789"`
	ThinkingDelay  time.Duration `yaml:"thinking-delay" env:"GAME_THINKING_DELAY" env-default:"750ms" validate:"gte=0"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Channel string `yaml:"channel" env:"REDIS_CHANNEL" env-default:"tictactoe:events" validate:"required_if=Enabled true"`
}

type Telemetry struct {
	Enabled     bool   `yaml:"enabled" env:"TELEMETRY_ENABLED" env-default:"false"`
	ServiceName string `yaml:"service-name" env:"TELEMETRY_SERVICE_NAME" env-default:"mechanical-tictactoe"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads the file at path, applies env overrides and validates the result.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := config.Game.Players().Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Game) Players() entity.Players {
	return entity.Players{
		Human:    entity.Marker(that.HumanMarker),
		Opponent: entity.Marker(that.OpponentMarker),
	}
}

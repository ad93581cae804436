package config

import (
	"fmt"
	"time"

	"github.com/anchal00/llmafia/internal/poll"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings are process-wide knobs read from the environment (and .env).
type Settings struct {
	GamesDir        string        `env:"MAFIA_GAMES_DIR" envDefault:"games"`
	Database        string        `env:"MAFIA_DB"`
	Port            string        `env:"MAFIA_PORT" envDefault:"9000"`
	PollInterval    time.Duration `env:"MAFIA_POLL_INTERVAL" envDefault:"100ms"`
	PollMaxInterval time.Duration `env:"MAFIA_POLL_MAX_INTERVAL" envDefault:"1s"`
	LogLevel        string        `env:"MAFIA_LOG_LEVEL" envDefault:"info"`
}

// LoadSettings reads .env files when present and parses the environment.
func LoadSettings(envFiles ...string) (Settings, error) {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load(envFiles...)
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("config: parse env: %w", err)
	}
	if s.PollInterval <= 0 {
		return Settings{}, fmt.Errorf("config: MAFIA_POLL_INTERVAL must be positive")
	}
	if s.PollMaxInterval < s.PollInterval {
		s.PollMaxInterval = s.PollInterval
	}
	return s, nil
}

func (s Settings) Poll() poll.Settings {
	return poll.Settings{Interval: s.PollInterval, MaxInterval: s.PollMaxInterval}
}

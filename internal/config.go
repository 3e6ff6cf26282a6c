package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host      string `env:"HOST,required=true"`
	Port      int    `env:"PORT,required=true"`
	DebugPort int    `env:"DEBUG_PORT,required=true"`
	LogLevel  string `env:"LOG_LEVEL,required=true"`

	BufferSize           int `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int `env:"CONNECTION_BUFFER_SIZE,required=true"`

	HistoryLimit     int           `env:"HISTORY_LIMIT,required=true"`
	RetentionWindow  time.Duration `env:"RETENTION_WINDOW,required=true"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL,required=true"`
	HealthInterval   time.Duration `env:"HEALTH_INTERVAL,required=true"`
	MaxContentLength int           `env:"MAX_CONTENT_LENGTH,required=true"`
	SearchLimit      int           `env:"SEARCH_LIMIT,required=true"`

	// BanPolicy selects the identity bans are keyed on: "connection"
	// (default) or "nickname".
	BanPolicy       string `env:"BAN_POLICY"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,required=true"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

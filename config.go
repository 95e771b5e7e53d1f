package secgate

import (
	"errors"
	"os"
	"strconv"
)

// Config aggregates gateway configuration read from the environment.
type Config struct {
	// EncryptionKey is the base64-encoded 32-byte vault key.
	// Required: there is no fallback key.
	EncryptionKey string

	// Redis connectivity for the distributed stores. Empty URL means
	// the in-memory stores are used.
	RedisURL      string
	RedisPassword string
	RedisDB       int
}

// ErrMissingEncryptionKey is returned when SECGATE_ENCRYPTION_KEY is
// unset. The gateway refuses to start without a real key rather than
// fall back to a guessable default.
var ErrMissingEncryptionKey = errors.New("SECGATE_ENCRYPTION_KEY is not set")

// LoadConfig reads gateway configuration from environment variables.
func LoadConfig() (Config, error) {
	cfg := Config{
		EncryptionKey: os.Getenv("SECGATE_ENCRYPTION_KEY"),
		RedisURL:      os.Getenv("SECGATE_REDIS_URL"),
		RedisPassword: os.Getenv("SECGATE_REDIS_PASSWORD"),
		RedisDB:       getInt("SECGATE_REDIS_DB", 0),
	}

	if cfg.EncryptionKey == "" {
		return Config{}, ErrMissingEncryptionKey
	}

	return cfg, nil
}

func getInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	BaseURL     string        `env:"LIBRARY_BASE_URL, default=http://localhost:8000/api/v1"`
	Env         string        `env:"ENV,              default=development"`
	LogLevel    string        `env:"LOG_LEVEL,        default=info"`
	LogPretty   bool          `env:"LOG_PRETTY,       default=true"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,     default=30s"`

	// TokenStore selects the durable token backend: "file" or "redis".
	TokenStore string `env:"TOKEN_STORE, default=file"`
	TokenFile  string `env:"TOKEN_FILE"`
	RoutesFile string `env:"ROUTES_FILE"`

	Redis RedisConfig
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
	Key  string `env:"REDIS_KEY,  default=library:token"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}
	return &cfg
}

// defaultTokenFile resolves the per-user token location, falling back
// to the working directory when no config dir is available.
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".library-token"
	}
	return filepath.Join(dir, "library", "token")
}

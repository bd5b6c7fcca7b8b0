// internal/config/config.go
//
// Process configuration: a .env file (development convenience) layered under
// real environment variables, parsed into one typed struct.

package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable the server reads from the environment.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	Environment  string `env:"NODE_ENV" envDefault:"development"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/wordchain.db"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	// Auth
	CookieName     string `env:"COOKIE_NAME" envDefault:"wordchain_token"`
	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`

	// Dictionary: optional file override for the embedded default list.
	WordsFile string `env:"WORDS_FILE"`

	// Daily challenge
	DailySalt string `env:"DAILY_SALT" envDefault:"local_dev_salt"`

	// Win recorder (ledger relayer). Disabled when EngineURL is empty.
	EngineURL           string        `env:"ENGINE_URL"`
	EngineChainID       string        `env:"ENGINE_CHAIN_ID" envDefault:"84532"`
	EngineContract      string        `env:"ENGINE_CONTRACT"`
	EngineAccessToken   string        `env:"ENGINE_ACCESS_TOKEN"`
	EngineWalletAddress string        `env:"ENGINE_WALLET_ADDRESS"`
	EngineTimeout       time.Duration `env:"ENGINE_TIMEOUT" envDefault:"10s"`
}

// Load reads .env (if present) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Production reports whether the server runs with production cookie/CORS
// hardening.
func (c *Config) Production() bool { return c.Environment == "production" }

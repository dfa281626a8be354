package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const envProduction = "production"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort           string        `env:"HTTP_PORT" envDefault:"9000"`
	DatabaseURL        string        `env:"DATABASE_URL,required,notEmpty"`
	AutoMigrate        bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	AppEnv             string        `env:"APP_ENV" envDefault:"development"`
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"5h"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	TrustedProxies     []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	TokenIssuePerMin   int           `env:"TOKEN_ISSUE_RATE_PER_MINUTE" envDefault:"20"`
	TokenIssueBurst    int           `env:"TOKEN_ISSUE_BURST" envDefault:"5"`
	MetricsEnabled     bool          `env:"METRICS_ENABLED" envDefault:"true"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction indica si las cookies deben salir con Secure y SameSite=None.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), envProduction)
}

package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port   string `env:"PORT" env-default:"8080"`
	AppEnv string `env:"APP_ENV" env-default:"development"`

	MongoURI          string `env:"MONGODB_URI" env-default:"mongodb://127.0.0.1:27017"`
	MongoDatabase     string `env:"MONGODB_DATABASE" env-default:"wanderlust"`
	MongoTransactions bool   `env:"MONGODB_TRANSACTIONS" env-default:"false"`

	SessionSecret string        `env:"JWT_SECRET" env-required:"true"`
	SessionTTL    time.Duration `env:"SESSION_TTL" env-default:"168h"`
	SecureCookies bool          `env:"SECURE_COOKIES" env-default:"false"`

	// optional integrations, disabled when empty
	GCSBucket          string `env:"GCS_BUCKET"`
	GCSCredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	NatsURL            string `env:"NATS_URL"`
	SMTPHost           string `env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	SMTPPort           int    `env:"SMTP_PORT" env-default:"587"`
	EmailFrom          string `env:"EMAIL_FROM"`
	EmailPass          string `env:"EMAIL_PASS"`

	AllowedOrigins    []string `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:8080"`
	ReconcileSchedule string   `env:"RECONCILE_SCHEDULE" env-default:"@every 1h"`
	LoginRateLimit    float64  `env:"LOGIN_RATE_LIMIT" env-default:"0.2"`
	LoginBurst        int      `env:"LOGIN_BURST" env-default:"5"`
}

// Load reads .env (if present) into the process environment, then fills Config from it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded:", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

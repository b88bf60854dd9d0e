package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"classroom-notes-go/db"
)

const (
	BackendDynamo = "dynamodb"
	BackendRedis  = "redis"
)

type Config struct {
	App   AppConfig
	Store StoreConfig
	AWS   AWSConfig
	Redis RedisConfig
}

type AppConfig struct {
	Environment        string
	Port               string
	LogFile            string
	SessionSecret      string
	CorsAllowedOrigins []string
}

type StoreConfig struct {
	Backend string
	Table   string
}

type AWSConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string
}

type RedisConfig struct {
	URL string
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Load reads envFile (if it exists) into the environment and builds a Config.
// An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment:        getEnv("APP_ENV", "development"),
			Port:               getEnv("PORT", "8080"),
			LogFile:            getEnv("LOG_FILE", "logs/app.log"),
			SessionSecret:      getEnv("SESSION_SECRET", ""),
			CorsAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", BackendDynamo)),
			Table:   getEnv("NOTES_TABLE", db.DefaultTableName),
		},
		AWS: AWSConfig{
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Region:          getEnv("AWS_REGION", ""),
			Endpoint:        getEnv("DYNAMODB_ENDPOINT", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		},
	}

	if cfg.App.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.App.SessionSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails when the selected store backend is missing settings.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendDynamo:
		var missing []string
		if c.AWS.AccessKeyID == "" {
			missing = append(missing, "AWS_ACCESS_KEY_ID")
		}
		if c.AWS.SecretAccessKey == "" {
			missing = append(missing, "AWS_SECRET_ACCESS_KEY")
		}
		if c.AWS.Region == "" {
			missing = append(missing, "AWS_REGION")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
		}
		if c.Store.Table == "" {
			return errors.New("NOTES_TABLE must not be empty")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("missing required configuration: REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSecret() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	APIKey  string `env:"LLAMA_CLOUD_API_KEY"`
	BaseURL string `env:"LLAMA_CLOUD_BASE_URL" envDefault:"https://api.cloud.llamaindex.ai"`

	ParseTimeoutSeconds int `env:"PARSE_TIMEOUT_SECONDS" envDefault:"2000"`
	PollIntervalSeconds int `env:"POLL_INTERVAL_SECONDS" envDefault:"1"`

	PremiumMode    bool `env:"PREMIUM_MODE" envDefault:"true"`
	ContinuousMode bool `env:"CONTINUOUS_MODE" envDefault:"true"`

	Concurrency int `env:"CONCURRENCY" envDefault:"1"`

	CacheDir      string `env:"CACHE_DIR"`
	CacheDisabled bool   `env:"CACHE_DISABLED" envDefault:"false"`

	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
}

// LoadEnvFile loads environment variables from a .env file. With an empty
// path the default ./.env is loaded when present.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, continuing with environment variables")
		}
		return nil
	}

	log.Printf("loading env from file %s", path)
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading .env file '%s': %w", path, err)
	}
	return nil
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.CacheDir == "" {
		cacheRoot, err := os.UserCacheDir()
		if err != nil {
			cacheRoot = os.TempDir()
		}
		cfg.CacheDir = filepath.Join(cacheRoot, "pdf2x")
	}

	return &cfg, nil
}

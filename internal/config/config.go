package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/owlingo/console-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	GenerationConnectorCfg GenerationConnectorConfig `envPrefix:"GENERATION_"`
	SpeechConnectorCfg     SpeechConnectorConfig     `envPrefix:"SPEECH_"`
	CatalogConnectorCfg    CatalogConnectorConfig    `envPrefix:"CATALOG_"`
	CallbackConnectorCfg   CallbackConnectorConfig   `envPrefix:"CALLBACK_"`

	// Wizard configuration
	WizardCfg WizardConfig `envPrefix:"WIZARD_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mix-skill default options (loaded from JSON file)
	MixOptions map[string]any

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Environment (set from flag, not from env var)
	Environment string
}

// WizardConfig holds wizard session behavior settings
type WizardConfig struct {
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	DefaultVoice string        `env:"DEFAULT_VOICE,notEmpty"`
}

type GenerationConnectorConfig struct {
	HTTPClientConfig
	GenerateEndpoint string               `env:"GENERATE_ENDPOINT,notEmpty"`
	StreamEndpoint   string               `env:"STREAM_ENDPOINT,notEmpty"`
	StreamTimeout    time.Duration        `env:"STREAM_TIMEOUT" envDefault:"10m"`
	Retry            pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type SpeechConnectorConfig struct {
	HTTPClientConfig
	SynthesizeEndpoint string               `env:"SYNTHESIZE_ENDPOINT,notEmpty"`
	Retry              pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type CatalogConnectorConfig struct {
	HTTPClientConfig
	SourcesEndpoint string               `env:"SOURCES_ENDPOINT,notEmpty"`
	UnitsEndpoint   string               `env:"UNITS_ENDPOINT,notEmpty"`
	SkillsEndpoint  string               `env:"SKILLS_ENDPOINT,notEmpty"`
	CacheTTL        time.Duration        `env:"CACHE_TTL" envDefault:"5m"`
	Retry           pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT,notEmpty"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT,notEmpty"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE,notEmpty"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT,notEmpty"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT,notEmpty"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

// mixOptionsFile represents the structure of mix_options.json
type mixOptionsFile struct {
	Options map[string]any `json:"options"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Load mix-skill defaults from JSON file
	if err := loadMixOptions(cfg); err != nil {
		return nil, fmt.Errorf("load mix options: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.WizardCfg.SessionTTL < time.Minute || cfg.WizardCfg.SessionTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("WIZARD_SESSION_TTL must be between 1m and 24h, got %s", cfg.WizardCfg.SessionTTL))
	}

	if cfg.GenerationConnectorCfg.StreamTimeout < time.Minute {
		errors = append(errors, fmt.Sprintf("GENERATION_STREAM_TIMEOUT must be at least 1m, got %s", cfg.GenerationConnectorCfg.StreamTimeout))
	}

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", errors[0])
	}

	return nil
}

var defaultMixOptions = map[string]any{
	"item_count":     5,
	"generate_audio": false,
	"difficulty":     "medium",
}

func loadMixOptions(cfg *Config) error {
	configPath := filepath.Join("internal", "config", "mix_options.json")

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("Warning: mix options file not found at %s, using defaults\n", configPath)
		cfg.MixOptions = defaultMixOptions
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read mix options file: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("mix options file is empty: %s", configPath)
	}

	var optionsData mixOptionsFile
	if err := json.Unmarshal(data, &optionsData); err != nil {
		return fmt.Errorf("parse mix options JSON: %w", err)
	}

	if len(optionsData.Options) == 0 {
		return fmt.Errorf("mix options file contains no options: %s", configPath)
	}

	cfg.MixOptions = optionsData.Options

	fmt.Printf("Loaded %d mix options from %s\n", len(cfg.MixOptions), configPath)
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}

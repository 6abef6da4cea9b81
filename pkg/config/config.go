package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Identity provider configuration
	Provider ProviderConfig `yaml:"provider"`

	// Token blacklist configuration
	Blacklist BlacklistConfig `yaml:"blacklist"`

	// Ollama AI assistant configuration
	Ollama OllamaConfig `yaml:"ollama"`

	// CORS allowed origins
	CORSOrigins []string `yaml:"cors_origins"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`
}

// ProviderConfig holds identity provider connection settings
type ProviderConfig struct {
	URL            string        `yaml:"url"`
	AnonKey        string        `yaml:"anon_key"`
	ServiceRoleKey string        `yaml:"service_role_key"`
	Timeout        time.Duration `yaml:"timeout"`

	// Redirect targets embedded in provider-hosted flows
	ResetRedirectURL string `yaml:"reset_redirect_url"`
	OAuthRedirectURL string `yaml:"oauth_redirect_url"`
}

// BlacklistConfig holds token blacklist storage settings
type BlacklistConfig struct {
	// Type selects the store: memory, redis, or postgres
	Type string `yaml:"type"`

	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	PostgresURL string `yaml:"postgres_url"`

	// TTL expires blacklist entries; zero keeps them forever
	TTL time.Duration `yaml:"ttl"`
}

// OllamaConfig holds the local AI assistant settings
type OllamaConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	DefaultModel string        `yaml:"default_model"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// LoadConfig loads configuration from environment variables, with an optional
// YAML file overlay named by GROUPIFY_CONFIG_FILE. Environment variables win
// over file values.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := getEnv("GROUPIFY_CONFIG_FILE", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		Provider: ProviderConfig{
			Timeout: 5 * time.Second,
		},
		Blacklist: BlacklistConfig{
			Type:     "memory",
			RedisURL: "redis://localhost:6379/0",
		},
		Ollama: OllamaConfig{
			Endpoint:     "http://localhost:11434",
			DefaultModel: "llama2",
			Timeout:      2 * time.Minute,
		},
		CORSOrigins: []string{"*"},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}
}

// applyEnv overlays GROUPIFY_* environment variables onto the config.
func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("GROUPIFY_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("GROUPIFY_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvDuration("GROUPIFY_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("GROUPIFY_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = getEnvDuration("GROUPIFY_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = getEnvDuration("GROUPIFY_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.HealthPort = getEnv("GROUPIFY_HEALTH_PORT", cfg.Server.HealthPort)

	cfg.Provider.URL = getEnv("GROUPIFY_PROVIDER_URL", cfg.Provider.URL)
	cfg.Provider.AnonKey = getEnv("GROUPIFY_PROVIDER_ANON_KEY", cfg.Provider.AnonKey)
	cfg.Provider.ServiceRoleKey = getEnv("GROUPIFY_PROVIDER_SERVICE_ROLE_KEY", cfg.Provider.ServiceRoleKey)
	cfg.Provider.Timeout = getEnvDuration("GROUPIFY_PROVIDER_TIMEOUT", cfg.Provider.Timeout)
	cfg.Provider.ResetRedirectURL = getEnv("GROUPIFY_RESET_REDIRECT_URL", cfg.Provider.ResetRedirectURL)
	cfg.Provider.OAuthRedirectURL = getEnv("GROUPIFY_OAUTH_REDIRECT_URL", cfg.Provider.OAuthRedirectURL)

	cfg.Blacklist.Type = getEnv("GROUPIFY_BLACKLIST_TYPE", cfg.Blacklist.Type)
	cfg.Blacklist.RedisURL = getEnv("GROUPIFY_REDIS_URL", cfg.Blacklist.RedisURL)
	cfg.Blacklist.RedisPassword = getEnv("GROUPIFY_REDIS_PASSWORD", cfg.Blacklist.RedisPassword)
	cfg.Blacklist.RedisDB = getEnvInt("GROUPIFY_REDIS_DB", cfg.Blacklist.RedisDB)
	cfg.Blacklist.PostgresURL = getEnv("GROUPIFY_POSTGRES_URL", cfg.Blacklist.PostgresURL)
	cfg.Blacklist.TTL = getEnvDuration("GROUPIFY_BLACKLIST_TTL", cfg.Blacklist.TTL)

	cfg.Ollama.Endpoint = getEnv("GROUPIFY_OLLAMA_ENDPOINT", cfg.Ollama.Endpoint)
	cfg.Ollama.DefaultModel = getEnv("GROUPIFY_OLLAMA_MODEL", cfg.Ollama.DefaultModel)
	cfg.Ollama.Timeout = getEnvDuration("GROUPIFY_OLLAMA_TIMEOUT", cfg.Ollama.Timeout)

	if origins := getEnv("GROUPIFY_CORS_ORIGINS", ""); origins != "" {
		parts := strings.Split(origins, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	}

	cfg.Observability.LogLevel = getEnv("GROUPIFY_LOG_LEVEL", cfg.Observability.LogLevel)
	cfg.Observability.MetricsEnabled = getEnvBool("GROUPIFY_METRICS_ENABLED", cfg.Observability.MetricsEnabled)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Provider.URL == "" {
		return fmt.Errorf("provider URL is required")
	}
	if c.Provider.AnonKey == "" {
		return fmt.Errorf("provider anon key is required")
	}

	switch c.Blacklist.Type {
	case "memory":
	case "redis":
		if c.Blacklist.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis blacklist")
		}
	case "postgres":
		if c.Blacklist.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres blacklist")
		}
	default:
		return fmt.Errorf("invalid blacklist type: %s (must be memory, redis, or postgres)", c.Blacklist.Type)
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

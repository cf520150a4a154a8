package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads .env (if present), config.yaml and the environment, in
// increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AddConfigPath("/app/configs")

	return load(v)
}

// LoadFile is Load for an explicit config file path.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	v.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	v.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	v.BindEnv("database.driver", "DATABASE_DRIVER", "APP_DATABASE_DRIVER")
	v.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	v.BindEnv("queue.url", "NATS_URL", "APP_QUEUE_URL")
	v.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY", "APP_OPENAI_API_KEY")
	v.BindEnv("google.client_id", "GOOGLE_CLIENT_ID", "APP_GOOGLE_CLIENT_ID")
	v.BindEnv("google.client_secret", "GOOGLE_CLIENT_SECRET", "APP_GOOGLE_CLIENT_SECRET")
	v.BindEnv("weather.api_key", "WEATHER_API_KEY", "APP_WEATHER_API_KEY")
	v.BindEnv("vault.token", "VAULT_TOKEN", "APP_VAULT_TOKEN")
	v.BindEnv("vault.address", "VAULT_ADDR", "APP_VAULT_ADDRESS")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vox-assistant")
	v.SetDefault("app.environment", "development")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.body_limit", 1<<20)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.key_prefix", "vox:")
	v.SetDefault("queue.driver", "nats")

	v.SetDefault("jwt.issuer", "vox-assistant")
	v.SetDefault("jwt.access_token_duration", 24*time.Hour)

	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.speech_model", "tts-1")
	v.SetDefault("openai.voice", "alloy")

	v.SetDefault("weather.daily_limit", 100)
	v.SetDefault("weather.default_location", "London")
	v.SetDefault("weather.cache_ttl", 10*time.Minute)

	v.SetDefault("assistant.call_timeout", 10*time.Second)
	v.SetDefault("assistant.confirmation_ttl", 5*time.Minute)
	v.SetDefault("assistant.history_limit", 10)

	v.SetDefault("vault.mount", "secret")
	v.SetDefault("vault.path", "vox-assistant")

	v.SetDefault("opentelemetry.service_name", "vox-assistant")
	v.SetDefault("opentelemetry.jaeger.sampler_param", 1.0)

	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.failure_threshold", 5)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "Authorization"})
	v.SetDefault("cors.max_age", 3600)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Weather.DailyLimit < 0 {
		return fmt.Errorf("config: weather.daily_limit must not be negative")
	}
	if c.Assistant.CallTimeout <= 0 {
		return fmt.Errorf("config: assistant.call_timeout must be positive")
	}
	if c.Vault.Enabled && c.Vault.Address == "" {
		return fmt.Errorf("config: vault.address is required when vault is enabled")
	}
	return nil
}

// ApplySecrets overrides provider credentials with values read from Vault.
// Unknown or empty keys are ignored.
func (c *Config) ApplySecrets(secrets map[string]string) {
	targets := map[string]*string{
		"database_url":         &c.Database.URL,
		"redis_url":            &c.Redis.URL,
		"jwt_secret":           &c.JWT.Secret,
		"openai_api_key":       &c.OpenAI.APIKey,
		"google_client_id":     &c.Google.ClientID,
		"google_client_secret": &c.Google.ClientSecret,
		"weather_api_key":      &c.Weather.APIKey,
	}
	for key, value := range secrets {
		if dst, ok := targets[key]; ok && value != "" {
			*dst = value
		}
	}
}

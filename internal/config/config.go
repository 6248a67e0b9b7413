package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	JWTSecret           string
	LeaderboardCacheTTL time.Duration
	GenerationTimeout   time.Duration
	WorkerCount         int
	QueueSize           int
	OpenAIAPIKey        string
	OpenAIModel         string
	GatewayAPIKey       string
	GatewayBaseURL      string
	GatewayModel        string
	AIMaxTokens         int
	AITemperature       float64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HACKJUDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "HackJudge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("leaderboard.cache_ttl", "2m")
	v.SetDefault("generation.timeout", "90s")
	v.SetDefault("worker.count", 4)
	v.SetDefault("worker.queue_size", 64)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("gateway.model", "openai/gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 2000)
	v.SetDefault("ai.temperature", 0.7)

	ttl, err := time.ParseDuration(v.GetString("leaderboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid leaderboard cache ttl: %w", err)
	}

	generationTimeout, err := time.ParseDuration(v.GetString("generation.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid generation timeout: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		LeaderboardCacheTTL: ttl,
		GenerationTimeout:   generationTimeout,
		WorkerCount:         v.GetInt("worker.count"),
		QueueSize:           v.GetInt("worker.queue_size"),
		OpenAIAPIKey:        v.GetString("openai.api_key"),
		OpenAIModel:         v.GetString("openai.model"),
		GatewayAPIKey:       v.GetString("gateway.api_key"),
		GatewayBaseURL:      v.GetString("gateway.base_url"),
		GatewayModel:        v.GetString("gateway.model"),
		AIMaxTokens:         v.GetInt("ai.max_tokens"),
		AITemperature:       v.GetFloat64("ai.temperature"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}

	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}

	return cfg, nil
}

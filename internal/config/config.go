// Package config provides configuration management for the application.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Sender     SenderConfig     `mapstructure:"sender"`
	Executor   ExecutorConfig   `mapstructure:"executor"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Draft      DraftConfig      `mapstructure:"draft"`
	Middleware MiddlewareConfig `mapstructure:"middleware"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SenderConfig selects and configures the outbound channel sender.
// Kind is either "webhook" or "amqp".
type SenderConfig struct {
	Kind    string        `mapstructure:"kind"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	AMQP    AMQPConfig    `mapstructure:"amqp"`
}

type WebhookConfig struct {
	URL     string `mapstructure:"url"`
	AuthKey string `mapstructure:"auth_key"`
	Timeout int    `mapstructure:"timeout"`
}

type AMQPConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

// ExecutorConfig bounds a campaign execution pass.
type ExecutorConfig struct {
	Concurrency    int                  `mapstructure:"concurrency"`
	SendTimeout    int                  `mapstructure:"send_timeout"`
	BatchSize      int                  `mapstructure:"batch_size"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"`
	Timeout          int     `mapstructure:"timeout"`
	FailureRatio     float64 `mapstructure:"failure_ratio"`
	ConsecutiveFails uint32  `mapstructure:"consecutive_fails"`
}

type SchedulerConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

// DraftConfig lists the AI draft provider endpoints keyed by provider id.
type DraftConfig struct {
	Providers []DraftProviderConfig `mapstructure:"providers"`
}

type DraftProviderConfig struct {
	ID      string `mapstructure:"id"`
	URL     string `mapstructure:"url"`
	AuthKey string `mapstructure:"auth_key"`
	Timeout int    `mapstructure:"timeout"`
}

type MiddlewareConfig struct {
	RateLimit      int      `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	EnableCORS     bool     `mapstructure:"enable_cors"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", 10)
	viper.SetDefault("server.write_timeout", 10)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("sender.kind", "webhook")
	viper.SetDefault("sender.webhook.timeout", 30)
	viper.SetDefault("sender.amqp.queue", "campaign_sends")
	viper.SetDefault("executor.concurrency", 4)
	viper.SetDefault("executor.send_timeout", 15)
	viper.SetDefault("executor.batch_size", 10)
	viper.SetDefault("executor.circuit_breaker.max_requests", 3)
	viper.SetDefault("executor.circuit_breaker.interval", 60)
	viper.SetDefault("executor.circuit_breaker.timeout", 60)
	viper.SetDefault("executor.circuit_breaker.failure_ratio", 0.6)
	viper.SetDefault("executor.circuit_breaker.consecutive_fails", 5)
	viper.SetDefault("scheduler.interval_minutes", 1)
	viper.SetDefault("middleware.rate_limit", 100)
	viper.SetDefault("middleware.rate_limit_burst", 1000)
	viper.SetDefault("middleware.enable_cors", true)
	viper.SetDefault("middleware.allowed_origins", []string{"*"})

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// GetDSN returns PostgreSQL connection string.
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

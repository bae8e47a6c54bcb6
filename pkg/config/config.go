package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	RateLimit struct {
		Enabled bool          `yaml:"enabled"`
		RPS     float64       `yaml:"rps"`
		Burst   int           `yaml:"burst"`
		TTL     time.Duration `yaml:"ttl"`
	} `yaml:"ratelimit"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		InitSchema       bool          `yaml:"init_schema"`
	} `yaml:"clickhouse"`
	Postgres struct {
		DSN             string        `yaml:"dsn"`
		MaxConns        int32         `yaml:"max_conns"`
		MinConns        int32         `yaml:"min_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	} `yaml:"postgres"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Topics       struct {
			Alerts     string `yaml:"alerts"`
			Thresholds string `yaml:"thresholds"`
		} `yaml:"topics"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Queue struct {
		Enabled      bool          `yaml:"enabled"`
		Workers      int           `yaml:"workers"`
		PollInterval time.Duration `yaml:"poll_interval"`
		MaxRetries   int           `yaml:"max_retries"`
	} `yaml:"queue"`
	Forecast struct {
		HistoricalDays   int     `yaml:"historical_days"`
		PredictionDays   int     `yaml:"prediction_days"`
		Algorithm        string  `yaml:"algorithm"`
		AlertThreshold   float64 `yaml:"alert_threshold"`
		ConfidenceLevel  float64 `yaml:"confidence_level"`
		MovingAvgWindow  int     `yaml:"moving_avg_window"`
		SmoothingFactor  float64 `yaml:"smoothing_factor"`
		FleetConcurrency int     `yaml:"fleet_concurrency"`
	} `yaml:"forecast"`
	Notify struct {
		Cooldown      time.Duration `yaml:"cooldown"`
		BufferSize    int           `yaml:"buffer_size"`
		FlushInterval time.Duration `yaml:"flush_interval"`
		Email         struct {
			Enabled    bool     `yaml:"enabled"`
			Host       string   `yaml:"host"`
			Port       int      `yaml:"port"`
			Username   string   `yaml:"username"`
			Password   string   `yaml:"password"`
			From       string   `yaml:"from"`
			Recipients []string `yaml:"recipients"`
		} `yaml:"email"`
		Webhook struct {
			Enabled bool          `yaml:"enabled"`
			URL     string        `yaml:"url"`
			Timeout time.Duration `yaml:"timeout"`
			Retries int           `yaml:"retries"`
		} `yaml:"webhook"`
	} `yaml:"notify"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("SMTP_PASSWORD"); v != "" {
		c.Notify.Email.Password = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Kafka.Topics.Alerts == "" {
		c.Kafka.Topics.Alerts = "oee.alerts"
	}
	if c.Kafka.Topics.Thresholds == "" {
		c.Kafka.Topics.Thresholds = "oee.thresholds"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "oee"
	}

	f := &c.Forecast
	if f.HistoricalDays == 0 {
		f.HistoricalDays = 30
	}
	if f.PredictionDays == 0 {
		f.PredictionDays = 14
	}
	if f.Algorithm == "" {
		f.Algorithm = "linear"
	}
	if f.AlertThreshold == 0 {
		f.AlertThreshold = 65
	}
	if f.ConfidenceLevel == 0 {
		f.ConfidenceLevel = 95
	}
	if f.MovingAvgWindow == 0 {
		f.MovingAvgWindow = 7
	}
	if f.SmoothingFactor == 0 {
		f.SmoothingFactor = 0.3
	}
	if f.FleetConcurrency == 0 {
		f.FleetConcurrency = 8
	}

	if c.Notify.Cooldown == 0 {
		c.Notify.Cooldown = time.Hour
	}
	if c.Notify.BufferSize == 0 {
		c.Notify.BufferSize = 256
	}
	if c.Notify.FlushInterval == 0 {
		c.Notify.FlushInterval = 2 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	switch c.Forecast.Algorithm {
	case "linear", "moving_avg", "exp_smoothing":
	default:
		return fmt.Errorf("forecast.algorithm must be linear, moving_avg or exp_smoothing, got '%s'", c.Forecast.Algorithm)
	}
	if a := c.Forecast.SmoothingFactor; a <= 0 || a > 1 {
		return fmt.Errorf("forecast.smoothing_factor must be in (0,1], got %v", a)
	}
	if c.Forecast.PredictionDays < 1 {
		return fmt.Errorf("forecast.prediction_days must be positive")
	}
	if c.Notify.Email.Enabled && (c.Notify.Email.Host == "" || c.Notify.Email.From == "") {
		return fmt.Errorf("notify.email requires host and from")
	}
	if c.Notify.Webhook.Enabled && c.Notify.Webhook.URL == "" {
		return fmt.Errorf("notify.webhook.url is required when enabled")
	}
	if c.Queue.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("queue requires redis.enabled")
	}
	return nil
}

package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env            string               `mapstructure:"env"`
	Server         ServerConfig         `mapstructure:"http_server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Payment        PaymentConfig        `mapstructure:"payment"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Events         EventsConfig         `mapstructure:"events"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Observability  ObservabilityConfig  `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

// PaymentConfig holds the Midtrans credentials and the donation fee table.
// Fee values are either flat amounts ("4000") or percentages ("2.9%").
type PaymentConfig struct {
	ServerKey       string            `mapstructure:"server_key" validate:"required"`
	IsProduction    bool              `mapstructure:"is_production"`
	IsSanitized     bool              `mapstructure:"is_sanitized"`
	Is3DS           bool              `mapstructure:"is_3ds"`
	SnapURL         string            `mapstructure:"snap_url"`
	APIURL          string            `mapstructure:"api_url"`
	Timeout         time.Duration     `mapstructure:"timeout"`
	MinimumDonation int64             `mapstructure:"minimum_donation"`
	Fees            map[string]string `mapstructure:"fees"`
}

type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addrs       []string      `mapstructure:"addrs"`
	Password    string        `mapstructure:"password"`
	UseCluster  bool          `mapstructure:"use_cluster"`
	TerminalTTL time.Duration `mapstructure:"terminal_ttl"`
}

type EventsConfig struct {
	KafkaEnabled bool          `mapstructure:"kafka_enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type ReconciliationConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
	BatchSize  int           `mapstructure:"batch_size"`
	MaxWorkers int           `mapstructure:"max_workers"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// DefaultFees mirrors the fee table the platform launched with.
func DefaultFees() map[string]string {
	return map[string]string{
		"shopeepay":    "2%",
		"other_qris":   "0.7%",
		"bca_va":       "4000",
		"bni_va":       "4000",
		"mandiri_bill": "4000",
		"permata_va":   "4000",
		"credit_card":  "2.9%",
	}
}

// LoadConfigFromEnv builds the configuration for container deployments.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("HTTP_BASE_URL", ""),
			AllowedOrigins:    getEnv("HTTP_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DB_SOURCE", ""),
		},
		Payment: PaymentConfig{
			ServerKey:       getEnv("MIDTRANS_SERVER_KEY", ""),
			IsProduction:    getEnvAsBool("MIDTRANS_IS_PRODUCTION", false),
			IsSanitized:     getEnvAsBool("MIDTRANS_IS_SANITIZED", true),
			Is3DS:           getEnvAsBool("MIDTRANS_IS_3DS", true),
			SnapURL:         getEnv("MIDTRANS_SNAP_URL", ""),
			APIURL:          getEnv("MIDTRANS_API_URL", ""),
			Timeout:         getEnvAsDuration("MIDTRANS_TIMEOUT", 15*time.Second),
			MinimumDonation: int64(getEnvAsInt("DONATION_MINIMUM", 10000)),
			Fees:            getEnvAsFees("DONATION_FEES"),
		},
		Cache: CacheConfig{
			Enabled:     getEnvAsBool("CACHE_ENABLED", false),
			Addrs:       getEnvAsList("CACHE_ADDRS"),
			Password:    getEnv("CACHE_PASSWORD", ""),
			UseCluster:  getEnvAsBool("CACHE_USE_CLUSTER", false),
			TerminalTTL: getEnvAsDuration("CACHE_TERMINAL_TTL", 24*time.Hour),
		},
		Events: EventsConfig{
			KafkaEnabled: getEnvAsBool("EVENTS_KAFKA_ENABLED", false),
			Brokers:      getEnvAsList("EVENTS_KAFKA_BROKERS"),
			Topic:        getEnv("EVENTS_KAFKA_TOPIC", "donation-events"),
			WriteTimeout: getEnvAsDuration("EVENTS_KAFKA_WRITE_TIMEOUT", 10*time.Second),
		},
		Reconciliation: ReconciliationConfig{
			Interval:   getEnvAsDuration("RECONCILE_INTERVAL", 5*time.Minute),
			StaleAfter: getEnvAsDuration("RECONCILE_STALE_AFTER", 30*time.Minute),
			BatchSize:  getEnvAsInt("RECONCILE_BATCH_SIZE", 100),
			MaxWorkers: getEnvAsInt("RECONCILE_MAX_WORKERS", 4),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAsFees parses "bca_va=4000,shopeepay=2%" and falls back to DefaultFees.
func getEnvAsFees(key string) map[string]string {
	entries := getEnvAsList(key)
	if len(entries) == 0 {
		return DefaultFees()
	}
	fees := make(map[string]string, len(entries))
	for _, entry := range entries {
		method, rule, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		fees[strings.ToLower(strings.TrimSpace(method))] = strings.TrimSpace(rule)
	}
	return fees
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Payment.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("payment config: %v", err))
	}

	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("cache config: %v", err))
	}

	if err := c.Events.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("events config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	if c.AllowedOrigins == "" {
		return []string{"*"}
	}
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *PaymentConfig) Validate() error {
	if c.ServerKey == "" {
		return errors.New("server_key is required")
	}
	if len(c.Fees) == 0 {
		return errors.New("at least one payment method fee must be configured")
	}
	if c.MinimumDonation < 0 {
		return errors.New("minimum_donation cannot be negative")
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	if c.Enabled && len(c.Addrs) == 0 {
		return errors.New("addrs is required when cache is enabled")
	}
	return nil
}

func (c *EventsConfig) Validate() error {
	if c.KafkaEnabled && len(c.Brokers) == 0 {
		return errors.New("brokers is required when kafka is enabled")
	}
	if c.KafkaEnabled && c.Topic == "" {
		return errors.New("topic is required when kafka is enabled")
	}
	return nil
}

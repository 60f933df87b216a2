// Package config loads service settings from an optional YAML file, .env and POS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fjod/go_pos/internal/circuitbreaker"
	"github.com/fjod/go_pos/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig            `mapstructure:"server"`
	Log      logger.Config           `mapstructure:"log"`
	Store    StoreConfig             `mapstructure:"store"`
	Redis    RedisConfig             `mapstructure:"redis"`
	Catalog  CatalogConfig           `mapstructure:"catalog"`
	SQLite   SQLiteConfig            `mapstructure:"sqlite"`
	Sheets   SheetsConfig            `mapstructure:"sheets"`
	Email    EmailConfig             `mapstructure:"email"`
	SMTP     SMTPConfig              `mapstructure:"smtp"`
	MongoDB  MongoDBConfig           `mapstructure:"mongodb"`
	Kafka    KafkaConfig             `mapstructure:"kafka"`
	OrderLog OrderLogConfig          `mapstructure:"orderlog"`
	Checkout CheckoutConfig          `mapstructure:"checkout"`
	Session  SessionConfig           `mapstructure:"session"`
	CORS     CORSConfig              `mapstructure:"cors"`
	Breaker  circuitbreaker.Settings `mapstructure:"breaker"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StoreConfig struct {
	// Driver is "redis" or "memory".
	Driver  string        `mapstructure:"driver"`
	TTL     time.Duration `mapstructure:"ttl"`
	CartKey string        `mapstructure:"cart_key"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type CatalogConfig struct {
	File         string        `mapstructure:"file"`
	CacheKey     string        `mapstructure:"cache_key"`
	SyncInterval time.Duration `mapstructure:"sync_interval"`
}

type SQLiteConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type SheetsConfig struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	APIKey        string `mapstructure:"api_key"`
	Endpoint      string `mapstructure:"endpoint"`
	ProductsRange string `mapstructure:"products_range"`
	OrdersRange   string `mapstructure:"orders_range"`
}

func (s SheetsConfig) Enabled() bool {
	return s.SpreadsheetID != ""
}

type EmailConfig struct {
	// Driver is "smtp" or "log".
	Driver   string `mapstructure:"driver"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type OrderLogConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type CheckoutConfig struct {
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

type SessionConfig struct {
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.ttl", 0)
	v.SetDefault("store.cart_key", "woofcrafts_cart")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("catalog.file", "data/products.json")
	v.SetDefault("catalog.cache_key", "woofcrafts_products")
	v.SetDefault("catalog.sync_interval", 30*time.Second)

	v.SetDefault("sqlite.enabled", true)
	v.SetDefault("sqlite.path", "data/products.db")

	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.api_key", "")
	v.SetDefault("sheets.endpoint", "")
	v.SetDefault("sheets.products_range", "Products!A2:E")
	v.SetDefault("sheets.orders_range", "Orders!A:H")

	v.SetDefault("email.driver", "log")
	v.SetDefault("email.from", "")
	v.SetDefault("email.from_name", "WoofCrafts")

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")

	v.SetDefault("mongodb.uri", "")
	v.SetDefault("mongodb.database", "woofcrafts")
	v.SetDefault("mongodb.collection", "orders")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "pos-orders")

	v.SetDefault("orderlog.timeout", 10*time.Second)

	v.SetDefault("checkout.rate_limit", 1.0)
	v.SetDefault("checkout.burst", 3)

	v.SetDefault("session.idle_timeout", 30*time.Minute)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	b := circuitbreaker.DefaultSettings()
	v.SetDefault("breaker.max_requests", b.MaxRequests)
	v.SetDefault("breaker.interval", b.Interval)
	v.SetDefault("breaker.timeout", b.Timeout)
	v.SetDefault("breaker.consecutive_failures", b.ConsecutiveFailures)
}

// Load reads .env (if present), then configPath (if present), then POS_* environment overrides.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Email.Driver {
	case "smtp":
		if c.SMTP.Username == "" || c.SMTP.Password == "" {
			return errors.New("smtp driver requires smtp.username and smtp.password")
		}
	case "log":
	default:
		return fmt.Errorf("unknown email driver %q", c.Email.Driver)
	}
	return nil
}

// Sender returns the From address, falling back to the SMTP user.
func (c *Config) Sender() string {
	if c.Email.From != "" {
		return c.Email.From
	}
	return c.SMTP.Username
}

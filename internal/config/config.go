package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN       string `mapstructure:"DATABASE_URL"`
	Environment string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	SocketHost string `mapstructure:"SOCKET_HOST"`
	SocketPort int    `mapstructure:"SOCKET_PORT"`
	HTTPHost   string `mapstructure:"HTTP_HOST"`
	HTTPPort   int    `mapstructure:"HTTP_PORT"`
	APIToken   string `mapstructure:"API_TOKEN"`

	WorkerPollInterval  time.Duration `mapstructure:"WORKER_POLL_INTERVAL"`
	WorkerSleepTime     time.Duration `mapstructure:"WORKER_SLEEP_TIME"`
	WorkerShutdownGrace time.Duration `mapstructure:"WORKER_SHUTDOWN_GRACE"`

	SlotDaysAhead       int           `mapstructure:"SLOT_DAYS_AHEAD"`
	SlotTimes           []string      `mapstructure:"SLOT_TIMES"`
	SlotRefreshInterval time.Duration `mapstructure:"SLOT_REFRESH_INTERVAL"`
	DefaultService      string        `mapstructure:"DEFAULT_SERVICE"`

	TelegramToken  string `mapstructure:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `mapstructure:"TELEGRAM_CHAT_ID"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию только из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBDSN:          firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("DB_DSN")),
		Environment:    getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SocketHost:     getEnv("SOCKET_HOST", "0.0.0.0"),
		HTTPHost:       getEnv("HTTP_HOST", "0.0.0.0"),
		APIToken:       getEnv("API_TOKEN", "dev-token-123"),
		SlotTimes:      splitCSV(getEnv("SLOT_TIMES", "10:00,11:00,12:00,14:00,15:00,16:00")),
		DefaultService: getEnv("DEFAULT_SERVICE", "General"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
	}

	var err error
	if cfg.SocketPort, err = getEnvInt("SOCKET_PORT", 5001); err != nil {
		return nil, err
	}
	if cfg.HTTPPort, err = getEnvInt("HTTP_PORT", 5000); err != nil {
		return nil, err
	}
	if cfg.SlotDaysAhead, err = getEnvInt("SLOT_DAYS_AHEAD", 7); err != nil {
		return nil, err
	}
	if cfg.WorkerPollInterval, err = getEnvDuration("WORKER_POLL_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if cfg.WorkerSleepTime, err = getEnvDuration("WORKER_SLEEP_TIME", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.WorkerShutdownGrace, err = getEnvDuration("WORKER_SHUTDOWN_GRACE", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.SlotRefreshInterval, err = getEnvDuration("SLOT_REFRESH_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		if cfg.TelegramChatID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid int for TELEGRAM_CHAT_ID: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные поля и диапазоны
func (c *Config) Validate() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	if c.SocketPort < 0 || c.SocketPort > 65535 {
		return fmt.Errorf("SOCKET_PORT out of range: %d", c.SocketPort)
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.SlotDaysAhead < 0 {
		return fmt.Errorf("SLOT_DAYS_AHEAD must not be negative: %d", c.SlotDaysAhead)
	}
	if c.WorkerPollInterval <= 0 {
		return fmt.Errorf("WORKER_POLL_INTERVAL must be positive")
	}
	if c.SlotRefreshInterval <= 0 {
		return fmt.Errorf("SLOT_REFRESH_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// SocketAddr адрес TCP-сервера host:port
func (c *Config) SocketAddr() string {
	return net.JoinHostPort(c.SocketHost, strconv.Itoa(c.SocketPort))
}

// HTTPAddr адрес HTTP API host:port
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(c.HTTPPort))
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %w", key, err)
	}
	return parsed, nil
}

// getEnvDuration принимает "1s", "250ms" или число секунд ("0.1")
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed, nil
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, value)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

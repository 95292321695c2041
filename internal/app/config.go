package app

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"github.com/vladislavdragonenkov/waterdesk/internal/apiclient"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	API         apiclient.Config
}

// DefaultConfig возвращает адреса по умолчанию и подключение к локальному backend.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
		API:         apiclient.DefaultConfig(),
	}
}

// LoadConfig читает конфигурацию из .env и переменных окружения.
// Отсутствующий .env не считается ошибкой: значения берутся из окружения
// либо из DefaultConfig.
func LoadConfig() Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	// .env опционален, ошибку чтения игнорируем.
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	cfg := DefaultConfig()
	if addr := v.GetString("WATERDESK_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if addr := v.GetString("WATERDESK_METRICS_ADDR"); addr != "" {
		cfg.MetricsAddr = addr
	}
	if baseURL := v.GetString("WATERDESK_API_BASE_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if timeout := v.GetDuration("WATERDESK_API_TIMEOUT"); timeout > 0 {
		cfg.API.Timeout = timeout
	}
	if attempts := v.GetInt("WATERDESK_API_RETRY_ATTEMPTS"); attempts > 0 {
		cfg.API.Retry.MaxAttempts = attempts
	}
	return cfg
}

// Validate проверяет согласованность конфигурации перед запуском.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errEmptyHTTPAddr
	}
	if c.MetricsAddr == "" {
		return errEmptyMetricsAddr
	}
	if c.API.BaseURL == "" {
		return errEmptyAPIBaseURL
	}
	if c.API.Timeout != 0 && c.API.Timeout < minAPITimeout {
		return errTimeoutTooSmall
	}
	return nil
}

// Нижняя граница таймаута: значения меньше секунды почти наверняка опечатка.
const minAPITimeout = time.Second

var (
	errEmptyHTTPAddr    = errors.New("http address is empty")
	errEmptyMetricsAddr = errors.New("metrics address is empty")
	errEmptyAPIBaseURL  = errors.New("api base url is empty")
	errTimeoutTooSmall  = errors.New("api timeout is below one second")
)

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
	"github.com/vladislavdragonenkov/waterdesk/internal/session"
)

// RetryConfig — параметры повторов для идемпотентных запросов.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Config — настройки подключения к внешнему API.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryConfig
}

// DefaultConfig возвращает настройки для локального backend.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:5000/api",
		Timeout: 10 * time.Second,
		Retry:   DefaultRetryConfig(),
	}
}

// Client — общее ядро REST-клиентов внешнего API: базовый адрес, токен сессии,
// JSON-кодек и классификация ошибок в domain.APIError.
type Client struct {
	baseURL string
	http    *http.Client
	sess    session.Session
	retry   RetryConfig
	logger  *log.Entry
}

// New создаёт клиент, привязанный к сессии пользователя.
func New(cfg Config, sess session.Session, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.New().WithField("component", "apiclient")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		sess:    sess,
		retry:   cfg.Retry,
		logger:  logger,
	}
}

// Session возвращает сессию, с которой связан клиент.
func (c *Client) Session() session.Session {
	return c.sess
}

// GetJSON выполняет GET с повторами при сетевых сбоях. Повторяются только
// сетевые ошибки: отказ сервера повторять бессмысленно.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	delay := c.retry.InitialDelay

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		if err == nil {
			if attempt > 1 {
				c.logger.WithFields(log.Fields{
					"path":    path,
					"attempt": attempt,
				}).Info("GET succeeded after retry")
			}
			return nil
		}

		lastErr = err
		if !domain.IsNetworkError(err) {
			return err
		}

		if attempt < c.retry.MaxAttempts {
			c.logger.WithFields(log.Fields{
				"path":    path,
				"attempt": attempt,
				"delay":   delay,
				"error":   err,
			}).Warn("GET failed, retrying")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &domain.APIError{Message: ctx.Err().Error(), Category: domain.CategoryNetwork}
			}

			delay = time.Duration(float64(delay) * c.retry.BackoffFactor)
			if delay > c.retry.MaxDelay {
				delay = c.retry.MaxDelay
			}
		}
	}

	return lastErr
}

// PostJSON выполняет POST без повторов: создание заказа не идемпотентно.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// PutJSON выполняет PUT без повторов.
func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// apiErrorBody — форма тела ошибки внешнего API.
type apiErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sess.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+c.sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Ответ не получен: транспортная ошибка или таймаут.
		return &domain.APIError{Message: err.Error(), Category: domain.CategoryNetwork}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.APIError{Message: err.Error(), Category: domain.CategoryNetwork}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &domain.APIError{
			StatusCode: resp.StatusCode,
			Message:    remoteMessage(payload, resp.StatusCode),
			Category:   domain.CategoryRejected,
		}
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// remoteMessage извлекает сообщение из тела ошибки; при нечитаемом теле
// остаётся текст статуса.
func remoteMessage(payload []byte, statusCode int) string {
	var body apiErrorBody
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return http.StatusText(statusCode)
}

// Ping проверяет доступность внешнего API (для health check).
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/ping", nil, nil)
	if err == nil {
		return nil
	}
	// Отклонённый запрос означает, что сервер жив.
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Category == domain.CategoryRejected {
		return nil
	}
	return err
}

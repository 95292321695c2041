package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, ":9090", cfg.MetricsAddr)
	require.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("WATERDESK_HTTP_ADDR", ":18080")
	t.Setenv("WATERDESK_API_BASE_URL", "http://backend:5000/api")
	t.Setenv("WATERDESK_API_TIMEOUT", "30s")

	cfg := LoadConfig()

	require.Equal(t, ":18080", cfg.HTTPAddr)
	require.Equal(t, "http://backend:5000/api", cfg.API.BaseURL)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	// Не переопределённые значения остаются из DefaultConfig.
	require.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid default",
			mutate: func(*Config) {},
		},
		{
			name:    "empty http addr",
			mutate:  func(c *Config) { c.HTTPAddr = "" },
			wantErr: errEmptyHTTPAddr,
		},
		{
			name:    "empty metrics addr",
			mutate:  func(c *Config) { c.MetricsAddr = "" },
			wantErr: errEmptyMetricsAddr,
		},
		{
			name:    "empty api base url",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: errEmptyAPIBaseURL,
		},
		{
			name:    "timeout below one second",
			mutate:  func(c *Config) { c.API.Timeout = 100 * time.Millisecond },
			wantErr: errTimeoutTooSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/campaigns")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 30*time.Second, cfg.KPICacheTTL)
	assert.Equal(t, map[string]string{"tenant-key-123": "tenant1"}, cfg.APIKeys)
	assert.Equal(t, 7, cfg.Analytics.FatigueWindowDays)
	assert.Equal(t, 4, cfg.Analytics.FatigueThreshold)
	assert.Equal(t, 0.08, cfg.Analytics.Uplift)
	assert.True(t, cfg.Analytics.AIEnabled)
	assert.Equal(t, 6, cfg.Analytics.SubjectLineCount)
}

func TestLoad_RequiresDBURL(t *testing.T) {
	t.Setenv("DB_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_APIKeys(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "one key per tenant",
			raw:  "tenant1:key-a,tenant2:key-b",
			want: map[string]string{"key-a": "tenant1", "key-b": "tenant2"},
		},
		{
			name: "tenant rotating keys keeps both",
			raw:  "tenant1:old-key,tenant1:new-key",
			want: map[string]string{"old-key": "tenant1", "new-key": "tenant1"},
		},
		{
			name: "whitespace and empty pairs ignored",
			raw:  " tenant1 : key-a ,,tenant2:key-b",
			want: map[string]string{"key-a": "tenant1", "key-b": "tenant2"},
		},
		{
			name:    "missing separator",
			raw:     "tenant1key-a",
			wantErr: true,
		},
		{
			name:    "empty key",
			raw:     "tenant1:",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_URL", "postgres://localhost/campaigns")
			t.Setenv("API_KEYS", tt.raw)

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.APIKeys)
		})
	}
}

func TestLoad_AnalyticsOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/campaigns")
	t.Setenv("FATIGUE_WINDOW_DAYS", "14")
	t.Setenv("AI_UPLIFT", "0.1")
	t.Setenv("AI_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Analytics.FatigueWindowDays)
	assert.Equal(t, 0.1, cfg.Analytics.Uplift)
	assert.False(t, cfg.Analytics.AIEnabled)
}

func TestLoad_RejectsBadWindow(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/campaigns")
	t.Setenv("FATIGUE_WINDOW_DAYS", "0")

	_, err := Load()
	assert.Error(t, err)
}

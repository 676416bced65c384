package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config contains runtime configuration required by the service.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	Port        string `envconfig:"PORT" default:"8080"`
	DBURL       string `envconfig:"DB_URL" required:"true"`

	// API_KEYS format: "tenant1:key1,tenant2:key2". A tenant may hold several keys.
	RawAPIKeys []string          `envconfig:"API_KEYS"`
	APIKeys    map[string]string `ignored:"true"` // apiKey -> tenantID

	RedisAddr   string        `envconfig:"REDIS_ADDR"`
	KPICacheTTL time.Duration `envconfig:"KPI_CACHE_TTL" default:"30s"`

	Analytics Analytics
}

// Analytics holds the tunables handed to the analytics core.
type Analytics struct {
	FatigueWindowDays int     `envconfig:"FATIGUE_WINDOW_DAYS" default:"7"`
	FatigueThreshold  int     `envconfig:"FATIGUE_THRESHOLD" default:"4"`
	Uplift            float64 `envconfig:"AI_UPLIFT" default:"0.08"`
	AIEnabled         bool    `envconfig:"AI_ENABLED" default:"true"`
	SubjectLineCount  int     `envconfig:"SUBJECT_LINE_COUNT" default:"6"`
	PDFEnabled        bool    `envconfig:"PDF_ENABLED" default:"true"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process config: %w", err)
	}
	cfg.DBURL = strings.TrimSpace(cfg.DBURL)
	if cfg.DBURL == "" {
		return Config{}, errors.New("DB_URL required")
	}

	apiKeys, err := invertAPIKeys(cfg.RawAPIKeys)
	if err != nil {
		return Config{}, err
	}
	cfg.APIKeys = apiKeys

	if err := cfg.Analytics.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// invertAPIKeys turns "tenant:key" pairs into the key -> tenant lookup used by auth.
func invertAPIKeys(pairs []string) (map[string]string, error) {
	apiKeys := map[string]string{}
	for _, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New(`API_KEYS must be "tenant:key,tenant:key"`)
		}
		tenant := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if tenant == "" || key == "" {
			return nil, errors.New(`API_KEYS must be "tenant:key,tenant:key"`)
		}
		apiKeys[key] = tenant
	}

	// Local dev fallback so the service runs out-of-the-box.
	if len(apiKeys) == 0 {
		apiKeys["tenant-key-123"] = "tenant1"
	}
	return apiKeys, nil
}

func (a Analytics) validate() error {
	if a.FatigueWindowDays <= 0 {
		return fmt.Errorf("FATIGUE_WINDOW_DAYS must be positive, got %d", a.FatigueWindowDays)
	}
	if a.FatigueThreshold < 0 {
		return fmt.Errorf("FATIGUE_THRESHOLD must not be negative, got %d", a.FatigueThreshold)
	}
	if a.SubjectLineCount <= 0 {
		return fmt.Errorf("SUBJECT_LINE_COUNT must be positive, got %d", a.SubjectLineCount)
	}
	return nil
}

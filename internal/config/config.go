package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultTimeout bounds every backend request so a hung call cannot pin
// the list-fetch guard forever.
const DefaultTimeout = 10 * time.Second

type Config struct {
	BaseURL string        // backend root, e.g. https://crm.example.uz/api
	Timeout time.Duration // per-request timeout
	Tab     string        // initial tab id, empty means the default tab
	LogPath string        // diagnostic log file, empty means the state dir default
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored for local development. Root flags
// override these values after loading.
func Load() (*Config, error) {
	// Load .env file if it exists (useful for local dev)
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL: strings.TrimRight(os.Getenv("PHONECRM_API_URL"), "/"),
		Timeout: DefaultTimeout,
		Tab:     os.Getenv("PHONECRM_TAB"),
		LogPath: os.Getenv("PHONECRM_LOG"),
	}

	if v := os.Getenv("PHONECRM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PHONECRM_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("PHONECRM_TIMEOUT must be positive, got %s", v)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

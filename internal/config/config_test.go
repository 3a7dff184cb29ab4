package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PHONECRM_API_URL", "")
	t.Setenv("PHONECRM_TIMEOUT", "")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.BaseURL)
}

func TestLoadTrimsTrailingSlash(t *testing.T) {
	t.Setenv("PHONECRM_API_URL", "https://crm.example.uz/api/")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "https://crm.example.uz/api", cfg.BaseURL)
}

func TestLoadTimeout(t *testing.T) {
	t.Setenv("PHONECRM_TIMEOUT", "30s")
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Timeout)

	t.Setenv("PHONECRM_TIMEOUT", "soon")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("PHONECRM_TIMEOUT", "-1s")
	_, err = Load()
	assert.Error(t, err)
}

package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func useTempState(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PHONECRM_STATE_DIR", dir)
	t.Setenv("PHONECRM_TOKEN", "")
	return dir
}

func TestOpenWithoutCredentials(t *testing.T) {
	useTempState(t)

	h, err := Open()
	assert.NoError(t, err)
	assert.False(t, h.LoggedIn())
	assert.Empty(t, h.Token())
	assert.Nil(t, h.Info())
}

func TestStoreAndReopen(t *testing.T) {
	dir := useTempState(t)

	h, err := Open()
	assert.NoError(t, err)
	assert.NoError(t, h.Store("tok-123", "admin"))
	assert.True(t, h.LoggedIn())
	assert.Equal(t, "tok-123", h.Token())

	// File is owner-only.
	fi, err := os.Stat(filepath.Join(dir, credFileName))
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	// A fresh handle sees the same session.
	h2, err := Open()
	assert.NoError(t, err)
	assert.Equal(t, "tok-123", h2.Token())
	assert.Equal(t, "admin", h2.Info().Username)
	assert.Equal(t, "file", h2.Info().Source)
}

func TestClearForgetsSession(t *testing.T) {
	useTempState(t)

	h, _ := Open()
	assert.NoError(t, h.Store("tok-123", "admin"))
	assert.NoError(t, h.Clear())
	assert.False(t, h.LoggedIn())

	h2, err := Open()
	assert.NoError(t, err)
	assert.False(t, h2.LoggedIn())
}

func TestEnvOverride(t *testing.T) {
	useTempState(t)
	t.Setenv("PHONECRM_TOKEN", "Bearer env-tok")

	h, err := Open()
	assert.NoError(t, err)
	assert.Equal(t, "env-tok", h.Token(), "Bearer prefix is stripped")
	assert.Equal(t, "env", h.Info().Source)

	// Env tokens have no file to delete.
	assert.ErrorIs(t, h.Clear(), ErrEnvToken)
}

func TestStoreStripsBearerPrefix(t *testing.T) {
	useTempState(t)

	h, _ := Open()
	assert.NoError(t, h.Store("  Bearer tok-9  ", ""))
	assert.Equal(t, "tok-9", h.Token())

	assert.Error(t, h.Store("", ""), "empty token is rejected")
}

func TestJWTExpiryDerived(t *testing.T) {
	useTempState(t)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString([]byte("secret"))
	assert.NoError(t, err)

	h, _ := Open()
	assert.NoError(t, h.Store(signed, "admin"))
	info := h.Info()
	if assert.NotNil(t, info.ExpiresAt) {
		assert.WithinDuration(t, exp, *info.ExpiresAt, time.Second)
	}

	// Opaque tokens leave expiry unset.
	assert.NoError(t, h.Store("opaque-token", "admin"))
	assert.Nil(t, h.Info().ExpiresAt)
}

func TestCorruptCredentialsFile(t *testing.T) {
	dir := useTempState(t)
	assert.NoError(t, os.WriteFile(filepath.Join(dir, credFileName), []byte("{nope"), 0o600))

	_, err := Open()
	assert.Error(t, err)
}

// Package session holds the persisted login state: the bearer token the
// backend hands out at login plus a little metadata. The credentials
// file standing in for browser storage lives under the user's home
// directory; its presence is the "logged in" flag.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const credFileName = "credentials.json"

// ErrEnvToken is returned by Clear when the active token comes from the
// environment: there is nothing on disk to delete.
var ErrEnvToken = errors.New("token is provided by PHONECRM_TOKEN (nothing to delete)")

// Info is the persisted login state.
type Info struct {
	Token     string     `json:"token"`
	Username  string     `json:"username,omitempty"`
	Source    string     `json:"source"`               // "env" | "file"
	CreatedAt time.Time  `json:"created_at"`           // when we saved to file
	ExpiresAt *time.Time `json:"expires_at,omitempty"` // from the JWT exp claim, if any
}

// Handle is the live session shared by the HTTP middleware and the
// views. Open reads the persisted state once; Store and Clear keep the
// file and the in-memory copy in sync, so a 401/403 anywhere can
// invalidate the session for every later request.
type Handle struct {
	mu   sync.RWMutex
	info *Info
}

// Open loads the current session. The PHONECRM_TOKEN environment
// variable overrides the credentials file; a missing file means logged
// out (not an error).
func Open() (*Handle, error) {
	info, err := read()
	if err != nil {
		return nil, err
	}
	return &Handle{info: info}, nil
}

// LoggedIn reports whether a token is available.
func (h *Handle) LoggedIn() bool { return h.Token() != "" }

// Token returns the current bearer token, or "" when logged out.
func (h *Handle) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.info == nil {
		return ""
	}
	return h.info.Token
}

// Info returns a copy of the session state, or nil when logged out.
func (h *Handle) Info() *Info {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.info == nil {
		return nil
	}
	cp := *h.info
	return &cp
}

// Store persists a fresh login. Expiry is derived from the token's exp
// claim when it parses as a JWT; opaque tokens leave it unset.
func (h *Handle) Store(token, username string) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	info := Info{
		Token:     token,
		Username:  username,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: tokenExpiry(token),
	}
	if err := write(info); err != nil {
		return err
	}
	h.mu.Lock()
	h.info = &info
	h.mu.Unlock()
	return nil
}

// Clear forgets the session: the credentials file is removed and the
// in-memory token dropped, sending later requests out unauthenticated.
// Env-sourced tokens cannot be cleared and report ErrEnvToken.
func (h *Handle) Clear() error {
	h.mu.Lock()
	fromEnv := h.info != nil && h.info.Source == "env"
	h.info = nil
	h.mu.Unlock()

	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	if fromEnv {
		return ErrEnvToken
	}
	return nil
}

// Dir is where the client keeps its state (credentials, default log).
// PHONECRM_STATE_DIR overrides the ~/.phonecrm default.
func Dir() (string, error) {
	if dir := os.Getenv("PHONECRM_STATE_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".phonecrm"), nil
}

func credFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credFileName), nil
}

func read() (*Info, error) {
	// 1) env override
	env := strings.TrimSpace(os.Getenv("PHONECRM_TOKEN"))
	if env != "" {
		token := stripBearer(env)
		return &Info{Token: token, Source: "env", ExpiresAt: tokenExpiry(token)}, nil
	}

	// 2) file
	p, err := credFilePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var info Info
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	info.Token = stripBearer(info.Token)
	return &info, nil
}

func write(info Info) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	// ensure the state dir exists with 0700
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	p, _ := credFilePath()
	// write with 0600 (owner-only)
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}

// tokenExpiry pulls the exp claim out of a JWT without verifying the
// signature; the client has no key and only uses this for display.
func tokenExpiry(token string) *time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	t := claims.ExpiresAt.Time
	return &t
}

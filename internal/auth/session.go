package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pavan3030-vikal/VIKAL-NEW/internal/config"
)

// Common errors
var (
	ErrNotSignedIn   = errors.New("not signed in")
	ErrSignInAborted = errors.New("sign-in was cancelled")
	ErrCodeExpired   = errors.New("authorization code expired. Please try again")
	ErrAccessDenied  = errors.New("authorization was denied")
	ErrInvalidToken  = errors.New("invalid token format")
)

// Session is the signed-in user as reported by the identity provider.
type Session struct {
	UserID       string
	DisplayName  string
	Email        string
	AvatarURL    string
	DeviceID     string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Name returns the best label for greeting the user.
func (s *Session) Name() string {
	switch {
	case s.DisplayName != "":
		return s.DisplayName
	case s.Email != "":
		return s.Email
	default:
		return s.UserID
	}
}

// Expired reports whether the provider token has passed its expiry.
// A zero expiry never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// IDTokenClaims are the profile claims read from the provider's ID token.
type IDTokenClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// ParseIDToken extracts profile claims without verifying the signature.
// The remote service verifies tokens; the client only needs the profile.
func ParseIDToken(token string) (*IDTokenClaims, error) {
	claims := &IDTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func sessionFromConfig(sc *config.SessionConfig) *Session {
	if sc == nil || sc.UserID == "" {
		return nil
	}
	s := &Session{
		UserID:       sc.UserID,
		DisplayName:  sc.DisplayName,
		Email:        sc.Email,
		AvatarURL:    sc.AvatarURL,
		DeviceID:     sc.DeviceID,
		IDToken:      sc.IDToken,
		RefreshToken: sc.RefreshToken,
	}
	if sc.ExpiresAt > 0 {
		s.ExpiresAt = time.Unix(sc.ExpiresAt, 0)
	}
	return s
}

func (s *Session) toConfig() *config.SessionConfig {
	sc := &config.SessionConfig{
		UserID:       s.UserID,
		DisplayName:  s.DisplayName,
		Email:        s.Email,
		AvatarURL:    s.AvatarURL,
		DeviceID:     s.DeviceID,
		IDToken:      s.IDToken,
		RefreshToken: s.RefreshToken,
	}
	if !s.ExpiresAt.IsZero() {
		sc.ExpiresAt = s.ExpiresAt.Unix()
	}
	return sc
}

// SessionStore persists the session where the identity provider keeps it.
type SessionStore interface {
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}

// ConfigSessionStore keeps the session in the session section of the config file.
type ConfigSessionStore struct {
	Path string
}

// NewConfigSessionStore uses the default config file.
func NewConfigSessionStore() *ConfigSessionStore {
	return &ConfigSessionStore{Path: config.GetConfigPath()}
}

func (c *ConfigSessionStore) Load() (*Session, error) {
	cfg, err := config.LoadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return sessionFromConfig(cfg.Session), nil
}

func (c *ConfigSessionStore) Save(s *Session) error {
	return c.update(s.toConfig())
}

func (c *ConfigSessionStore) Clear() error {
	return c.update(nil)
}

func (c *ConfigSessionStore) update(sc *config.SessionConfig) error {
	cfg, err := config.LoadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Session = sc
	if err := config.SaveTo(c.Path, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

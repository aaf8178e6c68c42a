package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/ledger"
)

// SignInResult is returned by a successful BeginSignIn.
type SignInResult struct {
	Session *Session

	// TrialEnded is true when the stored usage already exhausts the free tier.
	// It is evaluated once per sign-in.
	TrialEnded bool
}

// Gate owns the current session. Usage and submissions are only reachable
// through a signed-in gate.
type Gate struct {
	provider IdentityProvider
	sessions SessionStore
	ledger   *ledger.Ledger

	mu      sync.RWMutex
	current *Session
}

// NewGate restores any persisted session. An expired session is removed
// and the user has to sign in again; usage is kept.
func NewGate(provider IdentityProvider, sessions SessionStore, l *ledger.Ledger) (*Gate, error) {
	g := &Gate{provider: provider, sessions: sessions, ledger: l}

	s, err := sessions.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if s != nil && s.Expired(time.Now()) {
		slog.Info("stored session expired, sign in again", "user_id", s.UserID)
		if err := sessions.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear expired session: %w", err)
		}
		s = nil
	}
	g.current = s
	return g, nil
}

// Current returns the signed-in session or nil.
func (g *Gate) Current() *Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Require returns the session or ErrNotSignedIn.
func (g *Gate) Require() (*Session, error) {
	s := g.Current()
	if s == nil {
		return nil, ErrNotSignedIn
	}
	return s, nil
}

// WhileSignedIn runs fn only while userID is still the signed-in user.
// Sign-out waits for fn to return, so writes made by fn are always purged.
func (g *Gate) WhileSignedIn(userID string, fn func() error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil || g.current.UserID != userID {
		return ErrNotSignedIn
	}
	return fn()
}

// Ledger returns the usage ledger guarded by this gate.
func (g *Gate) Ledger() *ledger.Ledger {
	return g.ledger
}

// BeginSignIn runs the provider's interactive flow once. On failure the
// session stays absent and nothing is retried.
func (g *Gate) BeginSignIn(ctx context.Context) (SignInResult, error) {
	s, err := g.provider.SignIn(ctx)
	if err != nil {
		slog.Warn("sign-in failed", "error", err)
		return SignInResult{}, err
	}

	if err := g.sessions.Save(s); err != nil {
		return SignInResult{}, fmt.Errorf("failed to save session: %w", err)
	}
	g.mu.Lock()
	g.current = s
	g.mu.Unlock()

	exhausted, err := g.ledger.IsExhausted(ctx)
	if err != nil {
		slog.Warn("could not read usage after sign-in", "error", err)
	}

	slog.Info("signed in", "user_id", s.UserID)
	return SignInResult{Session: s, TrialEnded: exhausted}, nil
}

// EndSession signs out. Revocation is best effort; the local session,
// usage list and markers are always cleared.
func (g *Gate) EndSession(ctx context.Context) error {
	g.mu.Lock()
	s := g.current
	g.current = nil
	g.mu.Unlock()

	if s != nil {
		if err := g.provider.Revoke(ctx, s); err != nil {
			slog.Warn("device revoke failed, clearing locally", "error", err)
		}
	}

	var errs []error
	if err := g.ledger.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := g.sessions.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("failed to clear session: %w", err))
	}
	return errors.Join(errs...)
}

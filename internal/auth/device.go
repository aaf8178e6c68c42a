package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/pavan3030-vikal/VIKAL-NEW/internal/browser"
)

const (
	clientID = "vikal_cli"

	// minPollInterval is the RFC 8628 floor between token polls.
	minPollInterval = 5 * time.Second
)

// IdentityProvider performs interactive sign-in and revocation.
type IdentityProvider interface {
	SignIn(ctx context.Context) (*Session, error)
	Revoke(ctx context.Context, s *Session) error
}

// DeviceCode from POST /api/device/code
type DeviceCode struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}

// FormattedUserCode splits 8-character codes as ABCD-1234.
func (d *DeviceCode) FormattedUserCode() string {
	if len(d.UserCode) == 8 {
		return d.UserCode[:4] + "-" + d.UserCode[4:]
	}
	return d.UserCode
}

// deviceTokenResponse from GET /api/device/token
type deviceTokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	DeviceID     string `json:"device_id"`
	User         struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	} `json:"user"`
}

// deviceTokenError for polling errors
type deviceTokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// DeviceProvider signs in with the OAuth 2.0 device authorization grant.
type DeviceProvider struct {
	BaseURL    string
	HTTPClient *http.Client

	// Prompt shows the user code and verification URL. Called once per sign-in.
	Prompt func(code DeviceCode)

	// OpenBrowser opens the verification page. Nil skips it.
	OpenBrowser browser.Opener

	// MinInterval overrides the polling floor. Zero means 5s.
	MinInterval time.Duration

	now func() time.Time
}

// NewDeviceProvider creates a provider for the identity service at baseURL.
func NewDeviceProvider(baseURL string, timeout time.Duration) *DeviceProvider {
	return &DeviceProvider{
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		HTTPClient:  &http.Client{Timeout: timeout},
		OpenBrowser: browser.Open,
		now:         time.Now,
	}
}

// SignIn requests a device code, shows it, and polls until the user
// approves, denies, or the code expires. Cancelling ctx aborts the flow.
func (p *DeviceProvider) SignIn(ctx context.Context) (*Session, error) {
	code, err := p.requestDeviceCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device code: %w", err)
	}

	if p.Prompt != nil {
		p.Prompt(*code)
	}

	if p.OpenBrowser != nil {
		target := code.VerificationURIComplete
		if target == "" {
			target = code.VerificationURI
		}
		if err := p.OpenBrowser(target); err != nil {
			slog.Warn("could not open browser", "url", target, "error", err)
		}
	}

	expiresAt := p.clock().Add(time.Duration(code.ExpiresIn) * time.Second)

	floor := p.MinInterval
	if floor <= 0 {
		floor = minPollInterval
	}
	interval := time.Duration(code.Interval) * time.Second
	if interval < floor {
		interval = floor
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ErrSignInAborted
		case <-ticker.C:
			if code.ExpiresIn > 0 && p.clock().After(expiresAt) {
				return nil, ErrCodeExpired
			}

			token, errResp, err := p.pollForToken(ctx, code.DeviceCode)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ErrSignInAborted
				}
				return nil, fmt.Errorf("polling error: %w", err)
			}

			if errResp != nil {
				switch errResp.Error {
				case "authorization_pending":
					continue
				case "slow_down":
					interval += floor
					ticker.Reset(interval)
					continue
				case "expired_token":
					return nil, ErrCodeExpired
				case "access_denied":
					return nil, ErrAccessDenied
				default:
					return nil, fmt.Errorf("authorization failed: %s", errResp.ErrorDescription)
				}
			}

			return p.sessionFromToken(token)
		}
	}
}

// Revoke deletes the device registration. Callers treat failures as advisory.
func (p *DeviceProvider) Revoke(ctx context.Context, s *Session) error {
	if s == nil || s.DeviceID == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.BaseURL+"/api/devices/"+url.PathEscape(s.DeviceID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if s.IDToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.IDToken)
	}

	resp, err := p.client().Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusUnauthorized:
		// 401: session was already expired server-side
		return nil
	default:
		return fmt.Errorf("server error: %s (status %d)", strings.TrimSpace(string(body)), resp.StatusCode)
	}
}

func (p *DeviceProvider) requestDeviceCode(ctx context.Context) (*DeviceCode, error) {
	reqBody := map[string]string{
		"client_id": clientID,
		"platform":  runtime.GOOS,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/device/code", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server error: %s (status %d)", string(body), resp.StatusCode)
	}

	var code DeviceCode
	if err := json.Unmarshal(body, &code); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &code, nil
}

func (p *DeviceProvider) pollForToken(ctx context.Context, deviceCode string) (*deviceTokenResponse, *deviceTokenError, error) {
	q := url.Values{}
	q.Set("device_code", deviceCode)
	q.Set("client_id", clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/api/device/token?"+q.Encode(), nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	var errResp deviceTokenError
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return nil, &errResp, nil
	}

	var token deviceTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if token.AccessToken == "" && token.IDToken == "" {
		// Pending without an explicit error
		return nil, &deviceTokenError{Error: "authorization_pending"}, nil
	}
	return &token, nil, nil
}

func (p *DeviceProvider) sessionFromToken(token *deviceTokenResponse) (*Session, error) {
	s := &Session{
		UserID:       token.User.ID,
		DisplayName:  token.User.Name,
		Email:        token.User.Email,
		AvatarURL:    token.User.Picture,
		DeviceID:     token.DeviceID,
		IDToken:      token.IDToken,
		RefreshToken: token.RefreshToken,
	}
	if s.IDToken == "" {
		s.IDToken = token.AccessToken
	}
	if token.ExpiresIn > 0 {
		s.ExpiresAt = p.clock().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	if claims, err := ParseIDToken(s.IDToken); err == nil {
		if s.UserID == "" {
			s.UserID = claims.Subject
		}
		if s.DisplayName == "" {
			s.DisplayName = claims.Name
		}
		if s.Email == "" {
			s.Email = claims.Email
		}
		if s.AvatarURL == "" {
			s.AvatarURL = claims.Picture
		}
		if s.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
			s.ExpiresAt = claims.ExpiresAt.Time
		}
	} else {
		slog.Debug("id token has no readable claims", "error", err)
	}

	if s.UserID == "" {
		return nil, fmt.Errorf("identity provider returned no user id")
	}
	return s, nil
}

func (p *DeviceProvider) client() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return http.DefaultClient
}

func (p *DeviceProvider) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

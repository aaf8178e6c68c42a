package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedIDToken(t *testing.T, claims IDTokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// newDeviceServer answers the device-code endpoint and replies to token polls
// with the given bodies in order, repeating the last one.
func newDeviceServer(t *testing.T, polls []any) (*httptest.Server, *int32) {
	t.Helper()
	var pollCount int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/device/code", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(DeviceCode{
			DeviceCode:              "dev-123",
			UserCode:                "ABCD1234",
			VerificationURI:         "https://id.example.com/device",
			VerificationURIComplete: "https://id.example.com/device?code=ABCD1234",
			ExpiresIn:               600,
		})
	})
	mux.HandleFunc("/api/device/token", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("device_code"); got != "dev-123" {
			t.Errorf("Expected device_code dev-123, got %s", got)
		}
		n := int(atomic.AddInt32(&pollCount, 1)) - 1
		if n >= len(polls) {
			n = len(polls) - 1
		}
		json.NewEncoder(w).Encode(polls[n])
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &pollCount
}

func testProvider(baseURL string) *DeviceProvider {
	p := NewDeviceProvider(baseURL, 5*time.Second)
	p.MinInterval = 10 * time.Millisecond
	p.OpenBrowser = nil
	return p
}

func TestDeviceProvider_SignIn(t *testing.T) {
	idToken := signedIDToken(t, IDTokenClaims{
		Name:    "Asha Rao",
		Email:   "asha@example.com",
		Picture: "https://img.example.com/a.png",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "uid-asha",
		},
	})

	srv, polls := newDeviceServer(t, []any{
		map[string]string{"error": "authorization_pending"},
		map[string]any{
			"access_token":  "access-1",
			"id_token":      idToken,
			"refresh_token": "refresh-1",
			"expires_in":    3600,
			"device_id":     "device-9",
		},
	})

	p := testProvider(srv.URL)
	var prompted DeviceCode
	p.Prompt = func(code DeviceCode) { prompted = code }
	var opened string
	p.OpenBrowser = func(url string) error {
		opened = url
		return nil
	}

	s, err := p.SignIn(context.Background())
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	if prompted.FormattedUserCode() != "ABCD-1234" {
		t.Errorf("Expected prompt with ABCD-1234, got %s", prompted.FormattedUserCode())
	}
	if opened != "https://id.example.com/device?code=ABCD1234" {
		t.Errorf("Expected complete verification URL to be opened, got %s", opened)
	}
	if atomic.LoadInt32(polls) != 2 {
		t.Errorf("Expected 2 polls, got %d", atomic.LoadInt32(polls))
	}

	if s.UserID != "uid-asha" {
		t.Errorf("Expected user id from sub claim, got %s", s.UserID)
	}
	if s.DisplayName != "Asha Rao" || s.Email != "asha@example.com" {
		t.Errorf("Expected profile from claims, got %+v", s)
	}
	if s.DeviceID != "device-9" || s.RefreshToken != "refresh-1" {
		t.Errorf("Expected device and refresh token, got %+v", s)
	}
	if s.ExpiresAt.IsZero() {
		t.Error("Expected expiry to be set")
	}
}

func TestDeviceProvider_SignInFailures(t *testing.T) {
	tests := []struct {
		name    string
		poll    any
		wantErr error
	}{
		{"denied", map[string]string{"error": "access_denied"}, ErrAccessDenied},
		{"expired", map[string]string{"error": "expired_token"}, ErrCodeExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newDeviceServer(t, []any{tt.poll})
			_, err := testProvider(srv.URL).SignIn(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDeviceProvider_SignInCancelled(t *testing.T) {
	srv, _ := newDeviceServer(t, []any{map[string]string{"error": "authorization_pending"}})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := testProvider(srv.URL).SignIn(ctx)
	if !errors.Is(err, ErrSignInAborted) {
		t.Errorf("Expected ErrSignInAborted, got %v", err)
	}
}

func TestDeviceProvider_Revoke(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := testProvider(srv.URL).Revoke(context.Background(), &Session{UserID: "u", DeviceID: "device-9", IDToken: "tok"})
	if err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if gotPath != "/api/devices/device-9" {
		t.Errorf("Expected /api/devices/device-9, got %s", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Expected bearer token, got %s", gotAuth)
	}
}

func TestParseIDToken_Invalid(t *testing.T) {
	if _, err := ParseIDToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

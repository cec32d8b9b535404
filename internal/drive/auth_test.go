package drive

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func testOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID: "client",
		Endpoint: oauth2.Endpoint{AuthURL: "https://accounts.example/auth", TokenURL: "https://accounts.example/token"},
	}
}

// redirect plays the browser: it follows the consent URL back to the
// callback with the given query and returns the status code.
func redirect(t *testing.T, authURL string, query url.Values) int {
	t.Helper()
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	resp, err := http.Get(u.Query().Get("redirect_uri") + "?" + query.Encode())
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func stateOf(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	return u.Query().Get("state")
}

func TestLoopbackCode(t *testing.T) {
	cfg := testOAuthConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	code, err := LoopbackCode(ctx, cfg, func(authURL string) {
		if !strings.Contains(authURL, "access_type=offline") {
			t.Errorf("offline access not requested: %s", authURL)
		}
		q := url.Values{"state": {stateOf(t, authURL)}, "code": {"4/abc"}}
		if status := redirect(t, authURL, q); status != http.StatusOK {
			t.Errorf("callback status %d", status)
		}
	})
	if err != nil {
		t.Fatalf("loopback: %v", err)
	}
	if code != "4/abc" {
		t.Fatalf("code %q", code)
	}
	if !strings.HasPrefix(cfg.RedirectURL, "http://127.0.0.1:") {
		t.Fatalf("redirect url %q", cfg.RedirectURL)
	}
}

func TestLoopbackCodeIgnoresForeignState(t *testing.T) {
	cfg := testOAuthConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := LoopbackCode(ctx, cfg, func(authURL string) {
		if status := redirect(t, authURL, url.Values{"state": {"forged"}, "code": {"x"}}); status != http.StatusBadRequest {
			t.Errorf("forged state status %d", status)
		}
		q := url.Values{"state": {stateOf(t, authURL)}, "error": {"access_denied"}}
		if status := redirect(t, authURL, q); status != http.StatusForbidden {
			t.Errorf("denied status %d", status)
		}
	})
	if !errors.Is(err, ErrConsentDenied) {
		t.Fatalf("expected ErrConsentDenied, got %v", err)
	}
}

func TestLoopbackCodeCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := LoopbackCode(ctx, testOAuthConfig(), func(string) {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

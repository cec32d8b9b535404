package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
)

var (
	ErrNoToken       = errors.New("drive token missing, run `zwrot auth` first")
	ErrConsentDenied = errors.New("drive access was not granted")
)

// OAuthConfig reads the installed-app client secrets downloaded from the
// Google Cloud console.
func OAuthConfig(credentialsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, gdrive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return cfg, nil
}

// HTTPClient returns a client authorised with the token saved at tokenPath.
// The oauth2 token source refreshes expired access tokens on its own.
func HTTPClient(ctx context.Context, credentialsPath, tokenPath string) (*http.Client, error) {
	cfg, err := OAuthConfig(credentialsPath)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(tokenPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, err
	}
	return cfg.Client(ctx, tok), nil
}

func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &tok, nil
}

func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoopbackCode points cfg.RedirectURL at a one-shot listener on 127.0.0.1,
// hands the consent URL to show and waits for Google to redirect the browser
// back with the authorisation code. Callbacks with a foreign state are refused
// and the wait goes on.
func LoopbackCode(ctx context.Context, cfg *oauth2.Config, show func(authURL string)) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen for oauth callback: %w", err)
	}
	cfg.RedirectURL = "http://" + ln.Addr().String() + "/"
	state := uuid.NewString()

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "unknown state", http.StatusBadRequest)
			return
		}
		var res result
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("%w: %s", ErrConsentDenied, q.Get("error"))
		case q.Get("code") == "":
			res.err = fmt.Errorf("%w: callback without code", ErrConsentDenied)
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusForbidden)
		} else {
			fmt.Fprintln(w, "Autoryzacja zakończona, można zamknąć tę kartę.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer srv.Close()

	show(cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	select {
	case res := <-results:
		return res.code, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Exchange trades the authorisation code for a token and saves it.
func Exchange(ctx context.Context, cfg *oauth2.Config, code, tokenPath string) error {
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	return SaveToken(tokenPath, tok)
}

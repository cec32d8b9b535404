package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultsAndOverrides(t *testing.T) {
	t.Setenv("RUN_ADDRESS", "127.0.0.1:9999")
	t.Setenv("GITHUB_APP_ID", "12")
	t.Setenv("LLM_REQUESTS_PER_MINUTE", "not-a-number")

	cfg := New()
	if cfg.RunAddress != "127.0.0.1:9999" {
		t.Fatalf("run address = %q", cfg.RunAddress)
	}
	if cfg.GitHub.AppID != 12 {
		t.Fatalf("app id = %d", cfg.GitHub.AppID)
	}
	if cfg.LLM.RequestsPerMinute != 20 {
		t.Fatalf("bad int should fall back, got %d", cfg.LLM.RequestsPerMinute)
	}
	if cfg.DriveFolder != "Faktury logopeda" || cfg.GitHub.Workflow != "refresh.yml" {
		t.Fatalf("defaults = %+v", cfg)
	}
	cfg.WorkDir = "/w"
	if got := cfg.Path(RecordsFile); got != filepath.Join("/w", "faktury_dane.json") {
		t.Fatalf("path = %q", got)
	}
}

func TestGitHubUseAPI(t *testing.T) {
	if (GitHub{}).UseAPI() {
		t.Fatal("empty config uses the API")
	}
	if !(GitHub{Token: "t"}).UseAPI() {
		t.Fatal("token config does not use the API")
	}
	if (GitHub{AppID: 1, InstallationID: 2}).UseAPI() {
		t.Fatal("app config without a key uses the API")
	}
	if !(GitHub{AppID: 1, InstallationID: 2, AppKeyFile: "k.pem"}).UseAPI() {
		t.Fatal("app config does not use the API")
	}
}

func TestEnsurePortalWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), PortalFile)

	_, err := EnsurePortal(path)
	if !errors.Is(err, ErrTemplateWritten) {
		t.Fatalf("got %v, want ErrTemplateWritten", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("template mode = %v", info.Mode().Perm())
	}

	// The template itself is complete enough to validate.
	if _, err := EnsurePortal(path); err != nil {
		t.Fatalf("second read: %v", err)
	}
}

func TestEnsurePortalMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), PortalFile)
	data, _ := json.Marshal(map[string]string{"LOGIN_URL": "https://x", "FORM_URL": "https://y", "LOGIN": "me"})
	os.WriteFile(path, data, 0o600)

	_, err := EnsurePortal(path)
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("got %v, want ErrMissingKey", err)
	}
}

func TestReadPortalAPIKeyFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), PortalFile)
	os.WriteFile(path, []byte(`{"LOGIN": "me"}`), 0o600)

	t.Setenv("ANTHROPIC_API_KEY", "")
	p, err := ReadPortal(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := p.RequireAPIKey(); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("got %v", err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	p, _ = ReadPortal(path)
	if p.APIKey != "sk-test" || p.RequireAPIKey() != nil {
		t.Fatalf("api key = %q", p.APIKey)
	}
}

func TestReadPortalMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), PortalFile)
	os.WriteFile(path, []byte(`{`), 0o600)
	if _, err := ReadPortal(path); err == nil {
		t.Fatal("expected an error")
	}
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	PortalFile      = "config.json"
	RecordsFile     = "faktury_dane.json"
	TokenFile       = "token.json"
	CredentialsFile = "credentials.json"
)

var (
	ErrTemplateWritten = errors.New("config template written, fill it in and run again")
	ErrMissingKey      = errors.New("missing config key")
)

// Portal holds the static settings of the refund portal run. Keys match the
// config.json files already in use.
type Portal struct {
	LoginURL      string `json:"LOGIN_URL"`
	FormURL       string `json:"FORM_URL"`
	Login         string `json:"LOGIN"`
	Password      string `json:"HASLO"`
	AccountNumber string `json:"NUMER_RACHUNKU"`
	AccountOwner  string `json:"WLASCICIEL_KONTA"`
	APIKey        string `json:"ANTHROPIC_API_KEY,omitempty"`
}

func portalTemplate() Portal {
	return Portal{
		LoginURL:      "https://portalpacjenta.luxmed.pl/PatientPortal/Account/LogOn",
		FormURL:       "https://portalpacjenta.luxmed.pl/PatientPortal/Refunds/New",
		Login:         "WPISZ_SWOJ_LOGIN",
		Password:      "WPISZ_SWOJE_HASLO",
		AccountNumber: "WPISZ_NUMER_KONTA_BEZ_SPACJI",
		AccountOwner:  "WPISZ_IMIE_I_NAZWISKO",
	}
}

// ReadPortal reads config.json. The API key falls back to ANTHROPIC_API_KEY.
func ReadPortal(path string) (*Portal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var p Portal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.APIKey == "" {
		p.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	return &p, nil
}

// EnsurePortal reads config.json and validates the form keys. A missing file is
// replaced by a template and ErrTemplateWritten is returned.
func EnsurePortal(path string) (*Portal, error) {
	p, err := ReadPortal(path)
	if errors.Is(err, os.ErrNotExist) {
		data, merr := json.MarshalIndent(portalTemplate(), "", "  ")
		if merr != nil {
			return nil, fmt.Errorf("encode template: %w", merr)
		}
		if werr := os.WriteFile(path, data, 0o600); werr != nil {
			return nil, fmt.Errorf("write template: %w", werr)
		}
		return nil, fmt.Errorf("%s: %w", path, ErrTemplateWritten)
	}
	if err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the keys the form filler needs.
func (p *Portal) Validate() error {
	required := []struct {
		key, value string
	}{
		{"LOGIN_URL", p.LoginURL},
		{"FORM_URL", p.FormURL},
		{"LOGIN", p.Login},
		{"HASLO", p.Password},
		{"NUMER_RACHUNKU", p.AccountNumber},
		{"WLASCICIEL_KONTA", p.AccountOwner},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingKey, r.key)
		}
	}
	return nil
}

func (p *Portal) RequireAPIKey() error {
	if p.APIKey == "" {
		return fmt.Errorf("%w: ANTHROPIC_API_KEY", ErrMissingKey)
	}
	return nil
}

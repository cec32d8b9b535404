package service

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"zwrot/internal/config"
	"zwrot/internal/model"
)

var ErrGitHubAuth = errors.New("github authentication failed")

// GitHubRunner drives the workflow through the GitHub REST API, authenticating
// with a token or as a GitHub App installation.
type GitHubRunner struct {
	baseURL  string
	repo     string
	workflow string
	ref      string
	client   *http.Client

	token          string
	appID          int64
	installationID int64
	key            *rsa.PrivateKey

	mu        sync.Mutex
	instToken string
	instExp   time.Time
	now       func() time.Time
}

func NewGitHubRunner(cfg config.GitHub) (*GitHubRunner, error) {
	g := &GitHubRunner{
		baseURL:        strings.TrimRight(cfg.APIURL, "/"),
		repo:           cfg.Repo,
		workflow:       cfg.Workflow,
		ref:            cfg.Ref,
		client:         &http.Client{Timeout: 15 * time.Second},
		token:          cfg.Token,
		appID:          cfg.AppID,
		installationID: cfg.InstallationID,
		now:            time.Now,
	}
	if g.ref == "" {
		g.ref = "main"
	}
	if g.token == "" {
		pem, err := os.ReadFile(cfg.AppKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read app key: %w", err)
		}
		if g.key, err = jwt.ParseRSAPrivateKeyFromPEM(pem); err != nil {
			return nil, fmt.Errorf("parse app key: %w", err)
		}
	}
	return g, nil
}

func (g *GitHubRunner) workflowURL() string {
	return fmt.Sprintf("%s/repos/%s/actions/workflows/%s", g.baseURL, g.repo, url.PathEscape(g.workflow))
}

func (g *GitHubRunner) Trigger(ctx context.Context) error {
	body, _ := json.Marshal(map[string]string{"ref": g.ref})
	resp, err := g.do(ctx, http.MethodPost, g.workflowURL()+"/dispatches", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return unexpectedStatus(resp)
	}
	return nil
}

func (g *GitHubRunner) LastRun(ctx context.Context) (*model.WorkflowRun, error) {
	resp, err := g.do(ctx, http.MethodGet, g.workflowURL()+"/runs?per_page=1", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp)
	}
	var res struct {
		WorkflowRuns []struct {
			Status     string  `json:"status"`
			Conclusion *string `json:"conclusion"`
		} `json:"workflow_runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(res.WorkflowRuns) == 0 {
		return nil, nil
	}
	run := &model.WorkflowRun{Status: res.WorkflowRuns[0].Status}
	if c := res.WorkflowRuns[0].Conclusion; c != nil {
		run.Conclusion = *c
	}
	return run, nil
}

func (g *GitHubRunner) do(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	token, err := g.authToken(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// authToken returns the static token or a cached installation token,
// exchanging a fresh app JWT when the cached one is about to expire.
func (g *GitHubRunner) authToken(ctx context.Context) (string, error) {
	if g.token != "" {
		return g.token, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.instToken != "" && g.now().Add(time.Minute).Before(g.instExp) {
		return g.instToken, nil
	}

	appJWT, err := g.appJWT()
	if err != nil {
		return "", err
	}
	tokenURL := fmt.Sprintf("%s/app/installations/%d/access_tokens", g.baseURL, g.installationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+appJWT)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: %v", ErrGitHubAuth, unexpectedStatus(resp))
	}
	var res struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if res.Token == "" {
		return "", fmt.Errorf("%w: empty installation token", ErrGitHubAuth)
	}
	g.instToken, g.instExp = res.Token, res.ExpiresAt
	return g.instToken, nil
}

func (g *GitHubRunner) appJWT() (string, error) {
	now := g.now()
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(g.appID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(9 * time.Minute)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(g.key)
	if err != nil {
		return "", fmt.Errorf("sign app jwt: %w", err)
	}
	return signed, nil
}

func unexpectedStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

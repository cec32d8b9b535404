package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrRateLimited     = errors.New("rate limited")
	ErrResponseInvalid = errors.New("response invalid")
	ErrInvalidInput    = errors.New("invalid input")
)

const (
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 4096
)

type Options struct {
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
	Timeout   time.Duration
	// RequestsPerMinute paces calls; zero disables pacing.
	RequestsPerMinute int
}

func (o *Options) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://api.anthropic.com/v1"
	}
	if o.Model == "" {
		o.Model = "claude-sonnet-4-20250514"
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = 120 * time.Second
	}
}

// Client calls the Anthropic Messages API.
type Client struct {
	url       string
	apiKey    string
	model     string
	maxTokens int
	limiter   *rate.Limiter
	do        func(*http.Request) (*http.Response, error)
}

func New(opts Options) (*Client, error) {
	opts.defaults()
	if opts.APIKey == "" {
		return nil, fmt.Errorf("llm: %w: missing api key", ErrInvalidInput)
	}

	hc := &http.Client{Timeout: opts.Timeout}
	c := &Client{
		url:       strings.TrimRight(opts.BaseURL, "/") + "/messages",
		apiKey:    opts.APIKey,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		do:        hc.Do,
	}
	if opts.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return c, nil
}

func (c *Client) Model() string { return c.model }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// upstreamError carries 5xx and 408 answers, which are worth retrying.
type upstreamError struct {
	status int
	msg    string
}

func (e upstreamError) Error() string   { return fmt.Sprintf("llm upstream %d: %s", e.status, e.msg) }
func (e upstreamError) Timeout() bool   { return e.status == http.StatusRequestTimeout }
func (e upstreamError) Temporary() bool { return e.status/100 == 5 }

// Complete sends one user message and returns the text of the reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("empty prompt: %w", ErrInvalidInput)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	body, err := json.Marshal(&messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode: %v: %w", err, ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %v: %w", err, ErrInvalidInput)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", upstreamError{status: http.StatusRequestTimeout, msg: err.Error()}
		}
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		msg := strings.TrimSpace(string(slurp))
		if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode/100 == 5 {
			return "", upstreamError{status: resp.StatusCode, msg: msg}
		}
		return "", fmt.Errorf("llm upstream %d: %s: %w", resp.StatusCode, msg, ErrInvalidInput)
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", fmt.Errorf("decode: %w", ErrResponseInvalid)
	}
	var sb strings.Builder
	for _, block := range mr.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrResponseInvalid
	}
	return sb.String(), nil
}

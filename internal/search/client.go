// Package search implements the client for the semantic search provider
// (Perplexity). One Search call issues one chat-completions request and
// returns the raw response text; parsing happens elsewhere.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.perplexity.ai/chat/completions"
	defaultModel   = "llama-3.1-sonar-small-128k-online"
	defaultTimeout = 30 * time.Second

	systemPrompt = "You are an expert educational resource curator specializing in cybersecurity. " +
		"Provide accurate, up-to-date information about learning resources."
)

// searchDomains restricts provider results to known education platforms
var searchDomains = []string{
	"youtube.com", "coursera.org", "edx.org", "udemy.com", "github.com",
}

// envelopeInstruction is appended to every prompt so the provider returns a
// parseable JSON envelope. Compliance is not guaranteed; the parser has a
// fallback tier for free-text responses.
const envelopeInstruction = `

Please provide results in the following JSON format:
{
    "resources": [
        {
            "title": "Resource title",
            "url": "Full URL",
            "description": "Brief description",
            "author": "Creator/author name",
            "platform": "Platform/source",
            "duration_minutes": estimated_duration_in_minutes_or_null,
            "resource_type": "video|course|documentation|tool|book",
            "keywords": ["keyword1", "keyword2"]
        }
    ]
}

Focus on recent, high-quality resources with good educational value.`

// ProviderError reports a failed search provider call. The orchestrator
// absorbs these per prompt; they never abort a discovery run.
type ProviderError struct {
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("search provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("search provider call failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Client calls the search provider. Safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the provider endpoint. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit bounds outbound request rate
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// NewClient creates a search provider client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
		// Perplexity allows bursts; 2 req/s is comfortably under its limits
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model              string        `json:"model"`
	Messages           []chatMessage `json:"messages"`
	MaxTokens          int           `json:"max_tokens"`
	Temperature        float64       `json:"temperature"`
	TopP               float64       `json:"top_p"`
	SearchDomainFilter []string      `json:"search_domain_filter,omitempty"`
	ReturnCitations    bool          `json:"return_citations"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Search sends one prompt to the provider and returns the raw response text.
// The prompt is augmented with the JSON envelope instruction before sending.
func (c *Client) Search(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &ProviderError{Err: err}
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt + envelopeInstruction},
		},
		MaxTokens:          2000,
		Temperature:        0.1,
		TopP:               0.9,
		SearchDomainFilter: searchDomains,
		ReturnCitations:    true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &ProviderError{Err: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", &ProviderError{Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &ProviderError{StatusCode: resp.StatusCode}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Err: fmt.Errorf("reading response: %w", err)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &ProviderError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Err: fmt.Errorf("response contained no choices")}
	}

	return parsed.Choices[0].Message.Content, nil
}

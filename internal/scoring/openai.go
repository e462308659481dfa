package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aihorizon/eduscout/internal/types"
)

const (
	openAIBaseURL = "https://api.openai.com/v1/chat/completions"
	openAIModel   = "gpt-4o-mini"
)

// OpenAIScorer scores resources via the OpenAI chat completions API. It is
// the secondary LLM tier, using the same rubric prompt as the Anthropic tier.
type OpenAIScorer struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	retry      retryConfig
}

// OpenAIOption configures an OpenAIScorer
type OpenAIOption func(*OpenAIScorer)

// WithOpenAIBaseURL overrides the endpoint. Used by tests.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(s *OpenAIScorer) { s.baseURL = url }
}

// NewOpenAIScorer creates the OpenAI scoring tier
func NewOpenAIScorer(apiKey string, opts ...OpenAIOption) *OpenAIScorer {
	s := &OpenAIScorer{
		apiKey:     apiKey,
		baseURL:    openAIBaseURL,
		model:      openAIModel,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry:      defaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OpenAIScorer) Name() string { return "openai" }

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Score sends the rubric prompt and parses the bare-decimal reply
func (s *OpenAIScorer) Score(ctx context.Context, resource *types.DiscoveredResource, topic string) (float64, error) {
	prompt := buildScoringPrompt(resource, topic)

	payload := openAIRequest{
		Model:       s.model,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		MaxTokens:   10,
		Temperature: 0.1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding request: %w", err)
	}

	var text string
	err = retryWithBackoff(ctx, s.retry, func(attemptCtx context.Context) error {
		req, reqErr := http.NewRequestWithContext(attemptCtx, http.MethodPost, s.baseURL, bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := s.httpClient.Do(req)
		if doErr != nil {
			return doErr
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("openai returned status %d", resp.StatusCode)
		}

		var parsed openAIResponse
		if decErr := json.NewDecoder(resp.Body).Decode(&parsed); decErr != nil {
			return fmt.Errorf("decoding response: %w", decErr)
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("response contained no choices")
		}

		text = parsed.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("openai API call failed: %w", err)
	}

	return parseScore(text)
}

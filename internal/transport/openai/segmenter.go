package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kmsearch/internal/domain"
	"github.com/kailas-cloud/kmsearch/internal/domain/khmer"
)

// Name identifies the provider in logs and metrics.
const Name = "openai"

const systemPrompt = "You segment Khmer text into dictionary words. " +
	"Reply with the words of the user's text in their original order, separated by single spaces. " +
	"Do not translate, explain or add punctuation."

// Segmenter asks an OpenAI-compatible chat model to insert word boundaries.
type Segmenter struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// Config holds the segmentation provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewSegmenter creates an OpenAI-compatible segmentation provider.
func NewSegmenter(cfg *Config) *Segmenter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Segmenter{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Name returns the provider name.
func (s *Segmenter) Name() string { return Name }

// Segment returns the words the model found in text. Words that do not occur
// in the input are discarded. Any provider failure wraps domain.ErrSegmenterUnavailable.
func (s *Segmenter) Segment(ctx context.Context, text string) ([]string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: khmer.Normalize(text)},
		},
	})
	if err != nil {
		return nil, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty segmentation response: %w", domain.ErrSegmenterUnavailable)
	}

	haystack := khmer.Normalize(text)
	words := khmer.SplitWords(resp.Choices[0].Message.Content)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		w = khmer.Normalize(w)
		if w == "" {
			continue
		}
		if !strings.Contains(haystack, w) {
			s.logger.Debug("Discarding segment not present in input", zap.String("segment", w))
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (s *Segmenter) HealthCheck(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrSegmenterUnavailable.
func parseAPIError(err error) error {
	wrap := domain.ErrSegmenterUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("segmentation API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("segmentation API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("segmentation API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("segmentation request failed: %v: %w", err, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}

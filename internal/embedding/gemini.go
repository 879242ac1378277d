package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/cv-matcher/internal/utils"
)

const (
	DefaultGeminiModel      = "text-embedding-004"
	DefaultGeminiDimensions = 768

	defaultMaxRetries = 3
	retryBaseDelay    = 500 * time.Millisecond
	semanticTaskType  = "SEMANTIC_SIMILARITY"
	maxLogPreview     = 80
)

type embedClient interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiConfig configures the Gemini embedding backend.
type GeminiConfig struct {
	APIKey     string
	Model      string
	Dimensions int
	MaxRetries int
}

// Gemini embeds text with the Gemini embedding API.
type Gemini struct {
	client     embedClient
	model      string
	dimensions int
	maxRetries int
	logger     *zap.Logger
	wait       func(ctx context.Context, d time.Duration) error
}

// NewGemini creates the genai client once; the returned embedder is reused for every call.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGemini(client.Models, cfg, logger), nil
}

func newGemini(client embedClient, cfg GeminiConfig, logger *zap.Logger) *Gemini {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}

	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultGeminiDimensions
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gemini{
		client:     client,
		model:      model,
		dimensions: dimensions,
		maxRetries: retries,
		logger:     logger,
		wait:       utils.WaitFor,
	}
}

func (g *Gemini) Dimensions() int { return g.dimensions }

func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Embed(ctx context.Context, text string) (Vector, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Zero(g.dimensions), nil
	}

	dims := int32(g.dimensions)
	cfg := &genai.EmbedContentConfig{
		TaskType:             semanticTaskType,
		OutputDimensionality: &dims,
	}

	var lastErr error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		if attempt > 0 {
			delay := utils.Backoff(retryBaseDelay, attempt-1)
			g.logger.Debug("retrying gemini embedding request",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := g.wait(ctx, delay); err != nil {
				return nil, err
			}
		}

		g.logger.Debug("gemini embed content request",
			zap.Int("text_length", utf8.RuneCountInString(text)),
			zap.String("text_preview", utils.TruncateForLog(text, maxLogPreview)),
		)

		resp, err := g.client.EmbedContent(ctx, g.model, genai.Text(text), cfg)
		if err != nil {
			lastErr = err
			if !isTemporary(err) {
				break
			}
			continue
		}

		return g.vector(resp)
	}

	return nil, fmt.Errorf("embed content: %w", lastErr)
}

func (g *Gemini) vector(resp *genai.EmbedContentResponse) (Vector, error) {
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("gemini api returned no embeddings")
	}

	values := resp.Embeddings[0].Values
	if len(values) != g.dimensions {
		return nil, fmt.Errorf("gemini api returned %d dimensions, expected %d", len(values), g.dimensions)
	}

	v := make(Vector, len(values))
	for i, x := range values {
		v[i] = float64(x)
	}
	return v, nil
}

func isTemporary(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}

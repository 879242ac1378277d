// Package embedding provides fixed-length text embeddings and vector similarity.
package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/logger"
)

const (
	ProviderLocal  = "local"
	ProviderGemini = "gemini"
)

// Vector is a fixed-length embedding.
type Vector []float64

// Embedder turns text into a vector of a fixed dimension.
// Empty text must embed to the zero vector instead of failing.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
	Dimensions() int
	Model() string
}

// Config selects and configures an embedding backend.
type Config struct {
	Provider   string
	Model      string
	Dimensions int
	APIKey     string
	MaxRetries int
}

// New builds the backend named by cfg.Provider. An empty provider means local.
func New(ctx context.Context, cfg Config, log *zap.Logger) (Embedder, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = ProviderLocal
	}

	log = logger.WithCommonFields(log, provider, cfg.Model)

	switch provider {
	case ProviderLocal:
		return NewLocal(cfg.Model, cfg.Dimensions), nil
	case ProviderGemini:
		return NewGemini(ctx, GeminiConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			MaxRetries: cfg.MaxRetries,
		}, log)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// Cosine returns the cosine similarity of a and b clamped to [-1, 1].
// Vectors of different length or with zero norm have similarity 0.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, sim))
}

// Zero returns the baseline vector used for empty text.
func Zero(dimensions int) Vector {
	if dimensions < 0 {
		dimensions = 0
	}
	return make(Vector, dimensions)
}

func normalize(v Vector) Vector {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v
	}

	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v
}

package embedding

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

func TestCosine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   Vector
		expect float64
	}{
		{name: "identical", a: Vector{1, 2, 3}, b: Vector{1, 2, 3}, expect: 1},
		{name: "opposite", a: Vector{1, 0}, b: Vector{-1, 0}, expect: -1},
		{name: "orthogonal", a: Vector{1, 0}, b: Vector{0, 1}, expect: 0},
		{name: "zero vector", a: Vector{0, 0}, b: Vector{1, 1}, expect: 0},
		{name: "both zero", a: Zero(3), b: Zero(3), expect: 0},
		{name: "length mismatch", a: Vector{1}, b: Vector{1, 0}, expect: 0},
		{name: "empty", a: nil, b: nil, expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.expect) > 1e-12 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestLocalEmbed(t *testing.T) {
	l := NewLocal("", 0)
	if l.Dimensions() != DefaultLocalDimensions || l.Model() != DefaultLocalModel {
		t.Fatalf("unexpected defaults: %d %s", l.Dimensions(), l.Model())
	}

	ctx := context.Background()

	a, err := l.Embed(ctx, "Python, SQL and Kubernetes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := l.Embed(ctx, "python sql and kubernetes")
	c, _ := l.Embed(ctx, "Oil painting and pottery")

	if len(a) != DefaultLocalDimensions {
		t.Fatalf("expected %d dimensions, got %d", DefaultLocalDimensions, len(a))
	}

	if sim := Cosine(a, b); math.Abs(sim-1) > 1e-9 {
		t.Fatalf("expected same tokens to embed identically, got %v", sim)
	}

	if Cosine(a, c) >= Cosine(a, b) {
		t.Fatalf("expected unrelated text to be less similar")
	}

	var norm float64
	for _, x := range a {
		norm += x * x
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Fatalf("expected unit vector, got squared norm %v", norm)
	}
}

func TestLocalEmbedEmptyIsBaseline(t *testing.T) {
	l := NewLocal("custom", 16)

	for _, text := range []string{"", "   ", "\n\t"} {
		v, err := l.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(v) != 16 {
			t.Fatalf("expected 16 dimensions, got %d", len(v))
		}
		for _, x := range v {
			if x != 0 {
				t.Fatalf("expected zero vector for %q, got %v", text, v)
			}
		}
	}
}

func TestLocalEmbedWithoutASCIIWords(t *testing.T) {
	t.Parallel()

	l := NewLocal("", 0)

	for _, text := range []string{"---", "Développeur Köln", "C++ / C#", "Проектирование"} {
		a, err := l.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := l.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := Cosine(a, b); math.Abs(got-1) > 1e-9 {
			t.Fatalf("expected identical text %q to have similarity 1, got %v", text, got)
		}
	}
}

func TestLocalEmbedConcurrent(t *testing.T) {
	l := NewLocal("", 64)
	want, _ := l.Embed(context.Background(), "go developer")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := l.Embed(context.Background(), "go developer")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if Cosine(got, want) < 1-1e-9 {
				t.Errorf("expected deterministic embedding")
			}
		}()
	}
	wg.Wait()
}

func TestLocalEmbedCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewLocal("", 8).Embed(ctx, "text"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	ctx := context.Background()

	e, err := New(ctx, Config{Dimensions: 32}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := e.(*Local); !ok || e.Dimensions() != 32 {
		t.Fatalf("expected local embedder with 32 dimensions, got %T", e)
	}

	if _, err := New(ctx, Config{Provider: "openai"}, nil); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}

	if _, err := New(ctx, Config{Provider: "Gemini"}, nil); err == nil {
		t.Fatalf("expected error for gemini without api key")
	}
}

type stubEmbedClient struct {
	mu        sync.Mutex
	responses []stubEmbedResponse
	calls     int
	lastModel string
	lastCfg   *genai.EmbedContentConfig
}

type stubEmbedResponse struct {
	resp *genai.EmbedContentResponse
	err  error
}

func (s *stubEmbedClient) EmbedContent(_ context.Context, model string, _ []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.lastModel = model
	s.lastCfg = cfg

	if len(s.responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r.resp, r.err
}

func embeddingResponse(values ...float32) *genai.EmbedContentResponse {
	return &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: values}},
	}
}

func newTestGemini(client embedClient, dims, retries int) *Gemini {
	g := newGemini(client, GeminiConfig{Dimensions: dims, MaxRetries: retries}, zap.NewNop())
	g.wait = func(context.Context, time.Duration) error { return nil }
	return g
}

func TestGeminiEmbed(t *testing.T) {
	stub := &stubEmbedClient{responses: []stubEmbedResponse{{resp: embeddingResponse(0.5, -0.5, 1)}}}
	g := newTestGemini(stub, 3, 1)

	v, err := g.Embed(context.Background(), "Go developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(v) != 3 || v[0] != 0.5 || v[1] != -0.5 || v[2] != 1 {
		t.Fatalf("unexpected vector: %v", v)
	}

	if stub.lastModel != DefaultGeminiModel {
		t.Fatalf("unexpected model: %s", stub.lastModel)
	}
	if stub.lastCfg == nil || stub.lastCfg.OutputDimensionality == nil || *stub.lastCfg.OutputDimensionality != 3 {
		t.Fatalf("expected output dimensionality to be requested, got %+v", stub.lastCfg)
	}
}

func TestGeminiEmbedEmptyTextSkipsAPI(t *testing.T) {
	stub := &stubEmbedClient{}
	g := newTestGemini(stub, 4, 1)

	v, err := g.Embed(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v) != 4 || Cosine(v, v) != 0 {
		t.Fatalf("expected zero baseline vector, got %v", v)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no api calls, got %d", stub.calls)
	}
}

func TestGeminiEmbedRetriesTemporaryErrors(t *testing.T) {
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	stub := &stubEmbedClient{responses: []stubEmbedResponse{
		{err: tempErr},
		{err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}},
		{resp: embeddingResponse(1, 0)},
	}}
	g := newTestGemini(stub, 2, 3)

	if _, err := g.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if stub.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", stub.calls)
	}
}

func TestGeminiEmbedStopsAfterRetriesExhausted(t *testing.T) {
	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	stub := &stubEmbedClient{responses: []stubEmbedResponse{{err: tempErr}, {err: tempErr}}}
	g := newTestGemini(stub, 2, 2)

	_, err := g.Embed(context.Background(), "text")

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", stub.calls)
	}
}

func TestGeminiEmbedDoesNotRetryClientErrors(t *testing.T) {
	stub := &stubEmbedClient{responses: []stubEmbedResponse{
		{err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}},
	}}
	g := newTestGemini(stub, 2, 3)

	if _, err := g.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error")
	}
	if stub.calls != 1 {
		t.Fatalf("expected single call, got %d", stub.calls)
	}
}

func TestGeminiEmbedRejectsWrongDimensions(t *testing.T) {
	stub := &stubEmbedClient{responses: []stubEmbedResponse{{resp: embeddingResponse(1, 2)}}}
	g := newTestGemini(stub, 3, 1)

	if _, err := g.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

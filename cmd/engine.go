package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/embedding"
	"github.com/spigell/cv-matcher/internal/loader"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/parser"
	"github.com/spigell/cv-matcher/internal/scoring"
	"github.com/spigell/cv-matcher/internal/secrets"
)

// session carries what every command needs for one run.
type session struct {
	config *Config
	logger *zap.Logger
	parser *parser.Parser
}

func newSession(command string) *session {
	base, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		base.Fatal("getting a config", zap.Error(err))
	}

	requestID := uuid.NewString()
	l := logger.WithRequest(base, requestID, "").With(zap.String("command", command))

	l.Info("starting the cv-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	l.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return &session{
		config: config,
		logger: l,
		parser: parser.New(parser.Config{
			SectionKeywords: config.Parser.SectionKeywords,
			NoiseKeywords:   config.Parser.NoiseKeywords,
		}, l),
	}
}

// parseFile loads a document and returns its structured record.
func (s *session) parseFile(path string) (*parser.Record, error) {
	text, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("document loaded",
		zap.String(logger.FieldDocument, path),
		zap.Int("text_length", len(text)),
	)

	return s.parser.Parse(text), nil
}

func (s *session) newScorer(ctx context.Context) (*scoring.Scorer, error) {
	cfg := s.config.Embedding

	var apiKey string
	if strings.EqualFold(strings.TrimSpace(cfg.Provider), embedding.ProviderGemini) {
		key, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set embedding.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}
		apiKey = key
	}

	embedder, err := embedding.New(ctx, embedding.Config{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		APIKey:     apiKey,
		MaxRetries: cfg.MaxRetries,
	}, s.logger)
	if err != nil {
		return nil, fmt.Errorf("building embedder: %w", err)
	}

	opts, err := scoring.DecodeOptions(viper.GetStringMap("scoring"))
	if err != nil {
		return nil, err
	}

	scorer, err := scoring.New(embedder, opts, logger.WithCommonFields(s.logger, cfg.Provider, embedder.Model()))
	if err != nil {
		return nil, err
	}

	s.logger.Info("scorer ready",
		zap.String(logger.FieldModel, embedder.Model()),
		zap.Int("dimensions", embedder.Dimensions()),
		zap.Any("weights", scorer.Weights()),
	)

	return scorer, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func redacted(config *Config) *Config {
	if config == nil || config.Embedding == nil || config.Embedding.Gemini == nil || config.Embedding.Gemini.APIKey == "" {
		return config
	}

	copied := *config
	embeddingCfg := *config.Embedding
	gemini := *config.Embedding.Gemini
	gemini.APIKey = "***"
	embeddingCfg.Gemini = &gemini
	copied.Embedding = &embeddingCfg
	return &copied
}

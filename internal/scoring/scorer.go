// Package scoring compares a CV with a job description section by section and
// combines the similarities into one weighted score.
package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/embedding"
	"github.com/spigell/cv-matcher/internal/parser"
)

// ScoredSections are compared in this order. The order decides ties for the best match.
var ScoredSections = []string{WeightSkills, WeightExperience, WeightEducation}

// Report is the result of one scoring call.
type Report struct {
	Similarities     map[string]float64 `json:"similarities"`
	BestMatchSection string             `json:"best_match_section"`
	BestMatchScore   float64            `json:"best_match_score"`
	TotalScore       float64            `json:"total_score"`
}

// Contribution is the share of one section in the total score.
type Contribution struct {
	Section    string  `json:"section"`
	Similarity float64 `json:"similarity"`
	Weight     float64 `json:"weight"`
	Score      float64 `json:"score"`
}

// Scorer is read-only after construction and safe for concurrent use.
type Scorer struct {
	embedder embedding.Embedder
	weights  map[string]float64
	logger   *zap.Logger
}

// New validates the options and returns a scorer bound to the embedder.
func New(embedder embedding.Embedder, opts Options, logger *zap.Logger) (*Scorer, error) {
	if embedder == nil {
		return nil, &ConfigurationError{Reason: "embedder is required"}
	}

	if opts.ModelID != "" && opts.ModelID != embedder.Model() {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("embedder serves model %q, scorer is configured for %q", embedder.Model(), opts.ModelID),
		}
	}

	if err := validateWeights(opts.Weights); err != nil {
		return nil, err
	}

	weights := make(map[string]float64, len(opts.Weights))
	for k, v := range opts.Weights {
		weights[k] = v
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{embedder: embedder, weights: weights, logger: logger}, nil
}

// Weights returns a copy of the configured weights.
func (s *Scorer) Weights() map[string]float64 {
	out := make(map[string]float64, len(s.weights))
	for k, v := range s.weights {
		out[k] = v
	}
	return out
}

// Score embeds the scored sections of both records and returns the weighted report.
// The others weight takes part in validation only.
func (s *Scorer) Score(ctx context.Context, cv, jd *parser.Record) (*Report, error) {
	report := &Report{
		Similarities: make(map[string]float64, len(ScoredSections)),
	}

	best := -1.0
	var total float64

	for _, section := range ScoredSections {
		sim, err := s.similarity(ctx, cv.Section(section), jd.Section(section))
		if err != nil {
			return nil, fmt.Errorf("scoring %s section: %w", section, err)
		}

		report.Similarities[section] = sim
		total += sim * 100 * s.weights[section]

		if sim > best {
			best = sim
			report.BestMatchSection = section
		}
	}

	report.BestMatchScore = round2(best * 100)
	report.TotalScore = round2(total)

	s.logger.Debug("documents scored",
		zap.Float64("total_score", report.TotalScore),
		zap.String("best_match_section", report.BestMatchSection),
		zap.Float64("best_match_score", report.BestMatchScore),
	)

	return report, nil
}

// Explain splits the report total into per-section contributions in scoring order.
func (s *Scorer) Explain(report *Report) []Contribution {
	if report == nil {
		return nil
	}

	out := make([]Contribution, 0, len(ScoredSections))
	for _, section := range ScoredSections {
		sim := report.Similarities[section]
		w := s.weights[section]
		out = append(out, Contribution{
			Section:    section,
			Similarity: sim,
			Weight:     w,
			Score:      round2(sim * 100 * w),
		})
	}
	return out
}

func (s *Scorer) similarity(ctx context.Context, a, b string) (float64, error) {
	va, err := s.embedder.Embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := s.embedder.Embed(ctx, b)
	if err != nil {
		return 0, err
	}
	return embedding.Cosine(va, vb), nil
}

// ToMap renders the report with one {section}_similarity key per scored section.
func (r *Report) ToMap() map[string]any {
	out := make(map[string]any, len(ScoredSections)+3)
	for _, section := range ScoredSections {
		out[section+"_similarity"] = r.Similarities[section]
	}
	out["best_match_score"] = r.BestMatchScore
	out["best_match_section"] = capitalize(r.BestMatchSection)
	out["total_score"] = r.TotalScore
	return out
}

// MissingKeywords returns the sorted lowercase tokens that appear in a job
// description section but not in the same CV section.
func MissingKeywords(cv, jd *parser.Record) []string {
	missing := make(map[string]struct{})
	for _, section := range ScoredSections {
		have := tokens(cv.Section(section))
		for token := range tokens(jd.Section(section)) {
			if _, ok := have[token]; !ok {
				missing[token] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(missing))
	for token := range missing {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

func tokens(text string) map[string]struct{} {
	fields := strings.Fields(strings.ReplaceAll(strings.ToLower(text), ",", " "))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

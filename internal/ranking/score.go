package ranking

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-matcher/internal/parser"
	"github.com/spigell/cv-matcher/internal/scoring"
)

const defaultConcurrency = 4

// Scorer scores one CV record against a job description record.
type Scorer interface {
	Score(ctx context.Context, cv, jd *parser.Record) (*scoring.Report, error)
}

// ScoreAll fills Report and Missing for every candidate. At most limit
// candidates are scored at the same time; the first failure cancels the rest.
func ScoreAll(ctx context.Context, logger *zap.Logger, scorer Scorer, jd *parser.Record, c *Candidates, limit int) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = defaultConcurrency
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, candidate := range c.Items {
		g.Go(func() error {
			report, err := scorer.Score(ctx, candidate.Record, jd)
			if err != nil {
				return fmt.Errorf("scoring candidate %q: %w", candidate.Name, err)
			}

			candidate.Report = report
			candidate.Missing = scoring.MissingKeywords(candidate.Record, jd)

			logger.Debug("candidate scored",
				zap.String("candidate", candidate.Name),
				zap.Float64("total_score", report.TotalScore),
				zap.Int("missing_keywords", len(candidate.Missing)),
			)
			return nil
		})
	}

	return g.Wait()
}

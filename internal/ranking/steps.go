package ranking

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/parser"
)

const (
	MinimumScoreFilter    = "minimum_score"
	MissingKeywordsFilter = "missing_keywords"
	RequiredContactFilter = "required_contact"
)

// toggle carries the enable state shared by all filters.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type minimumScoreFilter struct {
	toggle
	minimum float64
}

// NewMinimumScore creates a filter that drops candidates below the configured total score.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return MinimumScoreFilter }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg != nil {
		f.minimum = cfg.MinimumScore
	}
	if f.minimum < 0 || f.minimum > 100 {
		return fmt.Errorf("minimum score must be within [0, 100], got %v", f.minimum)
	}
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, logger *zap.Logger, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if f.minimum == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.Exclude(func(candidate *Candidate) bool {
		return candidate.Report == nil || candidate.Report.TotalScore < f.minimum
	})
	if len(excluded) > 0 {
		logger.Info("excluding candidates below minimum score",
			zap.Float64("minimum_score", f.minimum),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": fmt.Sprintf("%.2f", f.minimum)},
	}
}

type missingKeywordsFilter struct {
	toggle
	max int
}

// NewMissingKeywords creates a filter that drops candidates missing too many job keywords.
// A zero limit turns the filter into a no-op.
func NewMissingKeywords() Filter {
	return &missingKeywordsFilter{}
}

func (f *missingKeywordsFilter) Name() string { return MissingKeywordsFilter }

func (f *missingKeywordsFilter) Validate(cfg *Config) error {
	f.max = 0
	if cfg != nil {
		f.max = cfg.MaxMissingKeywords
	}
	if f.max < 0 {
		return fmt.Errorf("max missing keywords must not be negative, got %d", f.max)
	}
	return nil
}

func (f *missingKeywordsFilter) Apply(_ context.Context, logger *zap.Logger, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if f.max == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.Exclude(func(candidate *Candidate) bool {
		return len(candidate.Missing) > f.max
	})
	if len(excluded) > 0 {
		logger.Info("excluding candidates with too many missing keywords",
			zap.Int("max_missing_keywords", f.max),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *missingKeywordsFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"max_missing_keywords": strconv.Itoa(f.max)},
	}
}

type requiredContactFilter struct {
	toggle
	fields []string
}

// NewRequiredContact creates a filter that drops candidates lacking any configured contact field.
func NewRequiredContact() Filter {
	return &requiredContactFilter{}
}

func (f *requiredContactFilter) Name() string { return RequiredContactFilter }

func (f *requiredContactFilter) Validate(cfg *Config) error {
	f.fields = nil
	if cfg == nil {
		return nil
	}

	for _, field := range cfg.RequiredContact {
		field = strings.ToLower(strings.TrimSpace(field))
		switch field {
		case parser.ContactEmail, parser.ContactPhone, parser.ContactGitHub, parser.ContactLinkedIn:
			f.fields = append(f.fields, field)
		default:
			return fmt.Errorf("unknown contact field %q", field)
		}
	}
	return nil
}

func (f *requiredContactFilter) Apply(_ context.Context, logger *zap.Logger, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if len(f.fields) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.Exclude(func(candidate *Candidate) bool {
		if candidate.Record == nil {
			return true
		}
		for _, field := range f.fields {
			if candidate.Record.Contact[field] == "" {
				return true
			}
		}
		return false
	})
	if len(excluded) > 0 {
		logger.Info("excluding candidates without required contact fields",
			zap.Strings("required_contact", f.fields),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *requiredContactFilter) Status() Status {
	details := map[string]string{}
	if len(f.fields) > 0 {
		details["fields"] = strings.Join(f.fields, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

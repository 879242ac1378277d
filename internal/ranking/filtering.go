// Package ranking scores many CVs against one job description, filters the
// results through ordered steps and orders them by total score.
package ranking

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Filter represents a single filtering step applied to candidates.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, logger *zap.Logger, c *Candidates) (*Candidates, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains thresholds consumed by the filters.
type Config struct {
	MinimumScore       float64
	MaxMissingKeywords int
	RequiredContact    []string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Filtering runs its steps in order over a candidate list.
type Filtering struct {
	Config *Config
	Steps  []Filter
	Logger *zap.Logger
}

// DefaultSteps returns the built-in filters in execution order.
func DefaultSteps() []Filter {
	return []Filter{
		NewMinimumScore(),
		NewMissingKeywords(),
		NewRequiredContact(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every enabled step first and then applies them sequentially.
func (f *Filtering) Run(ctx context.Context, c *Candidates) (*Candidates, error) {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range f.Steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(f.Config); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range f.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !step.IsEnabled() {
			logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, logger, c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		c = next
	}

	return c, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	WeightSkills     = "skills"
	WeightExperience = "experience"
	WeightEducation  = "education"
	WeightOthers     = "others"

	// Same tolerance as numpy.isclose(sum, 1.0).
	weightAbsTolerance = 1e-8
	weightRelTolerance = 1e-5
)

// Options is the injectable scorer configuration.
type Options struct {
	// ModelID is the embedding model the scorer expects. Empty accepts any model.
	ModelID string             `mapstructure:"model_id"`
	Weights map[string]float64 `mapstructure:"weights"`
}

// DefaultWeights returns a fresh copy of the default section weights.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		WeightSkills:     0.4,
		WeightExperience: 0.3,
		WeightEducation:  0.15,
		WeightOthers:     0.15,
	}
}

// DefaultOptions uses the default weights and accepts any embedding model.
func DefaultOptions() Options {
	return Options{Weights: DefaultWeights()}
}

// DecodeOptions builds Options from a loosely typed mapping such as a config
// subtree. Weights that are absent fall back to the defaults as a whole.
func DecodeOptions(raw map[string]any) (Options, error) {
	var opts Options

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Options{}, fmt.Errorf("creating options decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return Options{}, &ConfigurationError{Reason: fmt.Sprintf("decoding scorer options: %v", err)}
	}

	if opts.Weights == nil {
		opts.Weights = DefaultWeights()
	}

	return opts, nil
}

// ConfigurationError reports a scorer configuration that cannot be used.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid scorer configuration: " + e.Reason
}

func validateWeights(weights map[string]float64) error {
	var missing []string
	for _, key := range []string{WeightSkills, WeightExperience, WeightEducation, WeightOthers} {
		if _, ok := weights[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &ConfigurationError{Reason: "missing weights: " + strings.Join(missing, ", ")}
	}

	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sum float64
	for _, k := range keys {
		w := weights[k]
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return &ConfigurationError{Reason: fmt.Sprintf("weight %q must be a non-negative number, got %v", k, w)}
		}
		sum += w
	}

	if math.Abs(sum-1) > weightAbsTolerance+weightRelTolerance {
		return &ConfigurationError{Reason: fmt.Sprintf("weights must sum to 1.0, got %v", sum)}
	}

	return nil
}

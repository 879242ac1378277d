package embedding

import (
	"context"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	DefaultLocalModel      = "hashing-trigram-v1"
	DefaultLocalDimensions = 384

	wordWeight    = 1.0
	trigramWeight = 0.5
	rawWeight     = 1.0
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}+#]+`)

// Local is a deterministic feature-hashing embedder. Words and their character
// trigrams are hashed into signed buckets and the result is L2-normalized.
// Text with no words, such as bare punctuation, is hashed as a whole.
// Blank text embeds to the zero vector.
// It needs no model download and has no state, so it is safe for concurrent use.
type Local struct {
	model      string
	dimensions int
}

func NewLocal(model string, dimensions int) *Local {
	if strings.TrimSpace(model) == "" {
		model = DefaultLocalModel
	}
	if dimensions <= 0 {
		dimensions = DefaultLocalDimensions
	}
	return &Local{model: model, dimensions: dimensions}
}

func (l *Local) Embed(ctx context.Context, text string) (Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := Zero(l.dimensions)
	lowered := strings.ToLower(text)

	words := wordPattern.FindAllString(lowered, -1)
	if len(words) == 0 {
		if raw := strings.TrimSpace(lowered); raw != "" {
			l.add(v, "r:"+raw, rawWeight)
		}
		return normalize(v), nil
	}

	for _, word := range words {
		l.add(v, "w:"+word, wordWeight)

		padded := []rune(" " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			l.add(v, "g:"+string(padded[i:i+3]), trigramWeight)
		}
	}

	return normalize(v), nil
}

func (l *Local) Dimensions() int { return l.dimensions }

func (l *Local) Model() string { return l.model }

func (l *Local) add(v Vector, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	idx := int(h % uint64(l.dimensions))
	if h>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}

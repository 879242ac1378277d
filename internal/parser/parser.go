// Package parser turns free-form resume and job description text into structured records.
package parser

import (
	"time"

	"go.uber.org/zap"
)

// Config controls the heuristics used by the Parser. Empty lists fall back to defaults.
// Record sections whose header is not in SectionKeywords are left empty.
type Config struct {
	SectionKeywords []string
	NoiseKeywords   []string
	// Now overrides the clock used for "Present" and "Now".
	Now func() time.Time
}

// Parser composes contact, section and experience extraction.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	segmenter  *Segmenter
	experience *ExperienceExtractor
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}

	noise := cfg.NoiseKeywords
	if len(noise) == 0 {
		noise = DefaultNoiseKeywords
	}

	return &Parser{
		segmenter:  NewSegmenter(cfg.SectionKeywords),
		experience: NewExperienceExtractor(&DateParser{Now: cfg.Now}, noise, logger),
		logger:     logger,
	}
}

// section is empty for record sections missing from the configured keywords.
func (p *Parser) section(text, keyword string) string {
	if !p.segmenter.Has(keyword) {
		return ""
	}
	return p.segmenter.Section(text, keyword)
}

// Parse extracts a Record from text. It never fails: missing structure yields
// empty strings and an empty entry list.
func (p *Parser) Parse(text string) *Record {
	record := &Record{
		Contact:    ExtractContact(text),
		Education:  p.section(text, SectionEducation),
		Experience: p.section(text, SectionExperience),
		Skills:     p.section(text, SectionSkills),
		Projects:   p.section(text, SectionProjects),
	}
	record.ExperienceEntries = p.experience.Extract(record.Experience)

	p.logger.Debug("document parsed",
		zap.Int("contact_fields", len(record.Contact)),
		zap.Int("education_length", len(record.Education)),
		zap.Int("experience_length", len(record.Experience)),
		zap.Int("skills_length", len(record.Skills)),
		zap.Int("projects_length", len(record.Projects)),
		zap.Int("experience_entries", len(record.ExperienceEntries)),
	)

	return record
}

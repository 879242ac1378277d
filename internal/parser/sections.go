package parser

import (
	"regexp"
	"strings"
)

const (
	SectionEducation  = "Education"
	SectionExperience = "Experience"
	SectionSkills     = "Skills"
	SectionProjects   = "Projects"
)

// DefaultSectionKeywords are the recognized section headers in their lookup order.
var DefaultSectionKeywords = []string{SectionEducation, SectionExperience, SectionSkills, SectionProjects}

// Segmenter cuts a document into sections using header keywords.
// Only the first occurrence of a header is considered.
type Segmenter struct {
	keywords []string
	patterns map[string]*regexp.Regexp
}

func NewSegmenter(keywords []string) *Segmenter {
	if len(keywords) == 0 {
		keywords = DefaultSectionKeywords
	}

	s := &Segmenter{
		keywords: append([]string(nil), keywords...),
		patterns: make(map[string]*regexp.Regexp, len(keywords)),
	}
	for _, k := range s.keywords {
		s.patterns[strings.ToLower(k)] = keywordPattern(k)
	}

	return s
}

// Keywords returns a copy of the configured section keywords.
func (s *Segmenter) Keywords() []string {
	return append([]string(nil), s.keywords...)
}

// Has reports whether keyword is one of the configured section headers.
func (s *Segmenter) Has(keyword string) bool {
	_, ok := s.patterns[strings.ToLower(keyword)]
	return ok
}

// Section returns the trimmed text between the first occurrence of keyword and the
// nearest following header of any other section. It is empty when keyword is absent.
func (s *Segmenter) Section(text, keyword string) string {
	loc := s.pattern(keyword).FindStringIndex(text)
	if loc == nil {
		return ""
	}

	start := loc[1]
	end := len(text)
	rest := text[start:]

	for _, other := range s.keywords {
		if strings.EqualFold(other, keyword) {
			continue
		}
		if m := s.pattern(other).FindStringIndex(rest); m != nil && start+m[0] < end {
			end = start + m[0]
		}
	}

	return strings.TrimSpace(text[start:end])
}

func (s *Segmenter) pattern(keyword string) *regexp.Regexp {
	if re, ok := s.patterns[strings.ToLower(keyword)]; ok {
		return re
	}
	return keywordPattern(keyword)
}

func keywordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword))
}

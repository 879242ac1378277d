package parser

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/utils"
)

// DefaultNoiseKeywords cut trailing clauses off experience labels.
// Matching is case-sensitive and works on substrings.
var DefaultNoiseKeywords = []string{"During", "Business", "Website", "Key", "As"}

const (
	numericDate   = `\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`
	monthYearDate = `[A-Za-z]{3,}\.? ?\d{4}`
	yearMonthDate = `\d{4}[/-]\d{2}`

	labelTrimCutset = " -–—:"
	daysPerYear     = 365
)

var (
	dateRangePattern = regexp.MustCompile(`(?i)` +
		`(?P<start>(?:` + numericDate + `|` + monthYearDate + `|` + yearMonthDate + `))` +
		`\s*(?:-|–|—|to)\s*` +
		`(?P<end>(?:` + numericDate + `|Present|Now|` + monthYearDate + `|` + yearMonthDate + `))`)

	connectorPrefix = regexp.MustCompile(`^[a-z]+(?:\s+[a-z]+)*,\s*`)
	roleAtCompany   = regexp.MustCompile(`(?i)^(?P<role>.+?)\s+at\s+(?P<company>.+)`)

	startGroup = dateRangePattern.SubexpIndex("start")
	endGroup   = dateRangePattern.SubexpIndex("end")
)

// ExperienceExtractor finds dated positions in the text of an experience section.
type ExperienceExtractor struct {
	dates  *DateParser
	noise  *regexp.Regexp
	logger *zap.Logger
}

func NewExperienceExtractor(dates *DateParser, noiseKeywords []string, logger *zap.Logger) *ExperienceExtractor {
	if dates == nil {
		dates = &DateParser{}
	}
	if noiseKeywords == nil {
		noiseKeywords = DefaultNoiseKeywords
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ExperienceExtractor{
		dates:  dates,
		noise:  noisePattern(noiseKeywords),
		logger: logger,
	}
}

// Extract scans text line by line and returns one entry per parseable date range,
// in the order they appear. Ranges with unknown date formats are skipped.
func (x *ExperienceExtractor) Extract(text string) []ExperienceEntry {
	entries := make([]ExperienceEntry, 0)
	if strings.TrimSpace(text) == "" {
		return entries
	}

	for _, line := range strings.Split(text, "\n") {
		seg := strings.TrimSpace(line)
		if seg == "" {
			continue
		}

		for _, m := range dateRangePattern.FindAllStringSubmatchIndex(seg, -1) {
			startRaw := seg[m[2*startGroup]:m[2*startGroup+1]]
			endRaw := seg[m[2*endGroup]:m[2*endGroup+1]]

			start, end := x.dates.Parse(startRaw), x.dates.Parse(endRaw)
			if !start.Parsed || !end.Parsed {
				x.logger.Debug("skipping date range with unknown format",
					zap.String("start", startRaw),
					zap.String("end", endRaw),
					zap.String("line", utils.TruncateForLog(seg, 80)),
				)
				continue
			}

			role, company := x.label(seg, m[0], m[1])

			entry := ExperienceEntry{
				Role:    role,
				Company: company,
				Start:   start.Time,
				End:     end.Time,
			}
			entry.DurationYears = durationYears(entry)

			entries = append(entries, entry)
		}
	}

	return entries
}

func (x *ExperienceExtractor) label(seg string, from, to int) (string, string) {
	label := strings.TrimSpace(seg[to:])
	if label == "" {
		label = strings.TrimSpace(seg[:from])
	}

	if x.noise != nil {
		if loc := x.noise.FindStringIndex(label); loc != nil {
			label = label[:loc[0]]
		}
	}
	label = strings.Trim(label, labelTrimCutset)
	label = connectorPrefix.ReplaceAllString(label, "")

	if m := roleAtCompany.FindStringSubmatch(label); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}

	return label, ""
}

// durationYears measures the normalized interval in whole days over 365.
func durationYears(e ExperienceEntry) float64 {
	return e.Days() / daysPerYear
}

func noisePattern(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(k))
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

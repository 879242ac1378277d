package parser

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts is tried in order, the first successful layout wins.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006-1",
	"2006/1",
	"2-1-2006",
	"2/1/2006",
	"Jan 2006",
	"January 2006",
}

// DateFormatError is returned when a date string matches none of the known layouts.
type DateFormatError struct {
	Value string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("unknown date format: %q", e.Value)
}

// Date is the outcome of parsing one date candidate: either Parsed or Unparsed.
type Date struct {
	Time   time.Time
	Parsed bool
	Value  string
}

// DateParser parses dates found in resumes. The zero value is ready to use.
type DateParser struct {
	// Now resolves "present" and "now". Defaults to time.Now.
	Now func() time.Time
}

// Parse never fails: unknown formats come back with Parsed set to false.
func (p *DateParser) Parse(value string) Date {
	t, err := p.ParseTime(value)
	if err != nil {
		return Date{Value: value}
	}
	return Date{Time: t, Parsed: true, Value: value}
}

// ParseTime parses a single date string, returning *DateFormatError when no layout matches.
func (p *DateParser) ParseTime(value string) (time.Time, error) {
	s := strings.TrimSpace(value)

	switch strings.ToLower(s) {
	case "present", "now":
		return p.now(), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &DateFormatError{Value: value}
}

func (p *DateParser) now() time.Time {
	if p == nil || p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

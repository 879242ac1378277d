package parser

import (
	"math"
	"strings"
	"time"
)

// Record is the structured view of one document (a CV or a job description).
type Record struct {
	Contact           map[string]string `json:"contact"`
	Education         string            `json:"education"`
	Experience        string            `json:"experience"`
	Skills            string            `json:"skills"`
	Projects          string            `json:"projects"`
	ExperienceEntries []ExperienceEntry `json:"experience_details"`
}

// ExperienceEntry is a dated position found in the experience section.
// End is not guaranteed to be after Start.
type ExperienceEntry struct {
	Role          string    `json:"role"`
	Company       string    `json:"company"`
	Start         time.Time `json:"start_date"`
	End           time.Time `json:"end_date"`
	DurationYears float64   `json:"duration"`
}

// Title is the human readable label of the entry.
func (e ExperienceEntry) Title() string {
	if e.Company == "" {
		return e.Role
	}
	return e.Role + " at " + e.Company
}

// Normalized returns the entry interval ordered so that start <= end.
func (e ExperienceEntry) Normalized() (time.Time, time.Time) {
	if e.End.Before(e.Start) {
		return e.End, e.Start
	}
	return e.Start, e.End
}

// Days is the number of whole days in the normalized interval.
func (e ExperienceEntry) Days() float64 {
	start, end := e.Normalized()
	return math.Floor(end.Sub(start).Hours() / 24)
}

// Section returns the text of a section by its case-insensitive name.
func (r *Record) Section(name string) string {
	if r == nil {
		return ""
	}

	switch strings.ToLower(name) {
	case "education":
		return r.Education
	case "experience":
		return r.Experience
	case "skills":
		return r.Skills
	case "projects":
		return r.Projects
	default:
		return ""
	}
}

// ToMap renders the record with the keys expected by presentation layers.
func (r *Record) ToMap() map[string]any {
	details := make([]map[string]any, 0, len(r.ExperienceEntries))
	for _, e := range r.ExperienceEntries {
		details = append(details, map[string]any{
			"role":       e.Role,
			"company":    e.Company,
			"start_date": e.Start,
			"end_date":   e.End,
			"duration":   e.DurationYears,
		})
	}

	contact := make(map[string]string, len(r.Contact))
	for k, v := range r.Contact {
		contact[k] = v
	}

	return map[string]any{
		"contact":            contact,
		"education":          r.Education,
		"experience":         r.Experience,
		"skills":             r.Skills,
		"projects":           r.Projects,
		"experience_details": details,
	}
}

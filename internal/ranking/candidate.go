package ranking

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/cv-matcher/internal/parser"
	"github.com/spigell/cv-matcher/internal/scoring"
)

// Candidate is one CV scored against a job description.
type Candidate struct {
	Name    string          `json:"name"`
	Source  string          `json:"source,omitempty"`
	Record  *parser.Record  `json:"record"`
	Report  *scoring.Report `json:"report,omitempty"`
	Missing []string        `json:"missing_keywords"`
}

type Candidates struct {
	Items []*Candidate `json:"items"`
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

// Names returns candidate names in list order.
func (c *Candidates) Names() []string {
	names := make([]string, 0, len(c.Items))
	for _, candidate := range c.Items {
		names = append(names, candidate.Name)
	}
	return names
}

// Sort orders candidates by total score, highest first. Unscored candidates go last
// and equal scores keep their input order.
func (c *Candidates) Sort() {
	sort.SliceStable(c.Items, func(i, j int) bool {
		return totalScore(c.Items[i]) > totalScore(c.Items[j])
	})
}

// Exclude removes candidates for which drop returns true and returns their names.
// The remaining candidates keep their order.
func (c *Candidates) Exclude(drop func(*Candidate) bool) []string {
	var excluded []string
	kept := c.Items[:0]
	for _, candidate := range c.Items {
		if drop(candidate) {
			excluded = append(excluded, candidate.Name)
			continue
		}
		kept = append(kept, candidate)
	}

	for i := len(kept); i < len(c.Items); i++ {
		c.Items[i] = nil
	}
	c.Items = kept

	return excluded
}

// ReportBySection groups candidates by the section that matched best.
func (c *Candidates) ReportBySection() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, candidate := range c.Items {
		if candidate.Report == nil {
			continue
		}

		key := candidate.Report.BestMatchSection
		report[key] = append(report[key], map[string]string{
			"name":             candidate.Name,
			"source":           candidate.Source,
			"total score":      strconv.FormatFloat(candidate.Report.TotalScore, 'f', 2, 64),
			"best match score": strconv.FormatFloat(candidate.Report.BestMatchScore, 'f', 2, 64),
			"missing keywords": strings.Join(candidate.Missing, ", "),
		})
	}
	return report
}

func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", fmt.Errorf("encoding candidates: %w", err)
	}
	return file.Name(), nil
}

func totalScore(c *Candidate) float64 {
	if c.Report == nil {
		return -1
	}
	return c.Report.TotalScore
}

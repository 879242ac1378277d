package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/cv-matcher/internal/parser"
	"github.com/spigell/cv-matcher/internal/ranking"
	"github.com/spigell/cv-matcher/internal/scoring"
)

func testResult() *matchResult {
	return &matchResult{
		CV: &parser.Record{
			Contact: map[string]string{parser.ContactEmail: "jane@example.com"},
			Skills:  "go sql",
		},
		Report: &scoring.Report{
			Similarities:     map[string]float64{"skills": 0.9, "experience": 0.5, "education": 0.1},
			BestMatchSection: "skills",
			BestMatchScore:   90,
			TotalScore:       52.5,
		},
		Missing: []string{"aws"},
		source:  "cv/jane.txt",
	}
}

func TestHandleAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action string
		expect string
	}{
		{action: PromptReport, expect: `"best_match_section": "Skills"`},
		{action: PromptMissingKeywords, expect: `"aws"`},
		{action: PromptTimeline, expect: `"total_years": 0`},
		{action: PromptStructuredCV, expect: `"jane@example.com"`},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			if err := handleAction(tt.action, &out, zap.NewNop(), testResult()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out.String(), tt.expect) {
				t.Fatalf("expected output to contain %s, got %s", tt.expect, out.String())
			}
		})
	}
}

func TestHandleActionExitAndUnknown(t *testing.T) {
	if err := handleAction(PromptExit, &bytes.Buffer{}, zap.NewNop(), testResult()); !errors.Is(err, errExit) {
		t.Fatalf("expected errExit, got %v", err)
	}
	if err := handleAction("dance", &bytes.Buffer{}, zap.NewNop(), testResult()); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestHandleActionDumpToFile(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	if err := handleAction(PromptResultToFile, &bytes.Buffer{}, zap.New(core), testResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("dumping result to file").All()
	if len(entries) != 1 {
		t.Fatalf("expected dump log entry, got %d", len(entries))
	}

	filename, _ := entries[0].ContextMap()["filename"].(string)
	t.Cleanup(func() { os.Remove(filename) })

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}

	var dumped ranking.Candidates
	if err := json.Unmarshal(data, &dumped); err != nil {
		t.Fatalf("decoding dump: %v", err)
	}
	if dumped.Len() != 1 || dumped.Items[0].Name != "jane.txt" || dumped.Items[0].Report.TotalScore != 52.5 {
		t.Fatalf("unexpected dump: %s", data)
	}
}

func TestRedactedHidesAPIKey(t *testing.T) {
	config := &Config{Embedding: &EmbeddingConfig{Gemini: &GeminiConfig{APIKey: "secret"}}}

	r := redacted(config)
	if r.Embedding.Gemini.APIKey != "***" {
		t.Fatalf("expected redacted key, got %q", r.Embedding.Gemini.APIKey)
	}
	if config.Embedding.Gemini.APIKey != "secret" {
		t.Fatal("original config must not change")
	}
}

func TestRankedRows(t *testing.T) {
	c := &ranking.Candidates{Items: []*ranking.Candidate{
		{Name: "a.txt", Source: "cvs/a.txt", Report: &scoring.Report{TotalScore: 80, BestMatchSection: "skills"}},
		{Name: "b.txt", Source: "cvs/b.txt", Report: &scoring.Report{TotalScore: 20, BestMatchSection: "education"}, Missing: []string{"go"}},
	}}

	rows := rankedRows(c)
	if len(rows) != 2 || rows[0]["rank"] != 1 || rows[1]["name"] != "b.txt" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[1]["best_match_section"] != "Education" || rows[0]["total_score"] != 80.0 {
		t.Fatalf("unexpected report fields: %v", rows)
	}
}

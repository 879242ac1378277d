package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/parser"
	"github.com/spigell/cv-matcher/internal/ranking"
	"github.com/spigell/cv-matcher/internal/scoring"
)

const (
	PromptReport          = "Show score report"
	PromptMissingKeywords = "Show missing keywords"
	PromptContributions   = "Show section contributions"
	PromptTimeline        = "Show experience timeline"
	PromptStructuredCV    = "Show structured CV"
	PromptResultToFile    = "Dump result to file"
	PromptExit            = "Exit"
)

var errExit = errors.New("exit requested")

var matchPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{
		PromptReport,
		PromptMissingKeywords,
		PromptContributions,
		PromptTimeline,
		PromptStructuredCV,
		PromptResultToFile,
		PromptExit,
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a CV against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("cv", "", "CV file (.txt, .md, .pdf or .docx)")
	matchCmd.Flags().String("jd", "", "job description file (.txt, .md, .pdf or .docx)")
	matchCmd.Flags().BoolP("interactive", "i", false, "explore the result with an interactive menu")

	matchCmd.MarkFlagRequired("cv")
	matchCmd.MarkFlagRequired("jd")
}

// matchResult is everything a single match run produces.
type matchResult struct {
	CV            *parser.Record
	Report        *scoring.Report
	Missing       []string
	Contributions []scoring.Contribution
	source        string
}

func (r *matchResult) summary() map[string]any {
	return map[string]any{
		"report":           r.Report.ToMap(),
		"missing_keywords": r.Missing,
		"contributions":    r.Contributions,
		"timeline":         parser.BuildTimeline(r.CV.ExperienceEntries),
	}
}

func match(cmd *cobra.Command) {
	ctx := context.Background()
	s := newSession("match")

	cvPath, _ := cmd.Flags().GetString("cv")
	jdPath, _ := cmd.Flags().GetString("jd")

	cv, err := s.parseFile(cvPath)
	if err != nil {
		s.logger.Fatal("loading cv", zap.Error(err))
	}

	jd, err := s.parseFile(jdPath)
	if err != nil {
		s.logger.Fatal("loading job description", zap.Error(err))
	}

	scorer, err := s.newScorer(ctx)
	if err != nil {
		s.logger.Fatal("building scorer", zap.Error(err))
	}

	report, err := scorer.Score(ctx, cv, jd)
	if err != nil {
		s.logger.Fatal("scoring", zap.Error(err))
	}

	result := &matchResult{
		CV:            cv,
		Report:        report,
		Missing:       scoring.MissingKeywords(cv, jd),
		Contributions: scorer.Explain(report),
		source:        cvPath,
	}

	s.logger.Info("documents matched",
		zap.Float64("total_score", report.TotalScore),
		zap.String("best_match_section", report.BestMatchSection),
		zap.Int("missing_keywords", len(result.Missing)),
	)

	out := cmd.OutOrStdout()

	if interactive, _ := cmd.Flags().GetBool("interactive"); !interactive {
		if err := writeJSON(out, result.summary()); err != nil {
			s.logger.Fatal("writing result", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := matchPrompt.Run()
		if err != nil {
			s.logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, out, s.logger, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			s.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, out io.Writer, logger *zap.Logger, result *matchResult) error {
	switch action {
	case PromptReport:
		return writeJSON(out, result.Report.ToMap())
	case PromptMissingKeywords:
		return writeJSON(out, result.Missing)
	case PromptContributions:
		return writeJSON(out, result.Contributions)
	case PromptTimeline:
		return writeJSON(out, parser.BuildTimeline(result.CV.ExperienceEntries))
	case PromptStructuredCV:
		return writeJSON(out, result.CV.ToMap())
	case PromptResultToFile:
		candidates := &ranking.Candidates{Items: []*ranking.Candidate{{
			Name:    filepath.Base(result.source),
			Source:  result.source,
			Record:  result.CV,
			Report:  result.Report,
			Missing: result.Missing,
		}}}
		filename, err := candidates.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump result to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

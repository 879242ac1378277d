package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/ranking"
)

var rankCmd = &cobra.Command{
	Use:   "rank --jd <file> <cv files...>",
	Short: "Score many CVs against one job description and print them best first",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rank(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("jd", "", "job description file (.txt, .md, .pdf or .docx)")
	rankCmd.Flags().Float64("minimum-score", 0, "drop candidates with a lower total score")
	rankCmd.Flags().Int("max-missing-keywords", 0, "drop candidates missing more job keywords (0 disables)")
	rankCmd.Flags().Int("concurrency", 0, "how many CVs to score at the same time")
	rankCmd.Flags().Bool("by-section", false, "group the output by best matching section")
	rankCmd.Flags().Bool("dump", false, "also dump the ranked candidates to a temporary file")

	rankCmd.MarkFlagRequired("jd")

	viper.BindPFlag("ranking.minimum-score", rankCmd.Flags().Lookup("minimum-score"))
	viper.BindPFlag("ranking.max-missing-keywords", rankCmd.Flags().Lookup("max-missing-keywords"))
	viper.BindPFlag("ranking.concurrency", rankCmd.Flags().Lookup("concurrency"))
}

func rank(cmd *cobra.Command, paths []string) {
	ctx := context.Background()
	s := newSession("rank")

	jdPath, _ := cmd.Flags().GetString("jd")
	jd, err := s.parseFile(jdPath)
	if err != nil {
		s.logger.Fatal("loading job description", zap.Error(err))
	}

	candidates := &ranking.Candidates{}
	for _, path := range paths {
		record, err := s.parseFile(path)
		if err != nil {
			s.logger.Warn("skipping cv", zap.String(logger.FieldDocument, path), zap.Error(err))
			continue
		}
		candidates.Items = append(candidates.Items, &ranking.Candidate{
			Name:   filepath.Base(path),
			Source: path,
			Record: record,
		})
	}

	if candidates.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no readable CVs"))
		return
	}

	scorer, err := s.newScorer(ctx)
	if err != nil {
		s.logger.Fatal("building scorer", zap.Error(err))
	}

	cfg := s.config.Ranking
	if err := ranking.ScoreAll(ctx, s.logger, scorer, jd, candidates, cfg.Concurrency); err != nil {
		s.logger.Fatal("scoring candidates", zap.Error(err))
	}

	steps := ranking.DefaultSteps()
	for _, name := range cfg.DisabledFilters {
		ranking.DisableByName(steps, name, "disabled in config")
	}

	filtering := &ranking.Filtering{
		Config: &ranking.Config{
			MinimumScore:       cfg.MinimumScore,
			MaxMissingKeywords: cfg.MaxMissingKeywords,
			RequiredContact:    cfg.RequiredContact,
		},
		Steps:  steps,
		Logger: s.logger,
	}

	candidates, err = filtering.Run(ctx, candidates)
	if err != nil {
		s.logger.Fatal("filtering failed", zap.Error(err))
	}

	for _, status := range ranking.Describe(steps) {
		s.logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	if candidates.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	candidates.Sort()
	s.logger.Info("current list of candidates", zap.Int("count", candidates.Len()))

	if dump, _ := cmd.Flags().GetBool("dump"); dump {
		filename, err := candidates.DumpToTmpFile()
		if err != nil {
			s.logger.Fatal("dump results to file", zap.Error(err))
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
	}

	var out any = rankedRows(candidates)
	if bySection, _ := cmd.Flags().GetBool("by-section"); bySection {
		out = candidates.ReportBySection()
	}

	if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
		s.logger.Fatal("writing result", zap.Error(err))
	}
}

func rankedRows(c *ranking.Candidates) []map[string]any {
	rows := make([]map[string]any, 0, c.Len())
	for i, candidate := range c.Items {
		row := candidate.Report.ToMap()
		row["rank"] = i + 1
		row["name"] = candidate.Name
		row["source"] = candidate.Source
		row["missing_keywords"] = candidate.Missing
		rows = append(rows, row)
	}
	return rows
}

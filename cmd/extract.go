package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/parser"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the structured fields extracted from a CV or job description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		extract(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolP("timeline", "t", false, "print the experience timeline instead of the record")
}

func extract(cmd *cobra.Command, path string) {
	s := newSession("extract")

	record, err := s.parseFile(path)
	if err != nil {
		s.logger.Fatal("loading document", zap.Error(err))
	}

	logExtracted(s.logger, path, record)

	var out any = record
	if timeline, _ := cmd.Flags().GetBool("timeline"); timeline {
		out = parser.BuildTimeline(record.ExperienceEntries)
	}

	if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
		s.logger.Fatal("writing result", zap.Error(err))
	}
}

func logExtracted(l *zap.Logger, path string, record *parser.Record) {
	l.Info("document extracted",
		zap.String(logger.FieldDocument, path),
		zap.Int("contact_fields", len(record.Contact)),
		zap.Int("experience_entries", len(record.ExperienceEntries)),
	)
}

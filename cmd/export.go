package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aknsr/linecap/internal/capture"
	"github.com/aknsr/linecap/internal/config"
	"github.com/aknsr/linecap/internal/db"
	"github.com/aknsr/linecap/internal/progress"
	"github.com/aknsr/linecap/internal/records"
)

var (
	exportDir   string
	exportType  string
	exportLimit int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export captured records to markdown files",
	Long:  `Writes every stored record as a markdown file, one file per record, for backup or import into note-taking tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if exportType != "" && !capture.LogicalType(exportType).Valid() {
			return fmt.Errorf("unknown record type: %s", exportType)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "linecap.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		recs, err := records.NewStore(database).List(cmd.Context(), records.ListFilter{
			LogicalType: exportType,
			Limit:       exportLimit,
		})
		if err != nil {
			return fmt.Errorf("listing records: %w", err)
		}
		if len(recs) == 0 {
			fmt.Fprintln(os.Stderr, "No records to export.")
			return nil
		}

		if err := os.MkdirAll(exportDir, 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}

		reporter := progress.NewReporter("Exporting records")
		reporter.Start(len(recs))
		for i := range recs {
			rec := &recs[i]
			path := filepath.Join(exportDir, rec.ID+".md")
			if err := os.WriteFile(path, []byte(recordMarkdown(rec)), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			reporter.Update(i+1, rec.Title)
		}
		reporter.Finish()

		fmt.Fprintf(os.Stderr, "Exported %d record(s) to %s\n", len(recs), exportDir)
		return nil
	},
}

// recordMarkdown renders one record as a markdown document with the
// same Japanese labels the bot uses in chat.
func recordMarkdown(rec *records.Record) string {
	var sb strings.Builder

	title := rec.Title
	if title == "" {
		title = "(無題)"
	}
	sb.WriteString("# " + title + "\n\n")

	sb.WriteString(fmt.Sprintf("- 種別: %s\n", capture.LogicalType(rec.LogicalType).Label()))
	if rec.DueAt != nil {
		sb.WriteString(fmt.Sprintf("- 日時: %s\n", rec.DueAt.Format("2006-01-02 15:04")))
	}
	if rec.Priority != "" {
		sb.WriteString(fmt.Sprintf("- 優先度: %s\n", rec.Priority))
	}
	if rec.Assignee != "" {
		sb.WriteString(fmt.Sprintf("- 担当: %s\n", rec.Assignee))
	}
	for k, v := range rec.Fields {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", k, v))
	}
	sb.WriteString(fmt.Sprintf("- 作成: %s (%s)\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.CreatedBy))

	if rec.Body != "" {
		sb.WriteString("\n" + rec.Body + "\n")
	}
	return sb.String()
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "export", "output directory")
	exportCmd.Flags().StringVarP(&exportType, "type", "t", "", "export only records of this type")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 1000, "maximum number of records to export")
	rootCmd.AddCommand(exportCmd)
}

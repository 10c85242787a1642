package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/akeren/event-registration/config"
	"github.com/akeren/event-registration/domain/registration"
	"github.com/spf13/cobra"
)

var (
	exportFormat  string
	exportSearch  string
	exportCollege string
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a filtered registration report to a file",
	Long: `Write a filtered registration report to a file.

Examples:
  cli export --format xlsx --out registrations.xlsx
  cli export --format pdf --college "MGM College, Udupi" --out mgm.pdf
  cli export --format xlsx --search 98450`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseExportFormat(exportFormat)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		store, err := connectStore(ctx)
		if err != nil {
			return err
		}
		defer config.CloseStore(store, logger)

		appConfig := config.NewAppConfig()
		service := registration.NewRegistrationService(logger, registration.NewRegistrationRepository(store), registration.ServiceOptions{
			Location:    appConfig.DisplayLocation,
			ReportTitle: appConfig.ReportTitle,
		})

		doc, err := service.Export(ctx, format, &registration.ExportQuery{
			Search:  exportSearch,
			College: exportCollege,
		})
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		out := exportOut
		if out == "" {
			out = doc.Filename
		}

		if err := os.WriteFile(out, doc.Body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}

		logger.Info("Report written", "path", out, "bytes", len(doc.Body))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "report format: xlsx or pdf")
	exportCmd.Flags().StringVarP(&exportSearch, "search", "s", "", "case-insensitive search across name, college, course, role, phone and email")
	exportCmd.Flags().StringVarP(&exportCollege, "college", "c", "", "exact college to filter by")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (defaults to the standard report filename)")
}

func parseExportFormat(value string) (registration.ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "xlsx", "excel":
		return registration.ExportFormatExcel, nil
	case "pdf":
		return registration.ExportFormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use xlsx or pdf", value)
	}
}

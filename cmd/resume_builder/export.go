package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/interchange"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert resume data into an interchange, JSON or YAML document",
	RunE:  runExport,
}

var (
	exportData   string
	exportOutput string
	exportFormat string
	exportLayout string
)

func init() {
	exportCmd.Flags().StringVarP(&exportData, "data", "d", "", "Path to resume data (JSON or YAML)")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output path (stdout when empty)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "interchange, json or yaml (default from --out, else interchange)")
	exportCmd.Flags().StringVarP(&exportLayout, "layout", "l", "", "Layout recorded in the interchange document")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format := interchange.FormatForPath(exportOutput, interchange.FormatInterchange)
	if exportFormat != "" {
		f, err := interchange.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		format = f
	}

	imported, err := loadData(firstNonEmpty(exportData, cfg.Data))
	if err != nil {
		return err
	}
	layout := firstNonEmpty(exportLayout, cfg.Layout, imported.Layout)

	out, err := interchange.Encode(imported.Resume, layout, format)
	if err != nil {
		return fmt.Errorf("failed to encode resume data: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), exportOutput, out); err != nil {
		return err
	}
	if exportOutput != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %s document to %s\n", format, exportOutput)
	}
	return nil
}

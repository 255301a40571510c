package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/interchange"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Convert an interchange document into resume data",
	Long: `Read a resume in the interchange format and write it in the internal format.
The output is YAML when --out ends in .yaml or .yml and JSON otherwise.`,
	RunE: runImport,
}

var (
	importInput  string
	importOutput string
)

func init() {
	importCmd.Flags().StringVarP(&importInput, "in", "i", "", "Path to the interchange document (required)")
	importCmd.Flags().StringVarP(&importOutput, "out", "o", "", "Output path (stdout when empty)")

	if err := importCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	content, err := os.ReadFile(importInput)
	if err != nil {
		return fmt.Errorf("failed to read interchange document: %w", err)
	}
	imported, err := interchange.Import(content)
	if err != nil {
		return err
	}

	format := interchange.FormatForPath(importOutput, interchange.FormatJSON)
	out, err := interchange.Encode(imported.Resume, imported.Layout, format)
	if err != nil {
		return fmt.Errorf("failed to encode resume data: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), importOutput, out); err != nil {
		return err
	}

	if importOutput != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %s to %s\n", importInput, importOutput)
		if imported.Layout != "" {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Document selects layout %q\n", imported.Layout)
		}
	}
	return nil
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/interchange"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a resume data file",
	Long: `Validate a resume data file against its JSON Schema and the field rules of
the resume model. Interchange documents and internal JSON or YAML files are accepted.
With --schema the JSON file is also checked against an additional schema file.`,
	RunE: runValidate,
}

var (
	validateData   string
	validateSchema string
)

func init() {
	validateCmd.Flags().StringVarP(&validateData, "data", "d", "", "Path to resume data (JSON or YAML)")
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Path to an additional JSON Schema (JSON data only)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	printer := observability.NewPrinter(cmd.OutOrStdout())

	dataPath := firstNonEmpty(validateData, cfg.Data)
	imported, err := loadData(dataPath)
	if err == nil {
		err = imported.Resume.Validate()
	}
	if err == nil && validateSchema != "" {
		if interchange.FormatForPath(dataPath, interchange.FormatJSON) == interchange.FormatYAML {
			return fmt.Errorf("--schema needs a JSON data file, got %s", dataPath)
		}
		err = schemas.ValidateJSON(validateSchema, dataPath)
	}
	printer.PrintValidation(err)
	if err == nil {
		if cfg.Verbose {
			printer.PrintResumeSummary(&imported.Resume)
		}
		return nil
	}

	var schemaErr *schemas.ValidationError
	var importErr *interchange.ImportError
	if errors.As(err, &schemaErr) || errors.As(err, &importErr) {
		return fmt.Errorf("validation failed: %w", err)
	}
	return err
}

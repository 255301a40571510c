// Package main provides the resume_builder CLI: rendering resumes with built-in
// or custom layouts, converting data files and serving the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/logging"
)

var (
	rootVerbose    bool
	rootConfigPath string

	// Set by PersistentPreRunE for every command.
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "resume_builder",
	Short: "Resume builder with custom JSX-like layouts",
	Long: `resume_builder renders resume data with built-in layouts or custom layout snippets
written in a JSX-like syntax, converts between the internal and interchange data
formats, and serves the same features over HTTP.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.PersistentFlags().StringVarP(&rootConfigPath, "config", "c", "", "Path to a JSON or YAML config file")
}

// setup loads the config file and environment and builds the logger.
func setup(_ *cobra.Command, _ []string) error {
	loaded := config.Config{}
	if rootConfigPath != "" {
		fileCfg, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return err
		}
		if err := fileCfg.Validate(); err != nil {
			return err
		}
		loaded = *fileCfg
	}
	if err := loaded.ApplyEnv(); err != nil {
		return err
	}
	cfg = loaded.WithBuiltinDefaults()
	cfg.Verbose = cfg.Verbose || rootVerbose

	log, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	logger = log
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

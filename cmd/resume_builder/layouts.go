package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/layouts"
	"github.com/jonathan/resume-builder/internal/observability"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List the built-in layouts and themes",
	Long: `List the built-in layouts with their default themes. With --starter the
custom layout starter of the named layout is printed instead, ready to be
saved and edited as a custom layout.`,
	RunE: runLayouts,
}

var layoutsStarter string

func init() {
	layoutsCmd.Flags().StringVar(&layoutsStarter, "starter", "", "Print the starter snippet of a layout")
	rootCmd.AddCommand(layoutsCmd)
}

func runLayouts(cmd *cobra.Command, _ []string) error {
	if layoutsStarter != "" {
		l, err := layouts.Lookup(layoutsStarter)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(l.Starter(), "\n"))
		return nil
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintLayouts(layouts.All())
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Themes: %s\n", strings.Join(layouts.ThemeNames(), ", "))
	return nil
}

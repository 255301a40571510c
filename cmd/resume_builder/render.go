package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-builder/internal/layouts"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/preview"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render resume data to HTML",
	Long: `Render resume data with a built-in layout or a custom layout snippet.
The HTML document is written to --out, or to stdout when --out is empty.
With --all-layouts every built-in layout is rendered into the --out directory.`,
	RunE: runRender,
}

var (
	renderData       string
	renderLayout     string
	renderTheme      string
	renderCustom     string
	renderOutput     string
	renderTitle      string
	renderText       bool
	renderAllLayouts bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderData, "data", "d", "", "Path to resume data (JSON or YAML)")
	renderCmd.Flags().StringVarP(&renderLayout, "layout", "l", "", "Built-in layout name")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "Theme name overriding the layout theme")
	renderCmd.Flags().StringVar(&renderCustom, "custom", "", "Path to a custom layout snippet")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Output file, or directory with --all-layouts")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "Document title")
	renderCmd.Flags().BoolVar(&renderText, "text", false, "Write the visible text instead of HTML")
	renderCmd.Flags().BoolVar(&renderAllLayouts, "all-layouts", false, "Render every built-in layout")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	imported, err := loadData(firstNonEmpty(renderData, cfg.Data))
	if err != nil {
		return err
	}
	source, err := readCustomLayout(firstNonEmpty(renderCustom, cfg.CustomLayout))
	if err != nil {
		return err
	}
	req := preview.Request{
		Data:         imported.Resume,
		Layout:       firstNonEmpty(renderLayout, cfg.Layout, imported.Layout),
		Theme:        firstNonEmpty(renderTheme, cfg.Theme),
		CustomSource: source,
		Title:        renderTitle,
	}
	output := firstNonEmpty(renderOutput, cfg.Output)

	if renderAllLayouts {
		if output == "" {
			return fmt.Errorf("--all-layouts needs an output directory (use --out)")
		}
		return renderAll(cmd.Context(), req, output, cmd.ErrOrStderr())
	}

	out, err := newPreviewer().Render(req)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintRenderOutcome(&out)
	}

	content := out.Document
	if renderText {
		if content, err = preview.PlainText(out.Body); err != nil {
			return fmt.Errorf("failed to extract text: %w", err)
		}
	}
	if err := writeOutput(cmd.OutOrStdout(), output, []byte(content)); err != nil {
		return err
	}
	if output != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s (%s, %s) to %s\n", out.Layout, out.Source, fallbackLabel(out), output)
	}
	return nil
}

// renderAll renders req once per built-in layout into dir/<layout>.html. A
// custom layout snippet, if any, is ignored.
func renderAll(ctx context.Context, req preview.Request, dir string, status io.Writer) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)

	list := layouts.All()
	results := make([]preview.Output, len(list))
	for i, l := range list {
		g.Go(func() error {
			r := req
			r.Layout, r.CustomSource = l.Name, ""
			out, err := newPreviewer().Render(r)
			if err != nil {
				return fmt.Errorf("layout %s: %w", l.Name, err)
			}
			results[i] = out
			return writeOutput(nil, filepath.Join(dir, l.Name+".html"), []byte(out.Document))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, out := range results {
		logger.Debug("layout rendered", zap.String("layout", out.Layout), zap.Int("bytes", len(out.Document)))
		_, _ = fmt.Fprintf(status, "Rendered %s to %s\n", out.Layout, filepath.Join(dir, out.Layout+".html"))
	}
	return nil
}

func fallbackLabel(out preview.Output) string {
	if out.Failed {
		return "fallback shown"
	}
	return "ok"
}

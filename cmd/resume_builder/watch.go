package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/interchange"
	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render a resume whenever its data or custom layout changes",
	Long: `Watch a JSON data file and an optional custom layout snippet, and rewrite the
output HTML after every change. Data edits are applied once writes pause; text
that does not parse keeps the last good data and is reported on stderr.`,
	RunE: runWatch,
}

var (
	watchData   string
	watchLayout string
	watchTheme  string
	watchCustom string
	watchOutput string
)

func init() {
	watchCmd.Flags().StringVarP(&watchData, "data", "d", "", "Path to resume data (JSON)")
	watchCmd.Flags().StringVarP(&watchLayout, "layout", "l", "", "Built-in layout name")
	watchCmd.Flags().StringVar(&watchTheme, "theme", "", "Theme name overriding the layout theme")
	watchCmd.Flags().StringVar(&watchCustom, "custom", "", "Path to a custom layout snippet")
	watchCmd.Flags().StringVarP(&watchOutput, "out", "o", "", "Output HTML file")

	rootCmd.AddCommand(watchCmd)
}

// liveRender keeps the latest inputs of a watch session and rewrites the output
// whenever one of them changes. One previewer serves the whole session, so a
// failed custom layout stays on its fallback until the inputs change.
type liveRender struct {
	previewer *preview.Previewer
	output    string
	status    io.Writer

	mu         sync.Mutex
	data       types.ResumeData
	dataLayout string
	layout     string
	theme      string
	source     string
}

func (lr *liveRender) setData(data types.ResumeData, layout string) error {
	lr.mu.Lock()
	lr.data, lr.dataLayout = data, layout
	lr.mu.Unlock()
	return lr.render()
}

func (lr *liveRender) setSource(source string) error {
	lr.mu.Lock()
	lr.source = source
	lr.mu.Unlock()
	return lr.render()
}

func (lr *liveRender) render() error {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	out, err := lr.previewer.Render(preview.Request{
		Data:         lr.data,
		Layout:       firstNonEmpty(lr.layout, lr.dataLayout),
		Theme:        lr.theme,
		CustomSource: lr.source,
	})
	if err != nil {
		return err
	}
	if err := writeOutput(nil, lr.output, []byte(out.Document)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(lr.status, "Rendered %s (%s, %s) to %s\n", out.Layout, out.Source, fallbackLabel(out), lr.output)
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	dataPath := firstNonEmpty(watchData, cfg.Data)
	output := firstNonEmpty(watchOutput, cfg.Output)
	customPath := firstNonEmpty(watchCustom, cfg.CustomLayout)
	if output == "" {
		return fmt.Errorf("watch needs an output file (use --out)")
	}
	if interchange.FormatForPath(dataPath, interchange.FormatJSON) == interchange.FormatYAML {
		return fmt.Errorf("watch needs a JSON data file, got %s", dataPath)
	}

	imported, err := loadData(dataPath)
	if err != nil {
		return err
	}
	source, err := readCustomLayout(customPath)
	if err != nil {
		return err
	}

	lr := &liveRender{
		previewer:  newPreviewer(),
		output:     output,
		status:     cmd.OutOrStdout(),
		data:       imported.Resume,
		dataLayout: imported.Layout,
		layout:     firstNonEmpty(watchLayout, cfg.Layout),
		theme:      firstNonEmpty(watchTheme, cfg.Theme),
		source:     source,
	}
	if err := lr.render(); err != nil {
		return err
	}

	session := editor.NewSession(imported.Resume,
		editor.WithDelay(cfg.ApplyDelay()),
		editor.WithLogger(logger),
		editor.OnApply(func(data types.ResumeData, layout string) {
			if err := lr.setData(data, layout); err != nil {
				logger.Error("render failed", zap.Error(err))
			}
		}),
	)
	defer session.Close()

	watcher, err := editor.NewWatcher(logger)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Add(dataPath, func(_ string, content []byte) {
		session.Edit(string(content))
	}); err != nil {
		return err
	}
	if customPath != "" {
		if err := watcher.Add(customPath, func(_ string, content []byte) {
			if err := lr.setSource(string(content)); err != nil {
				logger.Error("render failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher.Start(ctx)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Watching %s; press Ctrl+C to stop\n", dataPath)
	<-ctx.Done()
	return nil
}

// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/resume-builder/internal/layouts"
	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBanner(text string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, text)
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintResumeSummary outputs a human-readable summary of the resume data.
func (p *Printer) PrintResumeSummary(data *types.ResumeData) {
	if data == nil {
		return
	}

	var sb strings.Builder
	info := data.PersonalInfo
	sb.WriteString(fmt.Sprintf("Name:     %s\n", info.FullName))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", info.JobTitle))
	if len(info.Dynamic) > 0 {
		keys := make([]string, len(info.Dynamic))
		for i, f := range info.Dynamic {
			keys[i] = f.Key
		}
		sb.WriteString(fmt.Sprintf("Extra:    %s\n", strings.Join(keys, ", ")))
	}
	sb.WriteString("\n")

	if len(data.WorkExperience) > 0 {
		sb.WriteString(fmt.Sprintf("Work (%d):\n", len(data.WorkExperience)))
		count := min(len(data.WorkExperience), maxItemsToShow)
		for i := 0; i < count; i++ {
			w := data.WorkExperience[i]
			sb.WriteString(fmt.Sprintf("  • %s", w.Company))
			if w.JobTitle != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", w.JobTitle))
			}
			sb.WriteString("\n")
		}
		if len(data.WorkExperience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(data.WorkExperience)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(data.Education) > 0 {
		sb.WriteString(fmt.Sprintf("Education (%d):\n", len(data.Education)))
		count := min(len(data.Education), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", data.Education[i].Institution))
		}
		if len(data.Education) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(data.Education)-3))
		}
		sb.WriteString("\n")
	}

	if len(data.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills:   %s\n", strings.Join(data.Skills, ", ")))
	}
	if len(data.ExtraData) > 0 {
		keys := make([]string, 0, len(data.ExtraData))
		for k := range data.ExtraData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(fmt.Sprintf("Sections: %s\n", strings.Join(keys, ", ")))
	}

	p.printBox("RESUME DATA", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRenderOutcome outputs which source produced a preview and whether the
// recovery boundary had to step in.
func (p *Printer) PrintRenderOutcome(out *preview.Output) {
	if out == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Layout:   %s\n", out.Layout))
	sb.WriteString(fmt.Sprintf("Source:   %s\n", out.Source))
	sb.WriteString(fmt.Sprintf("Size:     %d bytes\n", len(out.Document)))
	if out.CustomErr != nil {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("⚠ custom layout %s error\n", out.CustomErr.Kind))
		sb.WriteString(fmt.Sprintf("  %s\n", out.CustomErr.Message))
	}
	if out.Failed {
		sb.WriteString("\n")
		sb.WriteString("⚠ render failed, fallback shown\n")
		if out.Detail != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", out.Detail))
		}
	}

	p.printBox("RENDER OUTCOME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidation outputs the result of validating a document. A nil error
// prints a success banner.
func (p *Printer) PrintValidation(err error) {
	if err == nil {
		p.printBanner("✅ DOCUMENT IS VALID")
		return
	}

	var ve *schemas.ValidationError
	if !errors.As(err, &ve) {
		p.printBox("VALIDATION FAILED", err.Error())
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d problems:\n\n", len(ve.Errors)))
	for i, fe := range ve.Errors {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", fe.Field))
		sb.WriteString(fmt.Sprintf("  %s\n", fe.Message))
		if i < len(ve.Errors)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("VALIDATION FAILED", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLayouts outputs the built-in layouts with their default themes.
func (p *Printer) PrintLayouts(list []layouts.Layout) {
	if len(list) == 0 {
		return
	}

	var sb strings.Builder
	for i, l := range list {
		sb.WriteString(fmt.Sprintf("%-10s theme: %s\n", l.Name, l.Theme.Name))
		if desc := strings.TrimSpace(l.Description); desc != "" {
			first, _, _ := strings.Cut(desc, "\n")
			sb.WriteString(fmt.Sprintf("  %s\n", first))
		}
		if i < len(list)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("BUILT-IN LAYOUTS", strings.TrimSuffix(sb.String(), "\n"))
}

package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-builder/internal/customlayout"
	"github.com/jonathan/resume-builder/internal/layouts"
	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

func TestPrintResumeSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	data := &types.ResumeData{
		PersonalInfo: types.PersonalInfo{FullName: "Jane Roe", JobTitle: "Engineer"}.With("github", "janeroe"),
		WorkExperience: []types.WorkEntry{
			{ID: "w1", Company: "Acme", JobTitle: "Engineer"},
			{ID: "w2", Company: "Globex"},
		},
		Education: []types.EducationEntry{{ID: "e1", Institution: "State University"}},
		Skills:    []string{"Go", "SQL"},
		ExtraData: map[string]types.Value{"languages": types.String("English")},
	}

	p.PrintResumeSummary(data)
	output := buf.String()

	assert.Contains(t, output, "RESUME DATA")
	assert.Contains(t, output, "Jane Roe")
	assert.Contains(t, output, "github")
	assert.Contains(t, output, "Work (2):")
	assert.Contains(t, output, "• Acme (Engineer)")
	assert.Contains(t, output, "• Globex\n")
	assert.Contains(t, output, "State University")
	assert.Contains(t, output, "Go, SQL")
	assert.Contains(t, output, "Sections: languages")
}

func TestPrintResumeSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResumeSummary(nil)

	assert.Empty(t, buf.String())
}

func TestPrintResumeSummary_ManyEntries(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	data := &types.ResumeData{}
	for i := 0; i < 8; i++ {
		data.WorkExperience = append(data.WorkExperience, types.WorkEntry{ID: types.NewID(), Company: "Co"})
	}
	p.PrintResumeSummary(data)

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintRenderOutcome(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRenderOutcome(&preview.Output{
		Document: "<!DOCTYPE html>\n<html></html>",
		Source:   preview.SourceCustomError,
		Layout:   "simple",
		CustomErr: &customlayout.Error{
			Kind:    customlayout.KindRuntime,
			Message: customlayout.RuntimePrefix + "x is not defined",
		},
	})
	output := buf.String()

	assert.Contains(t, output, "RENDER OUTCOME")
	assert.Contains(t, output, "custom-error")
	assert.Contains(t, output, "custom layout runtime error")
	assert.NotContains(t, output, "fallback shown")
}

func TestPrintRenderOutcome_Failed(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRenderOutcome(&preview.Output{Source: preview.SourceCustom, Layout: "modern", Failed: true, Detail: "boom"})
	output := buf.String()

	assert.Contains(t, output, "fallback shown")
	assert.Contains(t, output, "boom")
}

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidation(nil)
	assert.Contains(t, buf.String(), "DOCUMENT IS VALID")

	buf.Reset()
	p.PrintValidation(&schemas.ValidationError{Errors: []schemas.FieldError{
		{Field: "work.0", Message: "company is required"},
		{Field: "skills.1", Message: "Invalid type"},
	}})
	output := buf.String()
	assert.Contains(t, output, "VALIDATION FAILED")
	assert.Contains(t, output, "Found 2 problems")
	assert.Contains(t, output, "work.0")
	assert.Contains(t, output, "company is required")

	buf.Reset()
	p.PrintValidation(errors.New("invalid JSON"))
	assert.Contains(t, buf.String(), "invalid JSON")
}

func TestPrintLayouts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintLayouts(layouts.All())
	output := buf.String()

	assert.Contains(t, output, "BUILT-IN LAYOUTS")
	for _, name := range layouts.Names() {
		assert.Contains(t, output, name)
	}
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
	assert.Contains(t, buf.String(), "...")
}

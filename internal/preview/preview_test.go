package preview

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/resume-builder/internal/boundary"
	"github.com/jonathan/resume-builder/internal/customlayout"
	"github.com/jonathan/resume-builder/internal/element"
	"github.com/jonathan/resume-builder/internal/layouts"
	"github.com/jonathan/resume-builder/internal/types"
)

func sampleResume() types.ResumeData {
	return types.ResumeData{
		PersonalInfo: types.PersonalInfo{FullName: "Jane Roe", JobTitle: "Engineer", Email: "jane@example.com"},
		WorkExperience: []types.WorkEntry{
			{ID: "w1", Company: "Acme", JobTitle: "Engineer", StartDate: "2020"},
		},
		Skills: []string{"Go", "SQL"},
	}
}

const brokenComponent = `function Broken() { return <p>{work[3].company}</p>; }
function Layout() { return <div><Broken /></div>; }`

func TestRender_BuiltinLayout(t *testing.T) {
	out, err := New().Render(Request{Data: sampleResume()})
	require.NoError(t, err)

	assert.Equal(t, SourceBuiltin, out.Source)
	assert.Equal(t, layouts.DefaultName, out.Layout)
	assert.False(t, out.Failed)
	assert.True(t, strings.HasPrefix(out.Document, "<!DOCTYPE html>\n<html lang=\"en\">"))
	assert.Contains(t, out.Document, "<title>Resume preview</title>")
	assert.Contains(t, out.Document, "--resume-primary:#1f2937;")
	assert.Contains(t, out.Body, "<h1>Jane Roe</h1>")
	assert.Contains(t, out.Body, "<svg", "icons survive sanitising")
	assert.Contains(t, out.Body, "lucide-mail")
}

func TestRender_LayoutAndTheme(t *testing.T) {
	out, err := New().Render(Request{Data: sampleResume(), Layout: "sidebar", Theme: "ocean", Title: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "sidebar", out.Layout)
	assert.Contains(t, out.Body, "layout-sidebar")
	assert.Contains(t, out.Document, "#0f4c81")
	assert.Contains(t, out.Document, "<title>Jane</title>")
}

func TestRender_UnknownNames(t *testing.T) {
	_, err := New().Render(Request{Layout: "fancy"})
	var unknown *layouts.UnknownLayoutError
	assert.True(t, errors.As(err, &unknown))

	_, err = New().Render(Request{Theme: "neon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neon")
}

func TestRender_CustomLayout(t *testing.T) {
	out, err := New().Render(Request{
		Data:         sampleResume(),
		CustomSource: `(<div className="mine">{basics.fullName} / {skills.join(", ")}</div>)`,
	})
	require.NoError(t, err)
	assert.Equal(t, SourceCustom, out.Source)
	assert.Equal(t, `<div class="mine">Jane Roe / Go, SQL</div>`, out.Body)
}

func TestRender_CustomLayoutBuildError(t *testing.T) {
	out, err := New().Render(Request{Data: sampleResume(), CustomSource: "<div>"})
	require.NoError(t, err)
	assert.Equal(t, SourceCustomError, out.Source)
	require.NotNil(t, out.CustomErr)
	assert.Equal(t, customlayout.KindCompile, out.CustomErr.Kind)
	assert.Contains(t, out.Body, CustomErrorTitle)
	assert.False(t, out.Failed)
}

func TestRender_BoundaryLatch(t *testing.T) {
	p := New()
	req := Request{Data: sampleResume(), CustomSource: brokenComponent}

	out, err := p.Render(req)
	require.NoError(t, err)
	assert.True(t, out.Failed)
	assert.Contains(t, out.Body, boundary.DefaultTitle)
	assert.Contains(t, out.Detail, "reading 'company'")

	out, err = p.Render(req)
	require.NoError(t, err)
	assert.True(t, out.Failed)

	req.CustomSource = "(<p>fixed</p>)"
	out, err = p.Render(req)
	require.NoError(t, err)
	assert.False(t, out.Failed)
	assert.Equal(t, "<p>fixed</p>", out.Body)
}

func TestRender_ExplicitResetKey(t *testing.T) {
	p := New()
	out, err := p.Render(Request{Data: sampleResume(), CustomSource: brokenComponent, ResetKey: "same"})
	require.NoError(t, err)
	assert.True(t, out.Failed)

	// The source changed but the caller kept the key, so the boundary stays failed.
	out, err = p.Render(Request{Data: sampleResume(), CustomSource: "(<p>fixed</p>)", ResetKey: "same"})
	require.NoError(t, err)
	assert.True(t, out.Failed)
}

func TestRender_CustomFallback(t *testing.T) {
	p := New(WithBoundaryOptions(boundary.WithFallback(func(detail string) element.Node {
		return element.E("p", element.Props("className", "oops"), element.Text("oops"))
	})))
	out, err := p.Render(Request{Data: sampleResume(), CustomSource: brokenComponent})
	require.NoError(t, err)
	assert.Equal(t, `<p class="oops">oops</p>`, out.Body)
}

func TestRender_SanitisesCustomMarkup(t *testing.T) {
	out, err := New().Render(Request{
		Data:         sampleResume(),
		CustomSource: `(<div><script>{"alert(1)"}</script><a href="javascript:alert(1)">x</a><iframe src="https://example.com" /></div>)`,
	})
	require.NoError(t, err)
	assert.NotContains(t, out.Body, "<script")
	assert.NotContains(t, out.Body, "javascript:")
	assert.NotContains(t, out.Body, "<iframe")
}

func TestRender_Logs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	_, err := New(WithLogger(zap.New(core))).Render(Request{Data: sampleResume(), CustomSource: brokenComponent})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("render boundary caught a failure").Len())
	assert.Equal(t, 1, logs.FilterMessage("preview rendered").Len())
}

func TestResetKey(t *testing.T) {
	a := Request{Data: sampleResume(), Layout: "simple"}
	b := a
	assert.Equal(t, ResetKey(a), ResetKey(b))

	b.Data = b.Data.WithSkills([]string{"Rust"})
	assert.NotEqual(t, ResetKey(a), ResetKey(b))

	c := a
	c.CustomSource = "(<p />)"
	assert.NotEqual(t, ResetKey(a), ResetKey(c))
}

func TestPlainText(t *testing.T) {
	text, err := PlainText(`<div><h1>Jane  Roe</h1><p>Staff<br>Engineer</p><ul><li>Go</li><li>SQL</li></ul><style>.x{color:red}</style><svg><path d="M0"></path></svg></div>`)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe\nStaff\nEngineer\nGo\nSQL", text)
}

func TestPlainText_PreviewDocument(t *testing.T) {
	out, err := New().Render(Request{Data: sampleResume()})
	require.NoError(t, err)
	text, err := PlainText(out.Document)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	assert.Equal(t, "Jane Roe", lines[0])
	assert.Contains(t, lines, "Engineer")
	assert.Contains(t, lines, "Go")
	assert.NotContains(t, text, "Resume preview")
	assert.NotContains(t, text, "--resume-primary")
}

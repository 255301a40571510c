package boundary

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/resume-builder/internal/element"
)

func okNode(text string) element.Node {
	return element.E("p", nil, element.Text(text))
}

func failingNode(err error) element.Node {
	return element.Lazy("Broken", func() (element.Node, error) { return nil, err })
}

func panickingNode(v any) element.Node {
	return element.Lazy("Panicky", func() (element.Node, error) { panic(v) })
}

func render(t *testing.T, b *Boundary, key string, n element.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, b.Render(&buf, key, n))
	return buf.String()
}

func TestBoundary_NormalRender(t *testing.T) {
	b := New()
	assert.Equal(t, "<p>hello</p>", render(t, b, "k1", okNode("hello")))
	state, detail := b.State()
	assert.Equal(t, StateNormal, state)
	assert.Empty(t, detail)
}

func TestBoundary_DefaultPanel(t *testing.T) {
	b := New()
	out := render(t, b, "k1", failingNode(errors.New("boom")))
	assert.Equal(t,
		`<div class="render-error" role="alert"><h3>Something went wrong</h3><p>`+DefaultMessage+`</p>`+
			`<details><summary>Error details</summary><pre>boom</pre></details></div>`,
		out)
	state, detail := b.State()
	assert.Equal(t, StateFailed, state)
	assert.Equal(t, "boom", detail)
}

func TestBoundary_PartialOutputIsDiscarded(t *testing.T) {
	b := New(WithFallback(func(string) element.Node { return element.Text("fallback") }))
	tree := element.E("div", nil, okNode("before"), failingNode(errors.New("boom")))
	assert.Equal(t, "fallback", render(t, b, "k1", tree))
}

func TestBoundary_LatchUntilResetKeyChanges(t *testing.T) {
	b := New(WithFallback(func(detail string) element.Node { return element.Text("failed: " + detail) }))

	assert.Equal(t, "failed: boom", render(t, b, "k1", failingNode(errors.New("boom"))))
	// Same key: stays failed even though the children would render now.
	assert.Equal(t, "failed: boom", render(t, b, "k1", okNode("fixed")))
	assert.Equal(t, "failed: boom", render(t, b, "k1", okNode("fixed again")))

	assert.Equal(t, "<p>fixed</p>", render(t, b, "k2", okNode("fixed")))
	state, _ := b.State()
	assert.Equal(t, StateNormal, state)
}

func TestBoundary_KeyChangeWithStillBrokenChildren(t *testing.T) {
	b := New(WithFallback(func(detail string) element.Node { return element.Text(detail) }))
	assert.Equal(t, "one", render(t, b, "k1", failingNode(errors.New("one"))))
	assert.Equal(t, "two", render(t, b, "k2", failingNode(errors.New("two"))))
}

func TestBoundary_KeyChangeWhileNormalIsHarmless(t *testing.T) {
	b := New()
	assert.Equal(t, "<p>a</p>", render(t, b, "k1", okNode("a")))
	assert.Equal(t, "<p>b</p>", render(t, b, "k2", okNode("b")))
}

func TestBoundary_PanicsAreContained(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "error", value: errors.New("kaput"), want: "kaput"},
		{name: "string", value: "plain string", want: "plain string"},
		{name: "number", value: 42, want: "42"},
		{name: "struct", value: struct{ A int }{A: 1}, want: "{1}"},
		{name: "empty error", value: errors.New(""), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			out := render(t, b, "k", panickingNode(tt.value))
			assert.Contains(t, out, DefaultTitle)
			_, detail := b.State()
			assert.Equal(t, tt.want, detail)
		})
	}
}

func TestBoundary_FailingFallbackUsesDefaultPanel(t *testing.T) {
	b := New(WithFallback(func(string) element.Node { return failingNode(errors.New("fallback broke")) }))
	out := render(t, b, "k", failingNode(errors.New("boom")))
	assert.Contains(t, out, DefaultTitle)
	assert.Contains(t, out, "<pre>boom</pre>")
}

func TestBoundary_LogsEachTransition(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := New(WithLogger(zap.New(core)))

	render(t, b, "k1", failingNode(errors.New("boom")))
	render(t, b, "k1", failingNode(errors.New("boom")))
	render(t, b, "k2", failingNode(errors.New("again")))

	caught := logs.FilterMessage("render boundary caught a failure").All()
	require.Len(t, caught, 2)
	assert.Equal(t, "k1", caught[0].ContextMap()["reset_key"])
	assert.Equal(t, "again", caught[1].ContextMap()["detail"])
	assert.NotEmpty(t, caught[0].ContextMap()["stack"])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestBoundary_WriteErrorIsReturned(t *testing.T) {
	err := New().Render(failingWriter{}, "k", okNode("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPanel_EscapesDetail(t *testing.T) {
	out, err := element.HTML(Panel("Title", "Sentence.", "<script>x</script>"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "&lt;script&gt;"))
}

func TestDetail(t *testing.T) {
	assert.Equal(t, "", Detail(nil))
	assert.Equal(t, "x", Detail(errors.New("x")))
	assert.Equal(t, "[1 2]", Detail([]int{1, 2}))
}

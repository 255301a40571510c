// Package preview composes the custom layout renderer, the built-in layouts and
// the recovery boundary into complete, sanitised HTML documents.
package preview

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/boundary"
	"github.com/jonathan/resume-builder/internal/customlayout"
	"github.com/jonathan/resume-builder/internal/element"
	"github.com/jonathan/resume-builder/internal/layouts"
	"github.com/jonathan/resume-builder/internal/types"
)

// Source says which branch produced the preview body.
type Source string

// Preview sources.
const (
	SourceBuiltin     Source = "builtin"
	SourceCustom      Source = "custom"
	SourceCustomError Source = "custom-error"
)

// Title and sentence of the panel shown for custom layouts that fail to build.
const (
	CustomErrorTitle   = "Custom layout error"
	CustomErrorMessage = "The custom layout could not be built. Fix the code to see the preview."
)

// Request describes one preview.
type Request struct {
	Data types.ResumeData
	// Layout is a built-in layout name; empty selects the default.
	Layout string
	// Theme overrides the layout's theme by name.
	Theme string
	// CustomSource is the custom layout snippet; blank uses the built-in layout.
	CustomSource string
	// ResetKey resets a failed boundary when it changes. Empty derives it from
	// the request.
	ResetKey string
	Title    string
}

// Output is a rendered preview.
type Output struct {
	// Document is the complete HTML document.
	Document string
	// Body is the sanitised body fragment.
	Body   string
	Source Source
	Layout string
	// CustomErr is set when the custom layout failed to build.
	CustomErr *customlayout.Error
	// Failed reports that the boundary replaced the body with its fallback.
	Failed bool
	Detail string
}

// Option configures a Previewer.
type Option func(*Previewer)

// WithLogger sets the logger of the previewer and its collaborators.
func WithLogger(log *zap.Logger) Option {
	return func(p *Previewer) {
		if log != nil {
			p.log = log
		}
	}
}

// WithRenderer replaces the custom layout renderer.
func WithRenderer(r *customlayout.Renderer) Option {
	return func(p *Previewer) {
		if r != nil {
			p.renderer = r
		}
	}
}

// WithBoundaryOptions passes options to the recovery boundary.
func WithBoundaryOptions(opts ...boundary.Option) Option {
	return func(p *Previewer) {
		p.boundaryOpts = append(p.boundaryOpts, opts...)
	}
}

// Previewer renders previews. One Previewer corresponds to one preview pane: it
// owns the renderer memo and the boundary latch. It is safe for concurrent use.
type Previewer struct {
	log          *zap.Logger
	renderer     *customlayout.Renderer
	boundary     *boundary.Boundary
	boundaryOpts []boundary.Option
	policy       *bluemonday.Policy
}

// New creates a Previewer.
func New(opts ...Option) *Previewer {
	p := &Previewer{log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = customlayout.NewRenderer(customlayout.WithLogger(p.log))
	}
	p.boundary = boundary.New(append([]boundary.Option{boundary.WithLogger(p.log)}, p.boundaryOpts...)...)
	p.policy = Policy()
	return p
}

// Render produces the preview for req. Errors are returned for unknown layout or
// theme names only; custom layout failures are part of the Output.
func (p *Previewer) Render(req Request) (Output, error) {
	start := time.Now()

	layout := layouts.Default()
	if req.Layout != "" {
		l, err := layouts.Lookup(req.Layout)
		if err != nil {
			return Output{}, err
		}
		layout = l
	}
	theme := layout.Theme
	if req.Theme != "" {
		t, ok := layouts.LookupTheme(req.Theme)
		if !ok {
			return Output{}, &layouts.UnknownThemeError{Name: req.Theme, Known: layouts.ThemeNames()}
		}
		theme = t
	}

	out := Output{Layout: layout.Name}
	data := req.Data.LayoutData()

	var node element.Node
	res := p.renderer.Render(req.CustomSource, data)
	switch {
	case res.Err != nil:
		out.Source, out.CustomErr = SourceCustomError, res.Err
		node = boundary.Panel(CustomErrorTitle, CustomErrorMessage, res.Err.Error())
	case res.Element != nil:
		out.Source = SourceCustom
		node = res.Element
	default:
		out.Source = SourceBuiltin
		node = layout.RenderWith(data, theme)
	}

	key := req.ResetKey
	if key == "" {
		key = ResetKey(req)
	}
	var buf bytes.Buffer
	if err := p.boundary.Render(&buf, key, node); err != nil {
		return Output{}, err
	}
	state, detail := p.boundary.State()
	out.Failed, out.Detail = state == boundary.StateFailed, detail

	out.Body = p.policy.Sanitize(buf.String())
	doc, err := Document(req.Title, theme, out.Body)
	if err != nil {
		return Output{}, err
	}
	out.Document = doc

	p.log.Debug("preview rendered",
		zap.String("source", string(out.Source)),
		zap.String("layout", out.Layout),
		zap.Bool("failed", out.Failed),
		zap.Duration("duration", time.Since(start)))
	return out, nil
}

// ResetKey derives a boundary reset key from everything that affects the output.
func ResetKey(req Request) string {
	h := sha256.New()
	data, _ := json.Marshal(req.Data)
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00", req.Layout, req.Theme, req.CustomSource)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

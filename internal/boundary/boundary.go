// Package boundary contains render-time failures of an element tree. A failed
// render latches the boundary into a fallback view until the caller's reset key
// changes.
package boundary

import (
	"bytes"
	"fmt"
	"io"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/element"
)

// State is the latch state of a Boundary.
type State int

const (
	// StateNormal renders the wrapped tree.
	StateNormal State = iota
	// StateFailed renders the fallback view.
	StateFailed
)

func (s State) String() string {
	if s == StateFailed {
		return "failed"
	}
	return "normal"
}

// Default panel text.
const (
	DefaultTitle   = "Something went wrong"
	DefaultMessage = "The layout could not be rendered. Change the resume data or the layout to try again."
)

// Fallback builds the view shown while the boundary is failed. detail is the
// message of the failure that tripped the latch.
type Fallback func(detail string) element.Node

// Option configures a Boundary.
type Option func(*Boundary)

// WithFallback replaces the default panel.
func WithFallback(f Fallback) Option {
	return func(b *Boundary) {
		if f != nil {
			b.fallback = f
		}
	}
}

// WithLogger sets the logger used when the boundary trips.
func WithLogger(log *zap.Logger) Option {
	return func(b *Boundary) {
		if log != nil {
			b.log = log
		}
	}
}

// Boundary renders element trees and substitutes a fallback when rendering fails.
// It is safe for concurrent use.
type Boundary struct {
	log      *zap.Logger
	fallback Fallback

	mu      sync.Mutex
	state   State
	detail  string
	lastKey string
	seen    bool
}

// New creates a Boundary in the normal state.
func New(opts ...Option) *Boundary {
	b := &Boundary{log: zap.NewNop(), fallback: DefaultFallback}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current state and the failure detail, if any.
func (b *Boundary) State() (State, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.detail
}

// Render writes the HTML of node to w. A failed boundary resets only when resetKey
// differs from the key of the previous call; until then the fallback is written,
// whatever node is. The returned error reports failures writing to w only.
func (b *Boundary) Render(w io.Writer, resetKey string, node element.Node) error {
	b.mu.Lock()
	if b.state == StateFailed && b.seen && resetKey != b.lastKey {
		b.state, b.detail = StateNormal, ""
		b.log.Debug("render boundary reset", zap.String("reset_key", resetKey))
	}
	b.lastKey, b.seen = resetKey, true

	var buf bytes.Buffer
	if b.state == StateNormal {
		if detail, stack, failed := renderSafely(&buf, node); failed {
			b.state, b.detail = StateFailed, detail
			b.log.Error("render boundary caught a failure",
				zap.String("reset_key", resetKey),
				zap.String("detail", detail),
				zap.ByteString("stack", stack))
		}
	}
	if b.state == StateFailed {
		buf.Reset()
		b.renderFallback(&buf)
	}
	b.mu.Unlock()

	_, err := w.Write(buf.Bytes())
	return err
}

func (b *Boundary) renderFallback(buf *bytes.Buffer) {
	if _, _, failed := renderSafely(buf, b.fallback(b.detail)); !failed {
		return
	}
	b.log.Warn("render boundary fallback failed, using the default panel")
	buf.Reset()
	_, _, _ = renderSafely(buf, DefaultFallback(b.detail))
}

// renderSafely renders node into buf, converting errors and panics into a detail
// message. On failure buf holds partial output.
func renderSafely(buf *bytes.Buffer, node element.Node) (detail string, stack []byte, failed bool) {
	defer func() {
		if p := recover(); p != nil {
			detail, stack, failed = Detail(p), debug.Stack(), true
		}
	}()
	if err := element.Render(buf, node); err != nil {
		return Detail(err), debug.Stack(), true
	}
	return "", nil, false
}

// Detail describes a failure value: the message of an error, the text of a string,
// or the fmt form of anything else. A nil value has no message.
func Detail(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case error:
		return t.Error()
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// DefaultFallback is the panel shown when no fallback is configured.
func DefaultFallback(detail string) element.Node {
	return Panel(DefaultTitle, DefaultMessage, detail)
}

// Panel builds an alert panel with a title, a sentence and collapsible details.
func Panel(title, message, detail string) element.Node {
	return element.E("div", element.Props("className", "render-error", "role", "alert"),
		element.E("h3", nil, element.Text(title)),
		element.E("p", nil, element.Text(message)),
		element.E("details", nil,
			element.E("summary", nil, element.Text("Error details")),
			element.E("pre", nil, element.Text(detail)),
		),
	)
}

// Package customlayout compiles and runs user-authored layout snippets written in
// a JSX-like syntax. Snippets run in an interpreter with a fixed set of bindings;
// every failure is returned as a value and never escapes to the caller.
package customlayout

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/element"
	"github.com/jonathan/resume-builder/internal/types"
)

// Result is the outcome of rendering a snippet: an element, an error, or neither
// when the snippet is blank and the built-in layout applies.
type Result struct {
	Element element.Node
	Err     *Error
}

// Empty reports whether the result carries neither an element nor an error.
func (r Result) Empty() bool {
	return r.Element == nil && r.Err == nil
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for console output and diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithLimits bounds evaluation steps and call depth per execution. The step
// budget also covers nested components rendered from the result.
func WithLimits(maxSteps, maxDepth int) Option {
	return func(r *Renderer) {
		if maxSteps > 0 {
			r.limits.maxSteps = maxSteps
		}
		if maxDepth > 0 {
			r.limits.maxDepth = maxDepth
		}
	}
}

// WithSizeLimits bounds the length of strings and arrays a snippet may build.
func WithSizeLimits(maxString, maxArray int) Option {
	return func(r *Renderer) {
		if maxString > 0 {
			r.limits.maxString = maxString
		}
		if maxArray > 0 {
			r.limits.maxArray = maxArray
		}
	}
}

// Renderer turns snippets into elements. It remembers the last inputs and result,
// so repeated calls with the same source and data return the same Result.
// Nested components in a result run on first render and keep their output, so
// rendering a remembered result again yields the same HTML.
type Renderer struct {
	log    *zap.Logger
	limits limits

	mu      sync.Mutex
	hasLast bool
	lastKey [sha256.Size]byte
	last    Result
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		log:    zap.NewNop(),
		limits: defaultLimits(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render compiles source and calls its entry component with data as props.
func (r *Renderer) Render(source string, data types.LayoutData) Result {
	if isBlankSource(source) {
		return Result{}
	}
	props := data.Props()
	key, ok := memoKey(source, props)

	if ok {
		r.mu.Lock()
		if r.hasLast && r.lastKey == key {
			res := r.last
			r.mu.Unlock()
			return res
		}
		r.mu.Unlock()
	}

	res := r.execute(source, props)

	if ok {
		r.mu.Lock()
		r.hasLast, r.lastKey, r.last = true, key, res
		r.mu.Unlock()
	}
	return res
}

func memoKey(source string, props map[string]any) ([sha256.Size]byte, bool) {
	data, err := json.Marshal(props)
	if err != nil {
		return [sha256.Size]byte{}, false
	}
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write(data)
	var key [sha256.Size]byte
	copy(key[:], h.Sum(nil))
	return key, true
}

func (r *Renderer) execute(source string, props map[string]any) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("custom layout panicked", zap.Any("panic", p))
			res = Result{Err: runtimeError(fmt.Errorf("%v", p))}
		}
	}()

	compiled, cerr := compile(source)
	if cerr != nil {
		r.log.Debug("custom layout compile failed", zap.Error(cerr))
		return Result{Err: cerr}
	}
	if compiled == nil {
		return Result{}
	}

	propsValue, _ := toValue(props).(*Object)
	if propsValue == nil {
		propsValue = newObject()
	}
	m := newMachine(r.limits, r.log)
	scope := newEnv(newScope(propsValue, r.log))
	if err := m.run(compiled.program, scope); err != nil {
		return Result{Err: runtimeError(err)}
	}

	entry, ok := scope.vars[EntryName]
	switch entry.(type) {
	case *Function, *Builtin:
	default:
		ok = false
	}
	if !ok {
		return Result{Err: missingEntry(componentNames(compiled.program))}
	}

	v, err := m.call(entry, undefined, []any{propsValue}, EntryName)
	if err != nil {
		return Result{Err: runtimeError(err)}
	}
	node := toNode(v)
	if node == nil {
		node = element.Fragment{}
	}
	return Result{Element: node}
}

package customlayout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies construction-time failures.
type Kind int

// Failure kinds.
const (
	KindCompile Kind = iota + 1
	KindMissingEntry
	KindRuntime
)

func (k Kind) String() string {
	switch k {
	case KindCompile:
		return "compile"
	case KindMissingEntry:
		return "missing_entry"
	case KindRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// RuntimePrefix starts every execution failure message.
const RuntimePrefix = "custom layout execution failed: "

// Error is a construction-time failure of a custom layout.
type Error struct {
	Kind    Kind
	Message string
	// Line and Column locate compile errors in the normalised source.
	Line   int
	Column int
	// Symbol names the missing entry component.
	Symbol string
	Cause  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindCompile:
		if e.Line > 0 {
			return fmt.Sprintf("custom layout failed to compile: %d:%d: %s", e.Line, e.Column, e.Message)
		}
		return "custom layout failed to compile: " + e.Message
	case KindRuntime:
		return RuntimePrefix + e.Message
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

type positioned interface {
	Message() string
	Position() lexer.Position
}

func compileError(err error) *Error {
	var p positioned
	if errors.As(err, &p) {
		pos := p.Position()
		return &Error{Kind: KindCompile, Message: p.Message(), Line: pos.Line, Column: pos.Column, Cause: err}
	}
	return &Error{Kind: KindCompile, Message: err.Error(), Cause: err}
}

func runtimeError(err error) *Error {
	return &Error{Kind: KindRuntime, Message: err.Error(), Cause: err}
}

func missingEntry(found []string) *Error {
	msg := fmt.Sprintf("custom layout does not define a %s component", EntryName)
	if len(found) > 0 {
		msg += fmt.Sprintf(" (found: %s)", strings.Join(found, ", "))
	}
	return &Error{Kind: KindMissingEntry, Message: msg, Symbol: EntryName}
}

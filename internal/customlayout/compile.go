package customlayout

import (
	"strings"
	"unicode"
)

// EntryName is the component a snippet must define or produce.
const EntryName = "Layout"

// Compiled is a parsed snippet ready to execute.
type Compiled struct {
	// Source is the normalised text that was parsed.
	Source string
	// Synthesized is set when the snippet had no entry component and its final
	// expression was wrapped into one.
	Synthesized bool

	program *Program
}

// Compile normalises and parses source. An empty result after normalisation
// yields a nil Compiled and a nil error.
func Compile(source string) (*Compiled, error) {
	c, err := compile(source)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func compile(source string) (*Compiled, *Error) {
	normalized := Normalize(source)
	if normalized == "" {
		return nil, nil
	}
	prog, err := parse(normalized)
	if err != nil {
		return nil, compileError(err)
	}
	c := &Compiled{Source: normalized, program: prog}
	if !declaresEntry(prog) {
		c.Synthesized = synthesizeEntry(prog)
	}
	return c, nil
}

func declaresEntry(prog *Program) bool {
	for _, s := range prog.Statements {
		if s.Function != nil && s.Function.Name == EntryName {
			return true
		}
		if s.Var != nil && s.Var.Name == EntryName {
			return true
		}
	}
	return false
}

// synthesizeEntry wraps a program ending in an expression into
// function Layout(props) { ...; return <expression> }.
func synthesizeEntry(prog *Program) bool {
	n := len(prog.Statements)
	if n == 0 || prog.Statements[n-1].Expr == nil {
		return false
	}
	last := prog.Statements[n-1]
	body := append([]*Statement(nil), prog.Statements[:n-1]...)
	body = append(body, &Statement{Pos: last.Pos, Return: &ReturnStmt{Keyword: "return", Value: last.Expr}})
	prog.Statements = []*Statement{{
		Pos: prog.Pos,
		Function: &FunctionDecl{
			Pos:    prog.Pos,
			Name:   EntryName,
			Params: []*Param{{Pos: prog.Pos, Name: "props"}},
			Body:   &Block{Open: "{", Statements: body},
		},
	}}
	return true
}

// componentNames lists capitalised top-level declarations, used to hint at a
// misnamed entry component.
func componentNames(prog *Program) []string {
	var out []string
	add := func(name string) {
		if name != "" && unicode.IsUpper([]rune(name)[0]) {
			out = append(out, name)
		}
	}
	for _, s := range prog.Statements {
		switch {
		case s.Function != nil:
			add(s.Function.Name)
		case s.Var != nil:
			add(s.Var.Name)
		}
	}
	return out
}

func isBlankSource(s string) bool {
	return strings.TrimSpace(s) == ""
}

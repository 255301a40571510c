package customlayout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var snippetParser = participle.MustBuild[Program](
	participle.Lexer(definition{}),
	participle.UseLookahead(8),
)

// Program is the root of a parsed layout snippet.
type Program struct {
	Pos        lexer.Position
	Statements []*Statement `parser:"( @@ | ';' )*"`
}

// Statement is one top-level or block-level statement.
type Statement struct {
	Pos      lexer.Position
	Function *FunctionDecl `parser:"(  @@"`
	Var      *VarDecl      `parser:" | @@"`
	Return   *ReturnStmt   `parser:" | @@"`
	If       *IfStmt       `parser:" | @@"`
	Expr     *Expr         `parser:" | @@ ) ';'?"`
}

// FunctionDecl is a named function declaration.
type FunctionDecl struct {
	Pos    lexer.Position
	Name   string   `parser:"'function' @Ident"`
	Params []*Param `parser:"'(' ( @@ ( ',' @@ )* ','? )? ')'"`
	Body   *Block   `parser:"@@"`
}

// Param is a function parameter: a name or an object pattern, with an optional
// default value.
type Param struct {
	Pos     lexer.Position
	Name    string          `parser:"(  @Ident"`
	Fields  []*PatternField `parser:" | '{' ( @@ ( ',' @@ )* ','? )? '}' )"`
	Default *Expr           `parser:"( '=' @@ )?"`
}

// PatternField is one entry of an object destructuring pattern.
type PatternField struct {
	Key     string `parser:"@Ident"`
	Alias   string `parser:"( ':' @Ident )?"`
	Default *Expr  `parser:"( '=' @@ )?"`
}

// Block is a braced statement list.
type Block struct {
	Open       string       `parser:"@'{'"`
	Statements []*Statement `parser:"( @@ | ';' )* '}'"`
}

// VarDecl declares one binding with const, let or var.
type VarDecl struct {
	Pos     lexer.Position
	Keyword string          `parser:"@( 'const' | 'let' | 'var' )"`
	Name    string          `parser:"(  @Ident"`
	Fields  []*PatternField `parser:" | '{' ( @@ ( ',' @@ )* ','? )? '}' )"`
	Value   *Expr           `parser:"'=' @@"`
}

// ReturnStmt returns from the enclosing function.
type ReturnStmt struct {
	Keyword string `parser:"@'return'"`
	Value   *Expr  `parser:"@@?"`
}

// IfStmt is a conditional with an optional else branch.
type IfStmt struct {
	Cond *Expr `parser:"'if' '(' @@ ')'"`
	Then *Body `parser:"@@"`
	Else *Body `parser:"( 'else' @@ )?"`
}

// Body is the branch of an if statement.
type Body struct {
	Block     *Block     `parser:"  @@"`
	Statement *Statement `parser:"| @@"`
}

// Expr is a conditional expression, the loosest binding level.
type Expr struct {
	Pos  lexer.Position
	Cond *Logical `parser:"@@"`
	Then *Expr    `parser:"( '?' @@"`
	Else *Expr    `parser:"  ':' @@ )?"`
}

// Logical is a chain of ||, ?? and && operators. Precedence among them is
// resolved after parsing.
type Logical struct {
	Left *Equality    `parser:"@@"`
	Rest []*LogicalOp `parser:"@@*"`
}

// LogicalOp is one operator and its right operand.
type LogicalOp struct {
	Op    string    `parser:"@( '||' | '??' | '&&' )"`
	Right *Equality `parser:"@@"`
}

// Equality is a chain of equality comparisons.
type Equality struct {
	Left *Comparison   `parser:"@@"`
	Rest []*EqualityOp `parser:"@@*"`
}

// EqualityOp is one equality operator and its right operand.
type EqualityOp struct {
	Op    string      `parser:"@( '===' | '!==' | '==' | '!=' )"`
	Right *Comparison `parser:"@@"`
}

// Comparison is a chain of relational comparisons.
type Comparison struct {
	Left *Additive       `parser:"@@"`
	Rest []*ComparisonOp `parser:"@@*"`
}

// ComparisonOp is one relational operator and its right operand.
type ComparisonOp struct {
	Op    string    `parser:"@( '<=' | '>=' | '<' | '>' )"`
	Right *Additive `parser:"@@"`
}

// Additive is a chain of + and - operators.
type Additive struct {
	Left *Multiplicative `parser:"@@"`
	Rest []*AdditiveOp   `parser:"@@*"`
}

// AdditiveOp is one additive operator and its right operand.
type AdditiveOp struct {
	Op    string          `parser:"@( '+' | '-' )"`
	Right *Multiplicative `parser:"@@"`
}

// Multiplicative is a chain of *, / and % operators.
type Multiplicative struct {
	Left *Unary              `parser:"@@"`
	Rest []*MultiplicativeOp `parser:"@@*"`
}

// MultiplicativeOp is one multiplicative operator and its right operand.
type MultiplicativeOp struct {
	Op    string `parser:"@( '*' | '/' | '%' )"`
	Right *Unary `parser:"@@"`
}

// Unary is a prefix operator application or a postfix expression.
type Unary struct {
	Pos     lexer.Position
	Op      string   `parser:"(  @( '!' | '-' | '+' | 'typeof' )"`
	Operand *Unary   `parser:"   @@"`
	Postfix *Postfix `parser:" | @@ )"`
}

// Postfix is a primary expression followed by member accesses, index
// expressions and calls.
type Postfix struct {
	Primary *Primary  `parser:"@@"`
	Ops     []*PostOp `parser:"@@*"`
}

// PostOp is one postfix operation.
type PostOp struct {
	Pos    lexer.Position
	Member *MemberOp `parser:"(  @@"`
	Index  *IndexOp  `parser:" | @@"`
	Call   *CallOp   `parser:" | @@ )"`
}

// MemberOp is .name or ?.name.
type MemberOp struct {
	Optional bool   `parser:"( '.' | @'?.' )"`
	Name     string `parser:"@Ident"`
}

// IndexOp is [expr] or ?.[expr].
type IndexOp struct {
	Optional bool  `parser:"@'?.'?"`
	Index    *Expr `parser:"'[' @@ ']'"`
}

// CallOp is (args) or ?.(args).
type CallOp struct {
	Optional bool    `parser:"@'?.'?"`
	Open     string  `parser:"@'('"`
	Args     []*Expr `parser:"( @@ ( ',' @@ )* ','? )? ')'"`
}

// Primary is an atom of the expression grammar.
type Primary struct {
	Pos      lexer.Position
	Arrow    *Arrow        `parser:"(  @@"`
	Function *FunctionExpr `parser:" | @@"`
	JSX      *JSXElement   `parser:" | @@"`
	Number   *string       `parser:" | @Number"`
	String   *StringLit    `parser:" | @String"`
	Ident    *string       `parser:" | @Ident"`
	Array    *ArrayLit     `parser:" | @@"`
	Object   *ObjectLit    `parser:" | @@"`
	Paren    *Expr         `parser:" | '(' @@ ')' )"`
}

// Arrow is an arrow function with an expression or block body.
type Arrow struct {
	Pos    lexer.Position
	Single string   `parser:"(  @ArrowIdent"`
	Params []*Param `parser:" | ArrowParen ( @@ ( ',' @@ )* ','? )? ')' )"`
	Block  *Block   `parser:"'=>' ( @@"`
	Expr   *Expr    `parser:"     | @@ )"`
}

// FunctionExpr is an anonymous or named function expression.
type FunctionExpr struct {
	Pos    lexer.Position
	Name   string   `parser:"'function' @Ident?"`
	Params []*Param `parser:"'(' ( @@ ( ',' @@ )* ','? )? ')'"`
	Body   *Block   `parser:"@@"`
}

// ArrayLit is an array literal.
type ArrayLit struct {
	Open  string  `parser:"@'['"`
	Items []*Expr `parser:"( @@ ( ',' @@ )* ','? )? ']'"`
}

// ObjectLit is an object literal.
type ObjectLit struct {
	Open       string      `parser:"@'{'"`
	Properties []*Property `parser:"( @@ ( ',' @@ )* ','? )? '}'"`
}

// Property is one object literal entry. A bare identifier is shorthand for
// name: name.
type Property struct {
	Pos      lexer.Position
	Key      *string    `parser:"(  @Ident"`
	StrKey   *StringLit `parser:" | @String"`
	NumKey   *string    `parser:" | @Number"`
	Computed *Expr      `parser:" | '[' @@ ']' )"`
	Value    *Expr      `parser:"( ':' @@ )?"`
}

// JSXElement is a markup element or fragment.
type JSXElement struct {
	Pos       lexer.Position
	Name      string      `parser:"TagOpen @TagName?"`
	Attrs     []*JSXAttr  `parser:"@@*"`
	SelfClose bool        `parser:"(  @SelfClose"`
	Children  []*JSXChild `parser:" | TagEnd @@*"`
	Close     string      `parser:"   @CloseTag )"`
}

// JSXAttr is one attribute. A missing value means true.
type JSXAttr struct {
	Pos   lexer.Position
	Name  string  `parser:"@AttrName"`
	Str   *string `parser:"( '=' ( @JSXString"`
	Value *Expr   `parser:"          | '{' @@ '}' ) )?"`
}

// JSXChild is text, a nested element or an expression container.
type JSXChild struct {
	Text    *string     `parser:"(  @JSXText"`
	Element *JSXElement `parser:" | @@"`
	Expr    *JSXExpr    `parser:" | @@ )"`
}

// JSXExpr is a braced expression child. It may be empty or hold only a comment.
type JSXExpr struct {
	Open  string `parser:"@'{'"`
	Value *Expr  `parser:"@@? '}'"`
}

// StringLit is a quoted string literal, unquoted on capture.
type StringLit string

// Capture implements participle.Capture.
func (s *StringLit) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires a value")
	}
	v, err := unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLit(v)
	return nil
}

// unquote decodes a single, double or backtick quoted literal.
func unquote(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != raw[len(raw)-1] {
		return "", fmt.Errorf("malformed string literal %s", raw)
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
		case 'u':
			if i+4 < len(body) {
				if n, err := strconv.ParseUint(body[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(n))
					i += 4
					continue
				}
			}
			return "", fmt.Errorf("invalid unicode escape in %s", raw)
		case 'x':
			if i+2 < len(body) {
				if n, err := strconv.ParseUint(body[i+1:i+3], 16, 8); err == nil {
					b.WriteRune(rune(n))
					i += 2
					continue
				}
			}
			return "", fmt.Errorf("invalid hex escape in %s", raw)
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String(), nil
}

// parse runs the grammar over normalised source. Closing tag names are checked by
// the scanner.
func parse(src string) (*Program, error) {
	return snippetParser.ParseString("layout", src)
}

package customlayout

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

type tokKind int

const (
	tkEOF tokKind = iota
	tkIdent
	tkArrowIdent
	tkArrowParen
	tkNumber
	tkString
	tkPunct
	tkTagOpen
	tkTagName
	tkAttrName
	tkJSXString
	tkTagEnd
	tkSelfClose
	tkCloseTag
	tkJSXText
)

var kindNames = []string{
	"EOF", "Ident", "ArrowIdent", "ArrowParen", "Number", "String", "Punct",
	"TagOpen", "TagName", "AttrName", "JSXString", "TagEnd", "SelfClose",
	"CloseTag", "JSXText",
}

func (k tokKind) tokenType() lexer.TokenType {
	if k == tkEOF {
		return lexer.EOF
	}
	return lexer.EOF - lexer.TokenType(k)
}

type token struct {
	kind  tokKind
	value string
	start int
	end   int
	line  int
	col   int
	// top marks tokens at the outermost statement level, outside braces and markup.
	top bool
}

type span struct {
	start, end int
}

type lexMode int

const (
	modeJS lexMode = iota
	modeTag
	modeChildren
)

type frame struct {
	mode     lexMode
	depth    int
	nameSeen bool
	tag      string
}

// SyntaxError is a lexing or parsing failure at a source position.
type SyntaxError struct {
	Pos lexer.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Message returns the error text without the position.
func (e *SyntaxError) Message() string { return e.Msg }

// Position returns where the error occurred.
func (e *SyntaxError) Position() lexer.Position { return e.Pos }

type scanner struct {
	src      string
	pos      int
	line     int
	col      int
	frames   []frame
	tokens   []token
	comments []span
}

// scan tokenizes src. JavaScript, tag and children contexts are tracked on a
// stack so that markup text and attribute strings are never read as code.
func scan(src string) (*scanner, error) {
	s := &scanner{src: src, line: 1, col: 1, frames: []frame{{mode: modeJS}}}
	for {
		var (
			done bool
			err  error
		)
		switch s.top().mode {
		case modeJS:
			done, err = s.scanJS()
		case modeTag:
			done, err = s.scanTag()
		case modeChildren:
			done, err = s.scanChildren()
		}
		if err != nil {
			return nil, err
		}
		if done {
			s.tokens = append(s.tokens, token{kind: tkEOF, start: s.pos, end: s.pos, line: s.line, col: s.col})
			return s, nil
		}
	}
}

func (s *scanner) top() *frame {
	return &s.frames[len(s.frames)-1]
}

func (s *scanner) push(f frame) {
	s.frames = append(s.frames, f)
}

func (s *scanner) pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

func (s *scanner) peek(off int) byte {
	if s.pos+off < len(s.src) {
		return s.src[s.pos+off]
	}
	return 0
}

func (s *scanner) advance(n int) {
	for i := 0; i < n && s.pos < len(s.src); i++ {
		if s.src[s.pos] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
		s.pos++
	}
}

func (s *scanner) errorf(format string, args ...any) error {
	return &SyntaxError{
		Pos: lexer.Position{Offset: s.pos, Line: s.line, Column: s.col},
		Msg: fmt.Sprintf(format, args...),
	}
}

func (s *scanner) emit(kind tokKind, value string, start, line, col int) {
	top := len(s.frames) == 1 && s.frames[0].depth == 0 && kind != tkTagOpen
	s.tokens = append(s.tokens, token{
		kind: kind, value: value, start: start, end: s.pos, line: line, col: col, top: top,
	})
}

func (s *scanner) last() *token {
	if len(s.tokens) == 0 {
		return nil
	}
	return &s.tokens[len(s.tokens)-1]
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.advance(1)
	}
}

// skipComment consumes a comment at the cursor and reports whether there was one.
func (s *scanner) skipComment() (bool, error) {
	if s.peek(0) != '/' {
		return false, nil
	}
	start := s.pos
	switch s.peek(1) {
	case '/':
		for s.pos < len(s.src) && s.src[s.pos] != '\n' {
			s.advance(1)
		}
	case '*':
		end := strings.Index(s.src[s.pos+2:], "*/")
		if end < 0 {
			return false, s.errorf("unterminated comment")
		}
		s.advance(end + 4)
	default:
		return false, nil
	}
	s.comments = append(s.comments, span{start: start, end: s.pos})
	return true, nil
}

var punctuators = []string{
	"===", "!==", "...", "**",
	"?.", "??", "==", "!=", "<=", ">=", "&&", "||", "=>",
	"+", "-", "*", "/", "%", "<", ">", "=", "!", "?", ":", ".", ",", ";",
	"(", ")", "[", "]", "{", "}",
}

func (s *scanner) scanJS() (bool, error) {
	for {
		s.skipSpace()
		ok, err := s.skipComment()
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
	}
	if s.pos >= len(s.src) {
		return true, nil
	}
	start, line, col := s.pos, s.line, s.col
	c := s.src[s.pos]

	switch {
	case isIdentStart(c):
		for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
			s.advance(1)
		}
		kind := tkIdent
		if s.followedByArrow(s.pos) {
			kind = tkArrowIdent
		}
		s.emit(kind, s.src[start:s.pos], start, line, col)
	case isDigit(c) || (c == '.' && isDigit(s.peek(1))):
		s.scanNumber()
		s.emit(tkNumber, s.src[start:s.pos], start, line, col)
	case c == '"' || c == '\'':
		if err := s.scanQuoted(c); err != nil {
			return false, err
		}
		s.emit(tkString, s.src[start:s.pos], start, line, col)
	case c == '`':
		if err := s.scanTemplate(); err != nil {
			return false, err
		}
		s.emit(tkString, s.src[start:s.pos], start, line, col)
	case c == '<' && s.jsxAllowed():
		s.advance(1)
		s.emit(tkTagOpen, "<", start, line, col)
		s.push(frame{mode: modeTag})
	case c == '{':
		s.advance(1)
		s.emit(tkPunct, "{", start, line, col)
		s.top().depth++
	case c == '}':
		s.advance(1)
		f := s.top()
		if f.depth == 0 && len(s.frames) > 1 {
			s.pop()
		} else if f.depth > 0 {
			f.depth--
		}
		s.emit(tkPunct, "}", start, line, col)
	case c == '(':
		kind := tkPunct
		if s.parenStartsArrow(s.pos) {
			kind = tkArrowParen
		}
		s.advance(1)
		s.emit(kind, "(", start, line, col)
	default:
		for _, p := range punctuators {
			if !strings.HasPrefix(s.src[s.pos:], p) {
				continue
			}
			if p == "?." && isDigit(s.peek(2)) {
				continue
			}
			s.advance(len(p))
			s.emit(tkPunct, p, start, line, col)
			return false, nil
		}
		return false, s.errorf("unexpected character %q", c)
	}
	return false, nil
}

func (s *scanner) scanNumber() {
	if s.peek(0) == '0' && (s.peek(1) == 'x' || s.peek(1) == 'X') {
		s.advance(2)
		for isHexDigit(s.peek(0)) {
			s.advance(1)
		}
		return
	}
	for isDigit(s.peek(0)) || s.peek(0) == '_' {
		s.advance(1)
	}
	if s.peek(0) == '.' && isDigit(s.peek(1)) {
		s.advance(1)
		for isDigit(s.peek(0)) {
			s.advance(1)
		}
	}
	if s.peek(0) == 'e' || s.peek(0) == 'E' {
		off := 1
		if s.peek(1) == '+' || s.peek(1) == '-' {
			off = 2
		}
		if isDigit(s.peek(off)) {
			s.advance(off)
			for isDigit(s.peek(0)) {
				s.advance(1)
			}
		}
	}
}

func (s *scanner) scanQuoted(q byte) error {
	s.advance(1)
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.advance(2)
		case '\n':
			return s.errorf("unterminated string literal")
		case q:
			s.advance(1)
			return nil
		default:
			s.advance(1)
		}
	}
	return s.errorf("unterminated string literal")
}

func (s *scanner) scanTemplate() error {
	s.advance(1)
	for s.pos < len(s.src) {
		switch {
		case s.src[s.pos] == '\\':
			s.advance(2)
		case strings.HasPrefix(s.src[s.pos:], "${"):
			return s.errorf("template literal interpolation is not supported")
		case s.src[s.pos] == '`':
			s.advance(1)
			return nil
		default:
			s.advance(1)
		}
	}
	return s.errorf("unterminated template literal")
}

var nonOperandWords = map[string]bool{
	"return": true, "typeof": true, "case": true, "else": true, "do": true,
	"in": true, "of": true, "new": true, "void": true, "yield": true,
	"await": true, "throw": true, "delete": true,
}

// jsxAllowed reports whether a '<' at the cursor opens markup rather than being a
// comparison. Markup needs a tag name or '>' next and an operator before it.
func (s *scanner) jsxAllowed() bool {
	next := s.peek(1)
	if !isIdentStart(next) && next != '>' {
		return false
	}
	prev := s.last()
	if prev == nil {
		return true
	}
	switch prev.kind {
	case tkIdent:
		return nonOperandWords[prev.value]
	case tkNumber, tkString, tkCloseTag, tkSelfClose:
		return false
	case tkPunct:
		return prev.value != ")" && prev.value != "]"
	default:
		return true
	}
}

func (s *scanner) followedByArrow(i int) bool {
	for i < len(s.src) && isSpace(s.src[i]) {
		i++
	}
	return strings.HasPrefix(s.src[i:], "=>")
}

// parenStartsArrow looks for the ')' matching the '(' at i and reports whether
// "=>" follows it. The scan gives up on markup, statements and unbalanced input.
func (s *scanner) parenStartsArrow(i int) bool {
	depth := 0
	for i < len(s.src) {
		switch c := s.src[i]; c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s.followedByArrow(i + 1)
			}
		case '<', ';':
			return false
		case '"', '\'', '`':
			j := i + 1
			for j < len(s.src) && s.src[j] != c {
				if s.src[j] == '\\' {
					j += 2
					continue
				}
				if s.src[j] == '\n' && c != '`' {
					return false
				}
				j++
			}
			if j >= len(s.src) {
				return false
			}
			i = j
		}
		i++
	}
	return false
}

func (s *scanner) scanTag() (bool, error) {
	for {
		s.skipSpace()
		ok, err := s.skipComment()
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
	}
	if s.pos >= len(s.src) {
		return true, nil
	}
	start, line, col := s.pos, s.line, s.col
	c := s.src[s.pos]
	f := s.top()

	switch {
	case c == '/' && s.peek(1) == '>':
		s.advance(2)
		s.pop()
		s.emit(tkSelfClose, "/>", start, line, col)
	case c == '>':
		s.advance(1)
		f.mode = modeChildren
		s.emit(tkTagEnd, ">", start, line, col)
	case c == '{':
		s.advance(1)
		s.emit(tkPunct, "{", start, line, col)
		s.push(frame{mode: modeJS})
	case c == '=':
		s.advance(1)
		s.emit(tkPunct, "=", start, line, col)
	case c == '"' || c == '\'':
		s.advance(1)
		end := strings.IndexByte(s.src[s.pos:], c)
		if end < 0 {
			return false, s.errorf("unterminated attribute string")
		}
		value := s.src[s.pos : s.pos+end]
		s.advance(end + 1)
		s.emit(tkJSXString, html.UnescapeString(value), start, line, col)
	case isIdentStart(c):
		for s.pos < len(s.src) && (isIdentPart(s.src[s.pos]) || strings.IndexByte("-.:", s.src[s.pos]) >= 0) {
			s.advance(1)
		}
		kind := tkAttrName
		if !f.nameSeen {
			kind = tkTagName
			f.nameSeen = true
			f.tag = s.src[start:s.pos]
		}
		s.emit(kind, s.src[start:s.pos], start, line, col)
	default:
		return false, s.errorf("unexpected character %q in tag", c)
	}
	return false, nil
}

func (s *scanner) scanChildren() (bool, error) {
	if s.pos >= len(s.src) {
		return true, nil
	}
	start, line, col := s.pos, s.line, s.col
	switch s.src[s.pos] {
	case '{':
		s.advance(1)
		s.emit(tkPunct, "{", start, line, col)
		s.push(frame{mode: modeJS})
		return false, nil
	case '<':
		j := s.pos + 1
		for j < len(s.src) && isSpace(s.src[j]) {
			j++
		}
		if j < len(s.src) && s.src[j] == '/' {
			return false, s.scanCloseTag(j+1, start, line, col)
		}
		s.advance(1)
		s.emit(tkTagOpen, "<", start, line, col)
		s.push(frame{mode: modeTag})
		return false, nil
	}
	for s.pos < len(s.src) && s.src[s.pos] != '{' && s.src[s.pos] != '<' {
		s.advance(1)
	}
	if text := cleanJSXText(s.src[start:s.pos]); text != "" {
		s.emit(tkJSXText, text, start, line, col)
	}
	return false, nil
}

func (s *scanner) scanCloseTag(from, start, line, col int) error {
	s.advance(from - s.pos)
	s.skipSpace()
	nameStart := s.pos
	for s.pos < len(s.src) && (isIdentPart(s.src[s.pos]) || strings.IndexByte("-.:", s.src[s.pos]) >= 0) {
		s.advance(1)
	}
	name := s.src[nameStart:s.pos]
	s.skipSpace()
	if s.peek(0) != '>' {
		return s.errorf("expected '>' to end closing tag </%s", name)
	}
	if open := s.top().tag; open != name {
		return &SyntaxError{
			Pos: lexer.Position{Offset: start, Line: line, Column: col},
			Msg: fmt.Sprintf("expected corresponding closing tag for <%s>, found </%s>", open, name),
		}
	}
	s.advance(1)
	s.pop()
	s.emit(tkCloseTag, name, start, line, col)
	return nil
}

// cleanJSXText applies the markup whitespace rules: lines are trimmed where they
// meet a line break, empty lines vanish and the rest are joined with one space.
func cleanJSXText(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	lastNonEmpty := -1
	for i, l := range lines {
		if strings.TrimLeft(l, " \t") != "" {
			lastNonEmpty = i
		}
	}
	var b strings.Builder
	for i, l := range lines {
		l = strings.ReplaceAll(l, "\t", " ")
		if i > 0 {
			l = strings.TrimLeft(l, " ")
		}
		if i < len(lines)-1 {
			l = strings.TrimRight(l, " ")
		}
		if l == "" {
			continue
		}
		b.WriteString(l)
		if i != lastNonEmpty {
			b.WriteByte(' ')
		}
	}
	return html.UnescapeString(b.String())
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// definition adapts the scanner to participle.
type definition struct{}

func (definition) Symbols() map[string]lexer.TokenType {
	out := make(map[string]lexer.TokenType, len(kindNames))
	for i, name := range kindNames {
		out[name] = tokKind(i).tokenType()
	}
	return out
}

func (definition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s, err := scan(string(data))
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			se.Pos.Filename = filename
		}
		return nil, err
	}
	return &tokenStream{filename: filename, tokens: s.tokens}, nil
}

type tokenStream struct {
	filename string
	tokens   []token
	i        int
}

func (t *tokenStream) Next() (lexer.Token, error) {
	if t.i >= len(t.tokens) {
		last := t.tokens[len(t.tokens)-1]
		return lexer.Token{Type: lexer.EOF, Pos: t.position(last)}, nil
	}
	tok := t.tokens[t.i]
	t.i++
	return lexer.Token{Type: tok.kind.tokenType(), Value: tok.value, Pos: t.position(tok)}, nil
}

func (t *tokenStream) position(tok token) lexer.Position {
	return lexer.Position{Filename: t.filename, Offset: tok.start, Line: tok.line, Column: tok.col}
}

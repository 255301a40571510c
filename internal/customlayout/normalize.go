package customlayout

import "strings"

// Normalize prepares a snippet for compilation. It removes comments, import
// statements and export keywords, drops the lines those removals leave blank and
// unwraps one pair of parentheses enclosing the whole snippet. Comment markers
// inside strings and markup text are left alone. Source that cannot be tokenized
// is returned trimmed so the compiler can report the error.
func Normalize(src string) string {
	s, err := scan(src)
	if err != nil {
		return strings.TrimSpace(src)
	}
	cuts := append([]span(nil), s.comments...)
	cuts = append(cuts, moduleSyntax(s.tokens)...)
	out := strings.TrimSpace(cutSpans(src, cuts))

	s, err = scan(out)
	if err != nil {
		return out
	}
	if cuts := enclosingParens(s.tokens); cuts != nil {
		out = strings.TrimSpace(cutSpans(out, cuts))
	}
	return out
}

// moduleSyntax finds import statements and export keywords at the top level.
func moduleSyntax(toks []token) []span {
	var cuts []span
	statementStart := func(i int) bool {
		if i == 0 {
			return true
		}
		prev := toks[i-1]
		return (prev.top && prev.kind == tkPunct && (prev.value == ";" || prev.value == "}")) ||
			prev.line < toks[i].line
	}
	withSemicolon := func(end int) int {
		if end+1 < len(toks) && toks[end+1].kind == tkPunct && toks[end+1].value == ";" {
			return end + 1
		}
		return end
	}
	// through returns the start of the token after i, so a cut also takes the
	// whitespace following a keyword.
	through := func(i int) int {
		return toks[i+1].start
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if !t.top || t.kind != tkIdent || !statementStart(i) {
			continue
		}
		switch t.value {
		case "import":
			if i+1 < len(toks) && toks[i+1].value == "(" {
				continue
			}
			end := -1
			for j := i + 1; j < len(toks) && toks[j].kind != tkEOF; j++ {
				if toks[j].kind == tkString && toks[j].top {
					end = j
					break
				}
			}
			if end < 0 {
				continue
			}
			end = withSemicolon(end)
			cuts = append(cuts, span{start: t.start, end: toks[end].end})
			i = end
		case "export":
			next := toks[i+1]
			switch {
			case next.kind == tkIdent && next.value == "default":
				after := toks[i+2]
				if after.kind == tkIdent && !declarationWords[after.value] && endsStatement(toks, i+3, after) {
					end := withSemicolon(i + 2)
					cuts = append(cuts, span{start: t.start, end: toks[end].end})
					i = end
					continue
				}
				cuts = append(cuts, span{start: t.start, end: through(i + 1)})
				i++
			case next.kind == tkPunct && next.value == "{":
				j := i + 1
				for j < len(toks) && !(toks[j].kind == tkPunct && toks[j].value == "}") {
					j++
				}
				if j >= len(toks) {
					continue
				}
				end := withSemicolon(j)
				cuts = append(cuts, span{start: t.start, end: toks[end].end})
				i = end
			default:
				cuts = append(cuts, span{start: t.start, end: through(i)})
			}
		}
	}
	return cuts
}

var declarationWords = map[string]bool{
	"function": true, "const": true, "let": true, "var": true, "class": true, "async": true,
}

// endsStatement reports whether the token at i closes the statement ending with
// prev: a semicolon, the end of input or a new line.
func endsStatement(toks []token, i int, prev token) bool {
	if i >= len(toks) {
		return true
	}
	t := toks[i]
	return t.kind == tkEOF || (t.kind == tkPunct && t.value == ";") || t.line > prev.line
}

// enclosingParens returns the spans of a '(' opening the snippet and the ')'
// matching it when that is the last token, ignoring a trailing semicolon.
func enclosingParens(toks []token) []span {
	if len(toks) < 3 || toks[0].kind != tkPunct || toks[0].value != "(" {
		return nil
	}
	last := len(toks) - 2
	if toks[last].kind == tkPunct && toks[last].value == ";" {
		last--
	}
	if last <= 0 || toks[last].value != ")" {
		return nil
	}
	depth := 0
	for i := 0; i <= last; i++ {
		t := toks[i]
		if t.kind != tkPunct && t.kind != tkArrowParen {
			continue
		}
		switch t.value {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 && i != last {
				return nil
			}
		}
	}
	return []span{{start: toks[0].start, end: toks[0].end}, {start: toks[last].start, end: toks[len(toks)-2].end}}
}

// cutSpans removes the spans from src. Lines left holding only whitespace by a
// removal are dropped; other blank lines stay.
func cutSpans(src string, cuts []span) string {
	if len(cuts) == 0 {
		return src
	}
	removed := make([]bool, len(src))
	for _, c := range cuts {
		for i := c.start; i < c.end && i < len(src); i++ {
			removed[i] = true
		}
	}
	var (
		out       strings.Builder
		line      strings.Builder
		lineTouch bool
	)
	flush := func(newline bool) {
		text := line.String()
		if !(lineTouch && isBlank(text)) {
			out.WriteString(text)
			if newline {
				out.WriteByte('\n')
			}
		}
		line.Reset()
		lineTouch = false
	}
	for i := 0; i < len(src); i++ {
		if removed[i] {
			lineTouch = true
			continue
		}
		if src[i] == '\n' {
			flush(true)
			continue
		}
		line.WriteByte(src[i])
	}
	flush(false)
	return out.String()
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

package layouts

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/resume-builder/internal/element"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
)

// Markdown renders src as an HTML fragment. Raw HTML in src is not passed through.
// Blank input yields nil.
func Markdown(src string) element.Node {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return element.Text(src)
	}
	return element.RawHTML(buf.String())
}

// Label turns a field key such as "linkedinUrl" or "side_projects" into a display
// label ("Linkedin Url", "Side Projects").
func Label(key string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(strings.TrimSpace(key))
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return cases.Title(language.English).String(strings.Join(words, " "))
}

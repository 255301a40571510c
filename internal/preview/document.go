package preview

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/jonathan/resume-builder/internal/element"
	"github.com/jonathan/resume-builder/internal/layouts"
)

// DefaultTitle is the document title used when a request has none.
const DefaultTitle = "Resume preview"

// Policy returns the sanitiser applied to preview bodies: user generated content
// rules plus layout classes, inline styles and the icon SVG vocabulary.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "style", "role").Globally()
	p.AllowDataAttributes()
	p.AllowElements("section", "article", "header", "main", "aside", "hr", "details", "summary")
	p.AllowElements("svg", "path", "circle", "rect", "line", "polyline")
	p.AllowAttrs("xmlns", "width", "height", "viewbox", "fill", "stroke", "stroke-width",
		"stroke-linecap", "stroke-linejoin", "aria-hidden").OnElements("svg")
	p.AllowAttrs("d").OnElements("path")
	p.AllowAttrs("cx", "cy", "r").OnElements("circle")
	p.AllowAttrs("x", "y", "width", "height", "rx", "ry").OnElements("rect")
	p.AllowAttrs("x1", "y1", "x2", "y2").OnElements("line")
	p.AllowAttrs("points").OnElements("polyline")
	return p
}

// Document wraps a sanitised body fragment into a complete HTML document with
// the theme stylesheet.
func Document(title string, theme layouts.Theme, body string) (string, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	root := element.E("html", element.Props("lang", "en"),
		element.E("head", nil,
			element.E("meta", element.Props("charset", "utf-8")),
			element.E("meta", element.Props("name", "viewport", "content", "width=device-width, initial-scale=1")),
			element.E("title", nil, element.Text(title)),
			element.E("style", nil, element.Text(theme.CSS())),
		),
		element.E("body", nil, element.RawHTML(body)),
	)
	html, err := element.HTML(root)
	if err != nil {
		return "", err
	}
	return "<!DOCTYPE html>\n" + html, nil
}

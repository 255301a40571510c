// Package icons provides the fixed icon set available to built-in layouts and to
// custom layout snippets. The shapes follow the lucide outline set on a 24x24 grid.
package icons

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/resume-builder/internal/element"
)

type shape struct {
	tag   string
	attrs map[string]any
}

func path(d string) shape { return shape{tag: "path", attrs: map[string]any{"d": d}} }

func circle(cx, cy, r float64) shape {
	return shape{tag: "circle", attrs: map[string]any{"cx": cx, "cy": cy, "r": r}}
}

func rect(x, y, w, h, rx float64) shape {
	attrs := map[string]any{"x": x, "y": y, "width": w, "height": h}
	if rx > 0 {
		attrs["rx"] = rx
	}
	return shape{tag: "rect", attrs: attrs}
}

// Icon is a named outline icon.
type Icon struct {
	Name   string
	shapes []shape
}

// The icon set.
var (
	Mail = Icon{Name: "Mail", shapes: []shape{
		rect(2, 4, 20, 16, 2),
		path("m22 7-8.97 5.7a1.94 1.94 0 0 1-2.06 0L2 7"),
	}}
	Phone = Icon{Name: "Phone", shapes: []shape{
		path("M22 16.92v3a2 2 0 0 1-2.18 2 19.79 19.79 0 0 1-8.63-3.07 19.5 19.5 0 0 1-6-6 19.79 19.79 0 0 1-3.07-8.67A2 2 0 0 1 4.11 2h3a2 2 0 0 1 2 1.72 12.84 12.84 0 0 0 .7 2.81 2 2 0 0 1-.45 2.11L8.09 9.91a16 16 0 0 0 6 6l1.27-1.27a2 2 0 0 1 2.11-.45 12.84 12.84 0 0 0 2.81.7A2 2 0 0 1 22 16.92z"),
	}}
	MapPin = Icon{Name: "MapPin", shapes: []shape{
		path("M20 10c0 6-8 12-8 12s-8-6-8-12a8 8 0 0 1 16 0Z"),
		circle(12, 10, 3),
	}}
	Globe = Icon{Name: "Globe", shapes: []shape{
		circle(12, 12, 10),
		path("M12 2a14.5 14.5 0 0 0 0 20 14.5 14.5 0 0 0 0-20"),
		path("M2 12h20"),
	}}
	Linkedin = Icon{Name: "Linkedin", shapes: []shape{
		path("M16 8a6 6 0 0 1 6 6v7h-4v-7a2 2 0 0 0-2-2 2 2 0 0 0-2 2v7h-4v-7a6 6 0 0 1 6-6z"),
		rect(2, 9, 4, 12, 0),
		circle(4, 4, 2),
	}}
	Github = Icon{Name: "Github", shapes: []shape{
		path("M15 22v-4a4.8 4.8 0 0 0-1-3.5c3 0 6-2 6-5.5.08-1.25-.27-2.48-1-3.5.28-1.15.28-2.35 0-3.5 0 0-1 0-3 1.5-2.64-.5-5.36-.5-8 0C6 2 5 2 5 2c-.3 1.15-.3 2.35 0 3.5A5.403 5.403 0 0 0 4 9c0 3.5 3 5.5 6 5.5-.39.49-.68 1.05-.85 1.65-.17.6-.22 1.23-.15 1.85v4"),
		path("M9 18c-4.51 2-5-2-7-2"),
	}}
	Calendar = Icon{Name: "Calendar", shapes: []shape{
		rect(3, 4, 18, 18, 2),
		path("M16 2v4"),
		path("M8 2v4"),
		path("M3 10h18"),
	}}
	Briefcase = Icon{Name: "Briefcase", shapes: []shape{
		rect(2, 7, 20, 14, 2),
		path("M16 21V5a2 2 0 0 0-2-2h-4a2 2 0 0 0-2 2v16"),
	}}
	GraduationCap = Icon{Name: "GraduationCap", shapes: []shape{
		path("M22 10v6M2 10l10-5 10 5-10 5z"),
		path("M6 12v5c3 3 9 3 12 0v-5"),
	}}
)

var registry = map[string]Icon{}

func init() {
	for _, i := range []Icon{Mail, Phone, MapPin, Globe, Linkedin, Github, Calendar, Briefcase, GraduationCap} {
		registry[i.Name] = i
	}
}

// Names returns the icon names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the icon called name.
func Lookup(name string) (Icon, bool) {
	i, ok := registry[name]
	return i, ok
}

// Node renders the icon as an inline svg element. Recognised props are size,
// color, strokeWidth and className; they default to 24, currentColor, 2 and none.
func (i Icon) Node(props map[string]any) element.Node {
	size := numberProp(props, "size", 24)
	color := "currentColor"
	if c, ok := props["color"].(string); ok && c != "" {
		color = c
	}
	class := "lucide lucide-" + kebab(i.Name)
	if c, ok := props["className"].(string); ok && c != "" {
		class += " " + c
	}

	attrs := map[string]any{
		"xmlns":           "http://www.w3.org/2000/svg",
		"width":           size,
		"height":          size,
		"viewBox":         "0 0 24 24",
		"fill":            "none",
		"stroke":          color,
		"stroke-width":    numberProp(props, "strokeWidth", 2),
		"stroke-linecap":  "round",
		"stroke-linejoin": "round",
		"class":           class,
		"aria-hidden":     "true",
	}
	if style, ok := props["style"]; ok {
		attrs["style"] = style
	}

	children := make([]element.Node, len(i.shapes))
	for j, s := range i.shapes {
		children[j] = element.E(s.tag, s.attrs)
	}
	return element.E("svg", attrs, children...)
}

func numberProp(props map[string]any, key string, def float64) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func kebab(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Package layouts provides the built-in resume layouts: pure functions from layout
// data and a theme to an element tree.
package layouts

import (
	"embed"
	"sort"
	"strings"

	"github.com/jonathan/resume-builder/internal/element"
	"github.com/jonathan/resume-builder/internal/types"
)

// DefaultName is the layout used when none is selected.
const DefaultName = "simple"

//go:embed starters/*.jsx
var starters embed.FS

// Layout is a named built-in layout.
type Layout struct {
	Name string
	// Description is Markdown.
	Description string
	Theme       Theme
	build       func(types.LayoutData) []element.Node
}

// Render builds the layout tree for data with the layout's own theme.
func (l Layout) Render(data types.LayoutData) element.Node {
	return l.RenderWith(data, l.Theme)
}

// RenderWith builds the layout tree for data with theme. Empty theme tokens fall
// back to the layout's own theme.
func (l Layout) RenderWith(data types.LayoutData, theme Theme) element.Node {
	theme = theme.Merge(l.Theme)
	return element.E("div", element.Props(
		"className", "resume layout-"+l.Name,
		"data-theme", theme.Name,
		"style", map[string]any{
			"--resume-primary": theme.Primary,
			"--resume-accent":  theme.Accent,
		},
	), l.build(data)...)
}

// DescriptionHTML renders the Markdown description.
func (l Layout) DescriptionHTML() element.Node {
	return Markdown(l.Description)
}

// Starter returns a custom layout snippet reproducing the layout, meant as a
// starting point for editing.
func (l Layout) Starter() string {
	b, err := starters.ReadFile("starters/" + l.Name + ".jsx")
	if err != nil {
		return ""
	}
	return string(b)
}

var registry = map[string]Layout{
	"simple": {
		Name:        "simple",
		Description: "A single column with the **header on top** and every section below it.",
		Theme:       themes["classic"],
		build:       simpleLayout,
	},
	"modern": {
		Name:        "modern",
		Description: "A coloured header band and *accented* section titles.",
		Theme:       themes["ocean"],
		build:       modernLayout,
	},
	"sidebar": {
		Name:        "sidebar",
		Description: "Contact details, skills and education in a side column; work history in the main column.",
		Theme:       themes["slate"],
		build:       sidebarLayout,
	},
	"centered": {
		Name:        "centered",
		Description: "A centred header and section titles in a serif face.",
		Theme:       themes["serif"],
		build:       centeredLayout,
	},
}

// Names returns the registered layout names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered layouts ordered by name.
func All() []Layout {
	names := Names()
	out := make([]Layout, len(names))
	for i, name := range names {
		out[i] = registry[name]
	}
	return out
}

// Lookup returns the layout called name. Names are matched case-insensitively.
func Lookup(name string) (Layout, error) {
	l, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Layout{}, &UnknownLayoutError{Name: name, Known: Names()}
	}
	return l, nil
}

// Default returns the default layout.
func Default() Layout {
	return registry[DefaultName]
}

func simpleLayout(d types.LayoutData) []element.Node {
	return []element.Node{
		header(d.Basics),
		work(d.Work),
		education(d.Education),
		skills(d.Skills),
		extra(d.ExtraData),
	}
}

func modernLayout(d types.LayoutData) []element.Node {
	return []element.Node{
		header(d.Basics),
		element.E("main", nil,
			work(d.Work),
			skills(d.Skills),
			education(d.Education),
			extra(d.ExtraData),
		),
	}
}

func sidebarLayout(d types.LayoutData) []element.Node {
	identity := element.E("div", element.Props("className", "header"),
		element.E("h1", nil, element.Text(d.Basics.FullName)),
		optional(d.Basics.JobTitle, func() element.Node {
			return element.E("p", element.Props("className", "job-title"), element.Text(d.Basics.JobTitle))
		}),
	)
	return []element.Node{
		element.E("aside", nil,
			identity,
			contact(d.Basics),
			skills(d.Skills),
			education(d.Education),
		),
		element.E("main", nil,
			work(d.Work),
			extra(d.ExtraData),
		),
	}
}

func centeredLayout(d types.LayoutData) []element.Node {
	return []element.Node{
		header(d.Basics),
		element.E("hr", nil),
		work(d.Work),
		education(d.Education),
		skills(d.Skills),
		extra(d.ExtraData),
	}
}

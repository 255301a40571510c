package layouts

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/resume-builder/internal/element"
	"github.com/jonathan/resume-builder/internal/icons"
	"github.com/jonathan/resume-builder/internal/types"
)

const iconSize = 14

func iconFor(key string) icons.Icon {
	k := strings.ToLower(key)
	switch {
	case k == types.FieldEmail:
		return icons.Mail
	case k == types.FieldPhone:
		return icons.Phone
	case k == types.FieldLocation:
		return icons.MapPin
	case strings.Contains(k, "linkedin"):
		return icons.Linkedin
	case strings.Contains(k, "github"):
		return icons.Github
	default:
		return icons.Globe
	}
}

func header(p types.PersonalInfo) element.Node {
	return element.E("header", element.Props("className", "header"),
		element.E("h1", nil, element.Text(p.FullName)),
		optional(p.JobTitle, func() element.Node {
			return element.E("p", element.Props("className", "job-title"), element.Text(p.JobTitle))
		}),
		contact(p),
	)
}

// contact lists email, phone, location and the dynamic fields, each with an icon.
func contact(p types.PersonalInfo) element.Node {
	var items []element.Node
	add := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		items = append(items, element.E("li", element.Props("data-field", key),
			iconFor(key).Node(map[string]any{"size": iconSize}),
			element.Text(value),
		))
	}
	add(types.FieldEmail, p.Email)
	add(types.FieldPhone, p.Phone)
	add(types.FieldLocation, p.Location)
	for _, f := range p.Dynamic {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		items = append(items, element.E("li", element.Props("data-field", f.Key),
			iconFor(f.Key).Node(map[string]any{"size": iconSize}),
			element.E("span", element.Props("className", "label"), element.Text(Label(f.Key)+": ")),
			element.Text(f.Value),
		))
	}
	if len(items) == 0 {
		return nil
	}
	return element.E("ul", element.Props("className", "contact"), items...)
}

func section(title string, body ...element.Node) element.Node {
	return element.E("section", element.Props("className", "section-"+strings.ToLower(strings.ReplaceAll(title, " ", "-"))),
		append([]element.Node{element.E("h2", nil, element.Text(title))}, body...)...,
	)
}

func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start + " - Present"
	default:
		return end
	}
}

func work(entries []types.WorkEntry) element.Node {
	if len(entries) == 0 {
		return nil
	}
	items := make([]element.Node, 0, len(entries))
	for _, w := range entries {
		meta := joinNonEmpty(" · ", w.Company, w.Location, dateRange(w.StartDate, w.EndDate))
		items = append(items, element.E("article", element.Props("className", "entry", "key", w.ID),
			element.E("h3", nil, element.Text(firstNonEmpty(w.JobTitle, w.Company))),
			element.E("div", element.Props("className", "entry-meta"), element.Text(meta)),
			Markdown(w.Description),
		))
	}
	return section("Work Experience", items...)
}

func education(entries []types.EducationEntry) element.Node {
	if len(entries) == 0 {
		return nil
	}
	items := make([]element.Node, 0, len(entries))
	for _, e := range entries {
		title := e.Degree
		if e.Field != "" {
			title = joinNonEmpty(" in ", e.Degree, e.Field)
		}
		items = append(items, element.E("article", element.Props("className", "entry", "key", e.ID),
			element.E("h3", nil, element.Text(firstNonEmpty(title, e.Institution))),
			element.E("div", element.Props("className", "entry-meta"),
				element.Text(joinNonEmpty(" · ", e.Institution, dateRange(e.StartDate, e.EndDate)))),
			Markdown(e.Description),
		))
	}
	return section("Education", items...)
}

func skills(list []string) element.Node {
	if len(list) == 0 {
		return nil
	}
	items := make([]element.Node, len(list))
	for i, s := range list {
		items[i] = element.E("li", nil, element.Text(s))
	}
	return section("Skills", element.E("ul", element.Props("className", "skills"), items...))
}

// extra renders every extra data entry as its own section, in key order.
func extra(data map[string]types.Value) element.Node {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []element.Node
	for _, k := range keys {
		body := value(data[k])
		if body == nil {
			continue
		}
		out = append(out, section(Label(k), body))
	}
	return element.Group(out...)
}

func value(v types.Value) element.Node {
	switch v.Kind() {
	case types.KindString:
		s, _ := v.Str()
		return element.E("p", nil, element.Text(s))
	case types.KindNumber:
		n, _ := v.Num()
		return element.E("p", nil, element.Text(strconv.FormatFloat(n, 'f', -1, 64)))
	case types.KindBool:
		if b, _ := v.Boolean(); b {
			return element.E("p", nil, element.Text("Yes"))
		}
		return element.E("p", nil, element.Text("No"))
	case types.KindList:
		items := make([]element.Node, 0, len(v.Items()))
		for _, item := range v.Items() {
			if n := inline(item); n != nil {
				items = append(items, element.E("li", nil, n))
			}
		}
		if len(items) == 0 {
			return nil
		}
		return element.E("ul", nil, items...)
	case types.KindMap:
		entries := v.Entries()
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var rows []element.Node
		for _, k := range keys {
			n := inline(entries[k])
			if n == nil {
				continue
			}
			rows = append(rows, element.E("dt", nil, element.Text(Label(k))), element.E("dd", nil, n))
		}
		if len(rows) == 0 {
			return nil
		}
		return element.E("dl", nil, rows...)
	default:
		return nil
	}
}

// inline is value without the paragraph wrapper for scalars.
func inline(v types.Value) element.Node {
	switch v.Kind() {
	case types.KindString, types.KindNumber, types.KindBool:
		p, _ := value(v).(*element.Element)
		if p == nil {
			return nil
		}
		return element.Group(p.Children...)
	default:
		return value(v)
	}
}

func optional(s string, build func() element.Node) element.Node {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return build()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

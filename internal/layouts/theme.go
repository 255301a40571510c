package layouts

import (
	"fmt"
	"sort"
	"strings"
)

// Theme holds the style tokens a layout draws with.
type Theme struct {
	Name        string `json:"name" yaml:"name"`
	Primary     string `json:"primary" yaml:"primary"`
	Accent      string `json:"accent" yaml:"accent"`
	Text        string `json:"text" yaml:"text"`
	Muted       string `json:"muted" yaml:"muted"`
	Background  string `json:"background" yaml:"background"`
	Font        string `json:"font" yaml:"font"`
	HeadingFont string `json:"headingFont" yaml:"headingFont"`
	BaseSize    int    `json:"baseSize" yaml:"baseSize"`
	Spacing     int    `json:"spacing" yaml:"spacing"`
}

var themes = map[string]Theme{
	"classic": {
		Name: "classic", Primary: "#1f2937", Accent: "#2563eb", Text: "#111827", Muted: "#6b7280",
		Background: "#ffffff", Font: "Helvetica, Arial, sans-serif", HeadingFont: "Helvetica, Arial, sans-serif",
		BaseSize: 14, Spacing: 16,
	},
	"ocean": {
		Name: "ocean", Primary: "#0f4c81", Accent: "#14b8a6", Text: "#0f172a", Muted: "#64748b",
		Background: "#ffffff", Font: "Inter, Helvetica, Arial, sans-serif", HeadingFont: "Inter, Helvetica, Arial, sans-serif",
		BaseSize: 14, Spacing: 18,
	},
	"slate": {
		Name: "slate", Primary: "#334155", Accent: "#f59e0b", Text: "#1e293b", Muted: "#94a3b8",
		Background: "#f8fafc", Font: "Roboto, Helvetica, Arial, sans-serif", HeadingFont: "Roboto, Helvetica, Arial, sans-serif",
		BaseSize: 13, Spacing: 14,
	},
	"serif": {
		Name: "serif", Primary: "#3f3f46", Accent: "#9f1239", Text: "#18181b", Muted: "#71717a",
		Background: "#fffdf8", Font: "Georgia, 'Times New Roman', serif", HeadingFont: "Georgia, 'Times New Roman', serif",
		BaseSize: 15, Spacing: 18,
	},
}

// ThemeNames returns the known theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupTheme returns the theme called name.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Merge fills the empty tokens of t from base.
func (t Theme) Merge(base Theme) Theme {
	if t.Name == "" {
		t.Name = base.Name
	}
	if t.Primary == "" {
		t.Primary = base.Primary
	}
	if t.Accent == "" {
		t.Accent = base.Accent
	}
	if t.Text == "" {
		t.Text = base.Text
	}
	if t.Muted == "" {
		t.Muted = base.Muted
	}
	if t.Background == "" {
		t.Background = base.Background
	}
	if t.Font == "" {
		t.Font = base.Font
	}
	if t.HeadingFont == "" {
		t.HeadingFont = base.HeadingFont
	}
	if t.BaseSize == 0 {
		t.BaseSize = base.BaseSize
	}
	if t.Spacing == 0 {
		t.Spacing = base.Spacing
	}
	return t
}

// CSS returns the theme tokens as custom properties followed by the shared
// stylesheet of the built-in layouts.
func (t Theme) CSS() string {
	var b strings.Builder
	b.WriteString(":root{")
	fmt.Fprintf(&b, "--resume-primary:%s;", t.Primary)
	fmt.Fprintf(&b, "--resume-accent:%s;", t.Accent)
	fmt.Fprintf(&b, "--resume-text:%s;", t.Text)
	fmt.Fprintf(&b, "--resume-muted:%s;", t.Muted)
	fmt.Fprintf(&b, "--resume-background:%s;", t.Background)
	fmt.Fprintf(&b, "--resume-font:%s;", t.Font)
	fmt.Fprintf(&b, "--resume-heading-font:%s;", t.HeadingFont)
	fmt.Fprintf(&b, "--resume-base-size:%dpx;", t.BaseSize)
	fmt.Fprintf(&b, "--resume-spacing:%dpx;", t.Spacing)
	b.WriteString("}\n")
	b.WriteString(baseStylesheet)
	return b.String()
}

const baseStylesheet = `.resume{color:var(--resume-text);background:var(--resume-background);font-family:var(--resume-font);font-size:var(--resume-base-size);line-height:1.5;max-width:860px;margin:0 auto;padding:calc(var(--resume-spacing) * 2)}
.resume h1,.resume h2,.resume h3{font-family:var(--resume-heading-font);color:var(--resume-primary);margin:0}
.resume h1{font-size:2em}
.resume h2{font-size:1.1em;text-transform:uppercase;letter-spacing:.08em;margin:var(--resume-spacing) 0 calc(var(--resume-spacing) / 2)}
.resume h3{font-size:1em}
.resume .job-title{color:var(--resume-muted);margin:0}
.resume .contact{list-style:none;padding:0;margin:calc(var(--resume-spacing) / 2) 0;display:flex;flex-wrap:wrap;gap:12px}
.resume .contact li{display:flex;align-items:center;gap:4px}
.resume .entry{margin-bottom:var(--resume-spacing)}
.resume .entry-meta{color:var(--resume-muted);font-size:.9em}
.resume .skills{display:flex;flex-wrap:wrap;gap:6px;list-style:none;padding:0}
.resume .skills li{border:1px solid var(--resume-accent);border-radius:4px;padding:0 6px}
.layout-modern .header{background:var(--resume-primary);color:#fff;padding:var(--resume-spacing)}
.layout-modern .header h1,.layout-modern .header .job-title{color:#fff}
.layout-modern h2{border-left:4px solid var(--resume-accent);padding-left:8px}
.layout-sidebar{display:grid;grid-template-columns:1fr 2fr;gap:calc(var(--resume-spacing) * 2)}
.layout-sidebar aside{border-right:1px solid var(--resume-muted);padding-right:var(--resume-spacing)}
.layout-centered .header,.layout-centered h2{text-align:center}
.layout-centered .contact{justify-content:center}
.render-error{border:1px solid #dc2626;background:#fef2f2;color:#7f1d1d;padding:16px;border-radius:6px}
.render-error pre{white-space:pre-wrap}
`

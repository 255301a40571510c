package layouts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/customlayout"
	"github.com/jonathan/resume-builder/internal/element"
	"github.com/jonathan/resume-builder/internal/types"
)

func sampleData() types.LayoutData {
	return types.ResumeData{
		PersonalInfo: types.PersonalInfo{
			FullName: "Jane Roe",
			JobTitle: "Staff Engineer",
			Email:    "jane@example.com",
			Phone:    "555-1234",
			Location: "Berlin",
		}.With("linkedinUrl", "linkedin.com/in/jane"),
		WorkExperience: []types.WorkEntry{{
			ID: "w1", Company: "Acme", JobTitle: "Engineer", StartDate: "2020", EndDate: "",
			Description: "Built **APIs** for billing.",
		}},
		Education: []types.EducationEntry{{
			ID: "e1", Institution: "State University", Degree: "BSc", Field: "Computer Science",
		}},
		Skills: []string{"Go", "SQL"},
		ExtraData: map[string]types.Value{
			"languages":     types.List(types.String("English"), types.String("German")),
			"side_projects": types.Map(map[string]types.Value{"blogUrl": types.String("example.com")}),
			"volunteer":     types.Bool(true),
		},
	}.LayoutData()
}

func html(t *testing.T, n element.Node) string {
	t.Helper()
	out, err := element.HTML(n)
	require.NoError(t, err)
	return out
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"centered", "modern", "sidebar", "simple"}, Names())
}

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, 4)
	assert.Equal(t, "centered", all[0].Name)
	assert.Equal(t, "serif", all[0].Theme.Name)
}

func TestLookup(t *testing.T) {
	l, err := Lookup(" Modern ")
	require.NoError(t, err)
	assert.Equal(t, "modern", l.Name)

	_, err = Lookup("fancy")
	var unknown *UnknownLayoutError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "fancy", unknown.Name)
	assert.Equal(t, `unknown layout "fancy" (available: centered, modern, sidebar, simple)`, err.Error())
}

func TestDefault(t *testing.T) {
	assert.Equal(t, DefaultName, Default().Name)
}

func TestLayouts_RenderAllSections(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			l, err := Lookup(name)
			require.NoError(t, err)
			out := html(t, l.Render(sampleData()))

			assert.Contains(t, out, `class="resume layout-`+name+`"`)
			assert.Contains(t, out, "<h1>Jane Roe</h1>")
			assert.Contains(t, out, "Staff Engineer")
			assert.Contains(t, out, "jane@example.com")
			assert.Contains(t, out, "Acme · 2020 - Present")
			assert.Contains(t, out, "<strong>APIs</strong>")
			assert.Contains(t, out, "BSc in Computer Science")
			assert.Contains(t, out, "<li>Go</li>")
			assert.Contains(t, out, "<h2>Languages</h2>")
			assert.Contains(t, out, "<li>English</li>")
			assert.Contains(t, out, "<h2>Side Projects</h2>")
			assert.Contains(t, out, "<dt>Blog Url</dt><dd>example.com</dd>")
			assert.Contains(t, out, "<h2>Volunteer</h2><p>Yes</p>")
			assert.Contains(t, out, "Linkedin Url: ")
			assert.Contains(t, out, "lucide-linkedin")
		})
	}
}

func TestLayouts_EmptyDataOmitsSections(t *testing.T) {
	out := html(t, Default().Render(types.ResumeData{}.LayoutData()))
	assert.NotContains(t, out, "Work Experience")
	assert.NotContains(t, out, "Education")
	assert.NotContains(t, out, "Skills")
	assert.NotContains(t, out, "<ul")
}

func TestLayouts_RenderIsPure(t *testing.T) {
	data := sampleData()
	l := Default()
	assert.Equal(t, html(t, l.Render(data)), html(t, l.Render(data)))
	assert.Equal(t, sampleData(), data)
}

func TestRenderWith_ThemeTokens(t *testing.T) {
	out := html(t, Default().RenderWith(sampleData(), Theme{Name: "custom", Primary: "#ff0000"}))
	assert.Contains(t, out, `data-theme="custom"`)
	assert.Contains(t, out, `style="--resume-accent:#2563eb;--resume-primary:#ff0000"`)
}

func TestThemes(t *testing.T) {
	assert.Equal(t, []string{"classic", "ocean", "serif", "slate"}, ThemeNames())

	ocean, ok := LookupTheme("Ocean")
	require.True(t, ok)
	assert.Contains(t, ocean.CSS(), "--resume-primary:#0f4c81;")
	assert.Contains(t, ocean.CSS(), ".layout-modern .header")

	_, ok = LookupTheme("neon")
	assert.False(t, ok)

	merged := Theme{Accent: "#000000"}.Merge(ocean)
	assert.Equal(t, "#000000", merged.Accent)
	assert.Equal(t, ocean.Primary, merged.Primary)
	assert.Equal(t, ocean.BaseSize, merged.BaseSize)
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"linkedinUrl":   "Linkedin Url",
		"side_projects": "Side Projects",
		"portfolio-url": "Portfolio Url",
		"github":        "Github",
		"year2024Award": "Year2024 Award",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in), "Label(%q)", in)
	}
}

func TestMarkdown(t *testing.T) {
	assert.Nil(t, Markdown("   "))

	out := html(t, Markdown("Led *three* teams.\n\n- one\n- two"))
	assert.Contains(t, out, "<em>three</em>")
	assert.Contains(t, out, "<li>one</li>")

	out = html(t, Markdown("<script>alert(1)</script>"))
	assert.NotContains(t, out, "<script>")
}

func TestDescriptionHTML(t *testing.T) {
	l, err := Lookup("simple")
	require.NoError(t, err)
	assert.Contains(t, html(t, l.DescriptionHTML()), "<strong>header on top</strong>")
}

func TestStarters_RenderAsCustomLayouts(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			l, err := Lookup(name)
			require.NoError(t, err)
			src := l.Starter()
			require.NotEmpty(t, src)

			res := customlayout.NewRenderer().Render(src, sampleData())
			require.Nil(t, res.Err, "starter %s: %v", name, res.Err)
			out := html(t, res.Element)
			assert.Contains(t, out, "Jane Roe")
			assert.Contains(t, out, "Acme")
			assert.Contains(t, out, "layout-"+name)
		})
	}
}

package customlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "unwraps enclosing parentheses",
			in:   "(\n  <div>hi</div>\n)",
			want: "<div>hi</div>",
		},
		{
			name: "keeps arrow function parameters",
			in:   "(props) => <div />",
			want: "(props) => <div />",
		},
		{
			name: "keeps separate groups",
			in:   "(a)(b)",
			want: "(a)(b)",
		},
		{
			name: "keeps comment markers inside strings",
			in:   `const s = "// keep"; // drop`,
			want: `const s = "// keep";`,
		},
		{
			name: "keeps comment markers inside markup text",
			in:   "<p>a // b /* c */</p>",
			want: "<p>a // b /* c */</p>",
		},
		{
			name: "drops multi-line imports",
			in:   "import {\n  Mail,\n  Phone\n} from 'lucide-react';\nconst x = 1;",
			want: "const x = 1;",
		},
		{
			name: "drops side-effect imports",
			in:   "import './styles.css';\n<div />",
			want: "<div />",
		},
		{
			name: "drops trailing default export",
			in:   "function Layout() {}\nexport default Layout;",
			want: "function Layout() {}",
		},
		{
			name: "drops export keywords",
			in:   "export const A = 1;\nexport default function Layout() {}",
			want: "const A = 1;\nfunction Layout() {}",
		},
		{
			name: "keeps blank lines that were already blank",
			in:   "const a = 1;\n\nconst b = 2; // note",
			want: "const a = 1;\n\nconst b = 2;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_UntokenizableSourceIsTrimmed(t *testing.T) {
	assert.Equal(t, `"unterminated`, Normalize("  \"unterminated  "))
}

func TestCleanJSXText(t *testing.T) {
	assert.Equal(t, "Hello ", cleanJSXText("Hello "))
	assert.Equal(t, "a b", cleanJSXText("\n    a\n    b\n  "))
	assert.Equal(t, "", cleanJSXText("\n   \n  "))
	assert.Equal(t, "Tom & Jerry", cleanJSXText("Tom &amp; Jerry"))
}

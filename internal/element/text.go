package element

import "strings"

// TextContent returns the concatenated text of n without rendering components or raw
// HTML. It is meant for headings and summaries built from known trees.
func TextContent(n Node) string {
	var b strings.Builder
	collectText(&b, n)
	return b.String()
}

func collectText(b *strings.Builder, n Node) {
	switch t := n.(type) {
	case Text:
		b.WriteString(string(t))
	case Fragment:
		for _, c := range t {
			collectText(b, c)
		}
	case *Element:
		if t == nil {
			return
		}
		for _, c := range t.Children {
			collectText(b, c)
		}
	}
}

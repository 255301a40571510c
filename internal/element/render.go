package element

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxDepth bounds component nesting while rendering. Self-recursive components fail
// instead of exhausting the stack.
const MaxDepth = 200

// RenderError is returned when a tree cannot be serialised.
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Render writes n as HTML to w. Component bodies run during the call; their errors
// and invalid children are returned, panics are not recovered.
func Render(w io.Writer, n Node) error {
	nodes, err := build(n, 0)
	if err != nil {
		return err
	}
	for _, hn := range nodes {
		if err := html.Render(w, hn); err != nil {
			return &RenderError{Message: "failed to write html", Cause: err}
		}
	}
	return nil
}

// HTML renders n into a string.
func HTML(n Node) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func build(n Node, depth int) ([]*html.Node, error) {
	if depth > MaxDepth {
		return nil, &RenderError{Message: "maximum render depth exceeded"}
	}
	switch t := n.(type) {
	case nil:
		return nil, nil
	case Text:
		if t == "" {
			return nil, nil
		}
		return []*html.Node{{Type: html.TextNode, Data: string(t)}}, nil
	case RawHTML:
		return parseRaw(string(t))
	case Fragment:
		return buildChildren(t, depth)
	case *Component:
		if t == nil || t.Render == nil {
			return nil, nil
		}
		child, err := t.Render()
		if err != nil {
			return nil, err
		}
		return build(child, depth+1)
	case *Invalid:
		return nil, &RenderError{Message: t.Reason}
	case *Element:
		if t == nil {
			return nil, nil
		}
		return buildElement(t, depth)
	default:
		return nil, &RenderError{Message: fmt.Sprintf("unsupported node type %T", n)}
	}
}

func buildChildren(children []Node, depth int) ([]*html.Node, error) {
	var out []*html.Node
	for _, c := range children {
		nodes, err := build(c, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func buildElement(e *Element, depth int) ([]*html.Node, error) {
	tag := strings.TrimSpace(e.Tag)
	if tag == "" {
		return nil, &RenderError{Message: "element has no tag name"}
	}
	hn := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     Attributes(e.Props),
	}
	children, err := buildChildren(e.Children, depth+1)
	if err != nil {
		return nil, err
	}
	if IsVoid(tag) && len(children) > 0 {
		return nil, &RenderError{Message: fmt.Sprintf("%s is a void element tag and must not have children", tag)}
	}
	for _, c := range children {
		hn.AppendChild(c)
	}
	return []*html.Node{hn}, nil
}

func parseRaw(markup string) ([]*html.Node, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, nil
	}
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, &RenderError{Message: "invalid raw html", Cause: err}
	}
	return nodes, nil
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true,
	"track": true, "wbr": true,
}

// IsVoid reports whether tag never has children.
func IsVoid(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}

var attrAliases = map[string]string{
	"className": "class",
	"htmlFor":   "for",
}

var skippedProps = map[string]bool{
	"children":                true,
	"key":                     true,
	"ref":                     true,
	"dangerouslySetInnerHTML": true,
}

// Attributes converts element props to HTML attributes in name order. Event
// handlers, functions and structured values other than style are dropped.
func Attributes(props map[string]any) []html.Attribute {
	if len(props) == 0 {
		return nil
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []html.Attribute
	for _, k := range keys {
		if skippedProps[k] || isEventHandler(k) {
			continue
		}
		name := k
		if alias, ok := attrAliases[k]; ok {
			name = alias
		}
		if name == "style" {
			if css := Style(props[k]); css != "" {
				out = append(out, html.Attribute{Key: "style", Val: css})
			}
			continue
		}
		val, ok := attrValue(props[k])
		if !ok {
			continue
		}
		out = append(out, html.Attribute{Key: name, Val: val})
	}
	return out
}

func isEventHandler(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "on") && name[2] >= 'A' && name[2] <= 'Z'
}

func attrValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		if !t {
			return "", false
		}
		return "", true
	case float64:
		return formatNumber(t), true
	case int:
		return strconv.Itoa(t), true
	default:
		return "", false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

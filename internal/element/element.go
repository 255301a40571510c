// Package element provides the renderable tree produced by layouts and custom layout
// snippets, and its HTML serialisation.
package element

// Node is one node of a renderable tree.
type Node interface {
	node()
}

// Element is an intrinsic HTML element such as div or span.
type Element struct {
	Tag      string
	Props    map[string]any
	Children []Node
}

// Text is escaped character data.
type Text string

// Fragment groups children without a wrapping element.
type Fragment []Node

// RawHTML is trusted markup inserted verbatim, such as rendered Markdown.
type RawHTML string

// Component is a lazily rendered node. Render runs when the tree is serialised, so
// its failures are render-time failures.
type Component struct {
	Name   string
	Render func() (Node, error)
}

// Invalid marks a child value that cannot be rendered. Serialising it fails with
// Reason.
type Invalid struct {
	Reason string
}

func (*Element) node() {}
func (Text) node() {}
func (Fragment) node() {}
func (RawHTML) node() {}
func (*Component) node() {}
func (*Invalid) node() {}

// E builds an element. Nil children are skipped.
func E(tag string, props map[string]any, children ...Node) *Element {
	return &Element{Tag: tag, Props: props, Children: compact(children)}
}

// Group returns a fragment of the non-nil children.
func Group(children ...Node) Fragment {
	return Fragment(compact(children))
}

// Lazy returns a component node named name.
func Lazy(name string, render func() (Node, error)) *Component {
	return &Component{Name: name, Render: render}
}

// Props is shorthand for building a props map from key/value pairs.
func Props(kv ...any) map[string]any {
	out := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			out[k] = kv[i+1]
		}
	}
	return out
}

func compact(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

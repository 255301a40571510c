package customlayout

import (
	"strings"
	"sync"
	"unicode"

	"github.com/jonathan/resume-builder/internal/element"
)

func (m *machine) evalJSX(el *JSXElement, scope *env) (any, error) {
	var typ any = fragment
	if el.Name != "" {
		var err error
		if typ, err = m.elementType(el.Name, scope); err != nil {
			return nil, err
		}
	}

	props := newObject()
	for _, a := range el.Attrs {
		switch {
		case a.Str != nil:
			props.set(a.Name, *a.Str)
		case a.Value != nil:
			v, err := m.eval(a.Value, scope)
			if err != nil {
				return nil, err
			}
			props.set(a.Name, v)
		default:
			props.set(a.Name, true)
		}
	}

	children := make([]any, 0, len(el.Children))
	for _, c := range el.Children {
		switch {
		case c.Text != nil:
			children = append(children, *c.Text)
		case c.Element != nil:
			v, err := m.evalJSX(c.Element, scope)
			if err != nil {
				return nil, err
			}
			children = append(children, v)
		case c.Expr != nil && c.Expr.Value != nil:
			v, err := m.eval(c.Expr.Value, scope)
			if err != nil {
				return nil, err
			}
			children = append(children, v)
		}
	}
	return m.createElement(typ, props, children)
}

// elementType resolves a tag name. Lower-case names are intrinsic elements;
// capitalised and dotted names refer to values in scope.
func (m *machine) elementType(name string, scope *env) (any, error) {
	first := []rune(name)[0]
	if !strings.Contains(name, ".") && (unicode.IsLower(first) || strings.Contains(name, "-")) {
		return name, nil
	}
	parts := strings.Split(name, ".")
	v, err := m.identifier(parts[0], scope)
	if err != nil {
		return nil, err
	}
	for _, p := range parts[1:] {
		if v, err = m.member(v, p); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// createElement builds a node for typ. Intrinsic elements and fragments are built
// eagerly; components become lazy nodes whose bodies run once, on first render.
func (m *machine) createElement(typ any, props *Object, children []any) (any, error) {
	if props == nil {
		props = newObject()
	}
	switch t := typ.(type) {
	case string:
		if len(children) == 0 {
			if c, ok := props.get("children"); ok {
				children = []any{c}
			}
		}
		attrs := make(map[string]any, len(props.keys))
		for _, k := range props.keys {
			if k == "children" {
				continue
			}
			attrs[k] = toPlain(props.vals[k])
		}
		return &element.Element{Tag: t, Props: attrs, Children: toNodes(children)}, nil
	case fragmentType:
		if len(children) == 0 {
			if c, ok := props.get("children"); ok {
				children = []any{c}
			}
		}
		return element.Fragment(toNodes(children)), nil
	case *Function, *Builtin:
		componentProps := newObject()
		for _, k := range props.keys {
			componentProps.set(k, props.vals[k])
		}
		switch len(children) {
		case 0:
		case 1:
			componentProps.set("children", children[0])
		default:
			componentProps.set("children", &Array{items: children})
		}
		name := componentName(t)
		base := m.fork()
		var (
			once sync.Once
			node element.Node
			err  error
		)
		return element.Lazy(name, func() (element.Node, error) {
			once.Do(func() {
				node, err = base.fork().callComponent(t, name, componentProps)
			})
			return node, err
		}), nil
	default:
		return nil, typeError("Element type is invalid: expected a string (for built-in components) or a function (for composite components) but got: %s", describe(typ))
	}
}

func componentName(fn any) string {
	switch t := fn.(type) {
	case *Function:
		if t.name != "" {
			return t.name
		}
	case *Builtin:
		return t.name
	}
	return "Anonymous"
}

// react returns the React namespace bound in every snippet scope.
func react() *Object {
	return objectOf(
		"createElement", builtin("createElement", func(m *machine, _ any, args []any) (any, error) {
			var props *Object
			switch p := argAt(args, 1).(type) {
			case *Object:
				props = p
			case nil, undefinedType:
			default:
				return nil, typeError("createElement props must be an object, got %s", describe(p))
			}
			var children []any
			if len(args) > 2 {
				children = args[2:]
			}
			return m.createElement(argAt(args, 0), props, children)
		}),
		"Fragment", fragment,
	)
}

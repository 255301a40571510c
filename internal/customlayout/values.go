package customlayout

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/resume-builder/internal/element"
)

type undefinedType struct{}

// undefined is the value of missing properties and bare returns.
var undefined any = undefinedType{}

type fragmentType struct{}

// fragment is the value bound to React.Fragment.
var fragment any = fragmentType{}

// Object is an ordered string-keyed object.
type Object struct {
	keys []string
	vals map[string]any
}

func newObject() *Object {
	return &Object{vals: map[string]any{}}
}

func (o *Object) get(key string) (any, bool) {
	v, ok := o.vals[key]
	return v, ok
}

func (o *Object) set(key string, v any) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Array is a mutable list.
type Array struct {
	items []any
}

// Function is a closure defined by the snippet.
type Function struct {
	name   string
	params []*Param
	block  *Block
	expr   *Expr
	env    *env
}

// Builtin is a function provided by the runtime.
type Builtin struct {
	name string
	fn   func(m *machine, this any, args []any) (any, error)
}

func builtin(name string, fn func(m *machine, this any, args []any) (any, error)) *Builtin {
	return &Builtin{name: name, fn: fn}
}

// toValue converts plain Go data into runtime values. Map keys are ordered by
// name since Go maps carry no order.
func toValue(x any) any {
	switch t := x.(type) {
	case nil:
		return nil
	case string, bool, float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case []any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = toValue(item)
		}
		return &Array{items: items}
	case []string:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = item
		}
		return &Array{items: items}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := &Object{keys: keys, vals: make(map[string]any, len(t))}
		for _, k := range keys {
			o.vals[k] = toValue(t[k])
		}
		return o
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[k] = v
		}
		return toValue(m)
	default:
		return x
	}
}

// toPlain converts runtime values back into plain Go data for element props.
func toPlain(v any) any {
	switch t := v.(type) {
	case undefinedType:
		return nil
	case *Array:
		out := make([]any, len(t.items))
		for i, item := range t.items {
			out[i] = toPlain(item)
		}
		return out
	case *Object:
		out := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			out[k] = toPlain(t.vals[k])
		}
		return out
	default:
		return v
	}
}

func isNullish(v any) bool {
	return v == nil || v == undefined
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil, undefinedType:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}

func typeOf(v any) string {
	switch v.(type) {
	case undefinedType:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *Function, *Builtin:
		return "function"
	default:
		return "object"
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e+0", "e+", 1)
		return strings.Replace(s, "e-0", "e-", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case undefinedType:
		return "undefined"
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatNumber(t)
	case string:
		return t
	case *Array:
		var b strings.Builder
		appendString(&b, t, math.MaxInt)
		return b.String()
	case *Function:
		return "function " + t.name + "() { [code] }"
	case *Builtin:
		return "function " + t.name + "() { [native code] }"
	default:
		return "[object Object]"
	}
}

// appendString writes the string form of v to b. It stops and reports false
// once b holds more than limit bytes.
func appendString(b *strings.Builder, v any, limit int) bool {
	a, ok := v.(*Array)
	if !ok {
		b.WriteString(toString(v))
		return b.Len() <= limit
	}
	for i, item := range a.items {
		if i > 0 {
			b.WriteByte(',')
		}
		if !isNullish(item) && !appendString(b, item, limit) {
			return false
		}
		if b.Len() > limit {
			return false
		}
	}
	return true
}

func toNumber(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 1
		}
		return 0
	case float64:
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			if n, err := strconv.ParseInt(s[2:], 16, 64); err == nil {
				return float64(n)
			}
		}
		return math.NaN()
	case *Array:
		switch len(t.items) {
		case 0:
			return 0
		case 1:
			switch item := t.items[0].(type) {
			case nil, undefinedType:
				return 0
			case *Array:
				return toNumber(item)
			default:
				return toNumber(toString(item))
			}
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}

func strictEquals(a, b any) bool {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case nil:
		return b == nil
	case undefinedType:
		return b == undefined
	case element.Fragment:
		return false
	default:
		return sameReference(a, b)
	}
}

func sameReference(a, b any) bool {
	switch x := a.(type) {
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	case *Array:
		y, ok := b.(*Array)
		return ok && x == y
	case *Function:
		y, ok := b.(*Function)
		return ok && x == y
	case *Builtin:
		y, ok := b.(*Builtin)
		return ok && x == y
	case *element.Element:
		y, ok := b.(*element.Element)
		return ok && x == y
	case *element.Component:
		y, ok := b.(*element.Component)
		return ok && x == y
	case fragmentType:
		_, ok := b.(fragmentType)
		return ok
	}
	return false
}

func (m *machine) looseEquals(a, b any) (bool, error) {
	if isNullish(a) || isNullish(b) {
		return isNullish(a) && isNullish(b), nil
	}
	aPrim, bPrim := isPrimitive(a), isPrimitive(b)
	switch {
	case aPrim && bPrim:
		if typeOf(a) == typeOf(b) {
			return strictEquals(a, b), nil
		}
		return toNumber(a) == toNumber(b), nil
	case aPrim || bPrim:
		as, err := m.stringOf(a)
		if err != nil {
			return false, err
		}
		bs, err := m.stringOf(b)
		if err != nil {
			return false, err
		}
		return as == bs, nil
	}
	return strictEquals(a, b), nil
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case float64, string, bool:
		return true
	}
	return false
}

// describe summarises a value for error messages.
func describe(v any) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	case *Object:
		return "object with keys {" + strings.Join(t.keys, ", ") + "}"
	case *Array:
		return "array"
	default:
		return toString(v)
	}
}

// toNode converts a runtime value into a renderable node. Plain objects become
// invalid nodes that fail when rendered.
func toNode(v any) element.Node {
	switch t := v.(type) {
	case nil, undefinedType, bool, *Function, *Builtin, fragmentType:
		return nil
	case string:
		return element.Text(t)
	case float64:
		return element.Text(formatNumber(t))
	case *Array:
		return element.Fragment(toNodes(t.items))
	case *Object:
		return &element.Invalid{Reason: fmt.Sprintf("Objects are not valid as a React child (found: %s)", describe(t))}
	case element.Node:
		return t
	default:
		return &element.Invalid{Reason: fmt.Sprintf("%T is not a valid child", v)}
	}
}

func toNodes(values []any) []element.Node {
	out := make([]element.Node, 0, len(values))
	for _, v := range values {
		if n := toNode(v); n != nil {
			out = append(out, n)
		}
	}
	return out
}

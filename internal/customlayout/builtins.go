package customlayout

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

func argAt(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return undefined
}

// relIndex resolves a possibly negative index against length n.
func relIndex(v any, n int, def int) int {
	if v == undefined {
		return def
	}
	f := toNumber(v)
	if math.IsNaN(f) {
		return 0
	}
	i := int(math.Trunc(f))
	if i < 0 {
		i += n
		if i < 0 {
			i = 0
		}
	}
	if i > n {
		i = n
	}
	return i
}

func arrayMethod(a *Array, name string) *Builtin {
	each := func(m *machine, fn any, visit func(i int, item, result any) (bool, error)) error {
		for i := 0; i < len(a.items); i++ {
			item := a.items[i]
			r, err := m.call(fn, undefined, []any{item, float64(i), a}, "callback")
			if err != nil {
				return err
			}
			stop, err := visit(i, item, r)
			if err != nil || stop {
				return err
			}
		}
		return nil
	}

	switch name {
	case "map":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			out := make([]any, 0, len(a.items))
			err := each(m, argAt(args, 0), func(_ int, _, r any) (bool, error) {
				out = append(out, r)
				return false, nil
			})
			return &Array{items: out}, err
		})
	case "filter":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			var out []any
			err := each(m, argAt(args, 0), func(_ int, item, r any) (bool, error) {
				if truthy(r) {
					out = append(out, item)
				}
				return false, nil
			})
			return &Array{items: out}, err
		})
	case "find", "findIndex":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			var found any = undefined
			if name == "findIndex" {
				found = float64(-1)
			}
			err := each(m, argAt(args, 0), func(i int, item, r any) (bool, error) {
				if !truthy(r) {
					return false, nil
				}
				if name == "findIndex" {
					found = float64(i)
				} else {
					found = item
				}
				return true, nil
			})
			return found, err
		})
	case "some", "every":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			want := name == "some"
			result := !want
			err := each(m, argAt(args, 0), func(_ int, _, r any) (bool, error) {
				if truthy(r) == want {
					result = want
					return true, nil
				}
				return false, nil
			})
			return result, err
		})
	case "forEach":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			err := each(m, argAt(args, 0), func(int, any, any) (bool, error) { return false, nil })
			return undefined, err
		})
	case "reduce":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			fn := argAt(args, 0)
			start := 0
			var acc any
			if len(args) > 1 {
				acc = args[1]
			} else {
				if len(a.items) == 0 {
					return nil, typeError("Reduce of empty array with no initial value")
				}
				acc, start = a.items[0], 1
			}
			for i := start; i < len(a.items); i++ {
				v, err := m.call(fn, undefined, []any{acc, a.items[i], float64(i), a}, "callback")
				if err != nil {
					return nil, err
				}
				acc = v
			}
			return acc, nil
		})
	case "join":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			sep := ","
			if s := argAt(args, 0); s != undefined {
				var err error
				if sep, err = m.stringOf(s); err != nil {
					return nil, err
				}
			}
			var b strings.Builder
			for i, item := range a.items {
				if i > 0 {
					b.WriteString(sep)
				}
				if !isNullish(item) && !appendString(&b, item, m.maxString) {
					return nil, errStringLimit
				}
				if b.Len() > m.maxString {
					return nil, errStringLimit
				}
			}
			return b.String(), nil
		})
	case "slice":
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			n := len(a.items)
			start, end := relIndex(argAt(args, 0), n, 0), relIndex(argAt(args, 1), n, n)
			if start > end {
				start = end
			}
			return &Array{items: append([]any(nil), a.items[start:end]...)}, nil
		})
	case "includes", "indexOf":
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			target := argAt(args, 0)
			for i, item := range a.items {
				if strictEquals(item, target) {
					if name == "includes" {
						return true, nil
					}
					return float64(i), nil
				}
			}
			if name == "includes" {
				return false, nil
			}
			return float64(-1), nil
		})
	case "concat":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			n := len(a.items)
			for _, arg := range args {
				if other, ok := arg.(*Array); ok {
					n += len(other.items)
				} else {
					n++
				}
			}
			if n > m.maxArray {
				return nil, errArrayLimit
			}
			out := make([]any, 0, n)
			out = append(out, a.items...)
			for _, arg := range args {
				if other, ok := arg.(*Array); ok {
					out = append(out, other.items...)
				} else {
					out = append(out, arg)
				}
			}
			return &Array{items: out}, nil
		})
	case "reverse":
		return builtin(name, func(*machine, any, []any) (any, error) {
			for i, j := 0, len(a.items)-1; i < j; i, j = i+1, j-1 {
				a.items[i], a.items[j] = a.items[j], a.items[i]
			}
			return a, nil
		})
	case "push":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			if len(a.items)+len(args) > m.maxArray {
				return nil, errArrayLimit
			}
			a.items = append(a.items, args...)
			return float64(len(a.items)), nil
		})
	case "sort":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			cmp := argAt(args, 0)
			var firstErr error
			sort.SliceStable(a.items, func(i, j int) bool {
				if firstErr != nil {
					return false
				}
				if cmp == undefined {
					x, err := m.stringOf(a.items[i])
					if err == nil {
						var y string
						if y, err = m.stringOf(a.items[j]); err == nil {
							return x < y
						}
					}
					firstErr = err
					return false
				}
				r, err := m.call(cmp, undefined, []any{a.items[i], a.items[j]}, "comparator")
				if err != nil {
					firstErr = err
					return false
				}
				return toNumber(r) < 0
			})
			return a, firstErr
		})
	case "flat":
		return builtin(name, func(m *machine, _ any, _ []any) (any, error) {
			var out []any
			for _, item := range a.items {
				if inner, ok := item.(*Array); ok {
					out = append(out, inner.items...)
				} else {
					out = append(out, item)
				}
				if len(out) > m.maxArray {
					return nil, errArrayLimit
				}
			}
			return &Array{items: out}, nil
		})
	}
	return nil
}

func stringMethod(s string, name string) *Builtin {
	strArg := func(args []any, i int) string {
		v := argAt(args, i)
		if v == undefined {
			return "undefined"
		}
		return toString(v)
	}
	switch name {
	case "toUpperCase":
		return builtin(name, func(*machine, any, []any) (any, error) { return strings.ToUpper(s), nil })
	case "toLowerCase":
		return builtin(name, func(*machine, any, []any) (any, error) { return strings.ToLower(s), nil })
	case "trim":
		return builtin(name, func(*machine, any, []any) (any, error) { return strings.TrimSpace(s), nil })
	case "trimStart":
		return builtin(name, func(*machine, any, []any) (any, error) { return strings.TrimLeft(s, " \t\n\r"), nil })
	case "trimEnd":
		return builtin(name, func(*machine, any, []any) (any, error) { return strings.TrimRight(s, " \t\n\r"), nil })
	case "split":
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			sep := argAt(args, 0)
			var parts []string
			switch {
			case sep == undefined:
				parts = []string{s}
			case toString(sep) == "":
				for _, r := range s {
					parts = append(parts, string(r))
				}
			default:
				parts = strings.Split(s, toString(sep))
			}
			if lim := argAt(args, 1); lim != undefined {
				if n := int(toNumber(lim)); n >= 0 && n < len(parts) {
					parts = parts[:n]
				}
			}
			items := make([]any, len(parts))
			for i, p := range parts {
				items[i] = p
			}
			return &Array{items: items}, nil
		})
	case "includes":
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			return strings.Contains(s, strArg(args, 0)), nil
		})
	case "startsWith":
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			return strings.HasPrefix(s, strArg(args, 0)), nil
		})
	case "endsWith":
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			return strings.HasSuffix(s, strArg(args, 0)), nil
		})
	case "indexOf":
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			i := strings.Index(s, strArg(args, 0))
			if i < 0 {
				return float64(-1), nil
			}
			return float64(len([]rune(s[:i]))), nil
		})
	case "replace", "replaceAll":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			old := strArg(args, 0)
			repl := argAt(args, 1)
			count := 1
			if name == "replaceAll" {
				count = -1
			}
			if _, ok := repl.(*Function); !ok {
				with := toString(repl)
				if n := strings.Count(s, old); n > 0 && len(with) > len(old) {
					if count > 0 {
						n = count
					}
					if len(s)+n*(len(with)-len(old)) > m.maxString {
						return nil, errStringLimit
					}
				}
				return strings.Replace(s, old, with, count), nil
			}
			var b strings.Builder
			rest := s
			for count != 0 {
				i := strings.Index(rest, old)
				if i < 0 || (old == "" && b.Len() > 0) {
					break
				}
				r, err := m.call(repl, undefined, []any{old}, "replacer")
				if err != nil {
					return nil, err
				}
				b.WriteString(rest[:i])
				b.WriteString(toString(r))
				if b.Len() > m.maxString {
					return nil, errStringLimit
				}
				rest = rest[i+len(old):]
				count--
			}
			b.WriteString(rest)
			return b.String(), nil
		})
	case "slice", "substring":
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			r := []rune(s)
			n := len(r)
			start, end := relIndex(argAt(args, 0), n, 0), relIndex(argAt(args, 1), n, n)
			if start > end {
				if name == "substring" {
					start, end = end, start
				} else {
					return "", nil
				}
			}
			return string(r[start:end]), nil
		})
	case "charAt":
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			r := []rune(s)
			i := int(toNumber(argAt(args, 0)))
			if argAt(args, 0) == undefined {
				i = 0
			}
			if i < 0 || i >= len(r) {
				return "", nil
			}
			return string(r[i]), nil
		})
	case "repeat":
		return builtin(name, func(m *machine, _ any, args []any) (any, error) {
			n := int(toNumber(argAt(args, 0)))
			if n < 0 || n > 10000 {
				return nil, &ScriptError{Name: "RangeError", Message: "Invalid count value: " + strconv.Itoa(n)}
			}
			if len(s)*n > m.maxString {
				return nil, errStringLimit
			}
			return strings.Repeat(s, n), nil
		})
	}
	return nil
}

func numberMethod(f float64, name string) *Builtin {
	switch name {
	case "toFixed":
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			digits := 0
			if d := argAt(args, 0); d != undefined {
				digits = int(toNumber(d))
			}
			if digits < 0 || digits > 100 {
				return nil, &ScriptError{Name: "RangeError", Message: "toFixed() digits argument must be between 0 and 100"}
			}
			return strconv.FormatFloat(f, 'f', digits, 64), nil
		})
	case "toString":
		return builtin(name, func(*machine, any, []any) (any, error) { return formatNumber(f), nil })
	}
	return nil
}

func objectOf(pairs ...any) *Object {
	o := newObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		o.set(pairs[i].(string), pairs[i+1])
	}
	return o
}

// globals returns the language built-ins available to every snippet.
func globals() *env {
	g := newEnv(nil)

	keysOf := func(v any) []string {
		switch t := v.(type) {
		case *Object:
			return append([]string(nil), t.keys...)
		case *Array:
			out := make([]string, len(t.items))
			for i := range t.items {
				out[i] = strconv.Itoa(i)
			}
			return out
		case string:
			out := make([]string, len([]rune(t)))
			for i := range out {
				out[i] = strconv.Itoa(i)
			}
			return out
		}
		return nil
	}
	g.define("Object", objectOf(
		"keys", builtin("keys", func(_ *machine, _ any, args []any) (any, error) {
			keys := keysOf(argAt(args, 0))
			items := make([]any, len(keys))
			for i, k := range keys {
				items[i] = k
			}
			return &Array{items: items}, nil
		}),
		"values", builtin("values", func(m *machine, _ any, args []any) (any, error) {
			v := argAt(args, 0)
			var items []any
			for _, k := range keysOf(v) {
				item, err := m.member(v, k)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			return &Array{items: items}, nil
		}),
		"entries", builtin("entries", func(m *machine, _ any, args []any) (any, error) {
			v := argAt(args, 0)
			var items []any
			for _, k := range keysOf(v) {
				item, err := m.member(v, k)
				if err != nil {
					return nil, err
				}
				items = append(items, &Array{items: []any{k, item}})
			}
			return &Array{items: items}, nil
		}),
		"assign", builtin("assign", func(_ *machine, _ any, args []any) (any, error) {
			target, ok := argAt(args, 0).(*Object)
			if !ok {
				return nil, typeError("Cannot convert undefined or null to object")
			}
			for _, src := range args[1:] {
				if o, ok := src.(*Object); ok {
					for _, k := range o.keys {
						target.set(k, o.vals[k])
					}
				}
			}
			return target, nil
		}),
	))
	g.define("Array", objectOf(
		"isArray", builtin("isArray", func(_ *machine, _ any, args []any) (any, error) {
			_, ok := argAt(args, 0).(*Array)
			return ok, nil
		}),
	))
	g.define("JSON", objectOf(
		"stringify", builtin("stringify", func(m *machine, _ any, args []any) (any, error) {
			indent := ""
			switch sp := argAt(args, 2).(type) {
			case float64:
				indent = strings.Repeat(" ", int(math.Min(10, math.Max(0, sp))))
			case string:
				indent = sp
			}
			return m.stringify(argAt(args, 0), indent)
		}),
	))
	g.define("String", builtin("String", func(m *machine, _ any, args []any) (any, error) {
		if len(args) == 0 {
			return "", nil
		}
		return m.stringOf(args[0])
	}))
	g.define("Number", builtin("Number", func(_ *machine, _ any, args []any) (any, error) {
		if len(args) == 0 {
			return float64(0), nil
		}
		return toNumber(args[0]), nil
	}))
	g.define("Boolean", builtin("Boolean", func(_ *machine, _ any, args []any) (any, error) {
		return truthy(argAt(args, 0)), nil
	}))
	g.define("parseInt", builtin("parseInt", func(_ *machine, _ any, args []any) (any, error) {
		s := strings.TrimSpace(toString(argAt(args, 0)))
		end := 0
		for end < len(s) && (isDigit(s[end]) || (end == 0 && (s[0] == '-' || s[0] == '+'))) {
			end++
		}
		n, err := strconv.ParseInt(s[:end], 10, 64)
		if err != nil {
			return math.NaN(), nil
		}
		return float64(n), nil
	}))
	g.define("parseFloat", builtin("parseFloat", func(_ *machine, _ any, args []any) (any, error) {
		return toNumber(strings.TrimSpace(toString(argAt(args, 0)))), nil
	}))

	math1 := func(name string, f func(float64) float64) *Builtin {
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			return f(toNumber(argAt(args, 0))), nil
		})
	}
	fold := func(name string, start float64, pick func(a, b float64) float64) *Builtin {
		return builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			acc := start
			for _, a := range args {
				n := toNumber(a)
				if math.IsNaN(n) {
					return math.NaN(), nil
				}
				acc = pick(acc, n)
			}
			return acc, nil
		})
	}
	g.define("Math", objectOf(
		"PI", math.Pi,
		"abs", math1("abs", math.Abs),
		"ceil", math1("ceil", math.Ceil),
		"floor", math1("floor", math.Floor),
		"round", math1("round", func(f float64) float64 { return math.Floor(f + 0.5) }),
		"sqrt", math1("sqrt", math.Sqrt),
		"max", fold("max", math.Inf(-1), math.Max),
		"min", fold("min", math.Inf(1), math.Min),
	))
	return g
}

// stringify writes v as JSON, keeping object key order. Functions and undefined
// are skipped inside objects and written as null inside arrays.
func (m *machine) stringify(v any, indent string) (any, error) {
	out, ok := stringifyLimited(v, indent, m.maxString)
	if !ok {
		return nil, errStringLimit
	}
	return out, nil
}

func stringifyLimited(v any, indent string, limit int) (any, bool) {
	switch v.(type) {
	case undefinedType, *Function, *Builtin:
		return undefined, true
	}
	var buf bytes.Buffer
	if !writeJSON(&buf, v, indent, "", limit) {
		return nil, false
	}
	return buf.String(), true
}

// writeJSON reports false once buf holds more than limit bytes.
func writeJSON(buf *bytes.Buffer, v any, indent, prefix string, limit int) bool {
	newline := func(p string) {
		if indent != "" {
			buf.WriteByte('\n')
			buf.WriteString(p)
		}
	}
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			buf.WriteString("null")
		} else {
			buf.WriteString(formatNumber(t))
		}
	case string:
		writeJSONString(buf, t)
	case *Array:
		if len(t.items) == 0 {
			buf.WriteString("[]")
			break
		}
		buf.WriteByte('[')
		for i, item := range t.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(prefix + indent)
			switch item.(type) {
			case undefinedType, *Function, *Builtin:
				buf.WriteString("null")
			default:
				if !writeJSON(buf, item, indent, prefix+indent, limit) {
					return false
				}
			}
			if buf.Len() > limit {
				return false
			}
		}
		newline(prefix)
		buf.WriteByte(']')
	case *Object:
		written := 0
		buf.WriteByte('{')
		for _, k := range t.keys {
			item := t.vals[k]
			switch item.(type) {
			case undefinedType, *Function, *Builtin:
				continue
			}
			if written > 0 {
				buf.WriteByte(',')
			}
			newline(prefix + indent)
			writeJSONString(buf, k)
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			if !writeJSON(buf, item, indent, prefix+indent, limit) {
				return false
			}
			written++
		}
		if written > 0 {
			newline(prefix)
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("{}")
	}
	return buf.Len() <= limit
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1)
}

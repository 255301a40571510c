package element

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Unitless CSS properties keep bare numbers; every other numeric value gets px.
var unitless = map[string]bool{
	"flex":        true,
	"flexGrow":    true,
	"flexShrink":  true,
	"fontWeight":  true,
	"lineHeight":  true,
	"opacity":     true,
	"order":       true,
	"orphans":     true,
	"widows":      true,
	"zIndex":      true,
	"zoom":        true,
	"columnCount": true,
}

// Style converts a style prop into a CSS declaration list. Strings pass through;
// maps are written in property name order with camelCase names converted to
// kebab-case.
func Style(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var decls []string
		for _, k := range keys {
			val, ok := cssValue(k, t[k])
			if !ok {
				continue
			}
			decls = append(decls, CSSProperty(k)+":"+val)
		}
		return strings.Join(decls, ";")
	default:
		return ""
	}
}

func cssValue(prop string, v any) (string, bool) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if t == 0 || unitless[prop] || strings.HasPrefix(prop, "--") {
			return s, true
		}
		return s + "px", true
	case int:
		return cssValue(prop, float64(t))
	default:
		return "", false
	}
}

// CSSProperty converts a camelCase style key to its CSS name. Custom properties are
// kept as written and vendor prefixes (WebkitX, msX) gain a leading dash.
func CSSProperty(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if strings.HasPrefix(out, "ms-") {
		out = "-" + out
	}
	return out
}

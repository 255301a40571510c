package customlayout

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/icons"
)

// Binding names injected into every snippet, besides the language built-ins.
var dataBindings = []string{"basics", "personalInfo", "work", "workExperience", "education", "skills", "extraData"}

// newScope builds the bindings for one execution: React, the data slices under
// both naming generations, the icon components, console and the null event
// placeholders. Nothing is shared between executions.
func newScope(props *Object, log *zap.Logger) *env {
	scope := newEnv(globals())
	scope.define("React", react())
	for _, name := range dataBindings {
		v, ok := props.get(name)
		if !ok {
			v = undefined
		}
		scope.define(name, v)
	}
	for _, name := range icons.Names() {
		icon, _ := icons.Lookup(name)
		scope.define(name, builtin(name, func(_ *machine, _ any, args []any) (any, error) {
			attrs := map[string]any{}
			if p, ok := argAt(args, 0).(*Object); ok {
				attrs = toPlain(p).(map[string]any)
			}
			return icon.Node(attrs), nil
		}))
	}
	scope.define("console", console(log))
	scope.define("e", nil)
	scope.define("event", nil)
	return scope
}

func console(log *zap.Logger) *Object {
	write := func(level string) *Builtin {
		return builtin(level, func(m *machine, _ any, args []any) (any, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				if s, ok := a.(string); ok {
					parts[i] = s
					continue
				}
				out, err := m.stringify(a, "")
				if err != nil {
					return nil, err
				}
				parts[i] = toString(out)
			}
			msg := strings.Join(parts, " ")
			fields := []zap.Field{zap.String("source", "custom layout"), zap.String("message", msg)}
			switch level {
			case "warn":
				log.Warn("console", fields...)
			case "error":
				log.Error("console", fields...)
			case "debug":
				log.Debug("console", fields...)
			default:
				log.Info("console", fields...)
			}
			return undefined, nil
		})
	}
	return objectOf(
		"log", write("log"),
		"info", write("info"),
		"warn", write("warn"),
		"error", write("error"),
		"debug", write("debug"),
	)
}

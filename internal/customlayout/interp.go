package customlayout

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/element"
)

// Default execution limits.
const (
	DefaultMaxSteps        = 1_000_000
	DefaultMaxDepth        = 128
	DefaultMaxStringLength = 1 << 20
	DefaultMaxArrayLength  = 100_000
)

var (
	errStepLimit   = errors.New("execution step limit exceeded")
	errStackLimit  = &ScriptError{Name: "RangeError", Message: "Maximum call stack size exceeded"}
	errStringLimit = &ScriptError{Name: "RangeError", Message: "Invalid string length"}
	errArrayLimit  = &ScriptError{Name: "RangeError", Message: "Invalid array length"}
)

// ScriptError is an error raised by snippet code, named like its JavaScript
// counterpart.
type ScriptError struct {
	Name    string
	Message string
}

func (e *ScriptError) Error() string {
	return e.Message
}

func typeError(format string, args ...any) error {
	return &ScriptError{Name: "TypeError", Message: fmt.Sprintf(format, args...)}
}

func referenceError(name string) error {
	return &ScriptError{Name: "ReferenceError", Message: name + " is not defined"}
}

type limits struct {
	maxSteps  int
	maxDepth  int
	maxString int
	maxArray  int
}

func defaultLimits() limits {
	return limits{
		maxSteps:  DefaultMaxSteps,
		maxDepth:  DefaultMaxDepth,
		maxString: DefaultMaxStringLength,
		maxArray:  DefaultMaxArrayLength,
	}
}

// budget counts the steps of one execution, including the components rendered
// lazily after it returns.
type budget struct {
	steps atomic.Int64
}

// machine carries the counters of one execution. Closures keep their
// environments, not the machine, so a lazily rendered component runs on a fork
// with its own call depth and the parent's step budget.
type machine struct {
	limits
	budget *budget
	depth  int
	log    *zap.Logger
}

func newMachine(l limits, log *zap.Logger) *machine {
	return &machine{limits: l, budget: &budget{}, log: log}
}

func (m *machine) fork() *machine {
	return &machine{limits: m.limits, budget: m.budget, log: m.log}
}

func (m *machine) tick() error {
	if m.budget.steps.Add(1) > int64(m.maxSteps) {
		return errStepLimit
	}
	return nil
}

// checkString fails once a string built by the snippet grows past the limit.
func (m *machine) checkString(s string) (string, error) {
	if len(s) > m.maxString {
		return "", errStringLimit
	}
	return s, nil
}

// stringOf converts v to a string, giving up as soon as the result would pass
// the length limit. Arrays that share nested arrays stop early instead of being
// expanded in full.
func (m *machine) stringOf(v any) (string, error) {
	if _, ok := v.(*Array); !ok {
		return m.checkString(toString(v))
	}
	var b strings.Builder
	if !appendString(&b, v, m.maxString) {
		return "", errStringLimit
	}
	return b.String(), nil
}

type env struct {
	vars   map[string]any
	parent *env
}

func newEnv(parent *env) *env {
	return &env{vars: map[string]any{}, parent: parent}
}

func (e *env) lookup(name string) (any, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *env) define(name string, v any) {
	e.vars[name] = v
}

// execBlock runs statements in scope. Function declarations are hoisted.
func (m *machine) execBlock(stmts []*Statement, scope *env) (any, bool, error) {
	for _, s := range stmts {
		if s.Function != nil {
			scope.define(s.Function.Name, &Function{
				name: s.Function.Name, params: s.Function.Params, block: s.Function.Body, env: scope,
			})
		}
	}
	for _, s := range stmts {
		v, returned, err := m.exec(s, scope)
		if err != nil || returned {
			return v, returned, err
		}
	}
	return undefined, false, nil
}

func (m *machine) exec(s *Statement, scope *env) (any, bool, error) {
	if err := m.tick(); err != nil {
		return nil, false, err
	}
	switch {
	case s.Function != nil:
		return undefined, false, nil
	case s.Var != nil:
		v, err := m.eval(s.Var.Value, scope)
		if err != nil {
			return nil, false, err
		}
		if s.Var.Name != "" {
			if fn, ok := v.(*Function); ok && fn.name == "" {
				fn.name = s.Var.Name
			}
			scope.define(s.Var.Name, v)
			return undefined, false, nil
		}
		return undefined, false, m.destructure(s.Var.Fields, v, scope)
	case s.Return != nil:
		if s.Return.Value == nil {
			return undefined, true, nil
		}
		v, err := m.eval(s.Return.Value, scope)
		return v, err == nil, err
	case s.If != nil:
		cond, err := m.eval(s.If.Cond, scope)
		if err != nil {
			return nil, false, err
		}
		if truthy(cond) {
			return m.execBody(s.If.Then, scope)
		}
		if s.If.Else != nil {
			return m.execBody(s.If.Else, scope)
		}
		return undefined, false, nil
	case s.Expr != nil:
		_, err := m.eval(s.Expr, scope)
		return undefined, false, err
	}
	return undefined, false, nil
}

func (m *machine) execBody(b *Body, scope *env) (any, bool, error) {
	if b.Block != nil {
		return m.execBlock(b.Block.Statements, newEnv(scope))
	}
	return m.exec(b.Statement, scope)
}

func (m *machine) destructure(fields []*PatternField, v any, scope *env) error {
	if isNullish(v) {
		return typeError("Cannot destructure '%s' as it is %s.", toString(v), toString(v))
	}
	for _, f := range fields {
		val, err := m.member(v, f.Key)
		if err != nil {
			return err
		}
		if val == undefined && f.Default != nil {
			if val, err = m.eval(f.Default, scope); err != nil {
				return err
			}
		}
		name := f.Key
		if f.Alias != "" {
			name = f.Alias
		}
		scope.define(name, val)
	}
	return nil
}

// call invokes a callable value. desc names the callee in error messages.
func (m *machine) call(callee any, this any, args []any, desc string) (any, error) {
	switch fn := callee.(type) {
	case *Function:
		return m.callFunction(fn, args)
	case *Builtin:
		if err := m.tick(); err != nil {
			return nil, err
		}
		return fn.fn(m, this, args)
	default:
		return nil, typeError("%s is not a function", desc)
	}
}

func (m *machine) callFunction(fn *Function, args []any) (any, error) {
	if m.depth >= m.maxDepth {
		return nil, errStackLimit
	}
	m.depth++
	defer func() { m.depth-- }()

	scope := newEnv(fn.env)
	for i, p := range fn.params {
		var arg any = undefined
		if i < len(args) {
			arg = args[i]
		}
		if arg == undefined && p.Default != nil {
			v, err := m.eval(p.Default, scope)
			if err != nil {
				return nil, err
			}
			arg = v
		}
		if p.Name != "" {
			scope.define(p.Name, arg)
			continue
		}
		if err := m.destructure(p.Fields, arg, scope); err != nil {
			return nil, err
		}
	}
	if fn.expr != nil {
		return m.eval(fn.expr, scope)
	}
	v, _, err := m.execBlock(fn.block.Statements, scope)
	return v, err
}

func (m *machine) eval(e *Expr, scope *env) (any, error) {
	if err := m.tick(); err != nil {
		return nil, err
	}
	v, err := m.evalLogical(e.Cond, scope)
	if err != nil || e.Then == nil {
		return v, err
	}
	if truthy(v) {
		return m.eval(e.Then, scope)
	}
	return m.eval(e.Else, scope)
}

// evalLogical evaluates a chain of ||, ?? and && with && binding tighter.
func (m *machine) evalLogical(l *Logical, scope *env) (any, error) {
	type group struct {
		op       string
		operands []*Equality
	}
	groups := []group{{operands: []*Equality{l.Left}}}
	for _, op := range l.Rest {
		if op.Op == "&&" {
			g := &groups[len(groups)-1]
			g.operands = append(g.operands, op.Right)
			continue
		}
		groups = append(groups, group{op: op.Op, operands: []*Equality{op.Right}})
	}

	evalAnd := func(operands []*Equality) (any, error) {
		v, err := m.evalEquality(operands[0], scope)
		for _, next := range operands[1:] {
			if err != nil || !truthy(v) {
				return v, err
			}
			v, err = m.evalEquality(next, scope)
		}
		return v, err
	}

	v, err := evalAnd(groups[0].operands)
	for _, g := range groups[1:] {
		if err != nil {
			return nil, err
		}
		switch g.op {
		case "||":
			if truthy(v) {
				return v, nil
			}
		case "??":
			if !isNullish(v) {
				return v, nil
			}
		}
		v, err = evalAnd(g.operands)
	}
	return v, err
}

func (m *machine) evalEquality(e *Equality, scope *env) (any, error) {
	v, err := m.evalComparison(e.Left, scope)
	if err != nil {
		return nil, err
	}
	for _, op := range e.Rest {
		r, err := m.evalComparison(op.Right, scope)
		if err != nil {
			return nil, err
		}
		switch op.Op {
		case "===":
			v = strictEquals(v, r)
		case "!==":
			v = !strictEquals(v, r)
		case "==", "!=":
			eq, err := m.looseEquals(v, r)
			if err != nil {
				return nil, err
			}
			v = eq == (op.Op == "==")
		}
	}
	return v, nil
}

func (m *machine) evalComparison(c *Comparison, scope *env) (any, error) {
	v, err := m.evalAdditive(c.Left, scope)
	if err != nil {
		return nil, err
	}
	for _, op := range c.Rest {
		r, err := m.evalAdditive(op.Right, scope)
		if err != nil {
			return nil, err
		}
		v = compare(op.Op, v, r)
	}
	return v, nil
}

func compare(op string, a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch op {
		case "<":
			return as < bs
		case ">":
			return as > bs
		case "<=":
			return as <= bs
		default:
			return as >= bs
		}
	}
	x, y := toNumber(a), toNumber(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	switch op {
	case "<":
		return x < y
	case ">":
		return x > y
	case "<=":
		return x <= y
	default:
		return x >= y
	}
}

func (m *machine) evalAdditive(a *Additive, scope *env) (any, error) {
	v, err := m.evalMultiplicative(a.Left, scope)
	if err != nil {
		return nil, err
	}
	for _, op := range a.Rest {
		r, err := m.evalMultiplicative(op.Right, scope)
		if err != nil {
			return nil, err
		}
		if op.Op == "-" {
			v = toNumber(v) - toNumber(r)
			continue
		}
		if v, err = m.add(v, r); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (m *machine) add(a, b any) (any, error) {
	a, err := m.toPrimitive(a)
	if err != nil {
		return nil, err
	}
	if b, err = m.toPrimitive(b); err != nil {
		return nil, err
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok && !bok {
		return toNumber(a) + toNumber(b), nil
	}
	if !aok {
		as = toString(a)
	}
	if !bok {
		bs = toString(b)
	}
	if len(as)+len(bs) > m.maxString {
		return nil, errStringLimit
	}
	return as + bs, nil
}

func (m *machine) toPrimitive(v any) (any, error) {
	switch v.(type) {
	case nil, undefinedType, bool, float64, string:
		return v, nil
	default:
		return m.stringOf(v)
	}
}

func (m *machine) evalMultiplicative(mu *Multiplicative, scope *env) (any, error) {
	v, err := m.evalUnary(mu.Left, scope)
	if err != nil {
		return nil, err
	}
	for _, op := range mu.Rest {
		r, err := m.evalUnary(op.Right, scope)
		if err != nil {
			return nil, err
		}
		x, y := toNumber(v), toNumber(r)
		switch op.Op {
		case "*":
			v = x * y
		case "/":
			v = x / y
		case "%":
			v = math.Mod(x, y)
		}
	}
	return v, nil
}

func (m *machine) evalUnary(u *Unary, scope *env) (any, error) {
	if u.Postfix != nil {
		return m.evalPostfix(u.Postfix, scope)
	}
	if u.Op == "typeof" && u.Operand.Postfix != nil {
		p := u.Operand.Postfix
		if p.Primary.Ident != nil && len(p.Ops) == 0 && !isLiteralName(*p.Primary.Ident) {
			if _, ok := scope.lookup(*p.Primary.Ident); !ok {
				return "undefined", nil
			}
		}
	}
	v, err := m.evalUnary(u.Operand, scope)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case "!":
		return !truthy(v), nil
	case "-":
		return -toNumber(v), nil
	case "+":
		return toNumber(v), nil
	case "typeof":
		return typeOf(v), nil
	}
	return nil, fmt.Errorf("unknown operator %q", u.Op)
}

func (m *machine) evalPostfix(p *Postfix, scope *env) (any, error) {
	v, err := m.evalPrimary(p.Primary, scope)
	if err != nil {
		return nil, err
	}
	desc := primaryName(p.Primary)
	var this any = undefined
	for _, op := range p.Ops {
		if err := m.tick(); err != nil {
			return nil, err
		}
		switch {
		case op.Member != nil:
			if op.Member.Optional && isNullish(v) {
				return undefined, nil
			}
			this = v
			if v, err = m.member(v, op.Member.Name); err != nil {
				return nil, err
			}
			desc += "." + op.Member.Name
		case op.Index != nil:
			if op.Index.Optional && isNullish(v) {
				return undefined, nil
			}
			key, err := m.eval(op.Index.Index, scope)
			if err != nil {
				return nil, err
			}
			this = v
			if v, err = m.index(v, key); err != nil {
				return nil, err
			}
			if k, ok := key.(string); ok {
				desc += "[" + k + "]"
			} else {
				desc += "[" + describe(key) + "]"
			}
		case op.Call != nil:
			if op.Call.Optional && isNullish(v) {
				return undefined, nil
			}
			args := make([]any, 0, len(op.Call.Args))
			for _, a := range op.Call.Args {
				av, err := m.eval(a, scope)
				if err != nil {
					return nil, err
				}
				args = append(args, av)
			}
			if v, err = m.call(v, this, args, desc); err != nil {
				return nil, err
			}
			this = undefined
			desc += "(...)"
		}
	}
	return v, nil
}

func primaryName(p *Primary) string {
	if p.Ident != nil {
		return *p.Ident
	}
	return "expression"
}

func isLiteralName(name string) bool {
	switch name {
	case "true", "false", "null", "undefined", "NaN", "Infinity":
		return true
	}
	return false
}

func (m *machine) evalPrimary(p *Primary, scope *env) (any, error) {
	switch {
	case p.Arrow != nil:
		fn := &Function{block: p.Arrow.Block, expr: p.Arrow.Expr, params: p.Arrow.Params, env: scope}
		if p.Arrow.Single != "" {
			fn.params = []*Param{{Name: p.Arrow.Single}}
		}
		return fn, nil
	case p.Function != nil:
		return &Function{name: p.Function.Name, params: p.Function.Params, block: p.Function.Body, env: scope}, nil
	case p.JSX != nil:
		return m.evalJSX(p.JSX, scope)
	case p.Number != nil:
		return parseNumber(*p.Number), nil
	case p.String != nil:
		return string(*p.String), nil
	case p.Ident != nil:
		return m.identifier(*p.Ident, scope)
	case p.Array != nil:
		items := make([]any, 0, len(p.Array.Items))
		for _, item := range p.Array.Items {
			v, err := m.eval(item, scope)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return &Array{items: items}, nil
	case p.Object != nil:
		return m.evalObject(p.Object, scope)
	case p.Paren != nil:
		return m.eval(p.Paren, scope)
	}
	return undefined, nil
}

func parseNumber(raw string) float64 {
	raw = strings.ReplaceAll(raw, "_", "")
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		n, err := strconv.ParseUint(raw[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func (m *machine) identifier(name string, scope *env) (any, error) {
	switch name {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	case "undefined":
		return undefined, nil
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	}
	if v, ok := scope.lookup(name); ok {
		return v, nil
	}
	return nil, referenceError(name)
}

func (m *machine) evalObject(o *ObjectLit, scope *env) (any, error) {
	out := newObject()
	for _, p := range o.Properties {
		var key string
		switch {
		case p.Key != nil:
			key = *p.Key
		case p.StrKey != nil:
			key = string(*p.StrKey)
		case p.NumKey != nil:
			key = formatNumber(parseNumber(*p.NumKey))
		case p.Computed != nil:
			k, err := m.eval(p.Computed, scope)
			if err != nil {
				return nil, err
			}
			if key, err = m.stringOf(k); err != nil {
				return nil, err
			}
		}
		if p.Value == nil {
			if p.Key == nil {
				return nil, &ScriptError{Name: "SyntaxError", Message: "shorthand property needs an identifier"}
			}
			v, err := m.identifier(key, scope)
			if err != nil {
				return nil, err
			}
			out.set(key, v)
			continue
		}
		v, err := m.eval(p.Value, scope)
		if err != nil {
			return nil, err
		}
		if fn, ok := v.(*Function); ok && fn.name == "" {
			fn.name = key
		}
		out.set(key, v)
	}
	return out, nil
}

// member reads a named property.
func (m *machine) member(v any, name string) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, typeError("Cannot read properties of null (reading '%s')", name)
	case undefinedType:
		return nil, typeError("Cannot read properties of undefined (reading '%s')", name)
	case *Object:
		if val, ok := t.get(name); ok {
			return val, nil
		}
		return undefined, nil
	case *Array:
		if name == "length" {
			return float64(len(t.items)), nil
		}
		if fn := arrayMethod(t, name); fn != nil {
			return fn, nil
		}
		if i, err := strconv.Atoi(name); err == nil {
			return m.index(t, float64(i))
		}
		return undefined, nil
	case string:
		if name == "length" {
			return float64(len([]rune(t))), nil
		}
		if fn := stringMethod(t, name); fn != nil {
			return fn, nil
		}
		return undefined, nil
	case float64:
		if fn := numberMethod(t, name); fn != nil {
			return fn, nil
		}
		return undefined, nil
	case *Function:
		if name == "name" {
			return t.name, nil
		}
		return undefined, nil
	case *Builtin:
		if name == "name" {
			return t.name, nil
		}
		return undefined, nil
	default:
		return undefined, nil
	}
}

// index reads a computed property.
func (m *machine) index(v any, key any) (any, error) {
	if isNullish(v) {
		name, err := m.stringOf(key)
		if err != nil {
			return nil, err
		}
		return m.member(v, name)
	}
	n, isNum := key.(float64)
	switch t := v.(type) {
	case *Array:
		if isNum {
			if n >= 0 && n < float64(len(t.items)) && n == math.Trunc(n) {
				return t.items[int(n)], nil
			}
			return undefined, nil
		}
	case string:
		if isNum {
			r := []rune(t)
			if n >= 0 && n < float64(len(r)) && n == math.Trunc(n) {
				return string(r[int(n)]), nil
			}
			return undefined, nil
		}
	}
	name, err := m.stringOf(key)
	if err != nil {
		return nil, err
	}
	return m.member(v, name)
}

// run executes a whole program in scope.
func (m *machine) run(prog *Program, scope *env) error {
	_, _, err := m.execBlock(prog.Statements, scope)
	return err
}

// callComponent calls a component with props and converts the result to a node.
// Panics are converted to errors so a lazily rendered component cannot take the
// caller down with it.
func (m *machine) callComponent(fn any, name string, props *Object) (node element.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			node, err = nil, &ScriptError{Name: "Error", Message: fmt.Sprint(r)}
		}
	}()
	v, err := m.call(fn, undefined, []any{props}, name)
	if err != nil {
		return nil, err
	}
	return toNode(v), nil
}

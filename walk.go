package constraint

import (
	"fmt"

	"github.com/reoring/constraint/i18n"
)

// UnionPolicy selects what the walker does with a present value of a union-typed
// field whose members carry constraints. Union branches are not selected at runtime,
// so such values cannot be validated.
type UnionPolicy uint8

const (
	// UnionUnsupported records the value path in Result.Unsupported.
	UnionUnsupported UnionPolicy = iota
	// UnionSkip leaves the value unvalidated without trace.
	UnionSkip
	// UnionWarn leaves the value unvalidated and reports the path to the warn hook.
	UnionWarn
)

func (p UnionPolicy) String() string {
	switch p {
	case UnionSkip:
		return "skip"
	case UnionWarn:
		return "warn"
	default:
		return "unsupported"
	}
}

// ParseUnionPolicy parses "unsupported", "skip" or "warn".
func ParseUnionPolicy(s string) (UnionPolicy, error) {
	switch s {
	case "", "unsupported":
		return UnionUnsupported, nil
	case "skip":
		return UnionSkip, nil
	case "warn":
		return UnionWarn, nil
	default:
		return 0, fmt.Errorf("constraint: unknown union policy %q", s)
	}
}

// WalkOption configures a single Validate call.
type WalkOption func(*walker)

// WithUnion sets the union policy (default UnionUnsupported).
func WithUnion(p UnionPolicy) WalkOption { return func(w *walker) { w.policy = p } }

// OnUnionSkipped registers the hook called for every union value skipped under
// UnionWarn.
func OnUnionSkipped(fn func(path string)) WalkOption { return func(w *walker) { w.warn = fn } }

// Validate walks v against s and returns every violated constraint. Absent record
// entries are skipped. The walk is bounded by the depth of v, so self-referential
// schemas need no cycle guard here.
func Validate(v Value, s *RecordSchema, opts ...WalkOption) Result {
	w := walker{}
	for _, o := range opts {
		o(&w)
	}
	p := Root()
	if s == nil {
		return Result{}
	}
	if v.kind != ValueRecord {
		return Result{}.add(invalidType(p, "record", v))
	}
	return w.record(v, s, p)
}

// ValidateType walks a standalone value against an (annotated) type.
func ValidateType(v Value, t *FieldType, opts ...WalkOption) Result {
	w := walker{}
	for _, o := range opts {
		o(&w)
	}
	return w.field(v, t, nil, Root())
}

type walker struct {
	policy UnionPolicy
	warn   func(path string)
}

func (w walker) record(v Value, s *RecordSchema, p PathRef) Result {
	var res Result
	for _, f := range s.Fields {
		fv, ok := v.Get(f.Name)
		if !ok {
			continue
		}
		res = res.merge(w.field(fv, f.Type, f.Constraints, p.Field(f.Name)))
	}
	return res
}

// field checks field-level constraints, the type's own constraints and then recurses
// into records and array elements.
func (w walker) field(v Value, t *FieldType, spec ConstraintSpec, p PathRef) Result {
	if t == nil || !v.IsValid() {
		return Result{}
	}
	if t.Kind == KindUnion {
		return w.union(t, p)
	}
	if !conforms(v, t) {
		return Result{}.add(invalidType(p, t.String(), v))
	}
	res := evaluate(spec, v, p)
	for _, a := range t.Annotations() {
		res = res.merge(evaluate(a, v, p))
	}
	switch t.Kind {
	case KindRecord:
		if t.Record != nil {
			res = res.merge(w.record(v, t.Record, p))
		}
	case KindArray:
		for i, e := range v.arr {
			res = res.merge(w.field(e, t.Elem, nil, p.Index(i)))
		}
	}
	return res
}

func (w walker) union(t *FieldType, p PathRef) Result {
	if !constrained(t, map[*RecordSchema]bool{}) {
		return Result{}
	}
	switch w.policy {
	case UnionSkip:
		return Result{}
	case UnionWarn:
		if w.warn != nil {
			w.warn(p.Pointer())
		}
		return Result{}
	default:
		return Result{Unsupported: []string{p.Pointer()}}
	}
}

// constrained reports whether any constraint is reachable from t.
func constrained(t *FieldType, seen map[*RecordSchema]bool) bool {
	if t == nil {
		return false
	}
	if len(t.Annotations()) > 0 {
		return true
	}
	switch t.Kind {
	case KindArray:
		return constrained(t.Elem, seen)
	case KindUnion:
		for _, m := range t.Members {
			if constrained(m, seen) {
				return true
			}
		}
	case KindRecord:
		if t.Record == nil || seen[t.Record] {
			return false
		}
		seen[t.Record] = true
		for _, f := range t.Record.Fields {
			if len(f.Constraints) > 0 || constrained(f.Type, seen) {
				return true
			}
		}
	}
	return false
}

// evaluate runs every constraint of spec against v independently.
func evaluate(spec ConstraintSpec, v Value, p PathRef) Result {
	var res Result
	for _, name := range spec.Names() {
		lit := spec[name]
		ok, actual := check(name, lit, v)
		if ok {
			continue
		}
		bound := formatBound(lit)
		if name == Pattern {
			bound = fmt.Sprint(lit)
		}
		msg := i18n.T(name, map[string]string{"bound": bound})
		res = res.add(p.Issue(name, msg, "bound", lit, "actual", actual))
	}
	return res
}

// check evaluates one constraint. Constraints that cannot apply to v (unknown names,
// malformed literals, mismatched kinds) pass; the static checker reports those.
func check(name string, lit any, v Value) (bool, any) {
	switch name {
	case MinValue, MaxValue, MinValueExclusive, MaxValueExclusive:
		bound, ok := literalNumber(lit)
		if !ok || !v.IsNumeric() {
			return true, nil
		}
		var pass bool
		switch name {
		case MinValue:
			pass = MinValueOK(v, bound)
		case MaxValue:
			pass = MaxValueOK(v, bound)
		case MinValueExclusive:
			pass = MinValueExclusiveOK(v, bound)
		default:
			pass = MaxValueExclusiveOK(v, bound)
		}
		return pass, v.Interface()
	case Length, MinLength, MaxLength:
		bound, ok := literalCount(lit)
		n, counted := count(v)
		if !ok || !counted {
			return true, nil
		}
		switch name {
		case Length:
			return LengthOK(n, bound), n
		case MinLength:
			return MinLengthOK(n, bound), n
		default:
			return MaxLengthOK(n, bound), n
		}
	case Pattern:
		expr, ok := lit.(string)
		s, isStr := v.Str()
		if !ok || !isStr {
			return true, nil
		}
		return PatternOK(s, expr), s
	case Const:
		want, ok := lit.(bool)
		b, isBool := v.Bool()
		if !ok || !isBool {
			return true, nil
		}
		return ConstOK(b, want), b
	default:
		return true, nil
	}
}

func count(v Value) (int, bool) {
	switch v.kind {
	case ValueString:
		return RuneCount(v.s), true
	case ValueArray:
		return len(v.arr), true
	default:
		return 0, false
	}
}

// conforms reports whether v has the shape declared by t. Integers are accepted where
// floats or decimals are declared.
func conforms(v Value, t *FieldType) bool {
	switch t.Kind {
	case KindInteger:
		return v.kind == ValueInt
	case KindFloat:
		return v.kind == ValueFloat || v.kind == ValueInt
	case KindDecimal:
		return v.kind == ValueDecimal || v.kind == ValueInt
	case KindString:
		return v.kind == ValueString
	case KindBoolean:
		return v.kind == ValueBool
	case KindArray:
		return v.kind == ValueArray
	case KindRecord:
		return v.kind == ValueRecord
	default:
		return true
	}
}

func invalidType(p PathRef, expected string, v Value) Issue {
	msg := i18n.T(CodeInvalidType, map[string]string{"type": expected})
	return p.Issue(CodeInvalidType, msg, "expected", expected, "actual", v.kind.String())
}

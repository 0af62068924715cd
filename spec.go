package constraint

import "sort"

// Constraint names. Each name belongs to one or more categories (see Category).
const (
	MinValue          = "minValue"
	MaxValue          = "maxValue"
	MinValueExclusive = "minValueExclusive"
	MaxValueExclusive = "maxValueExclusive"
	Length            = "length"
	MinLength         = "minLength"
	MaxLength         = "maxLength"
	Pattern           = "pattern"
	Const             = "const"
)

// ConstraintSpec maps constraint names to configured literals (numbers, strings,
// booleans). It is attached to a single field or to an annotated type.
type ConstraintSpec map[string]any

// Names returns the attached constraint names in sorted order.
func (c ConstraintSpec) Names() []string {
	if len(c) == 0 {
		return nil
	}
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Has reports whether name is attached.
func (c ConstraintSpec) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Clone returns a shallow copy so builders never alias caller maps.
func (c ConstraintSpec) Clone() ConstraintSpec {
	if c == nil {
		return nil
	}
	out := make(ConstraintSpec, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

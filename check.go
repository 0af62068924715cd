package constraint

import (
	"fmt"

	"github.com/reoring/constraint/i18n"
)

// Check statically verifies every constraint reachable from s. Nested records, array
// element types, union members and annotated types are visited once each, so
// self-referential schemas terminate. All diagnostics are collected.
func Check(s *RecordSchema) Diagnostics {
	c := newChecker()
	c.record(s, Root())
	return c.diags
}

// CheckType statically verifies a single (possibly annotated) type and everything
// reachable from it.
func CheckType(t *FieldType) Diagnostics {
	c := newChecker()
	c.typ(t, Root(), t.String())
	return c.diags
}

// CheckField statically verifies one field declaration.
func CheckField(f Field) Diagnostics {
	c := newChecker()
	p := Root().Field(f.Name)
	c.spec(f.Constraints, f.Type, p, "")
	c.typ(f.Type, p, "")
	return c.diags
}

type checker struct {
	records map[*RecordSchema]bool
	types   map[*FieldType]bool
	diags   Diagnostics
}

func newChecker() *checker {
	return &checker{records: map[*RecordSchema]bool{}, types: map[*FieldType]bool{}}
}

func (c *checker) record(s *RecordSchema, p PathRef) {
	if s == nil || c.records[s] {
		return
	}
	c.records[s] = true
	for _, f := range s.Fields {
		fp := p.Field(f.Name)
		c.spec(f.Constraints, f.Type, fp, s.Name)
		c.typ(f.Type, fp, s.Name)
	}
}

func (c *checker) typ(t *FieldType, p PathRef, owner string) {
	if t == nil || c.types[t] {
		return
	}
	c.types[t] = true
	if t.Name != "" && t.Kind != KindRecord {
		owner = t.Name
	}
	c.spec(t.Constraints, t, p, owner)
	c.typ(t.Base, p, owner)
	switch t.Kind {
	case KindArray:
		c.typ(t.Elem, p.Elem(), owner)
	case KindRecord:
		c.record(t.Record, p)
	case KindUnion:
		for _, m := range t.Members {
			c.typ(m, p, owner)
		}
	}
}

// spec runs the four compatibility rules for one constraint set.
func (c *checker) spec(spec ConstraintSpec, t *FieldType, p PathRef, owner string) {
	if len(spec) == 0 {
		return
	}
	typeName := t.String()
	cat, ok := Resolve(t)
	if !ok {
		c.add(owner, p, CodeInapplicable, "", map[string]string{"type": typeName})
		return
	}
	var owned []string
	for _, n := range spec.Names() {
		owners := CategoriesOf(n)
		switch {
		case len(owners) == 0:
			c.add(owner, p, CodeUnknownConstraint, n, nil)
		case !anyCompatible(owners, t):
			c.add(owner, p, CodeIncompatibleType, n, map[string]string{"type": typeName})
		default:
			owned = append(owned, n)
		}
	}
	if !cat.HaveCompatibleConstraints(owned) {
		c.add(owner, p, CodeExclusiveConstraints, "", nil)
	}
	valid := true
	for _, n := range owned {
		if !cat.IsValidConstraintValue(n, spec[n]) {
			c.add(owner, p, CodeInvalidLiteral, n, nil)
			valid = false
		}
	}
	if valid {
		c.ranges(spec, cat, p, owner)
	}
}

// ranges rejects bound sets no value can satisfy (e.g. minValue 10, maxValue 5).
func (c *checker) ranges(spec ConstraintSpec, cat Category, p PathRef, owner string) {
	switch cat {
	case CategoryNumber:
		lo, loOK := firstPresent(spec, MinValue, MinValueExclusive)
		hi, hiOK := firstPresent(spec, MaxValue, MaxValueExclusive)
		if !loOK || !hiOK {
			return
		}
		lv, _ := literalNumber(spec[lo])
		hv, _ := literalNumber(spec[hi])
		cmp, _ := CompareNumbers(lv, hv)
		if cmp > 0 || (cmp == 0 && (lo == MinValueExclusive || hi == MaxValueExclusive)) {
			c.add(owner, p, CodeEmptyRange, "", nil)
		}
	case CategoryString, CategoryArray:
		if !spec.Has(MinLength) || !spec.Has(MaxLength) {
			return
		}
		lo, _ := literalCount(spec[MinLength])
		hi, _ := literalCount(spec[MaxLength])
		if lo > hi {
			c.add(owner, p, CodeEmptyRange, "", nil)
		}
	}
}

func (c *checker) add(owner string, p PathRef, code, name string, data map[string]string) {
	c.diags = append(c.diags, Diagnostic{
		Schema:     owner,
		Path:       p.Pointer(),
		Code:       code,
		Constraint: name,
		Message:    i18n.T(code, data),
	})
}

func anyCompatible(cats []Category, t *FieldType) bool {
	for _, c := range cats {
		if c.IsCompatibleFieldType(t) {
			return true
		}
	}
	return false
}

func firstPresent(spec ConstraintSpec, names ...string) (string, bool) {
	for _, n := range names {
		if spec.Has(n) {
			return n, true
		}
	}
	return "", false
}

func formatBound(lit any) string {
	if v, ok := literalNumber(lit); ok {
		return v.String()
	}
	return fmt.Sprint(lit)
}

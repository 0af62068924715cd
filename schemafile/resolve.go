package schemafile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/reoring/constraint"
)

var builtins = map[string]func() *constraint.FieldType{
	"int":     constraint.Integer,
	"integer": constraint.Integer,
	"float":   constraint.Float,
	"decimal": constraint.Decimal,
	"string":  constraint.String,
	"boolean": constraint.Boolean,
	"bool":    constraint.Boolean,
}

type resolver struct {
	doc      Document
	d        *simpleDiag
	records  map[string]*constraint.RecordSchema
	types    map[string]*constraint.FieldType
	visiting map[string]bool
	used     map[string]bool
}

// build resolves doc in two passes: every record is allocated first so fields may
// reference any record, including their own.
func build(doc Document, d *simpleDiag) (*Schema, error) {
	r := &resolver{
		doc:      doc,
		d:        d,
		records:  make(map[string]*constraint.RecordSchema, len(doc.Records)),
		types:    make(map[string]*constraint.FieldType, len(doc.Types)),
		visiting: map[string]bool{},
		used:     map[string]bool{},
	}
	for _, name := range sortedKeys(doc.Records) {
		if _, ok := builtins[name]; ok {
			return nil, fmt.Errorf("schemafile: record %q shadows a builtin type", name)
		}
		if _, ok := doc.Types[name]; ok {
			return nil, fmt.Errorf("schemafile: %q declared as both type and record", name)
		}
		r.records[name] = constraint.NewRecord(name)
	}
	var errs []error
	for _, name := range sortedKeys(doc.Types) {
		if _, ok := builtins[name]; ok {
			errs = append(errs, fmt.Errorf("schemafile: type %q shadows a builtin type", name))
			continue
		}
		if _, err := r.alias(name); err != nil {
			errs = append(errs, fmt.Errorf("schemafile: %w", err))
		}
	}
	for _, name := range sortedKeys(doc.Records) {
		if err := r.fill(name, doc.Records[name]); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(doc.Types) {
		if !r.used[name] {
			d.warnf("type %q is never used", name)
		}
	}

	s := &Schema{Records: r.records, Types: r.types}
	switch {
	case doc.Root != "":
		root, ok := r.records[doc.Root]
		if !ok {
			return nil, fmt.Errorf("schemafile: root record %q not declared", doc.Root)
		}
		s.Root = root
	case len(r.records) == 1:
		for _, rec := range r.records {
			s.Root = rec
		}
	case len(r.records) > 1:
		d.warnf("no root declared among %d records", len(r.records))
	}
	return s, nil
}

func (r *resolver) fill(name string, decl RecordDecl) error {
	rec := r.records[name]
	if len(decl.Fields) == 0 {
		r.d.warnf("record %q has no fields", name)
	}
	seen := make(map[string]bool, len(decl.Fields))
	for i, f := range decl.Fields {
		if f.Name == "" {
			return fmt.Errorf("schemafile: record %q field %d has no name", name, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("schemafile: record %q declares field %q twice", name, f.Name)
		}
		seen[f.Name] = true
		t, err := r.typeOf(f.Type)
		if err != nil {
			return fmt.Errorf("schemafile: record %q field %q: %w", name, f.Name, err)
		}
		if f.Optional {
			rec.OptionalField(f.Name, t, spec(f.Constraints))
		} else {
			rec.Field(f.Name, t, spec(f.Constraints))
		}
	}
	return nil
}

func (r *resolver) typeOf(src string) (*constraint.FieldType, error) {
	if src == "" {
		return nil, errors.New("missing type")
	}
	e, err := parseTypeExpr(src)
	if err != nil {
		return nil, err
	}
	return r.expr(e)
}

func (r *resolver) expr(e *typeExpr) (*constraint.FieldType, error) {
	switch e.kind {
	case exprArray:
		elem, err := r.expr(e.elem)
		if err != nil {
			return nil, err
		}
		return constraint.ArrayOf(elem), nil
	case exprUnion:
		members := make([]*constraint.FieldType, 0, len(e.members))
		for _, m := range e.members {
			t, err := r.expr(m)
			if err != nil {
				return nil, err
			}
			members = append(members, t)
		}
		return constraint.UnionOf(members...), nil
	default:
		return r.named(e.name)
	}
}

// named resolves a builtin, record or annotated type name.
func (r *resolver) named(name string) (*constraint.FieldType, error) {
	if mk, ok := builtins[name]; ok {
		return mk(), nil
	}
	if rec, ok := r.records[name]; ok {
		return constraint.RecordOf(rec), nil
	}
	r.used[name] = true
	return r.alias(name)
}

// alias resolves an annotated type once and shares the result. A chain of aliases
// leading back to itself is an error.
func (r *resolver) alias(name string) (*constraint.FieldType, error) {
	if t, ok := r.types[name]; ok {
		return t, nil
	}
	decl, ok := r.doc.Types[name]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	if r.visiting[name] {
		return nil, fmt.Errorf("type %q refers to itself; recursion must go through a record", name)
	}
	r.visiting[name] = true
	defer delete(r.visiting, name)

	base, err := r.typeOf(decl.Type)
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", name, err)
	}
	t := base.Named(name, spec(decl.Constraints))
	r.types[name] = t
	return t, nil
}

func spec(m map[string]any) constraint.ConstraintSpec {
	if len(m) == 0 {
		return nil
	}
	return constraint.ConstraintSpec(m)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

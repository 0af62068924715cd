package jsonschema

import (
	"fmt"
	"math/big"
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/reoring/constraint"
)

// Export projects a checked record schema onto JSON Schema. Records and annotated
// types become $defs entries referenced by $ref, so recursive schemas export finitely.
// Schemas that fail constraint.Check are rejected with a *constraint.SchemaError.
func Export(s *constraint.RecordSchema) (*Schema, error) {
	if s == nil {
		return nil, constraint.ErrNilSchema
	}
	if diags := constraint.Check(s); len(diags) > 0 {
		return nil, &constraint.SchemaError{Schema: s.Name, Diagnostics: diags}
	}
	e := &exporter{defs: map[string]*Schema{}, records: map[*constraint.RecordSchema]string{}, types: map[*constraint.FieldType]string{}}
	root := &Schema{Dialect: Draft, Ref: e.record(s)}
	root.Defs = e.defs
	return root, nil
}

// Marshal exports s and encodes it as indented JSON.
func Marshal(s *constraint.RecordSchema) ([]byte, error) {
	sch, err := Export(s)
	if err != nil {
		return nil, err
	}
	return j.MarshalIndent(sch, "", "  ")
}

type exporter struct {
	defs    map[string]*Schema
	records map[*constraint.RecordSchema]string
	types   map[*constraint.FieldType]string
}

// name reserves a unique $defs key.
func (e *exporter) name(base string) string {
	if base == "" {
		base = "anonymous"
	}
	n := base
	for i := 2; ; i++ {
		if _, taken := e.defs[n]; !taken {
			return n
		}
		n = base + "_" + strconv.Itoa(i)
	}
}

func (e *exporter) record(s *constraint.RecordSchema) string {
	if key, ok := e.records[s]; ok {
		return "#/$defs/" + key
	}
	key := e.name(s.Name)
	e.records[s] = key
	def := &Schema{Type: "object", Title: s.Name}
	e.defs[key] = def
	for _, f := range s.Fields {
		if def.Properties == nil {
			def.Properties = map[string]*Schema{}
		}
		def.Properties[f.Name] = e.field(f.Type, f.Constraints)
		if !f.Optional {
			def.Required = append(def.Required, f.Name)
		}
	}
	return "#/$defs/" + key
}

func (e *exporter) field(t *constraint.FieldType, spec constraint.ConstraintSpec) *Schema {
	base := e.typ(t)
	if len(spec) == 0 {
		return base
	}
	if base.Ref != "" {
		extra := &Schema{}
		apply(extra, spec)
		return &Schema{AllOf: []*Schema{base, extra}}
	}
	apply(base, spec)
	return base
}

func (e *exporter) typ(t *constraint.FieldType) *Schema {
	if t == nil {
		return &Schema{}
	}
	if t.Kind == constraint.KindRecord && t.Record != nil && len(t.Constraints) == 0 {
		return &Schema{Ref: e.record(t.Record)}
	}
	if len(t.Constraints) == 0 && t.Base != nil {
		return e.typ(t.Base)
	}
	if t.Name != "" && len(t.Constraints) > 0 {
		if key, ok := e.types[t]; ok {
			return &Schema{Ref: "#/$defs/" + key}
		}
		key := e.name(t.Name)
		e.types[t] = key
		def := &Schema{}
		e.defs[key] = def
		if t.Base != nil {
			own := &Schema{}
			if t.Kind == constraint.KindArray {
				own.Type = "array"
			}
			apply(own, t.Constraints)
			*def = Schema{AllOf: []*Schema{e.typ(t.Base), own}}
		} else {
			*def = *e.shape(t)
			apply(def, t.Constraints)
		}
		def.Title = t.Name
		return &Schema{Ref: "#/$defs/" + key}
	}
	return e.shape(t)
}

// shape is the unconstrained schema for t's kind.
func (e *exporter) shape(t *constraint.FieldType) *Schema {
	switch t.Kind {
	case constraint.KindInteger:
		return &Schema{Type: "integer"}
	case constraint.KindFloat, constraint.KindDecimal:
		return &Schema{Type: "number"}
	case constraint.KindString:
		return &Schema{Type: "string"}
	case constraint.KindBoolean:
		return &Schema{Type: "boolean"}
	case constraint.KindArray:
		return &Schema{Type: "array", Items: e.typ(t.Elem)}
	case constraint.KindRecord:
		if t.Record == nil {
			return &Schema{Type: "object"}
		}
		return &Schema{Ref: e.record(t.Record)}
	case constraint.KindUnion:
		out := &Schema{}
		for _, m := range t.Members {
			out.AnyOf = append(out.AnyOf, e.typ(m))
		}
		return out
	default:
		return &Schema{}
	}
}

// apply maps constraint literals onto keywords. String length keywords go to
// minItems/maxItems for arrays.
func apply(s *Schema, spec constraint.ConstraintSpec) {
	array := s.Type == "array"
	for _, name := range spec.Names() {
		lit := spec[name]
		switch name {
		case constraint.MinValue:
			s.Minimum = number(lit)
		case constraint.MaxValue:
			s.Maximum = number(lit)
		case constraint.MinValueExclusive:
			s.ExclusiveMinimum = number(lit)
		case constraint.MaxValueExclusive:
			s.ExclusiveMaximum = number(lit)
		case constraint.Length, constraint.MinLength, constraint.MaxLength:
			n, ok := count(lit)
			if !ok {
				continue
			}
			lo, hi := &s.MinLength, &s.MaxLength
			if array {
				lo, hi = &s.MinItems, &s.MaxItems
			}
			// length combined with a range keeps the tightest bound on each side.
			if name != constraint.MaxLength && (*lo == nil || n > **lo) {
				*lo = &n
			}
			if name != constraint.MinLength && (*hi == nil || n < **hi) {
				*hi = &n
			}
		case constraint.Pattern:
			if p, ok := lit.(string); ok {
				s.Pattern = "^(?:" + p + ")$"
			}
		case constraint.Const:
			if b, ok := lit.(bool); ok {
				s.Const = &b
			}
		}
	}
}

func number(lit any) *Number {
	n := literal(lit)
	return &n
}

func literal(lit any) Number {
	switch t := lit.(type) {
	case *big.Rat:
		return Number(constraint.DecimalValue(t).String())
	case float32:
		return Number(strconv.FormatFloat(float64(t), 'g', -1, 32))
	case float64:
		return Number(strconv.FormatFloat(t, 'g', -1, 64))
	}
	// strings and json.Number: re-render so the output is always a valid JSON number
	if v, err := constraint.ParseDecimal(fmt.Sprint(lit)); err == nil {
		if r, _ := v.Decimal(); r.IsInt() {
			return Number(r.Num().String())
		}
		return Number(v.String())
	}
	return Number(fmt.Sprint(lit))
}

func count(lit any) (int, bool) {
	if n, ok := lit.(int); ok {
		return n, true
	}
	f, err := strconv.ParseFloat(fmt.Sprint(lit), 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

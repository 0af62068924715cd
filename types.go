package constraint

import "strings"

// Kind identifies the declared shape of a field.
type Kind uint8

const (
	KindInteger Kind = iota
	KindFloat
	KindDecimal
	KindString
	KindBoolean
	KindArray
	KindRecord
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	default:
		return "unknown"
	}
}

// FieldType describes a field's declared type. Elem is set for arrays, Record for
// records and Members for unions. Constraints carries type-level constraints of an
// annotated (named) type; they apply wherever the type is used. Base links an
// annotated type to the annotated type it refines, whose constraints apply as well.
//
// FieldType values are treated as immutable once a schema is in use.
type FieldType struct {
	Kind        Kind
	Name        string
	Elem        *FieldType
	Record      *RecordSchema
	Members     []*FieldType
	Constraints ConstraintSpec
	Base        *FieldType
}

func Integer() *FieldType { return &FieldType{Kind: KindInteger} }
func Float() *FieldType   { return &FieldType{Kind: KindFloat} }
func Decimal() *FieldType { return &FieldType{Kind: KindDecimal} }
func String() *FieldType  { return &FieldType{Kind: KindString} }
func Boolean() *FieldType { return &FieldType{Kind: KindBoolean} }

// ArrayOf returns an array type whose elements are of type elem.
func ArrayOf(elem *FieldType) *FieldType { return &FieldType{Kind: KindArray, Elem: elem} }

// RecordOf returns a field type referencing the record schema s. The schema is held by
// pointer, so a record may refer to itself.
func RecordOf(s *RecordSchema) *FieldType {
	t := &FieldType{Kind: KindRecord, Record: s}
	if s != nil {
		t.Name = s.Name
	}
	return t
}

// UnionOf returns a union of the given member types.
func UnionOf(members ...*FieldType) *FieldType {
	return &FieldType{Kind: KindUnion, Members: append([]*FieldType(nil), members...)}
}

// Named returns an annotated copy of t carrying type-level constraints. When t is
// itself constrained, the copy refines it: t's constraints keep applying and spec
// adds to them.
func (t *FieldType) Named(name string, spec ConstraintSpec) *FieldType {
	cp := *t
	cp.Name = name
	cp.Constraints = spec.Clone()
	if len(t.Constraints) > 0 {
		cp.Base = t
	}
	return &cp
}

// Annotations returns the type-level constraint sets that apply to t, outermost
// base first.
func (t *FieldType) Annotations() []ConstraintSpec {
	var out []ConstraintSpec
	for b := t; b != nil; b = b.Base {
		if len(b.Constraints) > 0 {
			out = append(out, b.Constraints)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// IsNumeric reports whether t is an integer, float or decimal type.
func (t *FieldType) IsNumeric() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindInteger, KindFloat, KindDecimal:
		return true
	default:
		return false
	}
}

// String renders a type expression such as "[]int" or "Person|string".
func (t *FieldType) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Name != "" {
		return t.Name
	}
	switch t.Kind {
	case KindArray:
		return "[]" + t.Elem.String()
	case KindUnion:
		parts := make([]string, 0, len(t.Members))
		for _, m := range t.Members {
			parts = append(parts, m.String())
		}
		return strings.Join(parts, "|")
	default:
		return t.Kind.String()
	}
}

// Field is a single record field declaration.
type Field struct {
	Name        string
	Type        *FieldType
	Optional    bool
	Constraints ConstraintSpec
}

// RecordSchema is a named record type with ordered fields.
type RecordSchema struct {
	Name   string
	Fields []Field
}

// NewRecord starts a record schema. Fields are appended with Field/OptionalField.
func NewRecord(name string) *RecordSchema { return &RecordSchema{Name: name} }

// Field appends a required field. spec may be nil.
func (s *RecordSchema) Field(name string, t *FieldType, spec ConstraintSpec) *RecordSchema {
	s.Fields = append(s.Fields, Field{Name: name, Type: t, Constraints: spec.Clone()})
	return s
}

// OptionalField appends an optional field. spec may be nil.
func (s *RecordSchema) OptionalField(name string, t *FieldType, spec ConstraintSpec) *RecordSchema {
	s.Fields = append(s.Fields, Field{Name: name, Type: t, Optional: true, Constraints: spec.Clone()})
	return s
}

// Lookup returns the declared field with the given name.
func (s *RecordSchema) Lookup(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

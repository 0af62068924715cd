package constraint

// Category is the semantic group of constraints that applies to a kind of field type.
// The set is closed; each capability method switches over every category.
type Category uint8

const (
	CategoryNumber Category = iota + 1
	CategoryString
	CategoryArray
	CategoryBoolean
)

// Categories lists every category in catalog order.
var Categories = []Category{CategoryNumber, CategoryString, CategoryArray, CategoryBoolean}

func (c Category) String() string {
	switch c {
	case CategoryNumber:
		return "Number"
	case CategoryString:
		return "String"
	case CategoryArray:
		return "Array"
	case CategoryBoolean:
		return "Boolean"
	default:
		return "none"
	}
}

// Resolve maps a field type to the category of constraints it accepts. Records and
// unions resolve to none: their nested content is validated by recursion instead.
func Resolve(t *FieldType) (Category, bool) {
	if t == nil {
		return 0, false
	}
	switch t.Kind {
	case KindInteger, KindFloat, KindDecimal:
		return CategoryNumber, true
	case KindString:
		return CategoryString, true
	case KindArray:
		return CategoryArray, true
	case KindBoolean:
		return CategoryBoolean, true
	default:
		return 0, false
	}
}

// Names returns the constraint names that belong to the category.
func (c Category) Names() []string {
	switch c {
	case CategoryNumber:
		return []string{MinValue, MaxValue, MinValueExclusive, MaxValueExclusive}
	case CategoryString:
		return []string{Length, MinLength, MaxLength, Pattern}
	case CategoryArray:
		return []string{Length, MinLength, MaxLength}
	case CategoryBoolean:
		return []string{Const}
	default:
		return nil
	}
}

// Owns reports whether name belongs to the category.
func (c Category) Owns(name string) bool {
	for _, n := range c.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// CategoriesOf returns every category that defines the constraint name.
func CategoriesOf(name string) []Category {
	var out []Category
	for _, c := range Categories {
		if c.Owns(name) {
			out = append(out, c)
		}
	}
	return out
}

// IsCompatibleFieldType reports whether constraints of this category may decorate t.
func (c Category) IsCompatibleFieldType(t *FieldType) bool {
	if t == nil {
		return false
	}
	switch c {
	case CategoryNumber:
		return t.Kind == KindInteger || t.Kind == KindFloat || t.Kind == KindDecimal
	case CategoryString:
		return t.Kind == KindString
	case CategoryArray:
		return t.Kind == KindArray
	case CategoryBoolean:
		return t.Kind == KindBoolean
	default:
		return false
	}
}

// HaveCompatibleConstraints reports whether the names may be attached together.
// Only Number has an exclusivity rule: an inclusive and an exclusive bound on the
// same extremum.
func (c Category) HaveCompatibleConstraints(names []string) bool {
	has := make(map[string]bool, len(names))
	for _, n := range names {
		has[n] = true
	}
	switch c {
	case CategoryNumber:
		return !(has[MinValue] && has[MinValueExclusive] || has[MaxValue] && has[MaxValueExclusive])
	case CategoryString, CategoryArray, CategoryBoolean:
		return true
	default:
		return true
	}
}

// IsValidConstraintValue checks the configured literal of one constraint.
func (c Category) IsValidConstraintValue(name string, lit any) bool {
	switch c {
	case CategoryNumber:
		v, ok := literalNumber(lit)
		if !ok {
			return false
		}
		_, ordered := CompareNumbers(v, v)
		return ordered
	case CategoryString:
		if name == Pattern {
			s, ok := lit.(string)
			if !ok {
				return false
			}
			_, err := compilePattern(s)
			return err == nil
		}
		_, ok := literalCount(lit)
		return ok
	case CategoryArray:
		_, ok := literalCount(lit)
		return ok
	case CategoryBoolean:
		_, ok := lit.(bool)
		return ok
	default:
		return true
	}
}

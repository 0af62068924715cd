package constraint

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
)

// ValueKind identifies the variant held by a Value.
type ValueKind uint8

const (
	ValueInvalid ValueKind = iota
	ValueInt
	ValueFloat
	ValueDecimal
	ValueString
	ValueBool
	ValueArray
	ValueRecord
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueDecimal:
		return "decimal"
	case ValueString:
		return "string"
	case ValueBool:
		return "boolean"
	case ValueArray:
		return "array"
	case ValueRecord:
		return "record"
	default:
		return "invalid"
	}
}

// Value is an immutable runtime instance. The zero Value is invalid and is treated as
// absent by the walker.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	d    *big.Rat
	s    string
	b    bool
	arr  []Value
	rec  map[string]Value
}

func IntValue(i int64) Value     { return Value{kind: ValueInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: ValueFloat, f: f} }
func StringValue(s string) Value { return Value{kind: ValueString, s: s} }
func BoolValue(b bool) Value     { return Value{kind: ValueBool, b: b} }

// DecimalValue wraps an exact decimal. r is copied.
func DecimalValue(r *big.Rat) Value {
	if r == nil {
		return Value{}
	}
	return Value{kind: ValueDecimal, d: new(big.Rat).Set(r)}
}

// ParseDecimal parses a decimal literal such as "12.50" or "1e-3" exactly.
func ParseDecimal(s string) (Value, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Value{}, fmt.Errorf("constraint: invalid decimal %q", s)
	}
	return Value{kind: ValueDecimal, d: r}, nil
}

// ArrayValue builds an array from the given elements. The slice is copied.
func ArrayValue(elems ...Value) Value {
	return Value{kind: ValueArray, arr: append([]Value(nil), elems...)}
}

// RecordValue builds a record. Missing keys denote absent (optional) fields. The map is
// copied.
func RecordValue(fields map[string]Value) Value {
	m := make(map[string]Value, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return Value{kind: ValueRecord, rec: m}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsValid() bool   { return v.kind != ValueInvalid }

func (v Value) Int() (int64, bool)     { return v.i, v.kind == ValueInt }
func (v Value) Float() (float64, bool) { return v.f, v.kind == ValueFloat }
func (v Value) Str() (string, bool)    { return v.s, v.kind == ValueString }
func (v Value) Bool() (bool, bool)     { return v.b, v.kind == ValueBool }

// Decimal returns a copy of the decimal payload.
func (v Value) Decimal() (*big.Rat, bool) {
	if v.kind != ValueDecimal {
		return nil, false
	}
	return new(big.Rat).Set(v.d), true
}

// Len returns the number of array elements.
func (v Value) Len() int { return len(v.arr) }

// Index returns the i-th array element.
func (v Value) Index(i int) Value {
	if v.kind != ValueArray || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// Get returns the record entry for name; ok is false when the entry is absent.
func (v Value) Get(name string) (Value, bool) {
	if v.kind != ValueRecord {
		return Value{}, false
	}
	fv, ok := v.rec[name]
	if !ok || !fv.IsValid() {
		return Value{}, false
	}
	return fv, true
}

// Keys returns the record keys in sorted order.
func (v Value) Keys() []string {
	out := make([]string, 0, len(v.rec))
	for k := range v.rec {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsNumeric reports whether v is an int, float or decimal.
func (v Value) IsNumeric() bool {
	switch v.kind {
	case ValueInt, ValueFloat, ValueDecimal:
		return true
	default:
		return false
	}
}

// Interface returns a plain Go representation, used for issue params and logs.
func (v Value) Interface() any {
	switch v.kind {
	case ValueInt:
		return v.i
	case ValueFloat:
		return v.f
	case ValueDecimal:
		return v.d.FloatString(decimalDigits(v.d))
	case ValueString:
		return v.s
	case ValueBool:
		return v.b
	case ValueArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case ValueRecord:
		out := make(map[string]any, len(v.rec))
		for k, e := range v.rec {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueDecimal:
		return v.d.FloatString(decimalDigits(v.d))
	case ValueString:
		return strconv.Quote(v.s)
	default:
		return fmt.Sprint(v.Interface())
	}
}

// decimalDigits returns the number of fractional digits needed to print r exactly when
// its denominator is a product of 2s and 5s, and a fixed precision otherwise.
func decimalDigits(r *big.Rat) int {
	den := new(big.Int).Set(r.Denom())
	two, five := big.NewInt(2), big.NewInt(5)
	var twos, fives int
	zero := new(big.Int)
	m := new(big.Int)
	for {
		q, rem := new(big.Int).QuoRem(den, two, m)
		if rem.Cmp(zero) != 0 {
			break
		}
		den = q
		twos++
	}
	for {
		q, rem := new(big.Int).QuoRem(den, five, m)
		if rem.Cmp(zero) != 0 {
			break
		}
		den = q
		fives++
	}
	if den.Cmp(big.NewInt(1)) != 0 {
		return 16
	}
	return max(twos, fives)
}

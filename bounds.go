package constraint

import (
	"cmp"
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"sync"
	"unicode/utf8"
)

// CompareNumbers orders two numeric values exactly. Integers compare natively; any
// float or decimal operand is compared through big.Rat, so no epsilon is involved.
// ok is false when either operand is not numeric or is NaN.
func CompareNumbers(a, b Value) (c int, ok bool) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return 0, false
	}
	if a.kind == ValueInt && b.kind == ValueInt {
		return cmp.Compare(a.i, b.i), true
	}
	if (a.kind == ValueFloat && math.IsNaN(a.f)) || (b.kind == ValueFloat && math.IsNaN(b.f)) {
		return 0, false
	}
	if ia, ib := infSign(a), infSign(b); ia != 0 || ib != 0 {
		return cmp.Compare(ia, ib), true
	}
	return toRat(a).Cmp(toRat(b)), true
}

func infSign(v Value) int {
	if v.kind != ValueFloat {
		return 0
	}
	switch {
	case math.IsInf(v.f, 1):
		return 1
	case math.IsInf(v.f, -1):
		return -1
	default:
		return 0
	}
}

func toRat(v Value) *big.Rat {
	switch v.kind {
	case ValueInt:
		return new(big.Rat).SetInt64(v.i)
	case ValueFloat:
		return new(big.Rat).SetFloat64(v.f)
	case ValueDecimal:
		return v.d
	default:
		return new(big.Rat)
	}
}

// MinValueOK reports actual >= bound.
func MinValueOK(actual, bound Value) bool {
	c, ok := CompareNumbers(actual, bound)
	return ok && c >= 0
}

// MaxValueOK reports actual <= bound.
func MaxValueOK(actual, bound Value) bool {
	c, ok := CompareNumbers(actual, bound)
	return ok && c <= 0
}

// MinValueExclusiveOK reports actual > bound.
func MinValueExclusiveOK(actual, bound Value) bool {
	c, ok := CompareNumbers(actual, bound)
	return ok && c > 0
}

// MaxValueExclusiveOK reports actual < bound.
func MaxValueExclusiveOK(actual, bound Value) bool {
	c, ok := CompareNumbers(actual, bound)
	return ok && c < 0
}

func LengthOK(n, bound int) bool    { return n == bound }
func MinLengthOK(n, bound int) bool { return n >= bound }
func MaxLengthOK(n, bound int) bool { return n <= bound }

// PatternOK reports whether s matches expr in full. Invalid expressions never match.
func PatternOK(s, expr string) bool {
	re, err := compilePattern(expr)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// ConstOK reports actual == want.
func ConstOK(actual, want bool) bool { return actual == want }

// RuneCount is the length of a string value as seen by length constraints.
func RuneCount(s string) int { return utf8.RuneCountInString(s) }

var patternCache sync.Map // string -> *regexp.Regexp

func compilePattern(expr string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, err
	}
	actual, _ := patternCache.LoadOrStore(expr, re)
	return actual.(*regexp.Regexp), nil
}

// literalNumber converts a configured constraint literal into a numeric Value.
// Strings are accepted as exact decimals so bounds such as "0.1" stay exact.
func literalNumber(lit any) (Value, bool) {
	switch t := lit.(type) {
	case int:
		return IntValue(int64(t)), true
	case int8:
		return IntValue(int64(t)), true
	case int16:
		return IntValue(int64(t)), true
	case int32:
		return IntValue(int64(t)), true
	case int64:
		return IntValue(t), true
	case uint:
		return uintLiteral(uint64(t))
	case uint8:
		return IntValue(int64(t)), true
	case uint16:
		return IntValue(int64(t)), true
	case uint32:
		return IntValue(int64(t)), true
	case uint64:
		return uintLiteral(t)
	case float32:
		return FloatValue(float64(t)), true
	case float64:
		return FloatValue(t), true
	case *big.Rat:
		if t == nil {
			return Value{}, false
		}
		return DecimalValue(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IntValue(i), true
		}
		v, err := ParseDecimal(string(t))
		return v, err == nil
	case string:
		v, err := ParseDecimal(t)
		return v, err == nil
	case Value:
		return t, t.IsNumeric()
	default:
		return Value{}, false
	}
}

func uintLiteral(u uint64) (Value, bool) {
	if u <= math.MaxInt64 {
		return IntValue(int64(u)), true
	}
	return DecimalValue(new(big.Rat).SetInt(new(big.Int).SetUint64(u))), true
}

// literalCount converts a configured length literal into a non-negative count.
func literalCount(lit any) (int, bool) {
	v, ok := literalNumber(lit)
	if !ok {
		return 0, false
	}
	switch v.kind {
	case ValueInt:
		if v.i < 0 || v.i > math.MaxInt32 {
			return 0, false
		}
		return int(v.i), true
	case ValueFloat:
		if v.f < 0 || v.f > math.MaxInt32 || v.f != math.Trunc(v.f) {
			return 0, false
		}
		return int(v.f), true
	case ValueDecimal:
		if !v.d.IsInt() || v.d.Sign() < 0 || !v.d.Num().IsInt64() || v.d.Num().Int64() > math.MaxInt32 {
			return 0, false
		}
		return int(v.d.Num().Int64()), true
	default:
		return 0, false
	}
}

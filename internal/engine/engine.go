package engine

import (
	"errors"
	"io"
	"strconv"

	"github.com/reoring/constraint"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Decode reads one value from src and builds a constraint.Value directed by t.
// Numbers take the representation of the declared type, null becomes the absent
// (invalid) Value, and object keys unknown to a record schema are kept untyped.
// A value whose shape differs from t is still decoded; the walker reports it.
func Decode(src TokenSource, t *constraint.FieldType) (constraint.Value, error) {
	tok, err := src.NextToken()
	if err != nil {
		return constraint.Value{}, err
	}
	return decodeValue(src, tok, t)
}

// DecodeRecord is Decode for a top-level record.
func DecodeRecord(src TokenSource, s *constraint.RecordSchema) (constraint.Value, error) {
	return Decode(src, constraint.RecordOf(s))
}

// Number converts a number literal into a Value of the kind declared by t. Float
// fields get a float, saturating to an infinity past the float64 range, and decimal
// fields an exact decimal; anything else gets an integer when the literal is
// integral. Literals that fit neither become an exact decimal.
func Number(lit string, t *constraint.FieldType) (constraint.Value, error) {
	if t != nil {
		switch t.Kind {
		case constraint.KindFloat:
			f, err := strconv.ParseFloat(lit, 64)
			if err == nil || errors.Is(err, strconv.ErrRange) {
				return constraint.FloatValue(f), nil
			}
			return constraint.ParseDecimal(lit)
		case constraint.KindDecimal:
			return constraint.ParseDecimal(lit)
		}
	}
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return constraint.IntValue(i), nil
	}
	return constraint.ParseDecimal(lit)
}

func decodeValue(src TokenSource, tok Token, t *constraint.FieldType) (constraint.Value, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src, recordOf(t))
	case KindBeginArray:
		return decodeArray(src, elemOf(t))
	case KindString:
		return constraint.StringValue(tok.String), nil
	case KindNumber:
		return Number(tok.Number, t)
	case KindBool:
		return constraint.BoolValue(tok.Bool), nil
	case KindNull:
		return constraint.Value{}, nil
	default:
		return constraint.Value{}, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource, s *constraint.RecordSchema) (constraint.Value, error) {
	m := make(map[string]constraint.Value)
	for {
		tok, err := src.NextToken()
		if err != nil {
			return constraint.Value{}, err
		}
		if tok.Kind == KindEndObject {
			return constraint.RecordValue(m), nil
		}
		if tok.Kind != KindKey {
			return constraint.Value{}, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return constraint.Value{}, err
		}
		var ft *constraint.FieldType
		if s != nil {
			if f, ok := s.Lookup(tok.String); ok {
				ft = f.Type
			}
		}
		v, err := decodeValue(src, vt, ft)
		if err != nil {
			return constraint.Value{}, err
		}
		m[tok.String] = v
	}
}

func decodeArray(src TokenSource, elem *constraint.FieldType) (constraint.Value, error) {
	var arr []constraint.Value
	for {
		tok, err := src.NextToken()
		if err != nil {
			return constraint.Value{}, err
		}
		if tok.Kind == KindEndArray {
			return constraint.ArrayValue(arr...), nil
		}
		v, err := decodeValue(src, tok, elem)
		if err != nil {
			return constraint.Value{}, err
		}
		arr = append(arr, v)
	}
}

func recordOf(t *constraint.FieldType) *constraint.RecordSchema {
	if t == nil || t.Kind != constraint.KindRecord {
		return nil
	}
	return t.Record
}

func elemOf(t *constraint.FieldType) *constraint.FieldType {
	if t == nil || t.Kind != constraint.KindArray {
		return nil
	}
	return t.Elem
}

// Package decode builds constraint.Value trees from JSON, YAML or generic Go values,
// typing numbers by the declared schema.
package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"

	"github.com/reoring/constraint"
	eng "github.com/reoring/constraint/internal/engine"
	"github.com/reoring/constraint/source/gojson"
	"github.com/reoring/constraint/source/yamlnode"
)

// DuplicatePolicy selects how repeated object keys are treated.
type DuplicatePolicy int

const (
	// DuplicateError rejects the input.
	DuplicateError DuplicatePolicy = iota
	// DuplicateWarn keeps the last value and reports the key to Options.OnWarning.
	DuplicateWarn
	// DuplicateIgnore keeps the last value silently.
	DuplicateIgnore
)

// ParseDuplicatePolicy parses "error", "warn" or "ignore".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "error":
		return DuplicateError, nil
	case "warn":
		return DuplicateWarn, nil
	case "ignore":
		return DuplicateIgnore, nil
	default:
		return 0, fmt.Errorf("decode: unknown duplicate policy %q", s)
	}
}

// Options controls decoding limits.
type Options struct {
	Duplicates DuplicatePolicy
	// MaxDepth limits container nesting; 0 means unlimited.
	MaxDepth int
	// MaxBytes limits the input size; 0 means unlimited.
	MaxBytes int64
	// OnWarning receives non-fatal input issues such as duplicate keys under DuplicateWarn.
	OnWarning func(constraint.Issue)
}

// ErrTrailingData is returned when input continues after the top-level value.
var ErrTrailingData = errors.New("decode: trailing data after top-level value")

// JSON decodes a JSON object against s. Input limit violations are returned as
// constraint.Issues.
func JSON(data []byte, s *constraint.RecordSchema, opts Options) (constraint.Value, error) {
	if err := opts.checkSize(int64(len(data))); err != nil {
		return constraint.Value{}, err
	}
	return decode(gojson.NewBytes(data), s, opts)
}

// JSONReader is JSON for a stream. MaxBytes is enforced while reading.
func JSONReader(r io.Reader, s *constraint.RecordSchema, opts Options) (constraint.Value, error) {
	return decode(gojson.NewReader(r), s, opts)
}

// YAML decodes the first document of data against s.
func YAML(data []byte, s *constraint.RecordSchema, opts Options) (constraint.Value, error) {
	if err := opts.checkSize(int64(len(data))); err != nil {
		return constraint.Value{}, err
	}
	src, err := yamlnode.NewBytes(data)
	if err != nil {
		return constraint.Value{}, fmt.Errorf("decode: %w", err)
	}
	return decode(src, s, opts)
}

func decode(src eng.TokenSource, s *constraint.RecordSchema, opts Options) (constraint.Value, error) {
	if s == nil {
		return constraint.Value{}, constraint.ErrNilSchema
	}
	src = eng.WrapWithEnforcement(src, opts.enforce())
	v, err := eng.DecodeRecord(src, s)
	if err != nil {
		return constraint.Value{}, convert(err)
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err != nil {
			return constraint.Value{}, convert(err)
		}
		return constraint.Value{}, ErrTrailingData
	}
	return v, nil
}

func (o Options) enforce() eng.EnforceOptions {
	e := eng.EnforceOptions{MaxDepth: o.MaxDepth, MaxBytes: o.MaxBytes}
	switch o.Duplicates {
	case DuplicateWarn:
		e.OnDuplicate = eng.DupWarn
		e.IssueSink = func(si eng.SimpleIssue) {
			if si.Code == eng.CodeDuplicateKey && o.OnWarning != nil {
				o.OnWarning(issue(si))
			}
		}
	case DuplicateIgnore:
		e.OnDuplicate = eng.DupIgnore
	default:
		e.OnDuplicate = eng.DupError
	}
	return e
}

func (o Options) checkSize(n int64) error {
	if o.MaxBytes > 0 && n > o.MaxBytes {
		return constraint.Issues{{Path: "/", Code: eng.CodeMaxBytes, Message: "max bytes exceeded"}}
	}
	return nil
}

func issue(si eng.SimpleIssue) constraint.Issue {
	return constraint.Issue{Path: si.Path, Code: si.Code, Message: si.Message}
}

func convert(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return constraint.Issues{issue(ie.SimpleIssue)}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("decode: unexpected end of input: %w", io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("decode: %w", err)
}

// FromAny converts a generic Go value (as produced by encoding/json, yaml.v3 or
// mapstructure) into a Value typed by t. nil becomes the absent Value.
func FromAny(v any, t *constraint.FieldType) (constraint.Value, error) {
	return fromAny(v, t, constraint.Root())
}

// RecordFromAny is FromAny for a top-level record.
func RecordFromAny(v any, s *constraint.RecordSchema) (constraint.Value, error) {
	if s == nil {
		return constraint.Value{}, constraint.ErrNilSchema
	}
	return fromAny(v, constraint.RecordOf(s), constraint.Root())
}

func fromAny(v any, t *constraint.FieldType, p constraint.PathRef) (constraint.Value, error) {
	switch x := v.(type) {
	case nil:
		return constraint.Value{}, nil
	case constraint.Value:
		return x, nil
	case bool:
		return constraint.BoolValue(x), nil
	case string:
		return constraint.StringValue(x), nil
	case int:
		return eng.Number(strconv.Itoa(x), t)
	case int32:
		return eng.Number(strconv.FormatInt(int64(x), 10), t)
	case int64:
		return eng.Number(strconv.FormatInt(x, 10), t)
	case uint64:
		return eng.Number(strconv.FormatUint(x, 10), t)
	case float32:
		return fromFloat(float64(x), t)
	case float64:
		return fromFloat(x, t)
	case json.Number:
		return eng.Number(string(x), t)
	case *big.Rat:
		return constraint.DecimalValue(x), nil
	case []any:
		var elem *constraint.FieldType
		if t != nil && t.Kind == constraint.KindArray {
			elem = t.Elem
		}
		out := make([]constraint.Value, len(x))
		for i, e := range x {
			ev, err := fromAny(e, elem, p.Index(i))
			if err != nil {
				return constraint.Value{}, err
			}
			out[i] = ev
		}
		return constraint.ArrayValue(out...), nil
	case map[string]any:
		return fromMap(x, t, p)
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			ks, ok := k.(string)
			if !ok {
				return constraint.Value{}, fmt.Errorf("decode: non-string key %v at %s", k, p.Pointer())
			}
			m[ks] = e
		}
		return fromMap(m, t, p)
	default:
		return constraint.Value{}, fmt.Errorf("decode: unsupported %T at %s", v, p.Pointer())
	}
}

func fromMap(m map[string]any, t *constraint.FieldType, p constraint.PathRef) (constraint.Value, error) {
	var s *constraint.RecordSchema
	if t != nil && t.Kind == constraint.KindRecord {
		s = t.Record
	}
	out := make(map[string]constraint.Value, len(m))
	for k, e := range m {
		var ft *constraint.FieldType
		if s != nil {
			if f, ok := s.Lookup(k); ok {
				ft = f.Type
			}
		}
		ev, err := fromAny(e, ft, p.Field(k))
		if err != nil {
			return constraint.Value{}, err
		}
		out[k] = ev
	}
	return constraint.RecordValue(out), nil
}

// fromFloat keeps float fields binary and gives every other declared kind the
// shortest decimal that round-trips the float.
func fromFloat(f float64, t *constraint.FieldType) (constraint.Value, error) {
	if t != nil && t.Kind == constraint.KindFloat {
		return constraint.FloatValue(f), nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return constraint.FloatValue(f), nil
	}
	return eng.Number(strconv.FormatFloat(f, 'g', -1, 64), t)
}

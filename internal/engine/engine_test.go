package engine_test

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/constraint"
	eng "github.com/reoring/constraint/internal/engine"
)

type sliceSource struct {
	toks []eng.Token
	pos  int
}

func (s *sliceSource) NextToken() (eng.Token, error) {
	if s.pos >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.pos) }

func obj(members ...eng.Token) []eng.Token {
	out := []eng.Token{{Kind: eng.KindBeginObject}}
	out = append(out, members...)
	return append(out, eng.Token{Kind: eng.KindEndObject})
}

func key(k string) eng.Token { return eng.Token{Kind: eng.KindKey, String: k} }
func num(n string) eng.Token { return eng.Token{Kind: eng.KindNumber, Number: n} }
func str(v string) eng.Token { return eng.Token{Kind: eng.KindString, String: v} }
func null() eng.Token        { return eng.Token{Kind: eng.KindNull} }
func arr(el ...eng.Token) []eng.Token {
	out := []eng.Token{{Kind: eng.KindBeginArray}}
	out = append(out, el...)
	return append(out, eng.Token{Kind: eng.KindEndArray})
}

func concat(parts ...[]eng.Token) []eng.Token {
	var out []eng.Token
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestDecodeRecord_TypesNumbersBySchema(t *testing.T) {
	s := constraint.NewRecord("R").
		Field("i", constraint.Integer(), nil).
		Field("f", constraint.Float(), nil).
		Field("d", constraint.Decimal(), nil).
		Field("xs", constraint.ArrayOf(constraint.Decimal()), nil)

	toks := concat(
		[]eng.Token{{Kind: eng.KindBeginObject}, key("i"), num("3"), key("f"), num("3"), key("d"), num("0.10"), key("xs")},
		arr(num("1"), num("2.5")),
		[]eng.Token{key("extra"), num("1.5"), key("gone"), null(), {Kind: eng.KindEndObject}},
	)
	v, err := eng.DecodeRecord(&sliceSource{toks: toks}, s)
	require.NoError(t, err)

	i, _ := v.Get("i")
	assert.Equal(t, constraint.ValueInt, i.Kind())
	f, _ := v.Get("f")
	assert.Equal(t, constraint.ValueFloat, f.Kind())
	d, _ := v.Get("d")
	assert.Equal(t, "0.1", d.String())
	xs, _ := v.Get("xs")
	assert.Equal(t, constraint.ValueDecimal, xs.Index(0).Kind())
	extra, _ := v.Get("extra")
	assert.Equal(t, constraint.ValueDecimal, extra.Kind())
	_, ok := v.Get("gone")
	assert.False(t, ok, "null is absent")
}

func TestDecode_IntegerFieldKeepsNonIntegralLiteral(t *testing.T) {
	s := constraint.NewRecord("R").Field("n", constraint.Integer(), nil)
	v, err := eng.DecodeRecord(&sliceSource{toks: obj(key("n"), num("1.5"))}, s)
	require.NoError(t, err)
	n, _ := v.Get("n")
	assert.Equal(t, constraint.ValueDecimal, n.Kind())

	res := constraint.Validate(v, s)
	assert.Equal(t, []string{constraint.CodeInvalidType}, res.Constraints())
}

func TestDecode_OverflowingFloatIsBoundChecked(t *testing.T) {
	s := constraint.NewRecord("R").Field("x", constraint.Float(), constraint.ConstraintSpec{constraint.MaxValue: 10})
	v, err := eng.DecodeRecord(&sliceSource{toks: obj(key("x"), num("1e400"))}, s)
	require.NoError(t, err)

	res := constraint.Validate(v, s)
	assert.Equal(t, []string{constraint.MaxValue}, res.Constraints())
}

func TestDecode_SelfReferentialSchema(t *testing.T) {
	node := constraint.NewRecord("Node")
	node.Field("v", constraint.Float(), nil).OptionalField("next", constraint.RecordOf(node), nil)
	toks := obj(key("v"), num("1"), key("next"))
	toks = concat(toks[:len(toks)-1], obj(key("v"), num("2")), []eng.Token{{Kind: eng.KindEndObject}})

	v, err := eng.DecodeRecord(&sliceSource{toks: toks}, node)
	require.NoError(t, err)
	next, ok := v.Get("next")
	require.True(t, ok)
	inner, _ := next.Get("v")
	assert.Equal(t, constraint.ValueFloat, inner.Kind())
}

func TestDecode_Truncated(t *testing.T) {
	_, err := eng.Decode(&sliceSource{toks: []eng.Token{{Kind: eng.KindBeginObject}, key("a")}}, nil)
	assert.ErrorIs(t, err, io.EOF)

	_, err = eng.Decode(&sliceSource{toks: []eng.Token{{Kind: eng.KindBeginObject}, str("a")}}, nil)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestNumber(t *testing.T) {
	v, err := eng.Number("12", nil)
	require.NoError(t, err)
	assert.Equal(t, constraint.ValueInt, v.Kind())

	v, err = eng.Number("99999999999999999999", constraint.Integer())
	require.NoError(t, err)
	assert.Equal(t, constraint.ValueDecimal, v.Kind())

	v, err = eng.Number("1e400", constraint.Float())
	require.NoError(t, err)
	f, ok := v.Float()
	require.True(t, ok)
	assert.True(t, math.IsInf(f, 1))

	v, err = eng.Number("-1e400", constraint.Float())
	require.NoError(t, err)
	f, _ = v.Float()
	assert.True(t, math.IsInf(f, -1))

	v, err = eng.Number("1e400", constraint.Decimal())
	require.NoError(t, err)
	assert.Equal(t, constraint.ValueDecimal, v.Kind(), "decimals stay exact")

	_, err = eng.Number("abc", nil)
	assert.Error(t, err)
}

func TestEnforcement_DuplicateKeys(t *testing.T) {
	toks := concat(
		[]eng.Token{{Kind: eng.KindBeginObject}, key("a")},
		obj(key("x"), num("1"), key("x"), num("2")),
		[]eng.Token{{Kind: eng.KindEndObject}},
	)

	var seen []eng.SimpleIssue
	src := eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{
		OnDuplicate: eng.DupWarn,
		IssueSink:   func(si eng.SimpleIssue) { seen = append(seen, si) },
	})
	_, err := eng.Decode(src, nil)
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, eng.CodeDuplicateKey, seen[0].Code)
	assert.Equal(t, "/a/x", seen[0].Path)

	src = eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{OnDuplicate: eng.DupError})
	_, err = eng.Decode(src, nil)
	var ie eng.IssueError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "/a/x", ie.Path)

	src = eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{})
	_, err = eng.Decode(src, nil)
	assert.NoError(t, err)
}

func TestEnforcement_MaxDepth(t *testing.T) {
	toks := concat(
		[]eng.Token{{Kind: eng.KindBeginObject}, key("a")},
		arr(num("1")),
		[]eng.Token{key("b")},
		arr(arr()...),
		[]eng.Token{{Kind: eng.KindEndObject}},
	)
	src := eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{MaxDepth: 2})
	_, err := eng.Decode(src, nil)
	var ie eng.IssueError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, eng.CodeMaxDepth, ie.Code)
	assert.Equal(t, "/b/0", ie.Path)

	src = eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{MaxDepth: 3})
	_, err = eng.Decode(src, nil)
	assert.NoError(t, err)
}

func TestEnforcement_MaxBytes(t *testing.T) {
	src := eng.WrapWithEnforcement(&sliceSource{toks: obj(key("a"), num("1"), key("b"), num("2"))}, eng.EnforceOptions{MaxBytes: 3})
	_, err := eng.Decode(src, nil)
	var ie eng.IssueError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, eng.CodeMaxBytes, ie.Code)
}

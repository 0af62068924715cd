package decode_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reoring/constraint"
	"github.com/reoring/constraint/decode"
)

func person() *constraint.RecordSchema {
	return constraint.NewRecord("Person").
		Field("age", constraint.Integer(), constraint.ConstraintSpec{constraint.MinValue: 0, constraint.MaxValue: 150}).
		OptionalField("balance", constraint.Decimal(), constraint.ConstraintSpec{constraint.MaxValue: "0.3"}).
		OptionalField("tags", constraint.ArrayOf(constraint.String()), constraint.ConstraintSpec{constraint.MaxLength: 2})
}

func TestJSON(t *testing.T) {
	s := person()
	v, err := decode.JSON([]byte(`{"age": 30, "balance": 0.30000000000000000001, "tags": ["a","b","c"]}`), s, decode.Options{})
	require.NoError(t, err)
	res := constraint.Validate(v, s)
	assert.Equal(t, []string{constraint.MaxLength, constraint.MaxValue}, res.Constraints())
	assert.Len(t, res.At("/balance"), 1)
}

func TestJSON_DuplicateKeys(t *testing.T) {
	data := []byte(`{"age": 1, "age": 2}`)

	_, err := decode.JSON(data, person(), decode.Options{})
	iss, ok := constraint.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "duplicate_key", iss[0].Code)
	assert.Equal(t, "/age", iss[0].Path)

	var warned []constraint.Issue
	v, err := decode.JSON(data, person(), decode.Options{
		Duplicates: decode.DuplicateWarn,
		OnWarning:  func(it constraint.Issue) { warned = append(warned, it) },
	})
	require.NoError(t, err)
	require.Len(t, warned, 1)
	age, _ := v.Get("age")
	n, _ := age.Int()
	assert.Equal(t, int64(2), n, "last value wins")

	_, err = decode.JSON(data, person(), decode.Options{Duplicates: decode.DuplicateIgnore})
	assert.NoError(t, err)
}

func TestJSON_Limits(t *testing.T) {
	s := constraint.NewRecord("R").OptionalField("a", constraint.ArrayOf(constraint.ArrayOf(constraint.Integer())), nil)
	_, err := decode.JSON([]byte(`{"a": [[1]]}`), s, decode.Options{MaxDepth: 2})
	iss, ok := constraint.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "max_depth", iss[0].Code)
	assert.Equal(t, "/a/0", iss[0].Path)

	_, err = decode.JSON([]byte(`{"a": []}`), s, decode.Options{MaxBytes: 4})
	iss, ok = constraint.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "max_bytes", iss[0].Code)
}

func TestJSON_Malformed(t *testing.T) {
	s := person()
	_, err := decode.JSON([]byte(`{"age": 1`), s, decode.Options{})
	assert.Error(t, err)
	_, err = decode.JSON(nil, s, decode.Options{})
	assert.Error(t, err)
	_, err = decode.JSON([]byte(`{} {}`), s, decode.Options{})
	assert.ErrorIs(t, err, decode.ErrTrailingData)
	_, err = decode.JSON([]byte(`{}`), nil, decode.Options{})
	assert.ErrorIs(t, err, constraint.ErrNilSchema)
}

func TestJSONReader(t *testing.T) {
	s := person()
	v, err := decode.JSONReader(strings.NewReader(`{"age": -1}`), s, decode.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{constraint.MinValue}, constraint.Validate(v, s).Constraints())
}

func TestYAML(t *testing.T) {
	s := person()
	v, err := decode.YAML([]byte("age: 200\nbalance: 0.25\ntags: [x]\n---\nage: 1\n"), s, decode.Options{})
	require.NoError(t, err)
	res := constraint.Validate(v, s)
	assert.Equal(t, []string{constraint.MaxValue}, res.Constraints())
	assert.Equal(t, "/age", res.Issues[0].Path)

	_, err = decode.YAML([]byte("age: 1\nage: 2\n"), s, decode.Options{})
	iss, ok := constraint.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "duplicate_key", iss[0].Code)

	_, err = decode.YAML([]byte("age: [1"), s, decode.Options{})
	assert.Error(t, err)
}

func TestFromAny(t *testing.T) {
	s := person()
	var raw any
	require.NoError(t, json.Unmarshal([]byte(`{"age": 151, "balance": 0.1, "tags": ["a"]}`), &raw))
	v, err := decode.RecordFromAny(raw, s)
	require.NoError(t, err)
	age, _ := v.Get("age")
	assert.Equal(t, constraint.ValueInt, age.Kind(), "integral floats become ints for int fields")
	bal, _ := v.Get("balance")
	assert.Equal(t, "0.1", bal.String(), "floats become their shortest decimal")
	assert.Equal(t, []string{constraint.MaxValue}, constraint.Validate(v, s).Constraints())

	var y any
	require.NoError(t, yaml.Unmarshal([]byte("age: 3\ntags: [a, b]\n"), &y))
	v, err = decode.RecordFromAny(y, s)
	require.NoError(t, err)
	assert.True(t, constraint.Validate(v, s).Valid())

	_, err = decode.FromAny(map[string]any{"x": struct{}{}}, nil)
	assert.ErrorContains(t, err, "/x")

	f, err := decode.FromAny(2, constraint.Float())
	require.NoError(t, err)
	assert.Equal(t, constraint.ValueFloat, f.Kind())
}

func TestParseDuplicatePolicy(t *testing.T) {
	p, err := decode.ParseDuplicatePolicy("warn")
	require.NoError(t, err)
	assert.Equal(t, decode.DuplicateWarn, p)
	_, err = decode.ParseDuplicatePolicy("explode")
	assert.Error(t, err)
}

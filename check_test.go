package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	c "github.com/reoring/constraint"
)

func TestCheck_InclusiveAndExclusiveBoundRejected(t *testing.T) {
	for _, extra := range []c.ConstraintSpec{
		{},
		{c.MaxValue: 10},
		{c.MaxValueExclusive: 10},
	} {
		spec := c.ConstraintSpec{c.MinValue: 0, c.MinValueExclusive: 0}
		for k, v := range extra {
			spec[k] = v
		}
		s := c.NewRecord("R").Field("n", c.Integer(), spec)
		diags := c.Check(s)
		assert.Contains(t, diags.Codes(), c.CodeExclusiveConstraints, "spec %v", spec)
	}

	s := c.NewRecord("R").Field("n", c.Float(), c.ConstraintSpec{c.MaxValue: 1, c.MaxValueExclusive: 2})
	assert.Equal(t, []string{c.CodeExclusiveConstraints}, c.Check(s).Codes())
}

func TestCheck_NumberConstraintOnStringRejected(t *testing.T) {
	s := c.NewRecord("R").Field("name", c.String(), c.ConstraintSpec{c.MinValue: 1})
	diags := c.Check(s)
	require.Len(t, diags, 1)
	assert.Equal(t, c.CodeIncompatibleType, diags[0].Code)
	assert.Equal(t, c.MinValue, diags[0].Constraint)
	assert.Equal(t, "/name", diags[0].Path)
	assert.Equal(t, "R", diags[0].Schema)
	assert.Contains(t, diags[0].Message, "string")
}

func TestCheck_ConstraintsOnRecordOrUnionInapplicable(t *testing.T) {
	inner := c.NewRecord("Inner")
	s := c.NewRecord("R").
		Field("inner", c.RecordOf(inner), c.ConstraintSpec{c.MinLength: 1}).
		Field("either", c.UnionOf(c.Integer(), c.String()), c.ConstraintSpec{c.MinValue: 1})
	assert.Equal(t, []string{c.CodeInapplicable, c.CodeInapplicable}, c.Check(s).Codes())
}

func TestCheck_LiteralsAndUnknownNames(t *testing.T) {
	s := c.NewRecord("R").
		Field("a", c.String(), c.ConstraintSpec{c.MinLength: -1}).
		Field("b", c.String(), c.ConstraintSpec{c.Pattern: "("}).
		Field("c", c.Integer(), c.ConstraintSpec{c.MinValue: "ten"}).
		Field("d", c.Boolean(), c.ConstraintSpec{c.Const: "yes"}).
		Field("e", c.Integer(), c.ConstraintSpec{"multipleOf": 2}).
		Field("f", c.ArrayOf(c.Integer()), c.ConstraintSpec{c.MaxLength: 1.5})

	diags := c.Check(s)
	assert.Equal(t, []string{
		c.CodeInvalidLiteral,
		c.CodeInvalidLiteral,
		c.CodeInvalidLiteral,
		c.CodeInvalidLiteral,
		c.CodeUnknownConstraint,
		c.CodeInvalidLiteral,
	}, diags.Codes())
	assert.Equal(t, "/e", diags[4].Path)
	assert.Equal(t, "multipleOf", diags[4].Constraint)
}

func TestCheck_EmptyRange(t *testing.T) {
	s := c.NewRecord("R").
		Field("n", c.Integer(), c.ConstraintSpec{c.MinValue: 10, c.MaxValue: 5}).
		Field("x", c.Float(), c.ConstraintSpec{c.MinValueExclusive: 1, c.MaxValue: 1}).
		Field("ok", c.Float(), c.ConstraintSpec{c.MinValue: 1, c.MaxValue: 1}).
		Field("s", c.String(), c.ConstraintSpec{c.MinLength: 3, c.MaxLength: 2})
	diags := c.Check(s)
	require.Len(t, diags, 3)
	assert.Equal(t, "/n", diags[0].Path)
	assert.Equal(t, "/x", diags[1].Path)
	assert.Equal(t, "/s", diags[2].Path)
}

func TestCheck_LengthWithRangeAccepted(t *testing.T) {
	s := c.NewRecord("R").
		Field("code", c.String(), c.ConstraintSpec{c.Length: 3, c.MaxLength: 5}).
		Field("tags", c.ArrayOf(c.String()), c.ConstraintSpec{c.Length: 2, c.MinLength: 1})
	assert.Empty(t, c.Check(s))

	res := c.Validate(c.RecordValue(rec{
		"code": c.StringValue("abcd"),
		"tags": c.ArrayValue(c.StringValue("x")),
	}), s)
	assert.Equal(t, []string{c.Length}, res.Constraints())
	assert.Len(t, res.Issues, 2)
}

func TestCheck_CollectsEveryDiagnosticInOrder(t *testing.T) {
	s := c.NewRecord("R").
		Field("a", c.String(), c.ConstraintSpec{c.MinValue: 1}).
		Field("b", c.Integer(), c.ConstraintSpec{c.MinValue: 1, c.MinValueExclusive: 0}).
		Field("c", c.Boolean(), c.ConstraintSpec{c.Const: true}).
		Field("d", c.ArrayOf(c.String()), c.ConstraintSpec{c.Pattern: "x"})
	diags := c.Check(s)
	assert.Equal(t, []string{c.CodeIncompatibleType, c.CodeExclusiveConstraints, c.CodeIncompatibleType}, diags.Codes())
	assert.Equal(t, []string{"/a", "/b", "/d"}, []string{diags[0].Path, diags[1].Path, diags[2].Path})
}

func TestCheck_SelfReferentialSchemaTerminates(t *testing.T) {
	node := c.NewRecord("Node")
	node.Field("value", c.Integer(), c.ConstraintSpec{c.MinValue: 0}).
		OptionalField("children", c.ArrayOf(c.RecordOf(node)), c.ConstraintSpec{c.MaxLength: 3}).
		OptionalField("parent", c.RecordOf(node), nil)
	assert.Empty(t, c.Check(node))

	bad := c.NewRecord("Bad")
	bad.Field("label", c.String(), c.ConstraintSpec{c.MaxValue: 1}).
		OptionalField("next", c.RecordOf(bad), nil).
		OptionalField("all", c.ArrayOf(c.RecordOf(bad)), nil)
	diags := c.Check(bad)
	require.Len(t, diags, 1, "each schema node is visited once")
	assert.Equal(t, "/label", diags[0].Path)
}

func TestCheck_MutuallyRecursiveSchemas(t *testing.T) {
	a := c.NewRecord("A")
	b := c.NewRecord("B")
	a.OptionalField("b", c.RecordOf(b), nil).Field("n", c.Integer(), c.ConstraintSpec{c.MinLength: 1})
	b.OptionalField("a", c.RecordOf(a), nil).Field("s", c.String(), c.ConstraintSpec{c.MinValue: 1})
	diags := c.Check(a)
	require.Len(t, diags, 2)
	assert.Equal(t, "B", diags[0].Schema)
	assert.Equal(t, "/b/s", diags[0].Path)
	assert.Equal(t, "A", diags[1].Schema)
	assert.Equal(t, "/n", diags[1].Path)
}

func TestCheck_TypeLevelConstraintsOnElements(t *testing.T) {
	age := c.Integer().Named("Age", c.ConstraintSpec{c.MinValue: "x"})
	s := c.NewRecord("R").Field("ages", c.ArrayOf(age), nil)
	diags := c.Check(s)
	require.Len(t, diags, 1)
	assert.Equal(t, "/ages/*", diags[0].Path)
	assert.Equal(t, "Age", diags[0].Schema)
	assert.Equal(t, c.CodeInvalidLiteral, diags[0].Code)
}

func TestCheck_AliasReportsBaseOnce(t *testing.T) {
	age := c.Integer().Named("Age", c.ConstraintSpec{c.MinValue: "x"})
	s := c.NewRecord("R").
		Field("a", age.Named("Years", nil), nil).
		Field("b", age.Named("Adult", c.ConstraintSpec{c.MaxValue: 150}), nil)
	diags := c.Check(s)
	require.Len(t, diags, 1)
	assert.Equal(t, "Age", diags[0].Schema)
	assert.Equal(t, "/a", diags[0].Path)
	assert.Equal(t, c.CodeInvalidLiteral, diags[0].Code)
}

func TestCheckTypeAndField(t *testing.T) {
	assert.Empty(t, c.CheckType(c.String().Named("Code", c.ConstraintSpec{c.Length: 4})))
	assert.Equal(t, []string{c.CodeIncompatibleType},
		c.CheckType(c.Boolean().Named("Flag", c.ConstraintSpec{c.MinLength: 1})).Codes())

	diags := c.CheckField(c.Field{Name: "tags", Type: c.ArrayOf(c.String()), Constraints: c.ConstraintSpec{c.MinLength: -2}})
	require.Len(t, diags, 1)
	assert.Equal(t, "/tags", diags[0].Path)
}

func TestDiagnostics_Error(t *testing.T) {
	s := c.NewRecord("R").Field("a", c.String(), c.ConstraintSpec{c.MinValue: 1})
	err := error(c.Check(s))
	ds, ok := c.AsDiagnostics(err)
	require.True(t, ok)
	assert.Len(t, ds, 1)
	assert.Contains(t, err.Error(), "incompatible_type at /a (minValue)")
}

package metrics_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	c "github.com/reoring/constraint"
	"github.com/reoring/constraint/metrics"
)

func TestObserver_CountsValidatorEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := metrics.New(reg)
	require.NoError(t, err)

	s := c.NewRecord("Person").Field("age", c.Integer(), c.ConstraintSpec{c.MinValue: 0, c.MaxValue: 150})
	v := c.New(c.WithObserver(obs))
	ctx := context.Background()
	for _, age := range []int64{30, -1, 200} {
		_, err := v.Validate(ctx, c.RecordValue(map[string]c.Value{"age": c.IntValue(age)}), s)
		require.NoError(t, err)
	}

	bad := c.NewRecord("Bad").Field("n", c.String(), c.ConstraintSpec{c.MinValue: 1})
	_, err = v.Validate(ctx, c.RecordValue(nil), bad)
	require.Error(t, err)

	assert.Equal(t, 3, testutil.CollectAndCount(reg, "constraint_schema_checks_total"))
	m := `
# HELP constraint_validations_total Runtime validations by outcome.
# TYPE constraint_validations_total counter
constraint_validations_total{outcome="invalid",schema="Person"} 2
constraint_validations_total{outcome="valid",schema="Person"} 1
# HELP constraint_violations_total Violated constraints by code.
# TYPE constraint_violations_total counter
constraint_violations_total{code="maxValue",schema="Person"} 1
constraint_violations_total{code="minValue",schema="Person"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(m),
		"constraint_validations_total", "constraint_violations_total"))
}

func TestObserver_CheckOutcomes(t *testing.T) {
	obs, err := metrics.New(nil)
	require.NoError(t, err)
	obs.SchemaChecked("A", nil, false)
	obs.SchemaChecked("A", nil, true)
	obs.SchemaChecked("B", c.Diagnostics{{Code: c.CodeIncompatibleType}}, false)
	obs.ValueValidated("A", c.Result{Unsupported: []string{"/u"}}, 0)

	var buf bytes.Buffer
	require.NoError(t, obs.Write(&buf))
	out := buf.String()
	assert.Contains(t, out, `constraint_schema_checks_total{cached="true",outcome="ok",schema="A"} 1`)
	assert.Contains(t, out, `constraint_schema_checks_total{cached="false",outcome="rejected",schema="B"} 1`)
	assert.Contains(t, out, `constraint_validations_total{outcome="unsupported",schema="A"} 1`)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)
	_, err = metrics.New(reg)
	assert.Error(t, err)
}

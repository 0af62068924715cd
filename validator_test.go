package constraint_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	c "github.com/reoring/constraint"
)

type recordingObserver struct {
	mu        sync.Mutex
	checked   []bool
	validated int
}

func (o *recordingObserver) SchemaChecked(_ string, _ c.Diagnostics, cached bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.checked = append(o.checked, cached)
}

func (o *recordingObserver) ValueValidated(string, c.Result, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.validated++
}

func TestValidator_RejectsBadSchema(t *testing.T) {
	s := c.NewRecord("Bad").Field("name", c.String(), c.ConstraintSpec{c.MinValue: 1})
	v := c.New()

	_, err := v.Validate(context.Background(), c.RecordValue(rec{"name": c.StringValue("x")}), s)
	require.Error(t, err)
	var se *c.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Bad", se.Schema)
	assert.Equal(t, []string{c.CodeIncompatibleType}, se.Diagnostics.Codes())

	ds, ok := c.AsDiagnostics(err)
	assert.True(t, ok)
	assert.Len(t, ds, 1)
}

func TestValidator_NilSchema(t *testing.T) {
	_, err := c.New().Validate(context.Background(), c.RecordValue(nil), nil)
	assert.ErrorIs(t, err, c.ErrNilSchema)
}

func TestValidator_CachesCheck(t *testing.T) {
	obs := &recordingObserver{}
	s := c.NewRecord("R").Field("n", c.Integer(), c.ConstraintSpec{c.MinValue: 0})
	v := c.New(c.WithObserver(obs))

	assert.Empty(t, v.Check(s))
	res, err := v.Validate(context.Background(), c.RecordValue(rec{"n": c.IntValue(-1)}), s)
	require.NoError(t, err)
	assert.Equal(t, []string{c.MinValue}, res.Constraints())

	v.Forget(s)
	v.Check(s)
	assert.Equal(t, []bool{false, true, false}, obs.checked)
	assert.Equal(t, 1, obs.validated)
}

func TestValidator_ConcurrentUse(t *testing.T) {
	obs := &recordingObserver{}
	s := c.NewRecord("R").Field("n", c.Integer(), c.ConstraintSpec{c.MaxValue: 10})
	v := c.New(c.WithObserver(obs))

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			res, err := v.Validate(context.Background(), c.RecordValue(rec{"n": c.IntValue(n)}), s)
			if err != nil {
				errs <- err
				return
			}
			if res.Valid() != (n <= 10) {
				errs <- errors.New("unexpected result")
			}
		}(int64(i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	fresh := 0
	for _, cached := range obs.checked {
		if !cached {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh, "the schema is checked once")
	assert.Equal(t, 32, obs.validated)
}

func TestValidator_UnionWarnLogs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	inner := c.NewRecord("Inner").Field("n", c.Integer(), c.ConstraintSpec{c.MinValue: 0})
	s := c.NewRecord("R").Field("either", c.UnionOf(c.RecordOf(inner), c.String()), nil)
	val := c.RecordValue(rec{"either": c.StringValue("x")})

	res, err := c.New(c.WithLogger(log), c.WithUnionPolicy(c.UnionWarn)).Validate(context.Background(), val, s)
	require.NoError(t, err)
	assert.True(t, res.Valid())
	assert.Contains(t, buf.String(), "union value not validated")
	assert.Contains(t, buf.String(), "path=/either")

	res, err = c.New().Validate(context.Background(), val, s)
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err(), c.ErrUnsupported)
}

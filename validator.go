package constraint

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reoring/constraint/internal/logging"
)

// Observer receives validation events; the metrics package provides a Prometheus
// implementation. Implementations must be safe for concurrent use.
type Observer interface {
	// SchemaChecked is called once per static check lookup; cached is true when the
	// result came from the cache.
	SchemaChecked(schema string, diags Diagnostics, cached bool)
	// ValueValidated is called after every runtime walk.
	ValueValidated(schema string, res Result, elapsed time.Duration)
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.log = l
		}
	}
}

// WithUnionPolicy sets how union-typed values are handled (default UnionUnsupported).
func WithUnionPolicy(p UnionPolicy) Option { return func(v *Validator) { v.union = p } }

// WithObserver registers an event observer.
func WithObserver(o Observer) Option { return func(v *Validator) { v.obs = o } }

// Validator gates runtime validation on the static check of each schema and caches
// the check per schema identity. It is safe for concurrent use.
type Validator struct {
	log   *slog.Logger
	union UnionPolicy
	obs   Observer
	cache sync.Map // *RecordSchema -> *checkEntry
}

type checkEntry struct {
	once  sync.Once
	diags Diagnostics
}

// New returns a Validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{log: logging.NewNop()}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Check returns the static diagnostics for s, computing them at most once per schema.
func (v *Validator) Check(s *RecordSchema) Diagnostics {
	if s == nil {
		return nil
	}
	e, _ := v.cache.LoadOrStore(s, &checkEntry{})
	entry := e.(*checkEntry)
	cached := true
	entry.once.Do(func() {
		cached = false
		entry.diags = Check(s)
		v.log.Debug("schema checked", "schema", s.Name, "diagnostics", len(entry.diags))
		for _, d := range entry.diags {
			v.log.Debug("schema diagnostic", "schema", s.Name, "path", d.Path, "code", d.Code, "constraint", d.Constraint)
		}
	})
	if v.obs != nil {
		v.obs.SchemaChecked(s.Name, entry.diags, cached)
	}
	return entry.diags
}

// Validate checks s (cached) and walks val against it. A schema with diagnostics is
// never walked; a *SchemaError is returned instead. Violations are data in Result.
func (v *Validator) Validate(ctx context.Context, val Value, s *RecordSchema) (Result, error) {
	if s == nil {
		return Result{}, ErrNilSchema
	}
	if diags := v.Check(s); len(diags) > 0 {
		return Result{}, &SchemaError{Schema: s.Name, Diagnostics: diags}
	}
	start := time.Now()
	res := Validate(val, s, WithUnion(v.union), OnUnionSkipped(func(path string) {
		v.log.WarnContext(ctx, "union value not validated", "schema", s.Name, "path", path)
	}))
	if len(res.Issues) > 0 || len(res.Unsupported) > 0 {
		v.log.DebugContext(ctx, "value rejected",
			"schema", s.Name,
			"issues", len(res.Issues),
			"unsupported", len(res.Unsupported),
		)
	}
	if v.obs != nil {
		v.obs.ValueValidated(s.Name, res, time.Since(start))
	}
	return res, nil
}

// Forget drops the cached check for s, e.g. after a schema was reloaded.
func (v *Validator) Forget(s *RecordSchema) { v.cache.Delete(s) }

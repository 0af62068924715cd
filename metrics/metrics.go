// Package metrics exposes validation events as Prometheus metrics.
package metrics

import (
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/reoring/constraint"
)

// Observer implements constraint.Observer with Prometheus collectors.
type Observer struct {
	checks      *prometheus.CounterVec
	validations *prometheus.CounterVec
	violations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	gatherer    prometheus.Gatherer
}

var _ constraint.Observer = (*Observer)(nil)

// New registers the collectors with reg. A nil reg uses a private registry, which
// Write can still dump.
func New(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "constraint_schema_checks_total",
			Help: "Static schema checks by outcome and cache use.",
		}, []string{"schema", "outcome", "cached"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "constraint_validations_total",
			Help: "Runtime validations by outcome.",
		}, []string{"schema", "outcome"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "constraint_violations_total",
			Help: "Violated constraints by code.",
		}, []string{"schema", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "constraint_validation_duration_seconds",
			Help:    "Duration of runtime validation walks.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"schema"}),
	}
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, o.gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		o.gatherer = g
	}
	for _, c := range []prometheus.Collector{o.checks, o.validations, o.violations, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// SchemaChecked counts one schema check by outcome and whether the verdict was cached.
func (o *Observer) SchemaChecked(schema string, diags constraint.Diagnostics, cached bool) {
	outcome := "ok"
	if len(diags) > 0 {
		outcome = "rejected"
	}
	o.checks.WithLabelValues(schema, outcome, strconv.FormatBool(cached)).Inc()
}

// ValueValidated records the outcome and latency of one validation.
func (o *Observer) ValueValidated(schema string, res constraint.Result, elapsed time.Duration) {
	outcome := "valid"
	switch {
	case len(res.Issues) > 0:
		outcome = "invalid"
	case len(res.Unsupported) > 0:
		outcome = "unsupported"
	}
	o.validations.WithLabelValues(schema, outcome).Inc()
	for _, it := range res.Issues {
		o.violations.WithLabelValues(schema, it.Code).Inc()
	}
	o.duration.WithLabelValues(schema).Observe(elapsed.Seconds())
}

// Write dumps the gathered metrics in the Prometheus text format.
func (o *Observer) Write(w io.Writer) error {
	if o.gatherer == nil {
		return nil
	}
	mfs, err := o.gatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

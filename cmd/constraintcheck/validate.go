package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/constraint"
	"github.com/reoring/constraint/decode"
	"github.com/reoring/constraint/metrics"
	"github.com/reoring/constraint/middleware"
)

type validateOptions struct {
	schema     string
	record     string
	format     string
	output     string
	union      string
	duplicates string
	maxDepth   int
	maxBytes   int64
	metrics    bool
}

func newValidateCmd(a *app) *cobra.Command {
	var o validateOptions
	cmd := &cobra.Command{
		Use:   "validate --schema SCHEMA_FILE [DATA_FILE...]",
		Short: "Validate JSON or YAML documents against a record schema",
		Long: `Validate decodes each document (or stdin when none is given or the name is "-")
against the selected record and reports every violated constraint. The exit status
is 1 when any document is rejected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if !f.Changed("union-policy") {
				o.union = a.cfg.UnionPolicy
			}
			if !f.Changed("duplicates") {
				o.duplicates = a.cfg.Duplicates
			}
			if !f.Changed("max-depth") {
				o.maxDepth = a.cfg.MaxDepth
			}
			if !f.Changed("max-bytes") {
				o.maxBytes = a.cfg.MaxBytes
			}
			if len(args) == 0 {
				args = []string{"-"}
			}
			return a.validate(cmd, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.schema, "schema", "s", "", "schema file (YAML or JSON)")
	f.StringVarP(&o.record, "record", "r", "", "record to validate against (default: the schema root)")
	f.StringVar(&o.format, "format", "auto", "input format: auto, json or yaml")
	f.StringVarP(&o.output, "output", "o", "text", "report format: text or json")
	f.StringVar(&o.union, "union-policy", "", "union values: unsupported, skip or warn (env CONSTRAINT_UNION_POLICY)")
	f.StringVar(&o.duplicates, "duplicates", "", "duplicate keys: error, warn or ignore (env CONSTRAINT_DUPLICATE_KEYS)")
	f.IntVar(&o.maxDepth, "max-depth", 0, "maximum nesting depth, 0 for unlimited (env CONSTRAINT_MAX_DEPTH)")
	f.Int64Var(&o.maxBytes, "max-bytes", 0, "maximum input size, 0 for unlimited (env CONSTRAINT_MAX_BYTES)")
	f.BoolVar(&o.metrics, "metrics", false, "print Prometheus metrics to stderr when done")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func (a *app) validate(cmd *cobra.Command, o validateOptions, inputs []string) error {
	rec, err := a.loadRecord(o.schema, o.record)
	if err != nil {
		return err
	}
	policy, err := constraint.ParseUnionPolicy(o.union)
	if err != nil {
		return err
	}
	dup, err := decode.ParseDuplicatePolicy(o.duplicates)
	if err != nil {
		return err
	}
	if o.output != "text" && o.output != "json" {
		return fmt.Errorf("unknown output format %q", o.output)
	}

	opts := []constraint.Option{constraint.WithLogger(a.log), constraint.WithUnionPolicy(policy)}
	var obs *metrics.Observer
	if o.metrics {
		if obs, err = metrics.New(nil); err != nil {
			return err
		}
		opts = append(opts, constraint.WithObserver(obs))
	}
	v := constraint.New(opts...)

	failed := false
	for _, in := range inputs {
		res, err := a.validateOne(cmd, v, rec, o, dup, in)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		if err := a.report(in, res, o.output); err != nil {
			return err
		}
		failed = failed || !res.Valid()
	}
	if obs != nil {
		if err := obs.Write(a.stderr); err != nil {
			return err
		}
	}
	if failed {
		return errRejected
	}
	return nil
}

// validateOne decodes and validates a single input. Input limit violations found
// while decoding are reported like constraint violations.
func (a *app) validateOne(cmd *cobra.Command, v *constraint.Validator, rec *constraint.RecordSchema, o validateOptions, dup decode.DuplicatePolicy, in string) (constraint.Result, error) {
	data, err := a.read(in)
	if err != nil {
		return constraint.Result{}, err
	}
	dopts := decode.Options{
		Duplicates: dup,
		MaxDepth:   o.maxDepth,
		MaxBytes:   o.maxBytes,
		OnWarning: func(it constraint.Issue) {
			a.log.Warn("input", "file", in, "path", it.Path, "code", it.Code, "message", it.Message)
		},
	}
	var val constraint.Value
	if inputFormat(o.format, in, data) == "yaml" {
		val, err = decode.YAML(data, rec, dopts)
	} else {
		val, err = decode.JSON(data, rec, dopts)
	}
	if iss, ok := constraint.AsIssues(err); ok {
		return constraint.Result{Issues: iss}, nil
	}
	if err != nil {
		return constraint.Result{}, err
	}
	return v.Validate(cmd.Context(), val, rec)
}

func (a *app) read(in string) ([]byte, error) {
	if in == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(in)
}

func inputFormat(flag, name string, data []byte) string {
	if flag == "json" || flag == "yaml" {
		return flag
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '{' {
		return "json"
	}
	return "yaml"
}

type inputReport struct {
	Input string `json:"input"`
	Valid bool   `json:"valid"`
	middleware.Payload
}

func (a *app) report(in string, res constraint.Result, output string) error {
	if output == "json" {
		b, err := j.Marshal(inputReport{Input: in, Valid: res.Valid(), Payload: middleware.ErrorPayload(res)})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(a.stdout, "%s\n", b)
		return err
	}
	for _, it := range res.Issues {
		fmt.Fprintf(a.stdout, "%s: %s: %s: %s\n", in, it.Path, it.Code, it.Message)
	}
	for _, p := range res.Unsupported {
		fmt.Fprintf(a.stdout, "%s: %s: unsupported: union value not validated\n", in, p)
	}
	if res.Valid() {
		fmt.Fprintf(a.stdout, "%s: ok\n", in)
	}
	return nil
}

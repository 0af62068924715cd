package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/reoring/constraint"
	"github.com/reoring/constraint/decode"
	"github.com/reoring/constraint/metrics"
	"github.com/reoring/constraint/middleware"
)

type serveOptions struct {
	schema string
	record string
	addr   string
}

func newServeCmd(a *app) *cobra.Command {
	var o serveOptions
	cmd := &cobra.Command{
		Use:   "serve --schema SCHEMA_FILE",
		Short: "Serve POST /validate for a record schema, with Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.router(o)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, o.addr, h)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.schema, "schema", "s", "", "schema file (YAML or JSON)")
	f.StringVarP(&o.record, "record", "r", "", "record to validate against (default: the schema root)")
	f.StringVar(&o.addr, "addr", ":8080", "listen address")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// router wires the validation endpoint, the metrics endpoint and a health check.
func (a *app) router(o serveOptions) (http.Handler, error) {
	rec, err := a.loadRecord(o.schema, o.record)
	if err != nil {
		return nil, err
	}
	policy, err := constraint.ParseUnionPolicy(a.cfg.UnionPolicy)
	if err != nil {
		return nil, err
	}
	dup, err := decode.ParseDuplicatePolicy(a.cfg.Duplicates)
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	obs, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	v := constraint.New(constraint.WithLogger(a.log), constraint.WithUnionPolicy(policy), constraint.WithObserver(obs))
	if diags := v.Check(rec); len(diags) > 0 {
		return nil, &constraint.SchemaError{Schema: rec.Name, Diagnostics: diags}
	}
	opt := decode.Options{Duplicates: dup, MaxDepth: a.cfg.MaxDepth, MaxBytes: a.cfg.MaxBytes}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.With(middleware.ValidateJSON(v, rec, opt)).Post("/validate", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]any{"valid": true, "schema": rec.Name})
	})
	return r, nil
}

func (a *app) serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		a.log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.log.Info("server stopped")
	return nil
}

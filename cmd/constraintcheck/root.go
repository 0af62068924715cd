package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reoring/constraint"
	"github.com/reoring/constraint/i18n"
	"github.com/reoring/constraint/internal/config"
	"github.com/reoring/constraint/internal/logging"
	"github.com/reoring/constraint/schemafile"
)

// errRejected signals that a schema or document failed; details were already printed.
var errRejected = errors.New("rejected")

type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	envFile   string
	logLevel  string
	logFormat string
	lang      string

	cfg config.Config
	log *slog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "constraintcheck",
		Short:         "Check constraint schemas and validate documents against them",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", "", "load settings from this .env file (default ./.env if present)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (env CONSTRAINT_LOG_LEVEL)")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text or json (env CONSTRAINT_LOG_FORMAT)")
	pf.StringVar(&a.lang, "lang", "", "message language: en or ja (env CONSTRAINT_LANG)")

	root.AddCommand(newCheckCmd(a), newValidateCmd(a), newJSONSchemaCmd(a), newServeCmd(a))
	return root
}

// setup loads the environment configuration and lets explicit flags override it.
func (a *app) setup(cmd *cobra.Command) error {
	var files []string
	if a.envFile != "" {
		files = append(files, a.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("lang") {
		cfg.Lang = a.lang
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log, err = logging.New(a.stderr, level, cfg.LogFormat)
	if err != nil {
		return err
	}
	i18n.SetLanguage(cfg.Lang)
	a.cfg = cfg
	return nil
}

// loadFile loads a schema file and logs its warnings.
func (a *app) loadFile(path string) (*schemafile.Schema, error) {
	s, diag, err := schemafile.LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, w := range diag.Warnings() {
		a.log.Warn("schema file", "path", path, "warning", w)
	}
	return s, nil
}

// loadRecord loads a schema file and selects a record: the named one, or the root.
func (a *app) loadRecord(path, record string) (*constraint.RecordSchema, error) {
	s, err := a.loadFile(path)
	if err != nil {
		return nil, err
	}
	if record == "" {
		if s.Root == nil {
			return nil, fmt.Errorf("%s: no root record; pick one with --record (have %v)", path, s.RecordNames())
		}
		return s.Root, nil
	}
	rec, ok := s.Record(record)
	if !ok {
		return nil, fmt.Errorf("%s: record %q not declared (have %v)", path, record, s.RecordNames())
	}
	return rec, nil
}

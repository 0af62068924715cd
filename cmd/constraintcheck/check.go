package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/reoring/constraint"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check SCHEMA_FILE...",
		Short: "Statically check every record and annotated type in schema files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			for _, path := range args {
				ok, err := a.check(path)
				if err != nil {
					return err
				}
				failed = failed || !ok
			}
			if failed {
				return errRejected
			}
			return nil
		},
	}
}

// check reports each diagnostic once, under the record or annotated type that
// declares the offending constraint.
func (a *app) check(path string) (bool, error) {
	s, err := a.loadFile(path)
	if err != nil {
		return false, err
	}
	v := constraint.New(constraint.WithLogger(a.log))
	var diags constraint.Diagnostics
	for _, name := range s.RecordNames() {
		diags = append(diags, declaredIn(name, v.Check(s.Records[name]))...)
	}
	names := make([]string, 0, len(s.Types))
	for n := range s.Types {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		diags = append(diags, declaredIn(name, constraint.CheckType(s.Types[name]))...)
	}

	for _, d := range diags {
		fmt.Fprintf(a.stdout, "%s: %s: %s\n", path, d.Schema, d)
	}
	if len(diags) == 0 {
		fmt.Fprintf(a.stdout, "%s: ok (%d records, %d types)\n", path, len(s.Records), len(s.Types))
	}
	return len(diags) == 0, nil
}

func declaredIn(name string, ds constraint.Diagnostics) constraint.Diagnostics {
	var out constraint.Diagnostics
	for _, d := range ds {
		if d.Schema == name {
			out = append(out, d)
		}
	}
	return out
}

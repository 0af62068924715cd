package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/constraint/jsonschema"
)

func newJSONSchemaCmd(a *app) *cobra.Command {
	var schema, record string
	cmd := &cobra.Command{
		Use:   "jsonschema --schema SCHEMA_FILE",
		Short: "Export a record schema as JSON Schema (draft 2020-12)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := a.loadRecord(schema, record)
			if err != nil {
				return err
			}
			b, err := jsonschema.Marshal(rec)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.stdout, "%s\n", b)
			return err
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "", "schema file (YAML or JSON)")
	cmd.Flags().StringVarP(&record, "record", "r", "", "record to export (default: the schema root)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

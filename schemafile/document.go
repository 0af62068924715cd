// Package schemafile loads record schemas and annotated types from YAML or JSON
// documents.
//
// A document declares named types and records; field types are expressions such as
// "int", "[]Tag", "Person|string" or "[](int|string)":
//
//	root: Person
//	types:
//	  Age:
//	    type: int
//	    constraints: {minValue: 0, maxValue: 150}
//	records:
//	  Person:
//	    fields:
//	      - {name: age, type: Age}
//	      - {name: friends, type: "[]Person", optional: true, constraints: {maxLength: 10}}
package schemafile

import (
	"fmt"
	"sort"

	"github.com/reoring/constraint"
)

// Document is the decoded form of one schema document.
type Document struct {
	Root    string                `mapstructure:"root"`
	Types   map[string]TypeDecl   `mapstructure:"types"`
	Records map[string]RecordDecl `mapstructure:"records"`
}

// TypeDecl declares an annotated type: a base type expression plus type-level
// constraints.
type TypeDecl struct {
	Type        string         `mapstructure:"type"`
	Constraints map[string]any `mapstructure:"constraints"`
}

// RecordDecl declares a record with ordered fields.
type RecordDecl struct {
	Fields []FieldDecl `mapstructure:"fields"`
}

// FieldDecl declares one record field.
type FieldDecl struct {
	Name        string         `mapstructure:"name"`
	Type        string         `mapstructure:"type"`
	Optional    bool           `mapstructure:"optional"`
	Constraints map[string]any `mapstructure:"constraints"`
}

// Schema is a resolved document.
type Schema struct {
	// Root is the record named by the document's root key, or the only record.
	Root    *constraint.RecordSchema
	Records map[string]*constraint.RecordSchema
	Types   map[string]*constraint.FieldType
}

// Record returns the named record schema.
func (s *Schema) Record(name string) (*constraint.RecordSchema, bool) {
	r, ok := s.Records[name]
	return r, ok
}

// RecordNames returns the record names in sorted order.
func (s *Schema) RecordNames() []string {
	out := make([]string, 0, len(s.Records))
	for n := range s.Records {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Diag carries non-fatal warnings produced during loading.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }

// merge folds o into doc. Names must be unique across documents.
func (doc *Document) merge(o Document) error {
	if o.Root != "" {
		if doc.Root != "" && doc.Root != o.Root {
			return fmt.Errorf("schemafile: conflicting roots %q and %q", doc.Root, o.Root)
		}
		doc.Root = o.Root
	}
	for n, t := range o.Types {
		if _, dup := doc.Types[n]; dup {
			return fmt.Errorf("schemafile: type %q declared twice", n)
		}
		if doc.Types == nil {
			doc.Types = map[string]TypeDecl{}
		}
		doc.Types[n] = t
	}
	for n, r := range o.Records {
		if _, dup := doc.Records[n]; dup {
			return fmt.Errorf("schemafile: record %q declared twice", n)
		}
		if doc.Records == nil {
			doc.Records = map[string]RecordDecl{}
		}
		doc.Records[n] = r
	}
	return nil
}

package schemafile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format selects the document syntax.
type Format int

const (
	// FormatAuto treats input starting with '{' as JSON and anything else as YAML.
	FormatAuto Format = iota
	FormatYAML
	FormatJSON
)

// LoadFile reads and resolves a schema file; the format follows the extension.
func LoadFile(path string) (*Schema, Diag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &simpleDiag{}, fmt.Errorf("schemafile: %w", err)
	}
	f := FormatAuto
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f = FormatJSON
	case ".yaml", ".yml":
		f = FormatYAML
	}
	return Load(data, f)
}

// Load decodes and resolves a schema document. YAML input may hold several
// documents; their declarations are merged.
func Load(data []byte, f Format) (*Schema, Diag, error) {
	d := &simpleDiag{}
	if f == FormatAuto {
		f = FormatYAML
		if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '{' {
			f = FormatJSON
		}
	}
	var raws []any
	var err error
	if f == FormatJSON {
		raws, err = jsonDocuments(data)
	} else {
		raws, err = yamlDocuments(data)
	}
	if err != nil {
		return nil, d, err
	}
	var doc Document
	for i, raw := range raws {
		part, err := decodeDocument(raw, i, d)
		if err != nil {
			return nil, d, err
		}
		if err := doc.merge(part); err != nil {
			return nil, d, err
		}
	}
	s, err := build(doc, d)
	return s, d, err
}

// Build resolves an already decoded document.
func Build(doc Document) (*Schema, Diag, error) {
	d := &simpleDiag{}
	s, err := build(doc, d)
	return s, d, err
}

func yamlDocuments(data []byte) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []any
	for {
		var node any
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("schemafile: %w", err)
		}
		if node != nil {
			out = append(out, node)
		}
	}
}

func jsonDocuments(data []byte) ([]any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var node any
	if err := dec.Decode(&node); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return []any{normalizeNumbers(node)}, nil
}

type number interface {
	String() string
	Int64() (int64, error)
}

// normalizeNumbers rewrites decoder-specific number types to encoding/json's
// json.Number, which constraint literals understand.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	case number:
		return json.Number(t.String())
	default:
		return v
	}
}

func decodeDocument(raw any, idx int, d *simpleDiag) (Document, error) {
	var doc Document
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &doc,
		Metadata:   &md,
		DecodeHook: typeShorthand,
	})
	if err != nil {
		return Document{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Document{}, fmt.Errorf("schemafile: document %d: %w", idx, err)
	}
	unused := append([]string(nil), md.Unused...)
	sort.Strings(unused)
	for _, k := range unused {
		d.warnf("document %d: unknown key %q ignored", idx, k)
	}
	return doc, nil
}

// typeShorthand lets a type be declared as a bare expression ("Tag: string").
func typeShorthand(from, to reflect.Type, data any) (any, error) {
	if to == reflect.TypeOf(TypeDecl{}) && from.Kind() == reflect.String {
		return map[string]any{"type": data}, nil
	}
	return data, nil
}

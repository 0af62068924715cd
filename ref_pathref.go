package constraint

import (
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Elem() PathRef
	Pointer() string
	Issue(code, msg string, kv ...any) Issue
}

// Root returns the empty path ("/").
func Root() PathRef { return &pathRef{} }

type pathRef struct {
	parts []string
}

func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	return p.with(pointerEscaper.Replace(name))
}

func (p *pathRef) Index(i int) PathRef { return p.with(strconv.Itoa(i)) }

// Elem marks "every element" in static paths, where no index exists yet.
func (p *pathRef) Elem() PathRef { return p.with("*") }

func (p *pathRef) with(part string) PathRef {
	parts := make([]string, len(p.parts), len(p.parts)+1)
	copy(parts, p.parts)
	return &pathRef{parts: append(parts, part)}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p *pathRef) Issue(code, msg string, kv ...any) Issue {
	var m map[string]any
	if len(kv) > 1 {
		m = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok {
				m[k] = kv[i+1]
			}
		}
	}
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: m}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

package constraint

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Result is the outcome of one runtime validation. It is owned by the caller and holds
// no references into the value or schema.
type Result struct {
	Issues Issues
	// Unsupported lists paths of values the walker could not validate (see UnionPolicy).
	Unsupported []string
}

// Valid reports whether no constraint was violated and nothing was left unvalidated.
func (r Result) Valid() bool { return len(r.Issues) == 0 && len(r.Unsupported) == 0 }

// Constraints returns the violated constraint names, sorted and de-duplicated.
func (r Result) Constraints() []string {
	if len(r.Issues) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(r.Issues))
	out := make([]string, 0, len(r.Issues))
	for _, it := range r.Issues {
		if _, ok := seen[it.Code]; ok {
			continue
		}
		seen[it.Code] = struct{}{}
		out = append(out, it.Code)
	}
	sort.Strings(out)
	return out
}

// At returns the issues recorded at the given JSON Pointer.
func (r Result) At(path string) Issues {
	var out Issues
	for _, it := range r.Issues {
		if it.Path == path {
			out = append(out, it)
		}
	}
	return out
}

// Err converts the result into an error: nil when valid, Issues for violations and an
// error wrapping ErrUnsupported for unvalidated values (joined when both occur).
func (r Result) Err() error {
	var errs []error
	if len(r.Issues) > 0 {
		errs = append(errs, r.Issues)
	}
	if len(r.Unsupported) > 0 {
		errs = append(errs, fmt.Errorf("%w at %s", ErrUnsupported, strings.Join(r.Unsupported, ", ")))
	}
	return errors.Join(errs...)
}

func (r Result) merge(o Result) Result {
	if len(o.Issues) == 0 && len(o.Unsupported) == 0 {
		return r
	}
	return Result{
		Issues:      append(r.Issues[:len(r.Issues):len(r.Issues)], o.Issues...),
		Unsupported: append(r.Unsupported[:len(r.Unsupported):len(r.Unsupported)], o.Unsupported...),
	}
}

func (r Result) add(it Issue) Result { return r.merge(Result{Issues: Issues{it}}) }

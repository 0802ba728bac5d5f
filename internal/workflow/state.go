package workflow

import (
	"strings"

	"github.com/ohler55/ojg/jp"
)

// State is a read-only snapshot of workflow state: a mapping from string keys
// to JSON-like values (string, float64, bool, nil, []any, map[string]any).
// The surrounding engine supplies one snapshot per evaluation; the decision
// core never mutates it.
type State map[string]any

// Resolve resolves a field path against the state snapshot.
//
// A plain path is a dot-separated chain of keys ("user.address.city"). Any
// missing intermediate segment, or an intermediate that is not a mapping,
// yields nil rather than an error. A path starting with "$" is treated as a
// JSONPath expression and evaluated with Query.
func (s State) Resolve(path string) any {
	if strings.HasPrefix(path, "$") {
		return s.Query(path)
	}
	return nestedValue(map[string]any(s), path)
}

// Query evaluates a JSONPath expression against the state snapshot and
// returns the first match. An invalid expression or an empty match set
// yields nil.
func (s State) Query(expr string) any {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil
	}
	return x.First(map[string]any(s))
}

// nestedValue walks a dot-separated path through nested mappings. The walk
// stops with nil as soon as a segment is missing or the current value is not
// a mapping.
func nestedValue(root map[string]any, path string) any {
	if path == "" {
		return nil
	}

	var current any = root
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[segment]
		if !ok {
			return nil
		}
	}

	return current
}

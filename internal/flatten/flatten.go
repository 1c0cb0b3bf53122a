// Package flatten turns nested CAOM composite values into prefixed scalar keys.
package flatten

import (
	"fmt"
	"strings"

	"github.com/agentic-research/caomdb/internal/caom"
)

// Separator joins collection items into one column value.
const Separator = " | "

// Fields is an insertion-ordered accumulator of flattened keys.
type Fields struct {
	keys   []string
	values map[string]any
}

func NewFields() *Fields {
	return &Fields{values: make(map[string]any)}
}

// Set stores v under key. Overwriting a key keeps its original position.
func (f *Fields) Set(key string, v any) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = v
}

func (f *Fields) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *Fields) Keys() []string { return append([]string(nil), f.keys...) }
func (f *Fields) Len() int       { return len(f.keys) }

// Map returns a copy of the accumulated keys and values.
func (f *Fields) Map() map[string]any {
	out := make(map[string]any, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// MalformedNodeError reports a value whose shape contradicts its declared kind.
type MalformedNodeError struct {
	Path   string
	Reason string
}

func (e *MalformedNodeError) Error() string {
	return fmt.Sprintf("malformed node at %s: %s", e.Path, e.Reason)
}

func malformed(path string, format string, args ...any) error {
	return &MalformedNodeError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Flatten writes the sub-fields of the composite v into acc, each keyed by
// prefix immediately followed by the sub-field name. A nil v records
// acc[prefix] = nil and nothing else.
func Flatten(acc *Fields, prefix string, v any) error {
	n, err := asNode(prefix, v)
	if err != nil {
		return err
	}
	if n == nil {
		acc.Set(prefix, nil)
		return nil
	}

	for _, f := range n.Fields() {
		name := f.Decl.Name
		key := prefix + name

		switch {
		case strings.HasSuffix(name, "points") || strings.HasSuffix(name, "samples"):
			// shape sampling has no columns yet
			continue
		case f.Decl.Kind == caom.FieldComposite:
			if err := flattenComposite(acc, key, f.Value); err != nil {
				return err
			}
		case strings.HasSuffix(name, "bounds"):
			if err := Flatten(acc, key, f.Value); err != nil {
				return err
			}
		case f.Value == nil:
			acc.Set(key, nil)
		default:
			if err := store(acc, key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// flattenComposite recurses into flattenable kinds and anything named *bounds;
// other composites have no columns of their own and are dropped.
func flattenComposite(acc *Fields, key string, v any) error {
	n, err := asNode(key, v)
	if err != nil {
		return err
	}
	if n == nil || n.Kind().Flattenable() || strings.HasSuffix(key, "bounds") {
		return Flatten(acc, key, v)
	}
	return nil
}

func store(acc *Fields, key string, f caom.Field) error {
	switch f.Decl.Kind {
	case caom.FieldScalar:
		if !caom.IsScalar(f.Value) {
			return malformed(key, "expected scalar, got %T", f.Value)
		}
		acc.Set(key, f.Value)
	case caom.FieldCollection:
		c, ok := f.Value.(caom.Collection)
		if !ok {
			return malformed(key, "expected collection, got %T", f.Value)
		}
		items := c.Items()
		if strings.TrimSpace(strings.Join(items, "")) != "" {
			acc.Set(key, strings.Join(items, Separator))
		}
	case caom.FieldEnum:
		e, ok := f.Value.(caom.Enum)
		if !ok {
			return malformed(key, "expected enumeration, got %T", f.Value)
		}
		acc.Set(key, e.Code)
	case caom.FieldURI:
		s, err := URIString(key, f.Value)
		if err != nil {
			return err
		}
		acc.Set(key, s)
	}
	return nil
}

// URIString returns the underlying string of a URI-bearing value. Untyped
// strings pass through; nil stays nil.
func URIString(path string, v any) (any, error) {
	switch u := v.(type) {
	case nil:
		return nil, nil
	case caom.URI:
		return string(u), nil
	case string:
		return u, nil
	}
	return nil, malformed(path, "expected URI, got %T", v)
}

func asNode(path string, v any) (*caom.Node, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case *caom.Node:
		return n, nil
	}
	return nil, malformed(path, "expected composite value, got %T", v)
}

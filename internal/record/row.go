// Package record holds schema-validated flat rows.
package record

import (
	"fmt"
	"math"
	"time"

	"github.com/agentic-research/caomdb/api"
	"github.com/agentic-research/caomdb/internal/caom"
)

// SchemaMismatchError reports a key the table does not declare, or a value
// that cannot be stored in the declared column.
type SchemaMismatchError struct {
	Table  string
	Key    string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: no column for key %q", e.Table, e.Key)
	}
	return fmt.Sprintf("%s.%s: %s", e.Table, e.Key, e.Reason)
}

// Row is one relational row keyed by flattened attribute name.
type Row struct {
	table  *api.Table
	values map[string]any
	absent map[string]struct{}
}

func New(t *api.Table) *Row {
	return &Row{
		table:  t,
		values: make(map[string]any),
		absent: make(map[string]struct{}),
	}
}

func (r *Row) Table() *api.Table { return r.table }

// Set coerces v to the column type declared for key and stores it.
func (r *Row) Set(key string, v any) error {
	c, ok := r.table.Column(key)
	if !ok {
		if v == nil && r.table.IsPrefix(key) {
			r.absent[key] = struct{}{}
			return nil
		}
		return &SchemaMismatchError{Table: r.table.Name, Key: key}
	}
	cv, err := coerce(c, v)
	if err != nil {
		return &SchemaMismatchError{Table: r.table.Name, Key: key, Reason: err.Error()}
	}
	r.values[key] = cv
	return nil
}

// SetDerived stores a value computed by the mapper as is. The key must still
// be a declared column.
func (r *Row) SetDerived(key string, v any) error {
	if _, ok := r.table.Column(key); !ok {
		return &SchemaMismatchError{Table: r.table.Name, Key: key}
	}
	r.values[key] = v
	return nil
}

// Get returns the stored value for key.
func (r *Row) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Absent reports whether the composite at prefix was recorded as missing.
func (r *Row) Absent(prefix string) bool {
	_, ok := r.absent[prefix]
	return ok
}

// Keys returns the set keys in column order.
func (r *Row) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for _, c := range r.table.Columns {
		if _, ok := r.values[c.Key]; ok {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Values returns a copy of the set keys and values.
func (r *Row) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Columns returns database column names and values for every set key, in
// column order.
func (r *Row) Columns() ([]string, []any) {
	names := make([]string, 0, len(r.values))
	args := make([]any, 0, len(r.values))
	for _, c := range r.table.Columns {
		v, ok := r.values[c.Key]
		if !ok {
			continue
		}
		names = append(names, c.ColumnName())
		args = append(args, v)
	}
	return names, args
}

// Validate checks that every NotNull column holds a value.
func (r *Row) Validate() error {
	for _, c := range r.table.Columns {
		if !c.NotNull {
			continue
		}
		if v, ok := r.values[c.Key]; !ok || v == nil {
			return &SchemaMismatchError{Table: r.table.Name, Key: c.Key, Reason: "required column is empty"}
		}
	}
	return nil
}

func (r *Row) String() string {
	pk := r.table.PrimaryKey()
	return fmt.Sprintf("%s %v", r.table.Name, r.values[pk.Key])
}

func coerce(c api.Column, v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case caom.Enum:
		return coerce(c, x.Code)
	case caom.URI:
		return coerce(c, string(x))
	case *caom.Node:
		if x == nil {
			return nil, nil
		}
		if c.Member == "" {
			return nil, fmt.Errorf("composite %s has no column of its own", x.Kind())
		}
		return coerce(c, x.Value(c.Member))
	}

	switch c.Type {
	case api.Text:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case api.Integer:
		switch x := v.(type) {
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		case int64:
			return x, nil
		case float64:
			if x == math.Trunc(x) && !math.IsInf(x, 0) {
				return int64(x), nil
			}
		}
	case api.Real:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		}
	case api.Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case api.Timestamp:
		if t, ok := v.(time.Time); ok {
			return t.UTC(), nil
		}
	}
	return nil, fmt.Errorf("cannot store %T in %s column", v, c.Type)
}

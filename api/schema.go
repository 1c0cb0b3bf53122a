package api

import "fmt"

// ColumnType is the storage type of a column.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
	Real
	Boolean
	Timestamp
)

// SQL returns the SQLite type name used in DDL.
func (t ColumnType) SQL() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Boolean:
		return "BOOLEAN"
	case Timestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (t ColumnType) String() string { return t.SQL() }

// Column maps one flattened key onto one relational column.
type Column struct {
	// Key is the flattened attribute name produced by the mapper.
	Key string `json:"key"`
	// Name is the column name in the database. Defaults to Key.
	Name string `json:"name,omitempty"`
	// Type is the storage type values are coerced to.
	Type ColumnType `json:"type"`
	// PrimaryKey marks the table's primary key column.
	PrimaryKey bool `json:"primary_key,omitempty"`
	// NotNull rejects rows that leave the column unset.
	NotNull bool `json:"not_null,omitempty"`
	// Member names the sub-field taken when a composite value is assigned.
	Member string `json:"member,omitempty"`
	// References is a foreign key target as "Table.column".
	References string `json:"references,omitempty"`
}

// ColumnName returns the database column name.
func (c Column) ColumnName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Key
}

// Table is the declared schema of one hierarchy level.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	// Prefixes are composite keys whose nil value marks an absent composite
	// rather than a column.
	Prefixes []string `json:"prefixes,omitempty"`
	// Unique lists natural keys as column names.
	Unique [][]string `json:"unique,omitempty"`

	byKey    map[string]int
	prefixes map[string]struct{}
}

// NewTable builds a table and indexes its columns. Duplicate keys panic.
func NewTable(name string, columns []Column, prefixes []string, unique ...[]string) *Table {
	t := &Table{
		Name:     name,
		Columns:  columns,
		Prefixes: prefixes,
		Unique:   unique,
		byKey:    make(map[string]int, len(columns)),
		prefixes: make(map[string]struct{}, len(prefixes)),
	}
	for i, c := range columns {
		if _, dup := t.byKey[c.Key]; dup {
			panic(fmt.Sprintf("table %s: duplicate column key %q", name, c.Key))
		}
		t.byKey[c.Key] = i
	}
	for _, p := range prefixes {
		t.prefixes[p] = struct{}{}
	}
	return t
}

// Column looks up a column by flattened key.
func (t *Table) Column(key string) (Column, bool) {
	i, ok := t.byKey[key]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// IsPrefix reports whether key names a declared composite prefix.
func (t *Table) IsPrefix(key string) bool {
	_, ok := t.prefixes[key]
	return ok
}

// PrimaryKey returns the primary key column.
func (t *Table) PrimaryKey() Column {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c
		}
	}
	return Column{}
}

package store

import (
	"fmt"
	"strings"

	"github.com/agentic-research/caomdb/api"
)

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateStatements returns the DDL for t: the table itself followed by one
// index per foreign key.
func CreateStatements(t *api.Table) []string {
	var defs []string
	var fks []string
	var indexes []string

	for _, c := range t.Columns {
		def := quote(c.ColumnName()) + " " + c.Type.SQL()
		if c.PrimaryKey {
			def += " PRIMARY KEY"
		}
		if c.NotNull {
			def += " NOT NULL"
		}
		defs = append(defs, def)

		if c.References == "" {
			continue
		}
		table, column, ok := strings.Cut(c.References, ".")
		if !ok {
			continue
		}
		fks = append(fks, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE CASCADE",
			quote(c.ColumnName()), quote(table), quote(column)))
		indexes = append(indexes, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			quote("idx_"+t.Name+"_"+c.ColumnName()), quote(t.Name), quote(c.ColumnName())))
	}

	for _, u := range t.Unique {
		cols := make([]string, len(u))
		for i, n := range u {
			cols[i] = quote(n)
		}
		defs = append(defs, "UNIQUE ("+strings.Join(cols, ", ")+")")
	}
	defs = append(defs, fks...)

	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quote(t.Name), strings.Join(defs, ",\n\t"))
	return append([]string{create}, indexes...)
}

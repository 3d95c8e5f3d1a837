// Package query builds the SELECT statement handed to the unload
// command. Extraction is always a full scan: the unload command, not the
// SQL, controls how output is partitioned into files, so no filtering,
// ordering, or limiting is ever added here.
package query

import (
	"strings"

	"github.com/lakebound/redshift-extract/pkg/types"
)

// Build returns the SELECT statement for one table: exactly the schema's
// columns, in schema order, each quoted so reserved words and mixed-case
// names survive.
func Build(schema types.Schema, fqTableName string) string {
	cols := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		cols[i] = quoteIdent(c.Name)
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + fqTableName
}

// quoteIdent double-quotes an identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

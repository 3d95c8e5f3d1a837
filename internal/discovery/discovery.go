// Package discovery reads table structure out of the warehouse's
// information schema and turns it into the ordered column schema the
// extraction pipeline works against.
package discovery

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lakebound/redshift-extract/internal/schemamap"
	"github.com/lakebound/redshift-extract/pkg/types"
)

// columnsQuery reads one table's columns in declaration order.
const columnsQuery = `
SELECT column_name,
       data_type,
       COALESCE(numeric_precision, 0),
       COALESCE(numeric_scale, 0),
       is_nullable
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`

// tablesQuery lists the base tables of one database schema.
const tablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = $1 AND table_type = 'BASE TABLE'
ORDER BY table_name`

// RowQuerier is the query contract discovery needs from the warehouse
// session. Satisfied by connect.Conn.
type RowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Discoverer reads column descriptors and builds schemas.
type Discoverer struct {
	DB     RowQuerier
	Mapper schemamap.Mapper
}

// DiscoverTables returns the base tables of a database schema.
func (d *Discoverer) DiscoverTables(ctx context.Context, schemaName string) ([]string, error) {
	rows, err := d.DB.Query(ctx, tablesQuery, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", schemaName, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// DiscoverColumns returns one table's column descriptors in ordinal
// order. Numeric precision and scale are folded into the raw type text
// so the mapper sees e.g. "numeric(10,4)".
func (d *Discoverer) DiscoverColumns(ctx context.Context, schemaName, table string) ([]types.ColumnDescriptor, error) {
	rows, err := d.DB.Query(ctx, columnsQuery, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("failed to discover columns of %s.%s: %w", schemaName, table, err)
	}
	defer rows.Close()

	var cols []types.ColumnDescriptor
	for rows.Next() {
		var (
			name, dataType, nullable string
			precision, scale         int
		)
		if err := rows.Scan(&name, &dataType, &precision, &scale, &nullable); err != nil {
			return nil, err
		}

		raw := dataType
		if scale > 0 {
			raw = fmt.Sprintf("%s(%d,%d)", dataType, precision, scale)
		}
		cols = append(cols, types.ColumnDescriptor{
			Name:     name,
			RawType:  raw,
			Nullable: nullable == "YES",
		})
	}
	return cols, rows.Err()
}

// DiscoverSchema discovers a table and maps it into a schema.
func (d *Discoverer) DiscoverSchema(ctx context.Context, schemaName, table string) (types.Schema, error) {
	cols, err := d.DiscoverColumns(ctx, schemaName, table)
	if err != nil {
		return types.Schema{}, err
	}
	return BuildSchema(cols, d.Mapper)
}

// BuildSchema maps column descriptors into the ordered schema, one type
// node per column. Column order follows the descriptor order.
func BuildSchema(cols []types.ColumnDescriptor, m schemamap.Mapper) (types.Schema, error) {
	schema := types.Schema{Columns: make([]types.Column, 0, len(cols))}
	for _, col := range cols {
		node, err := m.ToSchemaType(col.RawType)
		if err != nil {
			return types.Schema{}, fmt.Errorf("column %s: %w", col.Name, err)
		}
		schema.Columns = append(schema.Columns, types.Column{Name: col.Name, Node: node})
	}
	return schema, nil
}

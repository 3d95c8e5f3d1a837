package types

// TypeNode is the schema-level representation of a column's type, shaped
// like a JSON Schema type declaration.
type TypeNode struct {
	// Type lists the admissible JSON types, e.g. ["null", "string"]
	Type []string `json:"type"`

	// Format carries the string format for date/time columns
	// ("date", "time", "date-time"); empty otherwise
	Format string `json:"format,omitempty"`

	// MultipleOf constrains numeric columns with a declared scale s
	// to multiples of 10^-s; zero means unconstrained
	MultipleOf float64 `json:"multipleOf,omitempty"`

	// AdditionalProperties is set for semi-structured (SUPER) columns
	// mapped to open objects
	AdditionalProperties bool `json:"additionalProperties,omitempty"`
}

// Column pairs a column name with its schema type node.
type Column struct {
	// Name is the column name as reported by the warehouse
	Name string `json:"name"`

	// Node is the schema type the column's raw warehouse type maps to
	Node TypeNode `json:"node"`
}

// Schema is an ordered column-to-type mapping for one table. The column
// order is fixed at construction and drives both query building and
// positional record decoding; a Schema is never mutated during extraction.
type Schema struct {
	// Columns holds the columns in their declared order
	Columns []Column `json:"columns"`
}

// ColumnNames returns the column names in schema order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of columns.
func (s Schema) Len() int {
	return len(s.Columns)
}

// ColumnDescriptor is one column as reported by the warehouse's
// information schema. Produced by discovery, consumed by the type mapper.
type ColumnDescriptor struct {
	// Name is the column name
	Name string `json:"name"`

	// RawType is the warehouse type text, e.g. "varchar(255)" or "numeric(10,4)"
	RawType string `json:"raw_type"`

	// Nullable indicates whether the column can contain NULL values
	Nullable bool `json:"nullable"`
}

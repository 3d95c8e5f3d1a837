// Package types provides the core data types for the extraction pipeline.
package types

// Record is one decoded row: a mapping from column name to a scalar or
// nil value. Field values are assigned positionally against the schema's
// declared column order, never from file headers.
type Record map[string]any

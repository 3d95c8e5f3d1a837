// Package decode parses downloaded export files into records aligned to
// the discovered schema. Two encodings are supported, selected per file
// by naming convention: the delimited format (tab-separated, gzip by
// file suffix, textual null sentinel) and the columnar parquet format.
// Fields are mapped positionally against the schema's column order; the
// decoder never re-derives field names from file headers.
package decode

import (
	"io"
	"strings"

	"github.com/lakebound/redshift-extract/pkg/types"
)

// RecordReader streams records out of one export file. Readers are
// finite and non-restartable: the file is consumed in a single pass and
// Next returns io.EOF when it is exhausted.
type RecordReader interface {
	Next() (types.Record, error)
	Close() error
}

// Open selects a decoder by file characteristics and opens the file.
// Parquet files get the columnar decoder; everything else is treated as
// delimited output, with gzip detected by the .gz suffix.
func Open(path string, schema types.Schema) (RecordReader, error) {
	if strings.HasSuffix(path, ".parquet") {
		return newParquetReader(path, schema), nil
	}
	return newDelimitedReader(path, schema)
}

// emptyReader yields zero records. Used when a columnar file is
// unreadable and must contribute nothing rather than abort the run.
type emptyReader struct{}

func (emptyReader) Next() (types.Record, error) { return nil, io.EOF }
func (emptyReader) Close() error                { return nil }

package decode

import (
	"io"
	"log"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/lakebound/redshift-extract/pkg/types"
)

// parquetReader decodes columnar export files. A file that cannot be
// opened or parsed yields zero records with a warning: one corrupt
// output file among many must not abort the whole extraction.
type parquetReader struct {
	path    string
	file    *os.File
	groups  []parquet.RowGroup
	rows    parquet.Rows
	buf     []parquet.Row
	n, i    int
	schema  types.Schema
	dropped int
	warned  bool
}

func newParquetReader(path string, schema types.Schema) RecordReader {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("[WARN] decode: skipping unreadable parquet file %s: %v", path, err)
		return emptyReader{}
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		log.Printf("[WARN] decode: skipping unreadable parquet file %s: %v", path, err)
		return emptyReader{}
	}

	pf, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		file.Close()
		log.Printf("[WARN] decode: skipping malformed parquet file %s: %v", path, err)
		return emptyReader{}
	}

	return &parquetReader{
		path:   path,
		file:   file,
		groups: pf.RowGroups(),
		buf:    make([]parquet.Row, 128),
		schema: schema,
	}
}

// Next returns the next record, or io.EOF when every row group is
// exhausted. A read error mid-file degrades to end-of-file with a
// warning rather than failing the run.
func (r *parquetReader) Next() (types.Record, error) {
	for {
		if r.i < r.n {
			row := r.buf[r.i]
			r.i++
			record, ok := r.convert(row)
			if !ok {
				r.dropped++
				continue
			}
			return record, nil
		}

		if r.rows == nil {
			if len(r.groups) == 0 {
				r.warnDropped()
				return nil, io.EOF
			}
			r.rows = r.groups[0].Rows()
			r.groups = r.groups[1:]
		}

		n, err := r.rows.ReadRows(r.buf)
		r.n, r.i = n, 0
		if err != nil && err != io.EOF {
			log.Printf("[WARN] decode: read failed partway through parquet file %s: %v", r.path, err)
			r.rows.Close()
			r.rows = nil
			r.groups = nil
			r.n = n
			if n == 0 {
				return nil, io.EOF
			}
			continue
		}
		if err == io.EOF {
			r.rows.Close()
			r.rows = nil
			if n == 0 {
				continue
			}
		}
		if n == 0 && err == nil {
			r.rows.Close()
			r.rows = nil
		}
	}
}

// convert maps one parquet row onto the schema's column order. Rows
// whose leaf-value count disagrees with the schema column count are
// dropped, matching the delimited decoder's behavior.
func (r *parquetReader) convert(row parquet.Row) (types.Record, bool) {
	if len(row) != r.schema.Len() {
		return nil, false
	}

	vals := make([]any, r.schema.Len())
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(vals) {
			return nil, false
		}
		vals[col] = goValue(v)
	}

	record := make(types.Record, len(vals))
	for i, c := range r.schema.Columns {
		record[c.Name] = vals[i]
	}
	return record, true
}

func (r *parquetReader) Close() error {
	r.warnDropped()
	if r.rows != nil {
		r.rows.Close()
		r.rows = nil
	}
	return r.file.Close()
}

func (r *parquetReader) warnDropped() {
	if r.dropped > 0 && !r.warned {
		r.warned = true
		log.Printf("[WARN] decode: dropped %d rows with mismatched field count in %s", r.dropped, r.path)
	}
}

// goValue converts a parquet leaf value to the scalar the record
// carries.
func goValue(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

package decode

import (
	"bufio"
	"compress/gzip"
	"io"
	"log"
	"os"
	"strings"

	"github.com/lakebound/redshift-extract/pkg/types"
)

// nullSentinel is the fixed two-character null marker the unload command
// writes into delimited output.
const nullSentinel = `\N`

// maxLineSize bounds a single exported row; wide SUPER columns can get
// large.
const maxLineSize = 16 * 1024 * 1024

// delimitedReader decodes tab-delimited export files, transparently
// decompressing gzip members. Rows whose field count disagrees with the
// schema's column count are dropped; the drop count is reported once per
// file as a warning so format corruption stays observable.
type delimitedReader struct {
	path    string
	file    *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
	schema  types.Schema
	dropped int
	warned  bool
}

func newDelimitedReader(path string, schema types.Schema) (RecordReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &delimitedReader{path: path, file: file, schema: schema}

	var src io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		r.gz = gz
		src = gz
	}

	r.scanner = bufio.NewScanner(src)
	r.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return r, nil
}

// Next returns the next well-formed record, or io.EOF when the file is
// exhausted.
func (r *delimitedReader) Next() (types.Record, error) {
	for r.scanner.Scan() {
		fields := strings.Split(r.scanner.Text(), "\t")
		if len(fields) != r.schema.Len() {
			r.dropped++
			continue
		}

		record := make(types.Record, len(fields))
		for i, field := range fields {
			if field == nullSentinel {
				record[r.schema.Columns[i].Name] = nil
			} else {
				record[r.schema.Columns[i].Name] = field
			}
		}
		return record, nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	r.warnDropped()
	return nil, io.EOF
}

func (r *delimitedReader) Close() error {
	r.warnDropped()
	if r.gz != nil {
		r.gz.Close()
	}
	return r.file.Close()
}

// warnDropped reports the per-file drop count once.
func (r *delimitedReader) warnDropped() {
	if r.dropped > 0 && !r.warned {
		r.warned = true
		log.Printf("[WARN] decode: dropped %d rows with mismatched field count in %s", r.dropped, r.path)
	}
}

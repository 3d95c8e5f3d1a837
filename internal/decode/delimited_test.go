package decode

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lakebound/redshift-extract/pkg/types"
)

func testSchema() types.Schema {
	return types.Schema{Columns: []types.Column{
		{Name: "id", Node: types.TypeNode{Type: []string{"null", "integer"}}},
		{Name: "name", Node: types.TypeNode{Type: []string{"null", "string"}}},
	}}
}

func writeGzip(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	return path
}

func readAll(t *testing.T, path string, schema types.Schema) []types.Record {
	t.Helper()
	rr, err := Open(path, schema)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rr.Close()

	var records []types.Record
	for {
		rec, err := rr.Next()
		if err == io.EOF {
			return records
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		records = append(records, rec)
	}
}

func TestDelimited_NullSentinelAndFieldCountMismatch(t *testing.T) {
	content := "1\tAlice\n" + `\N` + "\tBob\n" + "2\tCarl\tExtra\n"
	path := writeGzip(t, t.TempDir(), "0000_part_00.gz", content)

	records := readAll(t, path, testSchema())

	want := []types.Record{
		{"id": "1", "name": "Alice"},
		{"id": nil, "name": "Bob"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}
}

func TestDelimited_PlainFileWithoutGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0000_part_00")
	if err := os.WriteFile(path, []byte("7\tGrace\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	records := readAll(t, path, testSchema())
	if len(records) != 1 || records[0]["id"] != "7" || records[0]["name"] != "Grace" {
		t.Errorf("records = %v", records)
	}
}

func TestDelimited_EmptyFile(t *testing.T) {
	path := writeGzip(t, t.TempDir(), "empty.gz", "")
	records := readAll(t, path, testSchema())
	if len(records) != 0 {
		t.Errorf("expected zero records, got %v", records)
	}
}

func TestDelimited_ShortRowDropped(t *testing.T) {
	path := writeGzip(t, t.TempDir(), "short.gz", "only-one-field\n3\tDora\n")
	records := readAll(t, path, testSchema())
	if len(records) != 1 || records[0]["name"] != "Dora" {
		t.Errorf("records = %v, want only the well-formed row", records)
	}
}

func TestDelimited_ValuesStayStrings(t *testing.T) {
	path := writeGzip(t, t.TempDir(), "typed.gz", "42\tx\n")
	records := readAll(t, path, testSchema())
	if _, ok := records[0]["id"].(string); !ok {
		t.Errorf("delimited values must decode as strings, got %T", records[0]["id"])
	}
}

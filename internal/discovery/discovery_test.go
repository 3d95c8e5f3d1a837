package discovery

import (
	"testing"

	"github.com/lakebound/redshift-extract/internal/schemamap"
	"github.com/lakebound/redshift-extract/pkg/types"
)

func TestBuildSchema(t *testing.T) {
	cols := []types.ColumnDescriptor{
		{Name: "id", RawType: "bigint", Nullable: false},
		{Name: "amount", RawType: "numeric(10,4)", Nullable: true},
		{Name: "created_at", RawType: "timestamp without time zone", Nullable: true},
		{Name: "payload", RawType: "super", Nullable: true},
		{Name: "mystery", RawType: "some_future_type", Nullable: true},
	}

	schema, err := BuildSchema(cols, schemamap.New(false, true))
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	if schema.Len() != 5 {
		t.Fatalf("schema has %d columns, want 5", schema.Len())
	}

	// Column order follows descriptor order.
	wantOrder := []string{"id", "amount", "created_at", "payload", "mystery"}
	for i, name := range schema.ColumnNames() {
		if name != wantOrder[i] {
			t.Errorf("column %d = %q, want %q", i, name, wantOrder[i])
		}
	}

	if schema.Columns[0].Node.Type[1] != "integer" {
		t.Errorf("id node = %+v", schema.Columns[0].Node)
	}
	if schema.Columns[1].Node.MultipleOf != 0.0001 {
		t.Errorf("amount node = %+v", schema.Columns[1].Node)
	}
	if schema.Columns[2].Node.Format != "date-time" {
		t.Errorf("created_at node = %+v", schema.Columns[2].Node)
	}
	if !schema.Columns[3].Node.AdditionalProperties {
		t.Errorf("payload node = %+v", schema.Columns[3].Node)
	}
	if schema.Columns[4].Node.Type[1] != "string" {
		t.Errorf("unknown type must map to string, got %+v", schema.Columns[4].Node)
	}
}

func TestBuildSchema_EmptyTypeFails(t *testing.T) {
	cols := []types.ColumnDescriptor{{Name: "broken", RawType: ""}}
	if _, err := BuildSchema(cols, schemamap.New(false, false)); err == nil {
		t.Error("expected error on empty raw type")
	}
}

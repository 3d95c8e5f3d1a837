package unload

import (
	"context"
	"errors"
	"strings"
	"testing"

	extracterrors "github.com/lakebound/redshift-extract/internal/errors"
)

// recordingExecer captures the statement it was asked to run.
type recordingExecer struct {
	sql string
	err error
}

func (r *recordingExecer) Exec(ctx context.Context, sql string) error {
	r.sql = sql
	return r.err
}

func TestUnload_DelimitedDefaults(t *testing.T) {
	db := &recordingExecer{}
	e := &Executor{DB: db, IAMRole: "arn:aws:iam::123456789012:role/unload"}

	dest := "s3://bucket/prefix/run/"
	got, err := e.Unload(context.Background(), `SELECT "id" FROM public.users`, dest, nil)
	if err != nil {
		t.Fatalf("Unload failed: %v", err)
	}
	if got != dest {
		t.Errorf("Unload returned %q, want %q", got, dest)
	}

	for _, clause := range []string{
		`UNLOAD ('SELECT "id" FROM public.users')`,
		"TO 's3://bucket/prefix/run/'",
		"IAM_ROLE arn:aws:iam::123456789012:role/unload",
		`DELIMITER '\t'`,
		`NULL AS '\\N'`,
		"ESCAPE",
		"GZIP",
		"ALLOWOVERWRITE",
		"PARALLEL 'ON'",
	} {
		if !strings.Contains(db.sql, clause) {
			t.Errorf("command missing %q:\n%s", clause, db.sql)
		}
	}
}

func TestUnload_ParquetOptions(t *testing.T) {
	db := &recordingExecer{}
	e := &Executor{DB: db, IAMRole: "arn:role"}

	_, err := e.Unload(context.Background(), "SELECT 1", "s3://b/p/", ParquetOptions())
	if err != nil {
		t.Fatalf("Unload failed: %v", err)
	}

	if !strings.Contains(db.sql, "FORMAT 'PARQUET'") {
		t.Errorf("command missing FORMAT PARQUET:\n%s", db.sql)
	}
	if !strings.Contains(db.sql, "ALLOWOVERWRITE") {
		t.Errorf("command missing ALLOWOVERWRITE:\n%s", db.sql)
	}
	for _, clause := range []string{"DELIMITER", "NULL AS", "ESCAPE", "GZIP", "PARALLEL"} {
		if strings.Contains(db.sql, clause) {
			t.Errorf("columnar command must not contain %q:\n%s", clause, db.sql)
		}
	}
}

func TestUnload_EscapesSingleQuotes(t *testing.T) {
	db := &recordingExecer{}
	e := &Executor{DB: db, IAMRole: "arn:role"}

	_, err := e.Unload(context.Background(), "SELECT 'it''s' FROM t", "s3://b/p/", nil)
	if err != nil {
		t.Fatalf("Unload failed: %v", err)
	}
	if !strings.Contains(db.sql, "SELECT ''it''''s'' FROM t") {
		t.Errorf("quotes not doubled:\n%s", db.sql)
	}
}

func TestUnload_CallerOptionsOverrideDefaults(t *testing.T) {
	db := &recordingExecer{}
	e := &Executor{DB: db, IAMRole: "arn:role"}

	_, err := e.Unload(context.Background(), "SELECT 1", "s3://b/p/",
		map[string]any{"PARALLEL": "OFF", "GZIP": false})
	if err != nil {
		t.Fatalf("Unload failed: %v", err)
	}
	if !strings.Contains(db.sql, "PARALLEL 'OFF'") {
		t.Errorf("override lost:\n%s", db.sql)
	}
	if strings.Contains(db.sql, "GZIP") {
		t.Errorf("false option must be omitted:\n%s", db.sql)
	}
}

func TestUnload_WarehouseErrorPropagates(t *testing.T) {
	cause := errors.New("permission denied")
	e := &Executor{DB: &recordingExecer{err: cause}, IAMRole: "arn:role"}

	_, err := e.Unload(context.Background(), "SELECT 1", "s3://b/p/", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause not wrapped: %v", err)
	}
	if extracterrors.GetCode(err) != extracterrors.CodeUnloadFailed {
		t.Errorf("code = %q, want %q", extracterrors.GetCode(err), extracterrors.CodeUnloadFailed)
	}
}

func TestUnload_RequiresIAMRole(t *testing.T) {
	e := &Executor{DB: &recordingExecer{}}
	if _, err := e.Unload(context.Background(), "SELECT 1", "s3://b/p/", nil); err == nil {
		t.Fatal("expected missing-role error")
	}
}

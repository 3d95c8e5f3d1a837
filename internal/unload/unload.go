// Package unload assembles and executes the warehouse UNLOAD command
// that bulk-exports a query's result set to object storage.
package unload

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lakebound/redshift-extract/internal/errors"
)

// Execer is the narrow warehouse-session contract the executor needs:
// exactly one statement per extraction run. Satisfied by the pgx-backed
// connection in internal/connect.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// Executor issues UNLOAD commands over a caller-provided connection.
type Executor struct {
	// DB is the warehouse session the command runs on.
	DB Execer

	// IAMRole is the authorization role reference embedded in every
	// command; the warehouse requires it to write to the destination
	// store.
	IAMRole string
}

// DefaultDelimitedOptions returns the option set for the delimited
// export encoding: tab-delimited, gzip-compressed, escape-enabled,
// parallel multi-file output with the \N null sentinel.
func DefaultDelimitedOptions() map[string]any {
	return map[string]any{
		"DELIMITER":      `\t`,
		"NULL AS":        `\\N`,
		"ESCAPE":         true,
		"GZIP":           true,
		"ALLOWOVERWRITE": true,
		"PARALLEL":       "ON",
	}
}

// ParquetOptions returns the option set for the columnar export
// encoding. The format embeds nulls and types natively, so no
// delimiter, escape, or null-sentinel options apply.
func ParquetOptions() map[string]any {
	return map[string]any{
		"FORMAT":         "PARQUET",
		"ALLOWOVERWRITE": true,
	}
}

// Unload exports the query's result set to the destination path and
// returns that path. Caller options merge over the delimited defaults;
// callers wanting columnar output pass ParquetOptions() (or any map
// containing FORMAT), which suppresses the delimited defaults entirely.
// A warehouse-side failure is fatal for the run and propagates wrapped.
func (e *Executor) Unload(ctx context.Context, query, destination string, options map[string]any) (string, error) {
	if e.IAMRole == "" {
		return "", errors.New(errors.ErrCategoryExport, errors.CodeMissingRole,
			"unload requires an IAM role reference")
	}

	merged := DefaultDelimitedOptions()
	if _, columnar := options["FORMAT"]; columnar {
		merged = map[string]any{}
	}
	for k, v := range options {
		merged[k] = v
	}

	cmd := buildCommand(query, destination, e.IAMRole, merged)
	if err := e.DB.Exec(ctx, cmd); err != nil {
		return "", errors.NewExportError("unload to "+destination+" failed", err)
	}
	return destination, nil
}

// buildCommand renders the UNLOAD statement. The query is embedded as a
// string literal, so single quotes in it are doubled first.
func buildCommand(query, destination, iamRole string, options map[string]any) string {
	escaped := strings.ReplaceAll(query, "'", "''")

	var b strings.Builder
	fmt.Fprintf(&b, "UNLOAD ('%s')\n", escaped)
	fmt.Fprintf(&b, "TO '%s'\n", destination)
	fmt.Fprintf(&b, "IAM_ROLE %s\n", iamRole)
	b.WriteString(renderOptions(options))
	return b.String()
}

// renderOptions renders the option clauses deterministically (sorted by
// key). A true value emits the bare keyword, false omits the clause,
// and anything else emits KEY 'value'.
func renderOptions(options map[string]any) string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := options[k].(type) {
		case bool:
			if v {
				clauses = append(clauses, k)
			}
		default:
			clauses = append(clauses, fmt.Sprintf("%s '%v'", k, v))
		}
	}
	return strings.Join(clauses, " ")
}

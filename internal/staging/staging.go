// Package staging allocates and parses the transient object-store
// locations one extraction run unloads into. Each run gets a freshly
// generated random identifier under bucket/prefix/table, so cleanup of
// one run can never touch another run's in-flight files.
package staging

import (
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/lakebound/redshift-extract/internal/errors"
)

// Scheme is the only object-store URI scheme the pipeline understands.
const Scheme = "s3://"

// Path addresses one staging location as bucket plus key prefix.
type Path struct {
	Bucket string
	Prefix string
}

// String renders the path in s3://bucket/prefix/ form.
func (p Path) String() string {
	prefix := p.Prefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return Scheme + p.Bucket + "/" + prefix
}

// Allocate returns a collision-free staging path for one run. The suffix
// is a 128-bit random identifier in canonical string form, generated
// fresh per call and never reused.
func Allocate(bucket, prefixBase, table string) Path {
	runID := uuid.NewString()
	return Path{
		Bucket: bucket,
		Prefix: path.Join(prefixBase, table, runID) + "/",
	}
}

// Parse validates and splits a staging path string. Anything without the
// s3:// scheme or without both a bucket and a key prefix is rejected as
// a fatal path-format error.
func Parse(raw string) (Path, error) {
	if !strings.HasPrefix(raw, Scheme) {
		return Path{}, errors.New(errors.ErrCategoryStorage, errors.CodeInvalidPath,
			"invalid staging path: "+raw)
	}

	rest := strings.TrimPrefix(raw, Scheme)
	bucket, prefix, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || prefix == "" {
		return Path{}, errors.New(errors.ErrCategoryStorage, errors.CodeInvalidPath,
			"invalid staging path: "+raw)
	}

	return Path{Bucket: bucket, Prefix: prefix}, nil
}

package staging

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/lakebound/redshift-extract/internal/errors"
)

func TestAllocate_PathShape(t *testing.T) {
	p := Allocate("my-bucket", "redshift-unload", "public.users")

	if p.Bucket != "my-bucket" {
		t.Errorf("bucket = %q, want my-bucket", p.Bucket)
	}
	if !strings.HasPrefix(p.Prefix, "redshift-unload/public.users/") {
		t.Errorf("prefix = %q, want redshift-unload/public.users/ prefix", p.Prefix)
	}
	if !strings.HasSuffix(p.Prefix, "/") {
		t.Errorf("prefix = %q, want trailing slash", p.Prefix)
	}
	if !strings.HasPrefix(p.String(), "s3://my-bucket/redshift-unload/") {
		t.Errorf("String() = %q", p.String())
	}
}

func TestAllocate_SequentialPathsDistinct(t *testing.T) {
	a := Allocate("b", "p", "t")
	b := Allocate("b", "p", "t")
	if a.Prefix == b.Prefix {
		t.Fatalf("two allocations for the same table share a prefix: %q", a.Prefix)
	}
}

// TestProperty_AllocatedPathsNeverCollide validates that any two
// allocations, same table or not, produce distinct prefixes.
func TestProperty_AllocatedPathsNeverCollide(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("two allocations never share a prefix", prop.ForAll(
		func(table1, table2 string) bool {
			p1 := Allocate("bucket", "prefix", table1)
			p2 := Allocate("bucket", "prefix", table2)
			return p1.Prefix != p2.Prefix
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestParse_RoundTrip(t *testing.T) {
	orig := Allocate("bucket", "prefix", "tbl")
	parsed, err := Parse(orig.String())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.Bucket != orig.Bucket || parsed.Prefix != orig.Prefix {
		t.Errorf("Parse(%q) = %+v, want %+v", orig.String(), parsed, orig)
	}
}

func TestParse_RejectsMalformedPaths(t *testing.T) {
	for _, raw := range []string{
		"gs://bucket/prefix/",
		"bucket/prefix",
		"s3://",
		"s3://bucket-only",
		"s3://bucket/",
		"",
	} {
		_, err := Parse(raw)
		if err == nil {
			t.Errorf("Parse(%q) should fail", raw)
			continue
		}
		if errors.GetCode(err) != errors.CodeInvalidPath {
			t.Errorf("Parse(%q) code = %q, want %q", raw, errors.GetCode(err), errors.CodeInvalidPath)
		}
	}
}

// Package schemamap translates raw warehouse column types into schema
// type nodes. Mapping is pure and deterministic: the same raw type and
// mapper configuration always produce the same node, and unknown types
// fall back to nullable string so discovery never aborts on an
// unmodeled type.
package schemamap

import (
	"math"
	"strconv"
	"strings"

	"github.com/lakebound/redshift-extract/internal/errors"
	"github.com/lakebound/redshift-extract/pkg/types"
)

// Mapper holds the configuration flags that resolve mapping ambiguities.
type Mapper struct {
	// DatesAsString maps date/time-family types to plain nullable
	// strings instead of format-tagged nodes.
	DatesAsString bool

	// SuperAsObject maps SUPER columns to an open object/array union
	// instead of nullable string.
	SuperAsObject bool
}

// New returns a Mapper with the given ambiguity-resolution flags.
func New(datesAsString, superAsObject bool) Mapper {
	return Mapper{DatesAsString: datesAsString, SuperAsObject: superAsObject}
}

// RawType is the parsed form of a warehouse type reference: a normalized
// base name plus the declared numeric scale, when one was present. It is
// the closed set of shapes the mapper matches on; names it does not
// model take the string fallback path inside MapType.
type RawType struct {
	// Name is the lower-cased base type name with any trailing
	// parameter list removed, e.g. "varchar" for "VARCHAR(255)".
	Name string

	// Scale is the declared numeric scale (digits right of the decimal
	// point); zero when absent or not a numeric type.
	Scale int
}

// ParseRawType normalizes a raw warehouse type string into a RawType.
// The first trailing parameter group is stripped exactly once; nested or
// repeated groups never recurse. The only malformed input is an empty
// type string.
func ParseRawType(raw string) (RawType, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return RawType{}, errors.NewSchemaError(errors.CodeEmptyType, "empty column type")
	}

	idx := strings.Index(s, "(")
	if idx < 0 {
		return RawType{Name: s}, nil
	}

	rt := RawType{Name: strings.TrimSpace(s[:idx])}
	if rt.Name == "" {
		return RawType{}, errors.NewSchemaError(errors.CodeEmptyType, "empty column type")
	}

	params := strings.TrimSuffix(strings.TrimSpace(s[idx+1:]), ")")
	if isNumericName(rt.Name) {
		if parts := strings.Split(params, ","); len(parts) == 2 {
			if scale, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && scale > 0 {
				rt.Scale = scale
			}
		}
	}
	return rt, nil
}

// ToSchemaType maps a raw warehouse type string to its schema type node.
// This is the string-form entry point used when only introspection text
// is available; discovery with structured precision/scale uses MapType.
func (m Mapper) ToSchemaType(raw string) (types.TypeNode, error) {
	rt, err := ParseRawType(raw)
	if err != nil {
		return types.TypeNode{}, err
	}
	return m.MapType(rt), nil
}

// MapType maps a parsed warehouse type to its schema type node. The
// switch is exhaustive over the modeled variants; anything else maps to
// nullable string.
func (m Mapper) MapType(rt RawType) types.TypeNode {
	switch rt.Name {
	case "super":
		// Parameter text never influences the SUPER mapping.
		if m.SuperAsObject {
			return types.TypeNode{
				Type:                 []string{"null", "object", "array", "string", "number", "boolean"},
				AdditionalProperties: true,
			}
		}
		return nullable("string")

	case "hllsketch", "geometry", "geography":
		// No configuration toggle for these; always opaque strings.
		return nullable("string")

	case "smallint", "int2", "integer", "int", "int4", "bigint", "int8":
		return nullable("integer")

	case "numeric", "decimal":
		if rt.Scale > 0 {
			node := nullable("number")
			node.MultipleOf = math.Pow(10, -float64(rt.Scale))
			return node
		}
		return nullable("number")

	case "real", "float4", "double precision", "float8", "float":
		return nullable("number")

	case "boolean", "bool":
		return nullable("boolean")

	case "date":
		return m.dateNode("date")

	case "time", "timetz", "time without time zone", "time with time zone":
		return m.dateNode("time")

	case "timestamp", "timestamptz", "timestamp without time zone", "timestamp with time zone":
		return m.dateNode("date-time")

	default:
		// char, varchar, text and every unmapped type: nullable string.
		return nullable("string")
	}
}

// dateNode returns the node for a date/time-family type, honoring the
// DatesAsString flag.
func (m Mapper) dateNode(format string) types.TypeNode {
	if m.DatesAsString {
		return nullable("string")
	}
	node := nullable("string")
	node.Format = format
	return node
}

// isNumericName reports whether scale parsing applies to the base name.
func isNumericName(name string) bool {
	return name == "numeric" || name == "decimal"
}

// nullable returns a node admitting null plus the given JSON type.
func nullable(t string) types.TypeNode {
	return types.TypeNode{Type: []string{"null", t}}
}

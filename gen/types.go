package gen

import (
	"fmt"

	"github.com/minipb/minipb/schema"
)

// goType describes how one primitive wire type maps onto Go: the type used
// in struct fields, the wire.Builder/wire.Parser method suffix that moves
// it on and off the wire, and the weight (fixed width, or 0 for varints
// which cost up to 10 bytes) estimate_size uses per occurrence.
type goType struct {
	goName   string
	accessor string
	width    int // 0 means varint (costs up to 10 bytes, use varintWeight)
}

const varintWeight = 10

var primitiveGoTypes = map[schema.PrimitiveType]goType{
	schema.TypeDouble:   {"float64", "Double", 8},
	schema.TypeFloat:    {"float32", "Float", 4},
	schema.TypeInt64:    {"int64", "Int64", 0},
	schema.TypeUint64:   {"uint64", "Uint64", 0},
	schema.TypeInt32:    {"int32", "Int32", 0},
	schema.TypeFixed64:  {"uint64", "Fixed64", 8},
	schema.TypeFixed32:  {"uint32", "Fixed32", 4},
	schema.TypeBool:     {"bool", "Bool", 0},
	schema.TypeString:   {"string", "String", 0},
	schema.TypeBytes:    {"[]byte", "Bytes", 0},
	schema.TypeUint32:   {"uint32", "Uint32", 0},
	schema.TypeSfixed32: {"int32", "Sfixed32", 4},
	schema.TypeSfixed64: {"int64", "Sfixed64", 8},
	schema.TypeSint32:   {"int32", "Sint32", 0},
	schema.TypeSint64:   {"int64", "Sint64", 0},
}

// fieldGoType returns the Go type of a struct field for f, accounting for
// the repeated label and message-vs-primitive kind.
func fieldGoType(f *schema.Field, goTypeName func(fullName string) string) (string, error) {
	var elem string
	switch f.Type.Kind {
	case schema.KindPrimitive:
		gt, ok := primitiveGoTypes[f.Type.PrimitiveType]
		if !ok {
			return "", fmt.Errorf("field %s: unknown primitive type %q", f.Name, f.Type.PrimitiveType)
		}
		elem = gt.goName
	case schema.KindMessage:
		elem = "*" + goTypeName(f.Type.MessageType)
	default:
		return "", fmt.Errorf("field %s: unsupported field kind %q", f.Name, f.Type.Kind)
	}
	if f.Label == schema.LabelRepeated {
		return "[]" + elem, nil
	}
	return elem, nil
}

// headerSize is the varint width of a bare field tag, the Go copy of the
// C++ generator's header_size(field_id) = varint_size(field_id<<3) helper.
func headerSize(fieldNumber int32) int {
	return 1 + extraVarintBytes(uint64(fieldNumber)<<3)
}

// extraVarintBytes returns varint_size(v)-1: how many continuation bytes a
// varint needs beyond its first, used only to keep headerSize's formula
// readable without importing the wire package's own VarintSize into the
// generator.
func extraVarintBytes(v uint64) int {
	n := 0
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

package gen

import (
	"fmt"

	"github.com/minipb/minipb/schema"
)

// emitEstimateSize renders EstimateSize() int for fm, translating
// DummyCodeGenerator::EmitEstimateSize field by field. Unlike the C++
// original's weight-bucketed multi map (grouping same-weight fields into
// one multiplication to save a handful of instructions), each field just
// contributes its own term directly: the extra additions cost nothing a
// human would notice and read far more directly than the bucketing would.
func emitEstimateSize(emit func(string, ...any), fm *flatMessage) error {
	emit("func (m *%s) EstimateSize() int {", fm.goName)
	emit("\tsize := 0")
	for _, f := range fm.msg.Fields {
		hsize := headerSize(f.Number)
		name := exportedName(f.Name)
		switch f.Type.Kind {
		case schema.KindPrimitive:
			gt, ok := primitiveGoTypes[f.Type.PrimitiveType]
			if !ok {
				return fmt.Errorf("field %s: unknown primitive type %q", f.Name, f.Type.PrimitiveType)
			}
			weight := gt.width
			if weight == 0 {
				weight = varintWeight
			}
			switch {
			case f.Label == schema.LabelRepeated && (f.Type.PrimitiveType == schema.TypeString || f.Type.PrimitiveType == schema.TypeBytes):
				emit("\tsize += %d * len(m.%s)", weight+hsize, name)
				emit("\tfor _, e := range m.%s {", name)
				emit("\t\tsize += len(e)")
				emit("\t}")
			case f.Label == schema.LabelRepeated:
				emit("\tsize += %d * len(m.%s)", weight+hsize, name)
				if f.Packed {
					// A packed block adds one header and a length prefix of
					// up to 10 bytes, written even when the slice is empty.
					emit("\tsize += %d", hsize+varintWeight)
				}
			case f.Type.PrimitiveType == schema.TypeString || f.Type.PrimitiveType == schema.TypeBytes:
				emit("\tsize += %d + len(m.%s)", weight+hsize, name)
			default:
				emit("\tsize += %d", weight+hsize)
			}
		case schema.KindMessage:
			if f.Label == schema.LabelRepeated {
				emit("\tfor _, e := range m.%s {", name)
				emit("\t\tif e != nil {")
				emit("\t\t\tsize += e.EstimateSize() + 10 + %d", hsize)
				emit("\t\t}")
				emit("\t}")
			} else {
				emit("\tif m.%s != nil {", name)
				emit("\t\tsize += m.%s.EstimateSize() + 10 + %d", name, hsize)
				emit("\t}")
			}
		default:
			return fmt.Errorf("field %s: unsupported field kind %q", f.Name, f.Type.Kind)
		}
	}
	emit("\treturn size")
	emit("}")
	emit("")
	return nil
}

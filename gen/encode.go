package gen

import (
	"fmt"

	"github.com/minipb/minipb/schema"
)

// emitEncode renders Encode(b *wire.Builder) error for fm, translating
// DummyCodeGenerator::EmitEncode. Packed-eligible repeated primitives
// (f.Packed, resolved by the registry from the field's schema) dispatch to
// one of the Builder's three packed emitters; everything else loops a
// per-element call to the matching singular emitter.
func emitEncode(emit func(string, ...any), st *genState, fm *flatMessage) error {
	emit("func (m *%s) Encode(b *wire.Builder) error {", fm.goName)
	for _, f := range fm.msg.Fields {
		name := exportedName(f.Name)
		if err := emitEncodeField(emit, st, f, name); err != nil {
			return err
		}
	}
	emit("\treturn b.LastError()")
	emit("}")
	emit("")
	return nil
}

func emitEncodeField(emit func(string, ...any), st *genState, f *schema.Field, name string) error {
	if f.Type.Kind == schema.KindMessage {
		if f.Label == schema.LabelRepeated {
			emit("\tfor _, e := range m.%s {", name)
			emit("\t\tif e != nil {")
			emit("\t\t\tif err := b.MessageField(%d, e); err != nil {", f.Number)
			emit("\t\t\t\treturn err")
			emit("\t\t\t}")
			emit("\t\t}")
			emit("\t}")
		} else {
			emit("\tif m.%s != nil {", name)
			emit("\t\tif err := b.MessageField(%d, m.%s); err != nil {", f.Number, name)
			emit("\t\t\treturn err")
			emit("\t\t}")
			emit("\t}")
		}
		return nil
	}

	gt, ok := primitiveGoTypes[f.Type.PrimitiveType]
	if !ok {
		return fmt.Errorf("field %s: unknown primitive type %q", f.Name, f.Type.PrimitiveType)
	}

	if f.Label == schema.LabelRepeated && f.Packed {
		return emitPackedEncode(emit, st, f, name, gt)
	}
	if f.Label == schema.LabelRepeated {
		emit("\tfor _, e := range m.%s {", name)
		emit("\t\tif err := b.%sField(%d, e); err != nil {", gt.accessor, f.Number)
		emit("\t\t\treturn err")
		emit("\t\t}")
		emit("\t}")
		return nil
	}
	emit("\tif err := b.%sField(%d, m.%s); err != nil {", gt.accessor, f.Number, name)
	emit("\t\treturn err")
	emit("\t}")
	return nil
}

// emitPackedEncode builds the raw []uintN slice each packed emitter expects
// and calls it. The per-element conversion mirrors exactly what the
// corresponding singular Builder method does internally (sign-extension
// for plain ints, EncodeZigZag for sint*, bit-cast for float/double), so a
// packed field round-trips identically to the same values sent unpacked.
func emitPackedEncode(emit func(string, ...any), st *genState, f *schema.Field, name string, gt goType) error {
	switch f.Type.PrimitiveType {
	case schema.TypeFloat, schema.TypeFixed32, schema.TypeSfixed32:
		emit("\traw%s := make([]uint32, len(m.%s))", name, name)
		emit("\tfor i, e := range m.%s {", name)
		switch f.Type.PrimitiveType {
		case schema.TypeFloat:
			st.needsMath = true
			emit("\t\traw%s[i] = math.Float32bits(e)", name)
		case schema.TypeSfixed32:
			emit("\t\traw%s[i] = uint32(e)", name)
		default:
			emit("\t\traw%s[i] = e", name)
		}
		emit("\t}")
		emit("\tif err := b.PackedFixed32Field(%d, raw%s); err != nil {", f.Number, name)
		emit("\t\treturn err")
		emit("\t}")
	case schema.TypeDouble, schema.TypeFixed64, schema.TypeSfixed64:
		emit("\traw%s := make([]uint64, len(m.%s))", name, name)
		emit("\tfor i, e := range m.%s {", name)
		switch f.Type.PrimitiveType {
		case schema.TypeDouble:
			st.needsMath = true
			emit("\t\traw%s[i] = math.Float64bits(e)", name)
		case schema.TypeSfixed64:
			emit("\t\traw%s[i] = uint64(e)", name)
		default:
			emit("\t\traw%s[i] = e", name)
		}
		emit("\t}")
		emit("\tif err := b.PackedFixed64Field(%d, raw%s); err != nil {", f.Number, name)
		emit("\t\treturn err")
		emit("\t}")
	default: // varint family: int32, int64, uint32, uint64, bool, sint32, sint64
		emit("\traw%s := make([]uint64, len(m.%s))", name, name)
		emit("\tfor i, e := range m.%s {", name)
		switch f.Type.PrimitiveType {
		case schema.TypeBool:
			emit("\t\tv := uint64(0)")
			emit("\t\tif e {")
			emit("\t\t\tv = 1")
			emit("\t\t}")
			emit("\t\traw%s[i] = v", name)
		case schema.TypeSint32:
			emit("\t\traw%s[i] = wire.EncodeZigZag32(e)", name)
		case schema.TypeSint64:
			emit("\t\traw%s[i] = wire.EncodeZigZag64(e)", name)
		case schema.TypeUint64:
			emit("\t\traw%s[i] = e", name)
		default: // int32, int64, uint32
			emit("\t\traw%s[i] = uint64(e)", name)
		}
		emit("\t}")
		emit("\tif err := b.PackedVarintField(%d, raw%s); err != nil {", f.Number, name)
		emit("\t\treturn err")
		emit("\t}")
	}
	return nil
}

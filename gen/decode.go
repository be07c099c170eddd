package gen

import (
	"fmt"

	"github.com/minipb/minipb/schema"
)

// emitDecode renders Decode(p *wire.Parser) error for fm, translating
// DummyCodeGenerator::EmitDecode's next-field/switch/skip loop. Repeated
// primitive fields call the matching Append* accessor regardless of
// f.Packed: the parser already tolerates either wire encoding for a
// packable type (spec.md §4.5), so the generator never needs to know how
// the bytes it is about to read were actually packed.
func emitDecode(emit func(string, ...any), fm *flatMessage, goTypeName func(string) string) error {
	emit("func (m *%s) Decode(p *wire.Parser) error {", fm.goName)
	emit("\tfor !p.IsEOF() {")
	emit("\t\tif err := p.NextField(); err != nil {")
	emit("\t\t\treturn err")
	emit("\t\t}")
	emit("\t\tswitch p.FieldID() {")
	for _, f := range fm.msg.Fields {
		name := exportedName(f.Name)
		emit("\t\tcase %d:", f.Number)
		if err := emitDecodeField(emit, f, name, goTypeName); err != nil {
			return err
		}
	}
	emit("\t\tdefault:")
	emit("\t\t\tif err := p.SkipField(); err != nil {")
	emit("\t\t\t\treturn err")
	emit("\t\t\t}")
	emit("\t\t}")
	emit("\t\tif p.IsEOF() {")
	emit("\t\t\tbreak")
	emit("\t\t}")
	emit("\t}")
	emit("\treturn nil")
	emit("}")
	emit("")
	return nil
}

func emitDecodeField(emit func(string, ...any), f *schema.Field, name string, goTypeName func(string) string) error {
	if f.Type.Kind == schema.KindMessage {
		goType := goTypeName(f.Type.MessageType)
		if f.Label == schema.LabelRepeated {
			emit("\t\t\te := &%s{}", goType)
			emit("\t\t\tif err := p.MessageField(e); err != nil {")
			emit("\t\t\t\treturn wire.WrapField(err, %q)", f.Name)
			emit("\t\t\t}")
			emit("\t\t\tm.%s = append(m.%s, e)", name, name)
		} else {
			emit("\t\t\tif m.%s == nil {", name)
			emit("\t\t\t\tm.%s = &%s{}", name, goType)
			emit("\t\t\t}")
			emit("\t\t\tif err := p.MessageField(m.%s); err != nil {", name)
			emit("\t\t\t\treturn wire.WrapField(err, %q)", f.Name)
			emit("\t\t\t}")
		}
		return nil
	}

	gt, ok := primitiveGoTypes[f.Type.PrimitiveType]
	if !ok {
		return fmt.Errorf("field %s: unknown primitive type %q", f.Name, f.Type.PrimitiveType)
	}
	if f.Label == schema.LabelRepeated {
		emit("\t\t\tif err := p.Append%s(&m.%s); err != nil {", gt.accessor, name)
		emit("\t\t\t\treturn wire.WrapField(err, %q)", f.Name)
		emit("\t\t\t}")
		return nil
	}
	emit("\t\t\tv, err := p.%sField()", gt.accessor)
	emit("\t\t\tif err != nil {")
	emit("\t\t\t\treturn wire.WrapField(err, %q)", f.Name)
	emit("\t\t\t}")
	emit("\t\t\tm.%s = v", name)
	return nil
}

package wire

import (
	"bytes"
	"testing"
)

// messageBInner and messageB mirror the two-message fixture from the
// original minipb conformance test: a string field, a nested message
// holding a repeated int32 and a plain int32, and a trailing float.
// Hand-rolled here in the shape the generator (package gen) produces,
// since this package must stay independent of it.
type messageBInner struct {
	field1 []int32
	field2 int32
}

func (m *messageBInner) EstimateSize() int {
	n := 0
	for range m.field1 {
		n += 10 + headerSize(1)
	}
	n += 10 + headerSize(2)
	return n
}

func (m *messageBInner) Encode(b *Builder) error {
	for _, v := range m.field1 {
		if err := b.Int32Field(1, v); err != nil {
			return err
		}
	}
	return b.Int32Field(2, m.field2)
}

func (m *messageBInner) Decode(p *Parser) error {
	for !p.IsEOF() {
		if err := p.NextField(); err != nil {
			return err
		}
		switch p.FieldID() {
		case 1:
			if err := p.AppendInt32(&m.field1); err != nil {
				return WrapField(err, "field1")
			}
		case 2:
			v, err := p.Int32Field()
			if err != nil {
				return WrapField(err, "field2")
			}
			m.field2 = v
		default:
			if err := p.SkipField(); err != nil {
				return err
			}
		}
		if p.IsEOF() {
			break
		}
	}
	return nil
}

type messageB struct {
	field1 string
	field2 *messageBInner
	field3 float32
}

func (m *messageB) EstimateSize() int {
	n := 10 + headerSize(1) + len(m.field1)
	if m.field2 != nil {
		n += m.field2.EstimateSize() + 10 + headerSize(2)
	}
	n += Fixed32Size() + headerSize(3)
	return n
}

func (m *messageB) Encode(b *Builder) error {
	if err := b.StringField(1, m.field1); err != nil {
		return err
	}
	if m.field2 != nil {
		if err := b.MessageField(2, m.field2); err != nil {
			return err
		}
	}
	return b.FloatField(3, m.field3)
}

func (m *messageB) Decode(p *Parser) error {
	for !p.IsEOF() {
		if err := p.NextField(); err != nil {
			return err
		}
		switch p.FieldID() {
		case 1:
			v, err := p.StringField()
			if err != nil {
				return WrapField(err, "field1")
			}
			m.field1 = v
		case 2:
			m.field2 = &messageBInner{}
			if err := p.MessageField(m.field2); err != nil {
				return WrapField(err, "field2")
			}
		case 3:
			v, err := p.FloatField()
			if err != nil {
				return WrapField(err, "field3")
			}
			m.field3 = v
		default:
			if err := p.SkipField(); err != nil {
				return err
			}
		}
		if p.IsEOF() {
			break
		}
	}
	return nil
}

// headerSize is the varint width of a field tag on its own, used by
// hand-written EstimateSize bodies the same way generated code computes
// it (see gen.headerSize for the generator's copy of this helper).
func headerSize(fieldNumber uint32) int {
	return VarintSize(uint64(MakeTag(FieldNumber(fieldNumber), WireVarint)))
}

func TestConformance_RoundTripNestedMessage(t *testing.T) {
	msg := &messageB{
		field1: "Hello world",
		field2: &messageBInner{field1: []int32{12345}, field2: 6789},
		field3: 1.0,
	}

	var buf bytes.Buffer
	b := NewBuilder(NewBufferOutputStream(&buf))
	if err := msg.Encode(b); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := b.LastError(); err != nil {
		t.Fatalf("LastError: %v", err)
	}

	want := []byte{
		0x0a, 0x0b, 0x48, 0x65, 0x6c, 0x6c, 0x6f, 0x20, 0x77, 0x6f, 0x72, 0x6c, 0x64,
		0x12, 0x06, 0x08, 0xb9, 0x60, 0x10, 0x85, 0x35,
		0x1d, 0x00, 0x00, 0x80, 0x3f,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x\nwant % x", buf.Bytes(), want)
	}

	decoded := &messageB{}
	p := NewParser(NewArrayInputStream(buf.Bytes()))
	if err := decoded.Decode(p); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.field1 != msg.field1 || decoded.field3 != msg.field3 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded.field2 == nil || decoded.field2.field2 != 6789 ||
		len(decoded.field2.field1) != 1 || decoded.field2.field1[0] != 12345 {
		t.Fatalf("decoded.field2 = %+v", decoded.field2)
	}
}

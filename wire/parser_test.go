package wire

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func encode(t *testing.T, fn func(b *Builder) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	b := NewBuilder(NewBufferOutputStream(&buf))
	if err := fn(b); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := b.LastError(); err != nil {
		t.Fatalf("LastError: %v", err)
	}
	return buf.Bytes()
}

func TestParser_FloatDoubleTolerance(t *testing.T) {
	// A float field (fixed32) must still be readable through DoubleField,
	// and a double field (fixed64) through FloatField (spec.md §4.5).
	data := encode(t, func(b *Builder) error {
		return b.FloatField(1, 1.5)
	})
	p := NewParser(NewArrayInputStream(data))
	if err := p.NextField(); err != nil {
		t.Fatalf("NextField: %v", err)
	}
	got, err := p.DoubleField()
	if err != nil {
		t.Fatalf("DoubleField reading a fixed32: %v", err)
	}
	if got != 1.5 {
		t.Errorf("got %v, want 1.5", got)
	}

	data = encode(t, func(b *Builder) error {
		return b.DoubleField(1, 2.25)
	})
	p = NewParser(NewArrayInputStream(data))
	if err := p.NextField(); err != nil {
		t.Fatalf("NextField: %v", err)
	}
	fgot, err := p.FloatField()
	if err != nil {
		t.Fatalf("FloatField reading a fixed64: %v", err)
	}
	if fgot != 2.25 {
		t.Errorf("got %v, want 2.25", fgot)
	}
}

func TestParser_UnknownFieldSkip(t *testing.T) {
	data := encode(t, func(b *Builder) error {
		if err := b.StringField(1, "hi"); err != nil {
			return err
		}
		if err := b.Int32Field(99, 42); err != nil {
			return err
		}
		return b.BoolField(2, true)
	})

	p := NewParser(NewArrayInputStream(data))
	var s string
	var flag bool
	for !p.IsEOF() {
		if err := p.NextField(); err != nil {
			t.Fatalf("NextField: %v", err)
		}
		switch p.FieldID() {
		case 1:
			var err error
			s, err = p.StringField()
			if err != nil {
				t.Fatalf("StringField: %v", err)
			}
		case 2:
			var err error
			flag, err = p.BoolField()
			if err != nil {
				t.Fatalf("BoolField: %v", err)
			}
		default:
			if err := p.SkipField(); err != nil {
				t.Fatalf("SkipField: %v", err)
			}
		}
		if p.IsEOF() {
			break
		}
	}
	if s != "hi" || !flag {
		t.Errorf("s=%q flag=%v, want hi/true", s, flag)
	}
}

func TestParser_MessageFieldBounded(t *testing.T) {
	inner := encode(t, func(b *Builder) error {
		return b.Int32Field(1, 7)
	})
	outer := encode(t, func(b *Builder) error {
		if err := b.BytesField(1, inner); err != nil {
			return err
		}
		return b.Int32Field(2, 9)
	})

	p := NewParser(NewArrayInputStream(outer))
	if err := p.NextField(); err != nil {
		t.Fatalf("NextField: %v", err)
	}
	var sub innerMsg
	if err := p.MessageField(&sub); err != nil {
		t.Fatalf("MessageField: %v", err)
	}
	if sub.v != 7 {
		t.Fatalf("sub.v = %d, want 7", sub.v)
	}
	if p.IsEOF() {
		t.Fatal("outer stream should still have field 2 left")
	}
	if err := p.NextField(); err != nil {
		t.Fatalf("NextField (field 2): %v", err)
	}
	v, err := p.Int32Field()
	if err != nil || v != 9 {
		t.Fatalf("field 2 = %d, %v, want 9, nil", v, err)
	}
}

type innerMsg struct{ v int32 }

func (m *innerMsg) Decode(p *Parser) error {
	for !p.IsEOF() {
		if err := p.NextField(); err != nil {
			return err
		}
		if p.FieldID() == 1 {
			v, err := p.Int32Field()
			if err != nil {
				return err
			}
			m.v = v
		} else if err := p.SkipField(); err != nil {
			return err
		}
	}
	return nil
}

func TestParser_RepeatedPackedOrUnpackedTolerance(t *testing.T) {
	packed := encode(t, func(b *Builder) error {
		return b.PackedVarintField(1, []uint64{1, 2, 3})
	})
	p := NewParser(NewArrayInputStream(packed))
	var got []int32
	for !p.IsEOF() {
		if err := p.NextField(); err != nil {
			t.Fatalf("NextField: %v", err)
		}
		if err := p.AppendInt32(&got); err != nil {
			t.Fatalf("AppendInt32 (packed): %v", err)
		}
		if p.IsEOF() {
			break
		}
	}
	if !reflect.DeepEqual(got, []int32{1, 2, 3}) {
		t.Errorf("packed: got %v", got)
	}

	unpacked := encode(t, func(b *Builder) error {
		if err := b.Int32Field(1, 5); err != nil {
			return err
		}
		return b.Int32Field(1, 6)
	})
	p = NewParser(NewArrayInputStream(unpacked))
	got = nil
	for !p.IsEOF() {
		if err := p.NextField(); err != nil {
			t.Fatalf("NextField: %v", err)
		}
		if err := p.AppendInt32(&got); err != nil {
			t.Fatalf("AppendInt32 (unpacked): %v", err)
		}
		if p.IsEOF() {
			break
		}
	}
	if !reflect.DeepEqual(got, []int32{5, 6}) {
		t.Errorf("unpacked: got %v", got)
	}
}

func TestDecodeVarint_NoTerminator(t *testing.T) {
	// Ten continuation bytes with no terminator (top bit never clear) is
	// malformed regardless of how far decodeVarint is willing to scan
	// (spec.md §4's boundary behavior for a truncated/malformed varint).
	data := bytes.Repeat([]byte{0x80}, 10)
	p := NewParser(NewArrayInputStream(data))
	if err := p.NextField(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("NextField: err = %v, want ErrInvalidInput", err)
	}
}

func TestParser_OversizedSubmessageLength(t *testing.T) {
	// A length-delimited field whose declared length exceeds what's left
	// in the stream is rejected outright rather than clipped. Field 1,
	// wire type WireBytes, tag byte 0x0a; declared length 0x7f with only
	// one payload byte actually present.
	data := []byte{0x0a, 0x7f, 0x00}

	p := NewParser(NewArrayInputStream(data))
	if err := p.NextField(); err != nil {
		t.Fatalf("NextField: %v", err)
	}
	var sub innerMsg
	if err := p.MessageField(&sub); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("MessageField: err = %v, want ErrInvalidInput", err)
	}
}

func TestSubsetInputStream_ClipsToParent(t *testing.T) {
	parent := NewArrayInputStream([]byte{1, 2, 3})
	sub := NewSubsetInputStream(parent, 10)
	if sub.BytesAvailable() != 3 {
		t.Errorf("BytesAvailable = %d, want 3 (clipped to parent)", sub.BytesAvailable())
	}
}

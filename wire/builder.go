package wire

import "math"

// Builder serializes a generated message into an OutputStream. It follows
// the sticky-error pattern from original_source/include/minipb/minipb.h's
// msg_builder: once any emitter call fails, the failure is latched and
// every later call on the same Builder becomes a no-op that returns the
// same error, so generated Encode methods can chain calls without
// checking every one individually and only need to check LastError once
// at the end.
type Builder struct {
	stream OutputStream
	err    error
}

// NewBuilder creates a Builder writing to stream.
func NewBuilder(stream OutputStream) *Builder {
	return &Builder{stream: stream}
}

// LastError returns the first error encountered, or nil if every emitter
// call so far has succeeded.
func (b *Builder) LastError() error { return b.err }

func (b *Builder) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return b.err
}

func (b *Builder) writeVarintRaw(v uint64) error {
	if b.err != nil {
		return b.err
	}
	var buf [maxVarintLen]byte
	n := varintBuild(v, &buf)
	if err := b.stream.Write(buf[:n]); err != nil {
		return b.fail(err)
	}
	return nil
}

func (b *Builder) writeFixed32Raw(v uint32) error {
	if b.err != nil {
		return b.err
	}
	if err := b.stream.Write(appendFixed32(nil, v)); err != nil {
		return b.fail(err)
	}
	return nil
}

func (b *Builder) writeFixed64Raw(v uint64) error {
	if b.err != nil {
		return b.err
	}
	if err := b.stream.Write(appendFixed64(nil, v)); err != nil {
		return b.fail(err)
	}
	return nil
}

// RawBytes writes data with no header or length prefix, the Go analogue
// of the C++ original's fixed(bytes, len) passthrough. Used internally by
// the string/bytes emitters; exposed for callers that manage their own
// framing.
func (b *Builder) RawBytes(data []byte) error {
	if b.err != nil {
		return b.err
	}
	if err := b.stream.Write(data); err != nil {
		return b.fail(err)
	}
	return nil
}

func (b *Builder) fieldHeader(fieldNumber uint32, wt WireType) error {
	return b.writeVarintRaw(uint64(MakeTag(FieldNumber(fieldNumber), wt)))
}

// beginLengthDelimited writes a field header followed by a placeholder
// length prefix reserved for the widest varint that could describe a
// payload up to upperBound bytes. It returns the stream position of the
// placeholder and its reserved width, both needed to patch in the real
// length once the payload has been written. upperBound==0 means "unknown"
// and reserves the maximum 10-byte width.
func (b *Builder) beginLengthDelimited(fieldNumber uint32, upperBound uint64) (pos int, reserved int, err error) {
	if b.err != nil {
		return 0, 0, b.err
	}
	if err := b.fieldHeader(fieldNumber, WireBytes); err != nil {
		return 0, 0, err
	}
	if upperBound == 0 {
		upperBound = math.MaxUint64
	}
	d := VarintSize(upperBound)
	pos = b.stream.Position()
	var zero [maxVarintLen]byte
	if err := b.stream.Write(zero[:d]); err != nil {
		return 0, 0, b.fail(err)
	}
	return pos, d, nil
}

// finishLengthDelimited patches the placeholder reserved by
// beginLengthDelimited with the real payload length, padded out to
// exactly `reserved` bytes by forcing the continuation bit on every byte
// but the last (spec.md §4.4 step 7). A small real size therefore ends up
// represented as a run of zero-payload continuation bytes followed by the
// true final byte, e.g. real=1 with reserved=2 encodes as [0x81, 0x00].
func (b *Builder) finishLengthDelimited(pos, reserved int, upperBound uint64) error {
	if b.err != nil {
		return b.err
	}
	real := uint64(b.stream.Position() - (pos + reserved))
	if upperBound != 0 && real > upperBound {
		return b.fail(ErrGeneralError)
	}
	var buf [maxVarintLen]byte
	varintBuild(real, &buf)
	for i := 0; i < reserved-1; i++ {
		buf[i] |= 0x80
	}
	if err := b.stream.WriteAt(pos, buf[:reserved]); err != nil {
		return b.fail(err)
	}
	return nil
}

// MessageField encodes msg as a length-delimited sub-message, backpatching
// the real length in place once msg has written itself directly into the
// same stream (spec.md §4.4). Callers must guard nil pointers themselves;
// a nil Marshaler is a programming error, not an absent-field encoding.
func (b *Builder) MessageField(fieldNumber uint32, msg Marshaler) error {
	if b.err != nil {
		return b.err
	}
	u := uint64(msg.EstimateSize())
	pos, reserved, err := b.beginLengthDelimited(fieldNumber, u)
	if err != nil {
		return err
	}
	if err := msg.Encode(b); err != nil {
		return b.fail(err)
	}
	return b.finishLengthDelimited(pos, reserved, u)
}

// PackedVarintField encodes values as a packed repeated varint field
// (int32/int64/uint32/uint64/bool/enum). raw must already hold each
// element's wire-ready uint64 representation; signed zigzag types convert
// with EncodeZigZag32/64 before calling this. Upper bound is 10 bytes per
// element, the widest a single varint can be.
func (b *Builder) PackedVarintField(fieldNumber uint32, raw []uint64) error {
	if b.err != nil {
		return b.err
	}
	u := uint64(10 * len(raw))
	pos, reserved, err := b.beginLengthDelimited(fieldNumber, u)
	if err != nil {
		return err
	}
	for _, v := range raw {
		if err := b.writeVarintRaw(v); err != nil {
			return err
		}
	}
	return b.finishLengthDelimited(pos, reserved, u)
}

// PackedFixed32Field encodes values as a packed repeated fixed32 field
// (fixed32/sfixed32/float, the latter already bit-cast by the caller via
// math.Float32bits). The length is exact, so no back-patching is needed.
func (b *Builder) PackedFixed32Field(fieldNumber uint32, raw []uint32) error {
	if b.err != nil {
		return b.err
	}
	if err := b.fieldHeader(fieldNumber, WireBytes); err != nil {
		return err
	}
	if err := b.writeVarintRaw(uint64(len(raw) * 4)); err != nil {
		return err
	}
	for _, v := range raw {
		if err := b.writeFixed32Raw(v); err != nil {
			return err
		}
	}
	return nil
}

// PackedFixed64Field is PackedFixed32Field's fixed64/sfixed64/double
// counterpart.
func (b *Builder) PackedFixed64Field(fieldNumber uint32, raw []uint64) error {
	if b.err != nil {
		return b.err
	}
	if err := b.fieldHeader(fieldNumber, WireBytes); err != nil {
		return err
	}
	if err := b.writeVarintRaw(uint64(len(raw) * 8)); err != nil {
		return err
	}
	for _, v := range raw {
		if err := b.writeFixed64Raw(v); err != nil {
			return err
		}
	}
	return nil
}

// DoubleField encodes a singular double field.
func (b *Builder) DoubleField(fieldNumber uint32, v float64) error {
	if err := b.fieldHeader(fieldNumber, WireFixed64); err != nil {
		return err
	}
	return b.writeFixed64Raw(math.Float64bits(v))
}

// FloatField encodes a singular float field.
func (b *Builder) FloatField(fieldNumber uint32, v float32) error {
	if err := b.fieldHeader(fieldNumber, WireFixed32); err != nil {
		return err
	}
	return b.writeFixed32Raw(math.Float32bits(v))
}

// Int32Field encodes a singular int32 field. Negative values are encoded
// the same way real protobuf does: Go's signed-to-unsigned conversion
// sign-extends v to 64 bits before the varint is built, so a negative
// int32 costs the full 10 bytes on the wire rather than being truncated.
func (b *Builder) Int32Field(fieldNumber uint32, v int32) error {
	if err := b.fieldHeader(fieldNumber, WireVarint); err != nil {
		return err
	}
	return b.writeVarintRaw(uint64(v))
}

// Int64Field encodes a singular int64 field.
func (b *Builder) Int64Field(fieldNumber uint32, v int64) error {
	if err := b.fieldHeader(fieldNumber, WireVarint); err != nil {
		return err
	}
	return b.writeVarintRaw(uint64(v))
}

// Uint32Field encodes a singular uint32 field.
func (b *Builder) Uint32Field(fieldNumber uint32, v uint32) error {
	if err := b.fieldHeader(fieldNumber, WireVarint); err != nil {
		return err
	}
	return b.writeVarintRaw(uint64(v))
}

// Uint64Field encodes a singular uint64 field.
func (b *Builder) Uint64Field(fieldNumber uint32, v uint64) error {
	if err := b.fieldHeader(fieldNumber, WireVarint); err != nil {
		return err
	}
	return b.writeVarintRaw(v)
}

// Sint32Field encodes a singular zigzag-encoded int32 field.
func (b *Builder) Sint32Field(fieldNumber uint32, v int32) error {
	if err := b.fieldHeader(fieldNumber, WireVarint); err != nil {
		return err
	}
	return b.writeVarintRaw(EncodeZigZag32(v))
}

// Sint64Field encodes a singular zigzag-encoded int64 field.
func (b *Builder) Sint64Field(fieldNumber uint32, v int64) error {
	if err := b.fieldHeader(fieldNumber, WireVarint); err != nil {
		return err
	}
	return b.writeVarintRaw(EncodeZigZag64(v))
}

// Fixed32Field encodes a singular fixed32 field.
func (b *Builder) Fixed32Field(fieldNumber uint32, v uint32) error {
	if err := b.fieldHeader(fieldNumber, WireFixed32); err != nil {
		return err
	}
	return b.writeFixed32Raw(v)
}

// Fixed64Field encodes a singular fixed64 field.
func (b *Builder) Fixed64Field(fieldNumber uint32, v uint64) error {
	if err := b.fieldHeader(fieldNumber, WireFixed64); err != nil {
		return err
	}
	return b.writeFixed64Raw(v)
}

// Sfixed32Field encodes a singular sfixed32 field.
func (b *Builder) Sfixed32Field(fieldNumber uint32, v int32) error {
	if err := b.fieldHeader(fieldNumber, WireFixed32); err != nil {
		return err
	}
	return b.writeFixed32Raw(uint32(v))
}

// Sfixed64Field encodes a singular sfixed64 field.
func (b *Builder) Sfixed64Field(fieldNumber uint32, v int64) error {
	if err := b.fieldHeader(fieldNumber, WireFixed64); err != nil {
		return err
	}
	return b.writeFixed64Raw(uint64(v))
}

// BoolField encodes a singular bool field.
func (b *Builder) BoolField(fieldNumber uint32, v bool) error {
	if err := b.fieldHeader(fieldNumber, WireVarint); err != nil {
		return err
	}
	if v {
		return b.writeVarintRaw(1)
	}
	return b.writeVarintRaw(0)
}

// StringField encodes a singular string field.
func (b *Builder) StringField(fieldNumber uint32, v string) error {
	if b.err != nil {
		return b.err
	}
	if err := b.fieldHeader(fieldNumber, WireBytes); err != nil {
		return err
	}
	if err := b.writeVarintRaw(uint64(len(v))); err != nil {
		return err
	}
	return b.RawBytes([]byte(v))
}

// BytesField encodes a singular bytes field.
func (b *Builder) BytesField(fieldNumber uint32, v []byte) error {
	if b.err != nil {
		return b.err
	}
	if err := b.fieldHeader(fieldNumber, WireBytes); err != nil {
		return err
	}
	if err := b.writeVarintRaw(uint64(len(v))); err != nil {
		return err
	}
	return b.RawBytes(v)
}

package wire

import "math"

// Parser walks a length-delimited message field by field. Its model is
// the C++ original's msg_parser scheduler: NextField reads the next tag,
// but only after skipping whatever the previous field's accessor left
// unconsumed, so a caller that calls SkipField or any typed accessor on
// every iteration never has to skip by hand.
type Parser struct {
	stream      InputStream
	fieldNumber uint32
	wireType    WireType
	consumed    bool
}

// NewParser creates a Parser reading from stream. consumed starts true so
// the first NextField call doesn't try to skip a field that was never
// read.
func NewParser(stream InputStream) *Parser {
	return &Parser{stream: stream, consumed: true}
}

// NextField advances to the next field header. Call IsEOF after handling
// the current field and before calling NextField again; calling NextField
// once bytes_available() has reached zero is a caller error.
func (p *Parser) NextField() error {
	if !p.consumed {
		if err := p.skipField(); err != nil {
			return err
		}
	}
	tag, err := decodeVarint(p.stream)
	if err != nil {
		return err
	}
	fieldNumber, wireType := ParseTag(Tag(tag))
	p.fieldNumber, p.wireType = uint32(fieldNumber), wireType
	p.consumed = false
	return nil
}

// FieldID returns the field number of the field NextField most recently
// scheduled.
func (p *Parser) FieldID() uint32 { return p.fieldNumber }

// FieldType returns the wire type of the field NextField most recently
// scheduled.
func (p *Parser) FieldType() WireType { return p.wireType }

// IsEOF reports whether the stream has been fully consumed.
func (p *Parser) IsEOF() bool { return p.stream.BytesAvailable() == 0 }

func (p *Parser) skipField() error {
	switch p.wireType {
	case WireVarint:
		_, err := decodeVarint(p.stream)
		return err
	case WireFixed64:
		return p.stream.Skip(8)
	case WireBytes:
		length, err := decodeVarint(p.stream)
		if err != nil {
			return err
		}
		if length > uint64(p.stream.BytesAvailable()) {
			return ErrInvalidInput
		}
		return p.stream.Skip(int(length))
	case WireFixed32:
		return p.stream.Skip(4)
	default:
		// Groups and any other wire type are rejected outright rather
		// than silently skipped; the C++ original's switch has no
		// explicit case here and falls through to undefined behavior,
		// which Go's exhaustiveness rules don't allow anyway.
		return ErrInvalidInput
	}
}

// SkipField discards the current field's payload without decoding it,
// used by generated Decode methods for unrecognized field numbers.
func (p *Parser) SkipField() error {
	p.consumed = true
	return p.skipField()
}

// RawBytes reads n raw bytes with no length prefix, the decode-side
// counterpart of Builder.RawBytes.
func (p *Parser) RawBytes(n int) ([]byte, error) {
	return p.stream.Read(n)
}

func (p *Parser) readLengthPrefixed() ([]byte, error) {
	length, err := decodeVarint(p.stream)
	if err != nil {
		return nil, err
	}
	if length > uint64(p.stream.BytesAvailable()) {
		return nil, ErrInvalidInput
	}
	data, err := p.stream.Read(int(length))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// DoubleField reads the current field as a double. Per spec.md §4.5 the
// accessor tolerates either fixed64 or fixed32 on the wire, promoting a
// float up to double rather than failing.
func (p *Parser) DoubleField() (float64, error) {
	p.consumed = true
	switch p.wireType {
	case WireFixed64:
		v, err := decodeFixed64(p.stream)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(v), nil
	case WireFixed32:
		v, err := decodeFixed32(p.stream)
		if err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(v)), nil
	default:
		return 0, ErrInvalidInput
	}
}

// FloatField reads the current field as a float, tolerating fixed64 the
// same way DoubleField tolerates fixed32 (narrowing rather than failing).
func (p *Parser) FloatField() (float32, error) {
	p.consumed = true
	switch p.wireType {
	case WireFixed32:
		v, err := decodeFixed32(p.stream)
		if err != nil {
			return 0, err
		}
		return math.Float32frombits(v), nil
	case WireFixed64:
		v, err := decodeFixed64(p.stream)
		if err != nil {
			return 0, err
		}
		return float32(math.Float64frombits(v)), nil
	default:
		return 0, ErrInvalidInput
	}
}

// Int32Field reads the current field as an int32, truncating the decoded
// varint to 32 bits (which correctly recovers a negative value that was
// sign-extended on encode).
func (p *Parser) Int32Field() (int32, error) {
	p.consumed = true
	v, err := decodeVarint(p.stream)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// Int64Field reads the current field as an int64.
func (p *Parser) Int64Field() (int64, error) {
	p.consumed = true
	v, err := decodeVarint(p.stream)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// Uint32Field reads the current field as a uint32.
func (p *Parser) Uint32Field() (uint32, error) {
	p.consumed = true
	v, err := decodeVarint(p.stream)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// Uint64Field reads the current field as a uint64.
func (p *Parser) Uint64Field() (uint64, error) {
	p.consumed = true
	return decodeVarint(p.stream)
}

// Sint32Field reads the current field as a zigzag-encoded int32.
func (p *Parser) Sint32Field() (int32, error) {
	p.consumed = true
	v, err := decodeVarint(p.stream)
	if err != nil {
		return 0, err
	}
	return DecodeZigZag32(v), nil
}

// Sint64Field reads the current field as a zigzag-encoded int64.
func (p *Parser) Sint64Field() (int64, error) {
	p.consumed = true
	v, err := decodeVarint(p.stream)
	if err != nil {
		return 0, err
	}
	return DecodeZigZag64(v), nil
}

// Fixed32Field reads the current field as a raw fixed32.
func (p *Parser) Fixed32Field() (uint32, error) {
	p.consumed = true
	return decodeFixed32(p.stream)
}

// Fixed64Field reads the current field as a raw fixed64.
func (p *Parser) Fixed64Field() (uint64, error) {
	p.consumed = true
	return decodeFixed64(p.stream)
}

// Sfixed32Field reads the current field as a signed fixed32.
func (p *Parser) Sfixed32Field() (int32, error) {
	v, err := p.Fixed32Field()
	return int32(v), err
}

// Sfixed64Field reads the current field as a signed fixed64.
func (p *Parser) Sfixed64Field() (int64, error) {
	v, err := p.Fixed64Field()
	return int64(v), err
}

// BoolField reads the current field as a bool; any nonzero varint is true.
func (p *Parser) BoolField() (bool, error) {
	v, err := p.Uint64Field()
	return v != 0, err
}

// StringField reads the current field as a string.
func (p *Parser) StringField() (string, error) {
	p.consumed = true
	data, err := p.readLengthPrefixed()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// BytesField reads the current field as a byte slice.
func (p *Parser) BytesField() ([]byte, error) {
	p.consumed = true
	return p.readLengthPrefixed()
}

// MessageField decodes the current field as a length-delimited
// sub-message into msg, bounding msg's view of the stream to exactly the
// declared length (spec.md §4.1) regardless of what msg's Decode method
// actually consumes.
func (p *Parser) MessageField(msg Unmarshaler) error {
	p.consumed = true
	length, err := decodeVarint(p.stream)
	if err != nil {
		return err
	}
	if length > uint64(p.stream.BytesAvailable()) {
		return ErrInvalidInput
	}
	remaining := p.stream.BytesAvailable() - int(length)
	sub := NewSubsetInputStream(p.stream, int(length))
	if err := msg.Decode(NewParser(sub)); err != nil {
		return err
	}
	if skip := p.stream.BytesAvailable() - remaining; skip > 0 {
		return p.stream.Skip(skip)
	}
	return nil
}

func appendFromBlob[T any](p *Parser, dst *[]T, decodeOne func(in InputStream) (T, error)) error {
	length, err := decodeVarint(p.stream)
	if err != nil {
		return err
	}
	if length > uint64(p.stream.BytesAvailable()) {
		return ErrInvalidInput
	}
	sub := NewSubsetInputStream(p.stream, int(length))
	for sub.BytesAvailable() > 0 {
		v, err := decodeOne(sub)
		if err != nil {
			return err
		}
		*dst = append(*dst, v)
	}
	p.consumed = true
	return nil
}

// AppendDouble appends the current field's values to dst, transparently
// accepting either a packed length-delimited block (every element in it is
// appended) or a single unpacked occurrence (one element is appended)
// (spec.md §4.5's packed/unpacked tolerance).
func (p *Parser) AppendDouble(dst *[]float64) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, func(in InputStream) (float64, error) {
			v, err := decodeFixed64(in)
			return math.Float64frombits(v), err
		})
	}
	v, err := p.DoubleField()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendFloat is AppendDouble's float32 counterpart.
func (p *Parser) AppendFloat(dst *[]float32) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, func(in InputStream) (float32, error) {
			v, err := decodeFixed32(in)
			return math.Float32frombits(v), err
		})
	}
	v, err := p.FloatField()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendInt32 is AppendDouble's int32 counterpart.
func (p *Parser) AppendInt32(dst *[]int32) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, func(in InputStream) (int32, error) {
			v, err := decodeVarint(in)
			return int32(v), err
		})
	}
	v, err := p.Int32Field()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendInt64 is AppendDouble's int64 counterpart.
func (p *Parser) AppendInt64(dst *[]int64) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, func(in InputStream) (int64, error) {
			v, err := decodeVarint(in)
			return int64(v), err
		})
	}
	v, err := p.Int64Field()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendUint32 is AppendDouble's uint32 counterpart.
func (p *Parser) AppendUint32(dst *[]uint32) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, func(in InputStream) (uint32, error) {
			v, err := decodeVarint(in)
			return uint32(v), err
		})
	}
	v, err := p.Uint32Field()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendUint64 is AppendDouble's uint64 counterpart.
func (p *Parser) AppendUint64(dst *[]uint64) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, decodeVarint)
	}
	v, err := p.Uint64Field()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendSint32 is AppendDouble's zigzag int32 counterpart.
func (p *Parser) AppendSint32(dst *[]int32) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, func(in InputStream) (int32, error) {
			v, err := decodeVarint(in)
			return DecodeZigZag32(v), err
		})
	}
	v, err := p.Sint32Field()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendSint64 is AppendDouble's zigzag int64 counterpart.
func (p *Parser) AppendSint64(dst *[]int64) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, func(in InputStream) (int64, error) {
			v, err := decodeVarint(in)
			return DecodeZigZag64(v), err
		})
	}
	v, err := p.Sint64Field()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendFixed32 is AppendDouble's raw fixed32 counterpart.
func (p *Parser) AppendFixed32(dst *[]uint32) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, decodeFixed32)
	}
	v, err := p.Fixed32Field()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendFixed64 is AppendDouble's raw fixed64 counterpart.
func (p *Parser) AppendFixed64(dst *[]uint64) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, decodeFixed64)
	}
	v, err := p.Fixed64Field()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendSfixed32 is AppendDouble's signed fixed32 counterpart.
func (p *Parser) AppendSfixed32(dst *[]int32) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, func(in InputStream) (int32, error) {
			v, err := decodeFixed32(in)
			return int32(v), err
		})
	}
	v, err := p.Sfixed32Field()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendSfixed64 is AppendDouble's signed fixed64 counterpart.
func (p *Parser) AppendSfixed64(dst *[]int64) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, func(in InputStream) (int64, error) {
			v, err := decodeFixed64(in)
			return int64(v), err
		})
	}
	v, err := p.Sfixed64Field()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendBool is AppendDouble's bool counterpart.
func (p *Parser) AppendBool(dst *[]bool) error {
	if p.wireType == WireBytes {
		return appendFromBlob(p, dst, func(in InputStream) (bool, error) {
			v, err := decodeVarint(in)
			return v != 0, err
		})
	}
	v, err := p.BoolField()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendString appends the current occurrence of a repeated string field.
// Strings are never packed, so this is always a single occurrence.
func (p *Parser) AppendString(dst *[]string) error {
	v, err := p.StringField()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// AppendBytes is AppendString's []byte counterpart.
func (p *Parser) AppendBytes(dst *[][]byte) error {
	v, err := p.BytesField()
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

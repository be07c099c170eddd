package wire

// Marshaler is implemented by every generated message struct. EstimateSize
// must return an upper bound on the encoded payload size, never an
// under-estimate; returning 0 is treated as "unknown" and padded out to
// the widest possible length prefix, mirroring the C++ original's
// size==0 -> SIZE_MAX convention (a message that legitimately estimates
// to zero bytes pays for a 10-byte length prefix instead of a 1-byte one,
// a known imprecision rather than a bug).
type Marshaler interface {
	EstimateSize() int
	Encode(b *Builder) error
}

// Unmarshaler is implemented by every generated message struct's decode
// side.
type Unmarshaler interface {
	Decode(p *Parser) error
}

package wire

import "encoding/binary"

// Fixed32Size is the wire size of a fixed32/sfixed32/float field's payload.
func Fixed32Size() int { return 4 }

// Fixed64Size is the wire size of a fixed64/sfixed64/double field's payload.
func Fixed64Size() int { return 8 }

func decodeFixed32(in InputStream) (uint32, error) {
	b, err := in.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func decodeFixed64(in InputStream) (uint64, error) {
	b, err := in.Read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func appendFixed32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendFixed64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

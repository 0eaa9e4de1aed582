package output

import (
	"bytes"
	"encoding/binary"
	"math"

	"spriteatlas/atlas"
	"spriteatlas/errors"
)

// Binary layout, all integers little-endian:
//
//	magic    [4]byte "SATL"
//	version  u16
//	sheet    string
//	count    u32
//	count x  { name string; x, y, width, height u32; rotated u8 }
//
// A string is a u32 byte length followed by UTF-8 bytes.
const (
	binaryMagic   = "SATL"
	BinaryVersion = uint16(1)
)

func encodeBinary(meta *atlas.Metadata) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 16+len(meta.SheetPath)+meta.Len()*32))
	buf.WriteString(binaryMagic)
	_ = binary.Write(buf, binary.LittleEndian, BinaryVersion)
	if err := encodeString(buf, meta.SheetPath); err != nil {
		return nil, err
	}
	_ = binary.Write(buf, binary.LittleEndian, uint32(meta.Len()))
	for _, nf := range meta.Frames() {
		if err := encodeString(buf, nf.Name); err != nil {
			return nil, err
		}
		for _, v := range []int{nf.X, nf.Y, nf.Width, nf.Height} {
			if v < 0 || uint64(v) > math.MaxUint32 {
				return nil, errors.New(errors.ErrCodeEncode, "frame %q: value %d does not fit in u32", nf.Name, v)
			}
			_ = binary.Write(buf, binary.LittleEndian, uint32(v))
		}
		var rotated uint8
		if nf.Rotated {
			rotated = 1
		}
		buf.WriteByte(rotated)
	}
	return buf.Bytes(), nil
}

func encodeString(buf *bytes.Buffer, value string) error {
	if uint64(len(value)) > math.MaxUint32 {
		return errors.New(errors.ErrCodeEncode, "string of %d bytes is too long", len(value))
	}
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(value)))
	buf.WriteString(value)
	return nil
}

// binaryReader consumes b front to back; the first short read sticks in err.
type binaryReader struct {
	b   []byte
	err error
}

func (r *binaryReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.b) < n {
		r.err = errors.New(errors.ErrCodeDecode, "binary metadata is truncated")
		return nil
	}
	out := r.b[:n]
	r.b = r.b[n:]
	return out
}

func (r *binaryReader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *binaryReader) str() string {
	n := r.u32()
	if r.err != nil {
		return ""
	}
	if uint64(n) > uint64(len(r.b)) {
		r.err = errors.New(errors.ErrCodeDecode, "binary metadata string of %d bytes exceeds the payload", n)
		return ""
	}
	return string(r.take(int(n)))
}

func decodeBinary(data []byte) (*atlas.Metadata, error) {
	r := &binaryReader{b: data}
	if magic := r.take(len(binaryMagic)); r.err != nil || string(magic) != binaryMagic {
		return nil, errors.New(errors.ErrCodeDecode, "not a binary atlas file (bad magic)")
	}
	version := r.take(2)
	if r.err != nil {
		return nil, r.err
	}
	if v := binary.LittleEndian.Uint16(version); v != BinaryVersion {
		return nil, errors.New(errors.ErrCodeUnsupported, "binary atlas version %d is not supported", v)
	}
	meta := atlas.NewMetadata(r.str())
	count := r.u32()
	for i := uint32(0); i < count && r.err == nil; i++ {
		name := r.str()
		f := atlas.Frame{
			X:      int(r.u32()),
			Y:      int(r.u32()),
			Width:  int(r.u32()),
			Height: int(r.u32()),
		}
		rotated := r.take(1)
		if r.err != nil {
			break
		}
		f.Rotated = rotated[0] != 0
		if err := meta.Add(name, f); err != nil {
			return nil, err
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if len(r.b) != 0 {
		return nil, errors.New(errors.ErrCodeDecode, "binary metadata has %d trailing bytes", len(r.b))
	}
	return meta, nil
}

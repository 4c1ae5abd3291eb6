package format

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// maxPrealloc caps the up-front allocation for a declared payload
// length. A hostile length prefix therefore cannot force a huge
// allocation before any payload bytes actually arrive; the buffer
// grows with the data instead.
const maxPrealloc = 1 << 20

// decoders maps a wire tag to its payload decoder. Together with the
// per-kind Tag methods this forms the single bidirectional tag table;
// there is no second switch to drift out of sync.
var decoders = [10]func(io.Reader) (Value, error){
	TagU8:          decodeU8,
	TagU16:         decodeU16,
	TagU32:         decodeU32,
	TagU64:         decodeU64,
	TagShortString: decodeShortString,
	TagLongString:  decodeLongString,
	TagBinary:      decodeBinary,
	TagBool:        decodeBool,
	TagFloat:       decodeFloat,
	TagSha1:        decodeSha1,
}

// DecodeValue reads the payload of the given tag byte from r and
// returns the corresponding Value. Tags outside the table fail with
// ErrInvalidDataType; I/O errors propagate unchanged.
func DecodeValue(tag byte, r io.Reader) (Value, error) {
	if int(tag) >= len(decoders) {
		return nil, errors.Wrapf(ErrInvalidDataType, "tag %#02x", tag)
	}
	return decoders[tag](r)
}

// DecodeEntry reads one map entry: key(4, LE) + tag(1) + payload.
func DecodeEntry(r io.Reader) (Key, Value, error) {
	k, err := readU32(r)
	if err != nil {
		return 0, nil, err
	}

	tag, err := readU8(r)
	if err != nil {
		return 0, nil, err
	}

	v, err := DecodeValue(tag, r)
	if err != nil {
		return 0, nil, err
	}

	return Key(k), v, nil
}

// EncodeValue writes the tag byte and the type-specific payload of v
// to w, returning the number of bytes written so callers can track
// framing totals. Lengths that do not fit their wire width fail with
// ErrIntegerOverflow, never silent truncation.
func EncodeValue(v Value, w io.Writer) (int, error) {
	if _, err := w.Write([]byte{v.Tag()}); err != nil {
		return 0, err
	}

	var n int
	var err error
	switch tv := v.(type) {
	case U8:
		n, err = writeScratch(w, 1, func(b []byte) { b[0] = byte(tv) })
	case U16:
		n, err = writeScratch(w, 2, func(b []byte) { binary.LittleEndian.PutUint16(b, uint16(tv)) })
	case U32:
		n, err = writeScratch(w, 4, func(b []byte) { binary.LittleEndian.PutUint32(b, uint32(tv)) })
	case U64:
		n, err = writeScratch(w, 8, func(b []byte) { binary.LittleEndian.PutUint64(b, uint64(tv)) })
	case ShortString:
		if len(tv) > math.MaxUint8 {
			return 1, errors.Wrapf(ErrIntegerOverflow, "short string of %d bytes exceeds %d", len(tv), math.MaxUint8)
		}
		if n, err = writeScratch(w, 1, func(b []byte) { b[0] = byte(len(tv)) }); err == nil {
			var m int
			m, err = io.WriteString(w, string(tv))
			n += m
		}
	case LongString:
		if len(tv) > math.MaxUint16 {
			return 1, errors.Wrapf(ErrIntegerOverflow, "long string of %d bytes exceeds %d", len(tv), math.MaxUint16)
		}
		if n, err = writeScratch(w, 2, func(b []byte) { binary.LittleEndian.PutUint16(b, uint16(len(tv))) }); err == nil {
			var m int
			m, err = io.WriteString(w, string(tv))
			n += m
		}
	case Binary:
		if uint64(len(tv)) > math.MaxUint32 {
			return 1, errors.Wrapf(ErrIntegerOverflow, "binary blob of %d bytes exceeds %d", len(tv), uint64(math.MaxUint32))
		}
		if n, err = writeScratch(w, 4, func(b []byte) { binary.LittleEndian.PutUint32(b, uint32(len(tv))) }); err == nil {
			var m int
			m, err = w.Write(tv)
			n += m
		}
	case Bool:
		var payload byte
		if tv {
			payload = 1
		}
		n, err = writeScratch(w, 1, func(b []byte) { b[0] = payload })
	case Float:
		n, err = writeScratch(w, 4, func(b []byte) {
			binary.LittleEndian.PutUint32(b, math.Float32bits(float32(tv)))
		})
	case Sha1:
		n, err = w.Write(tv[:])
	default:
		return 1, errors.Wrapf(ErrInvalidDataType, "unsupported value %T", v)
	}

	return 1 + n, err
}

// EncodeEntry writes one map entry: key(4, LE) + tag(1) + payload.
func EncodeEntry(k Key, v Value, w io.Writer) (int, error) {
	n, err := writeScratch(w, 4, func(b []byte) { binary.LittleEndian.PutUint32(b, uint32(k)) })
	if err != nil {
		return n, err
	}

	m, err := EncodeValue(v, w)
	return n + m, err
}

func decodeU8(r io.Reader) (Value, error) {
	b, err := readU8(r)
	if err != nil {
		return nil, err
	}
	return U8(b), nil
}

func decodeU16(r io.Reader) (Value, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, err
	}
	return U16(binary.LittleEndian.Uint16(b[:])), nil
}

func decodeU32(r io.Reader) (Value, error) {
	u, err := readU32(r)
	if err != nil {
		return nil, err
	}
	return U32(u), nil
}

func decodeU64(r io.Reader) (Value, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, err
	}
	return U64(binary.LittleEndian.Uint64(b[:])), nil
}

func decodeShortString(r io.Reader) (Value, error) {
	n, err := readU8(r)
	if err != nil {
		return nil, err
	}

	s, err := readString(r, int(n))
	if err != nil {
		return nil, err
	}
	return ShortString(s), nil
}

func decodeLongString(r io.Reader) (Value, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, err
	}

	s, err := readString(r, int(binary.LittleEndian.Uint16(b[:])))
	if err != nil {
		return nil, err
	}
	return LongString(s), nil
}

func decodeBinary(r io.Reader) (Value, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if uint64(n) > math.MaxInt {
		return nil, errors.Wrapf(ErrIntegerOverflow, "binary length %d exceeds addressable size", n)
	}

	b, err := readPayload(r, int(n))
	if err != nil {
		return nil, err
	}
	return Binary(b), nil
}

func decodeBool(r io.Reader) (Value, error) {
	b, err := readU8(r)
	if err != nil {
		return nil, err
	}

	switch b {
	case 0:
		return Bool(false), nil
	case 1:
		return Bool(true), nil
	default:
		return nil, errors.Wrapf(ErrInvalidBoolean, "payload byte %#02x", b)
	}
}

func decodeFloat(r io.Reader) (Value, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, err
	}
	return Float(math.Float32frombits(binary.LittleEndian.Uint32(b[:]))), nil
}

func decodeSha1(r io.Reader) (Value, error) {
	var s Sha1
	if _, err := io.ReadFull(r, s[:]); err != nil {
		return nil, err
	}
	return s, nil
}

func readString(r io.Reader, n int) (string, error) {
	b, err := readPayload(r, n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.Wrapf(ErrInvalidUTF8, "%q", b)
	}
	return string(b), nil
}

func readPayload(r io.Reader, n int) ([]byte, error) {
	if n <= maxPrealloc {
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, err
		}
		return b, nil
	}

	b := make([]byte, 0, maxPrealloc)
	for len(b) < n {
		chunk := n - len(b)
		if chunk > maxPrealloc {
			chunk = maxPrealloc
		}

		off := len(b)
		b = append(b, make([]byte, chunk)...)
		if _, err := io.ReadFull(r, b[off:]); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func readU8(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeScratch(w io.Writer, n int, fill func([]byte)) (int, error) {
	var scratch [8]byte
	fill(scratch[:n])
	return w.Write(scratch[:n])
}

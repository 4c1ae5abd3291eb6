package format

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Map is a dictionary from Key to Value. It is semantically unordered:
// iteration order is not meaningful and the wire encoding of equal
// maps may differ byte for byte.
//
// A Map is a single-owner, synchronous container. Record decoders
// consume it destructively via Remove; whatever remains after the
// known fields are extracted is retained verbatim as custom data.
type Map map[Key]Value

// New returns an empty Map.
func New() Map {
	return make(Map)
}

// WithCapacity returns an empty Map sized for about n entries.
func WithCapacity(n int) Map {
	return make(Map, n)
}

// Insert stores v under k, returning the previous value if one was
// overwritten.
func (m Map) Insert(k Key, v Value) (Value, bool) {
	prev, ok := m[k]
	m[k] = v
	return prev, ok
}

// Get returns the value stored under k.
func (m Map) Get(k Key) (Value, bool) {
	v, ok := m[k]
	return v, ok
}

// Remove extracts and deletes the value stored under k.
func (m Map) Remove(k Key) (Value, bool) {
	v, ok := m[k]
	if ok {
		delete(m, k)
	}
	return v, ok
}

// Contains reports whether k is present.
func (m Map) Contains(k Key) bool {
	_, ok := m[k]
	return ok
}

// Len returns the number of entries.
func (m Map) Len() int {
	return len(m)
}

// Read decodes entries into m from r. The stream carries a 4-byte LE
// byte length followed by exactly that many bytes of entries; the
// length prefix is what lets a Map sit inside a larger stream without
// consuming trailing data that belongs to the caller. A declared
// length that cuts an entry short is a framing error.
func (m Map) Read(r io.Reader) error {
	length, err := readU32(r)
	if err != nil {
		return err
	}

	window := &io.LimitedReader{R: r, N: int64(length)}
	for window.N > 0 {
		k, v, err := DecodeEntry(window)
		if err != nil {
			if window.N == 0 && isEOF(err) {
				return errors.Wrapf(ErrMapFraming, "entry crosses the declared %d-byte boundary", length)
			}
			return err
		}
		m[k] = v
	}

	return nil
}

// Write encodes m to w: all entries are serialized into an internal
// buffer first, then the 4-byte LE byte length of that buffer and the
// buffer itself are emitted.
func (m Map) Write(w io.Writer) error {
	var buf bytes.Buffer
	for k, v := range m {
		if _, err := EncodeEntry(k, v, &buf); err != nil {
			return err
		}
	}

	if uint64(buf.Len()) > math.MaxUint32 {
		return errors.Wrapf(ErrIntegerOverflow, "map body of %d bytes exceeds frame width", buf.Len())
	}

	if _, err := writeScratch(w, 4, func(b []byte) {
		binary.LittleEndian.PutUint32(b, uint32(buf.Len()))
	}); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Clone returns a shallow copy of m. Values are immutable on the wire,
// so sharing them between copies is safe as long as callers do not
// mutate Binary payloads in place.
func (m Map) Clone() Map {
	cp := WithCapacity(len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func isEOF(err error) bool {
	cause := errors.Cause(err)
	return cause == io.EOF || cause == io.ErrUnexpectedEOF
}

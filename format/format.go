// Package format implements the typed key-value wire codec used by
// blister documents.
//
// A map is a dictionary from 32-bit key identifiers to typed values.
// On the wire each entry is key(4, LE) + tag(1) + payload, and a whole
// map is framed by a 4-byte LE byte length so it can be embedded inside
// a larger stream. All integers are little-endian.
package format

// Key identifies one entry within a Map. Keys carry no ordering
// semantics; equality is by raw integer value.
type Key uint32

// Value is one typed wire value. Concrete kinds:
//
//	U8, U16, U32, U64 — unsigned integers
//	ShortString       — up to 255 bytes of utf-8
//	LongString        — up to 65535 bytes of utf-8
//	Binary            — up to 2^32-1 raw bytes
//	Bool, Float       — 1-byte boolean, 32-bit IEEE-754
//	Sha1              — opaque 20-byte digest
type Value interface {
	// Tag returns the 1-byte wire tag of the value kind.
	Tag() byte

	value() // sealed
}

// Wire tags. The tag byte uniquely determines the payload shape;
// nothing outside this table is ever emitted or accepted.
const (
	TagU8 byte = iota
	TagU16
	TagU32
	TagU64
	TagShortString
	TagLongString
	TagBinary
	TagBool
	TagFloat
	TagSha1
)

type (
	U8          uint8
	U16         uint16
	U32         uint32
	U64         uint64
	ShortString string
	LongString  string
	Binary      []byte
	Bool        bool
	Float       float32
)

func (U8) Tag() byte          { return TagU8 }
func (U16) Tag() byte         { return TagU16 }
func (U32) Tag() byte         { return TagU32 }
func (U64) Tag() byte         { return TagU64 }
func (ShortString) Tag() byte { return TagShortString }
func (LongString) Tag() byte  { return TagLongString }
func (Binary) Tag() byte      { return TagBinary }
func (Bool) Tag() byte        { return TagBool }
func (Float) Tag() byte       { return TagFloat }
func (Sha1) Tag() byte        { return TagSha1 }

func (U8) value()          {}
func (U16) value()         {}
func (U32) value()         {}
func (U64) value()         {}
func (ShortString) value() {}
func (LongString) value()  {}
func (Binary) value()      {}
func (Bool) value()        {}
func (Float) value()       {}
func (Sha1) value()        {}

package format

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapWriteAndRead(t *testing.T) {
	old := New()
	old.Insert(0, U8(0))
	old.Insert(1, U16(1))
	old.Insert(2, U32(2))
	old.Insert(3, U64(3))
	old.Insert(4, ShortString("short string"))
	old.Insert(5, LongString("long string"))
	old.Insert(6, Binary{5, 5, 5, 5, 5})
	old.Insert(7, Bool(true))
	old.Insert(8, Float(7.7))
	old.Insert(9, testSha1(8))

	var buf bytes.Buffer
	require.NoError(t, old.Write(&buf))

	fresh := WithCapacity(old.Len())
	require.NoError(t, fresh.Read(bytes.NewReader(buf.Bytes())))

	assert.Equal(t, old, fresh)
}

func TestMapEmptyRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Write(&buf))
	assert.Equal(t, []byte{0, 0, 0, 0}, buf.Bytes())

	fresh := New()
	require.NoError(t, fresh.Read(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, 0, fresh.Len())
}

func TestMapSelfDelimiting(t *testing.T) {
	m := New()
	m.Insert(42, ShortString("inner"))

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))
	trailer := []byte{0xde, 0xad, 0xbe, 0xef}
	buf.Write(trailer)

	r := bytes.NewReader(buf.Bytes())
	fresh := New()
	require.NoError(t, fresh.Read(r))
	assert.Equal(t, m, fresh)

	// the trailing bytes belong to the caller and must be untouched
	rest := make([]byte, r.Len())
	_, _ = r.Read(rest)
	assert.Equal(t, trailer, rest)
}

func TestMapFramingViolation(t *testing.T) {
	m := New()
	m.Insert(1, U32(77))

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))

	// shrink the declared window so it ends mid-entry
	raw := buf.Bytes()
	binary.LittleEndian.PutUint32(raw[:4], binary.LittleEndian.Uint32(raw[:4])-2)

	err := New().Read(bytes.NewReader(raw))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMapFraming))
}

func TestMapTruncatedStream(t *testing.T) {
	m := New()
	m.Insert(1, LongString("cut me off"))

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))

	err := New().Read(bytes.NewReader(buf.Bytes()[:buf.Len()-3]))
	require.Error(t, err)
}

func TestMapDictionaryOps(t *testing.T) {
	m := New()

	prev, overwrote := m.Insert(7, U8(1))
	assert.Nil(t, prev)
	assert.False(t, overwrote)

	prev, overwrote = m.Insert(7, U8(2))
	assert.Equal(t, U8(1), prev)
	assert.True(t, overwrote)

	assert.True(t, m.Contains(7))
	v, ok := m.Get(7)
	require.True(t, ok)
	assert.Equal(t, U8(2), v)

	v, ok = m.Remove(7)
	require.True(t, ok)
	assert.Equal(t, U8(2), v)
	assert.False(t, m.Contains(7))
	assert.Equal(t, 0, m.Len())

	_, ok = m.Remove(7)
	assert.False(t, ok)
}

func TestMapInsertionOrderIrrelevant(t *testing.T) {
	a, b := New(), New()
	a.Insert(1, U8(1))
	a.Insert(2, ShortString("two"))
	b.Insert(2, ShortString("two"))
	b.Insert(1, U8(1))

	var bufA, bufB bytes.Buffer
	require.NoError(t, a.Write(&bufA))
	require.NoError(t, b.Write(&bufB))

	freshA, freshB := New(), New()
	require.NoError(t, freshA.Read(bytes.NewReader(bufA.Bytes())))
	require.NoError(t, freshB.Read(bytes.NewReader(bufB.Bytes())))
	assert.Equal(t, freshA, freshB)
}

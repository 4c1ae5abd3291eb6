package blister

import (
	"bytes"
	"testing"
	"time"

	"github.com/blisterfmt/blister/format"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSha1(b byte) format.Sha1 {
	var s format.Sha1
	for i := range s {
		s[i] = b
	}
	return s
}

func encodeMap(t *testing.T, m format.Map) *bytes.Reader {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func baseBeatmapMap() format.Map {
	m := format.New()
	m.Insert(0, format.U8(0))
	m.Insert(1, format.U64(1609459200)) // 2021-01-01T00:00:00Z
	m.Insert(2, format.U32(2112))
	return m
}

func TestReadBeatmap_Key(t *testing.T) {
	bm, err := readBeatmap(encodeMap(t, baseBeatmapMap()), true)
	require.NoError(t, err)

	assert.Equal(t, BeatmapTypeKey, bm.Type)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), bm.DateAdded)
	require.NotNil(t, bm.Key)
	assert.Equal(t, uint32(2112), *bm.Key)
	assert.Nil(t, bm.Hash)
	assert.Nil(t, bm.Zip)
	assert.Nil(t, bm.LevelID)
	assert.Equal(t, 0, bm.CustomData.Len())
}

func TestReadBeatmap_UnknownType(t *testing.T) {
	m := format.New()
	m.Insert(0, format.U8(99))
	m.Insert(1, format.U64(1609459200))

	t.Run("lenient maps to unknown", func(t *testing.T) {
		bm, err := readBeatmap(encodeMap(t, m.Clone()), false)
		require.NoError(t, err)
		assert.Equal(t, BeatmapTypeUnknown, bm.Type)
	})

	t.Run("strict rejects", func(t *testing.T) {
		_, err := readBeatmap(encodeMap(t, m.Clone()), true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStrictModeUnknownBeatmapType))
		assert.Contains(t, err.Error(), "99")
	})
}

func TestReadBeatmap_MissingDiscriminantPayload(t *testing.T) {
	tt := []struct {
		name string
		ty   uint8
		want error
	}{
		{"key", 0, ErrMissingBeatmapKey},
		{"hash", 1, ErrMissingBeatmapHash},
		{"zip", 2, ErrMissingBeatmapZip},
		{"level id", 3, ErrMissingBeatmapLevelID},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			m := format.New()
			m.Insert(0, format.U8(tc.ty))
			m.Insert(1, format.U64(1609459200))

			_, err := readBeatmap(encodeMap(t, m), true)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want))
		})
	}
}

func TestReadBeatmap_IrrelevantOptionalsAreRetained(t *testing.T) {
	// a key beatmap also carrying a hash and level id must not error
	m := baseBeatmapMap()
	m.Insert(3, testSha1(4))
	m.Insert(5, format.ShortString("level ID"))

	bm, err := readBeatmap(encodeMap(t, m), true)
	require.NoError(t, err)
	assert.Equal(t, BeatmapTypeKey, bm.Type)
	require.NotNil(t, bm.Hash)
	assert.True(t, bm.Hash.Equal(testSha1(4)))
	require.NotNil(t, bm.LevelID)
	assert.Equal(t, "level ID", *bm.LevelID)
}

func TestReadBeatmap_FieldTypeMismatches(t *testing.T) {
	tt := []struct {
		name  string
		field format.Key
		value format.Value
		want  error
	}{
		{"type", 0, format.ShortString("nope"), ErrInvalidBeatmapType},
		{"date added", 1, format.U32(5), ErrInvalidBeatmapDateAdded},
		{"key", 2, format.ShortString("nope"), ErrInvalidBeatmapKey},
		{"hash", 3, format.Binary{1, 2, 3}, ErrInvalidBeatmapHash},
		{"zip", 4, format.U8(0), ErrInvalidBeatmapZip},
		{"level id", 5, format.LongString("nope"), ErrInvalidBeatmapLevelID},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			m := baseBeatmapMap()
			m.Insert(tc.field, tc.value)

			_, err := readBeatmap(encodeMap(t, m), true)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want))
		})
	}
}

func TestReadBeatmap_MissingMandatoryFields(t *testing.T) {
	t.Run("no type", func(t *testing.T) {
		m := format.New()
		m.Insert(1, format.U64(1609459200))

		_, err := readBeatmap(encodeMap(t, m), true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidBeatmapType))
	})

	t.Run("no date added", func(t *testing.T) {
		m := format.New()
		m.Insert(0, format.U8(0))
		m.Insert(2, format.U32(2112))

		_, err := readBeatmap(encodeMap(t, m), true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidBeatmapDateAdded))
	})
}

func TestBeatmapCustomDataSurvivesRoundTrip(t *testing.T) {
	m := baseBeatmapMap()
	m.Insert(2112, format.Float(1.234))
	m.Insert(9000, format.Binary{9, 9})

	bm, err := readBeatmap(encodeMap(t, m), true)
	require.NoError(t, err)
	assert.Equal(t, 2, bm.CustomData.Len())

	v, ok := bm.CustomData.Get(2112)
	require.True(t, ok)
	assert.Equal(t, format.Float(1.234), v)

	var buf bytes.Buffer
	require.NoError(t, bm.write(&buf))

	again, err := readBeatmap(bytes.NewReader(buf.Bytes()), true)
	require.NoError(t, err)

	assert.Equal(t, bm.Type, again.Type)
	assert.Equal(t, bm.DateAdded, again.DateAdded)
	assert.Equal(t, *bm.Key, *again.Key)
	assert.Equal(t, bm.CustomData, again.CustomData)
}

func TestBeatmapWriteDoesNotMutateCustomData(t *testing.T) {
	bm := NewKeyBeatmap(7)
	bm.CustomData.Insert(100, format.Bool(true))

	var buf bytes.Buffer
	require.NoError(t, bm.write(&buf))

	// reserved fields must not leak into the retained custom data
	assert.Equal(t, 1, bm.CustomData.Len())
	assert.False(t, bm.CustomData.Contains(0))
}

func TestBeatmapConstructors(t *testing.T) {
	key := NewKeyBeatmap(2112)
	assert.Equal(t, BeatmapTypeKey, key.Type)
	require.NotNil(t, key.Key)
	assert.False(t, key.DateAdded.IsZero())

	hash := NewHashBeatmap(testSha1(4))
	assert.Equal(t, BeatmapTypeHash, hash.Type)
	require.NotNil(t, hash.Hash)

	zip := NewZipBeatmap(bytes.Repeat([]byte{1}, 10))
	assert.Equal(t, BeatmapTypeZip, zip.Type)
	assert.Len(t, zip.Zip, 10)

	level := NewLevelIDBeatmap("level ID")
	assert.Equal(t, BeatmapTypeLevelID, level.Type)
	require.NotNil(t, level.LevelID)
}

func TestBeatmapClone(t *testing.T) {
	bm := NewLevelIDBeatmap("custom_level_abc")
	bm.CustomData.Insert(55, format.U16(55))

	cp := bm.Clone()
	cp.CustomData.Insert(56, format.U8(1))
	*cp.LevelID = "changed"

	assert.Equal(t, 1, bm.CustomData.Len())
	assert.Equal(t, "custom_level_abc", *bm.LevelID)
}

func TestBeatmapFingerprint(t *testing.T) {
	a := NewKeyBeatmap(2112)
	b := NewKeyBeatmap(2112)
	b.DateAdded = b.DateAdded.Add(-time.Hour)
	c := NewKeyBeatmap(2113)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	h := NewHashBeatmap(testSha1(4))
	assert.NotEqual(t, a.Fingerprint(), h.Fingerprint())
}

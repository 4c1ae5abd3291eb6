package blister

import (
	"io"
	"math"
	"time"

	"github.com/blisterfmt/blister/format"
	"github.com/cespare/xxhash/v2"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// BeatmapType selects which payload identifies a beatmap.
type BeatmapType uint8

const (
	BeatmapTypeKey     BeatmapType = 0
	BeatmapTypeHash    BeatmapType = 1
	BeatmapTypeZip     BeatmapType = 2
	BeatmapTypeLevelID BeatmapType = 3

	BeatmapTypeUnknown BeatmapType = 255
)

func beatmapTypeFrom(u uint8) BeatmapType {
	if u <= uint8(BeatmapTypeLevelID) {
		return BeatmapType(u)
	}
	return BeatmapTypeUnknown
}

func (t BeatmapType) String() string {
	switch t {
	case BeatmapTypeKey:
		return "key"
	case BeatmapTypeHash:
		return "hash"
	case BeatmapTypeZip:
		return "zip"
	case BeatmapTypeLevelID:
		return "levelID"
	default:
		return "unknown"
	}
}

// Reserved beatmap field identifiers. Fields from 6 upwards are
// consumer-defined custom data.
const (
	fieldBeatmapType format.Key = iota
	fieldBeatmapDateAdded
	fieldBeatmapKey
	fieldBeatmapHash
	fieldBeatmapZip
	fieldBeatmapLevelID
)

// Beatmap is one playlist entry. Exactly the payload matching Type is
// mandatory; the other identifying payloads may still be populated and
// are carried along. CustomData holds every map field the schema does
// not recognize and is re-serialized unchanged on the next write.
type Beatmap struct {
	Type      BeatmapType
	DateAdded time.Time

	Key     *uint32
	Hash    *format.Sha1
	Zip     []byte
	LevelID *string

	CustomData format.Map
}

// NewKeyBeatmap returns a key-identified beatmap stamped with the
// current time.
func NewKeyBeatmap(key uint32) Beatmap {
	return Beatmap{
		Type:       BeatmapTypeKey,
		DateAdded:  time.Now().UTC().Truncate(time.Second),
		Key:        &key,
		CustomData: format.New(),
	}
}

// NewHashBeatmap returns a hash-identified beatmap stamped with the
// current time.
func NewHashBeatmap(hash format.Sha1) Beatmap {
	return Beatmap{
		Type:       BeatmapTypeHash,
		DateAdded:  time.Now().UTC().Truncate(time.Second),
		Hash:       &hash,
		CustomData: format.New(),
	}
}

// NewZipBeatmap returns a self-contained beatmap carrying its own zip
// archive.
func NewZipBeatmap(zip []byte) Beatmap {
	return Beatmap{
		Type:       BeatmapTypeZip,
		DateAdded:  time.Now().UTC().Truncate(time.Second),
		Zip:        zip,
		CustomData: format.New(),
	}
}

// NewLevelIDBeatmap returns a beatmap identified by its level id.
func NewLevelIDBeatmap(levelID string) Beatmap {
	return Beatmap{
		Type:       BeatmapTypeLevelID,
		DateAdded:  time.Now().UTC().Truncate(time.Second),
		LevelID:    &levelID,
		CustomData: format.New(),
	}
}

// Clone returns a deep copy of the beatmap.
func (b *Beatmap) Clone() *Beatmap {
	var cp Beatmap
	if err := copier.Copy(&cp, b); err != nil {
		panic("could not copy beatmap: " + err.Error())
	}

	// copier leaves pointers and slices shared; detach them
	if b.Key != nil {
		k := *b.Key
		cp.Key = &k
	}
	if b.Hash != nil {
		h := *b.Hash
		cp.Hash = &h
	}
	if b.Zip != nil {
		cp.Zip = append([]byte(nil), b.Zip...)
	}
	if b.LevelID != nil {
		s := *b.LevelID
		cp.LevelID = &s
	}
	cp.CustomData = b.CustomData.Clone()

	return &cp
}

// Fingerprint returns a 64-bit identity of the beatmap derived from
// its discriminant and identifying payload. Two beatmaps pointing at
// the same map produce the same fingerprint regardless of when they
// were added or what custom data they carry.
func (b *Beatmap) Fingerprint() uint64 {
	h := xxhash.New()
	_, _ = h.Write([]byte{byte(b.Type)})

	switch b.Type {
	case BeatmapTypeKey:
		if b.Key != nil {
			_, _ = h.Write([]byte{byte(*b.Key), byte(*b.Key >> 8), byte(*b.Key >> 16), byte(*b.Key >> 24)})
		}
	case BeatmapTypeHash:
		if b.Hash != nil {
			_, _ = h.Write(b.Hash[:])
		}
	case BeatmapTypeZip:
		_, _ = h.Write(b.Zip)
	case BeatmapTypeLevelID:
		if b.LevelID != nil {
			_, _ = h.Write([]byte(*b.LevelID))
		}
	default:
		// No identifying payload to speak of; fold in the timestamp so
		// unknown entries do not all collapse onto one fingerprint.
		sec := b.DateAdded.Unix()
		_, _ = h.Write([]byte{
			byte(sec), byte(sec >> 8), byte(sec >> 16), byte(sec >> 24),
			byte(sec >> 32), byte(sec >> 40), byte(sec >> 48), byte(sec >> 56),
		})
	}

	return h.Sum64()
}

// takeRequired extracts the field under key from data, failing with
// the given sentinel when it is absent or holds another value kind.
func takeRequired[V format.Value](data format.Map, key format.Key, sentinel error) (V, error) {
	var zero V

	v, ok := data.Remove(key)
	if !ok {
		return zero, errors.Wrapf(sentinel, "field %d is missing", key)
	}

	cast, ok := v.(V)
	if !ok {
		return zero, errors.Wrapf(sentinel, "field %d holds %T(%v)", key, v, v)
	}
	return cast, nil
}

// takeOptional extracts the field under key from data if present,
// failing with the given sentinel only when it holds another value
// kind.
func takeOptional[V format.Value](data format.Map, key format.Key, sentinel error) (V, bool, error) {
	var zero V

	v, ok := data.Remove(key)
	if !ok {
		return zero, false, nil
	}

	cast, ok := v.(V)
	if !ok {
		return zero, false, errors.Wrapf(sentinel, "field %d holds %T(%v)", key, v, v)
	}
	return cast, true, nil
}

// readBeatmap decodes one length-framed beatmap map from r. Known
// fields are extracted destructively; whatever remains becomes the
// record's custom data.
func readBeatmap(r io.Reader, strict bool) (Beatmap, error) {
	data := format.WithCapacity(2)
	if err := data.Read(r); err != nil {
		return Beatmap{}, err
	}

	rawType, err := takeRequired[format.U8](data, fieldBeatmapType, ErrInvalidBeatmapType)
	if err != nil {
		return Beatmap{}, err
	}
	ty := beatmapTypeFrom(uint8(rawType))
	if strict && ty == BeatmapTypeUnknown {
		return Beatmap{}, errors.Wrapf(ErrStrictModeUnknownBeatmapType, "type %d", uint8(rawType))
	}

	added, err := takeRequired[format.U64](data, fieldBeatmapDateAdded, ErrInvalidBeatmapDateAdded)
	if err != nil {
		return Beatmap{}, err
	}
	if uint64(added) > math.MaxInt64 {
		return Beatmap{}, errors.Wrapf(format.ErrIntegerOverflow, "date added %d does not fit a unix timestamp", uint64(added))
	}

	b := Beatmap{
		Type:      ty,
		DateAdded: time.Unix(int64(added), 0).UTC(),
	}

	if key, ok, err := takeOptional[format.U32](data, fieldBeatmapKey, ErrInvalidBeatmapKey); err != nil {
		return Beatmap{}, err
	} else if ok {
		k := uint32(key)
		b.Key = &k
	}

	if hash, ok, err := takeOptional[format.Sha1](data, fieldBeatmapHash, ErrInvalidBeatmapHash); err != nil {
		return Beatmap{}, err
	} else if ok {
		b.Hash = &hash
	}

	if zip, ok, err := takeOptional[format.Binary](data, fieldBeatmapZip, ErrInvalidBeatmapZip); err != nil {
		return Beatmap{}, err
	} else if ok {
		b.Zip = zip
	}

	if levelID, ok, err := takeOptional[format.ShortString](data, fieldBeatmapLevelID, ErrInvalidBeatmapLevelID); err != nil {
		return Beatmap{}, err
	} else if ok {
		s := string(levelID)
		b.LevelID = &s
	}

	// Only the payload matching the declared discriminant is
	// mandatory; payloads for other discriminants ride along freely.
	switch b.Type {
	case BeatmapTypeKey:
		if b.Key == nil {
			return Beatmap{}, ErrMissingBeatmapKey
		}
	case BeatmapTypeHash:
		if b.Hash == nil {
			return Beatmap{}, ErrMissingBeatmapHash
		}
	case BeatmapTypeZip:
		if b.Zip == nil {
			return Beatmap{}, ErrMissingBeatmapZip
		}
	case BeatmapTypeLevelID:
		if b.LevelID == nil {
			return Beatmap{}, ErrMissingBeatmapLevelID
		}
	}

	b.CustomData = data
	return b, nil
}

// write serializes the beatmap as one length-framed map: the reserved
// fields are re-inserted into a copy of the retained custom data, so
// read followed by write is idempotent for an unmodified record.
func (b *Beatmap) write(w io.Writer) error {
	data := b.CustomData.Clone()

	sec := b.DateAdded.Unix()
	if sec < 0 {
		return errors.Wrapf(format.ErrIntegerOverflow, "date added %s predates the unix epoch", b.DateAdded)
	}

	data.Insert(fieldBeatmapType, format.U8(b.Type))
	data.Insert(fieldBeatmapDateAdded, format.U64(sec))
	if b.Key != nil {
		data.Insert(fieldBeatmapKey, format.U32(*b.Key))
	}
	if b.Hash != nil {
		data.Insert(fieldBeatmapHash, *b.Hash)
	}
	if b.Zip != nil {
		data.Insert(fieldBeatmapZip, format.Binary(b.Zip))
	}
	if b.LevelID != nil {
		data.Insert(fieldBeatmapLevelID, format.ShortString(*b.LevelID))
	}

	return data.Write(w)
}

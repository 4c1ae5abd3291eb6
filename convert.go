package blister

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/blisterfmt/blister/format"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ConvertJSON builds a Playlist from the legacy JSON playlist shape
// still produced by most community tools: playlistTitle,
// playlistAuthor, playlistDescription, a base64 image and a songs
// array whose entries carry a hash, a key or a levelid.
func ConvertJSON(data []byte) (*Playlist, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrap(ErrJSONPlaylistInvalid, "document is not valid json")
	}
	root := gjson.ParseBytes(data)

	title := root.Get("playlistTitle")
	if !title.Exists() {
		return nil, errors.Wrap(ErrJSONPlaylistInvalid, "playlistTitle is missing")
	}

	p := New(title.String(), root.Get("playlistAuthor").String())

	if desc := root.Get("playlistDescription"); desc.Exists() && desc.String() != "" {
		s := desc.String()
		p.Description = &s
	}

	if image := root.Get("image"); image.Exists() && image.String() != "" {
		cover, err := decodeCover(image.String())
		if err != nil {
			return nil, err
		}
		p.Cover = cover
	}

	var songErr error
	root.Get("songs").ForEach(func(_, song gjson.Result) bool {
		bm, err := convertSong(song)
		if err != nil {
			songErr = err
			return false
		}
		p.Maps = append(p.Maps, bm)
		return true
	})
	if songErr != nil {
		return nil, songErr
	}

	return p, nil
}

func convertSong(song gjson.Result) (Beatmap, error) {
	var bm Beatmap

	switch {
	case song.Get("hash").Exists():
		raw, err := hex.DecodeString(song.Get("hash").String())
		if err != nil {
			return bm, errors.Wrapf(ErrJSONPlaylistInvalid, "song hash %q is not hex", song.Get("hash").String())
		}
		hash, err := format.NewSha1FromSlice(raw)
		if err != nil {
			return bm, errors.Wrapf(ErrJSONPlaylistInvalid, "song hash %q has the wrong length", song.Get("hash").String())
		}
		bm = NewHashBeatmap(hash)
	case song.Get("key").Exists():
		// BeatSaver keys are hex strings.
		key, err := strconv.ParseUint(song.Get("key").String(), 16, 32)
		if err != nil {
			return bm, errors.Wrapf(ErrJSONPlaylistInvalid, "song key %q is not a hex u32", song.Get("key").String())
		}
		bm = NewKeyBeatmap(uint32(key))
	case song.Get("levelid").Exists():
		bm = NewLevelIDBeatmap(song.Get("levelid").String())
	default:
		return bm, errors.Wrapf(ErrJSONSongUnidentified, "song %s", song.Raw)
	}

	if added := song.Get("dateAdded"); added.Exists() {
		t, err := time.Parse(time.RFC3339, added.String())
		if err == nil {
			bm.DateAdded = t.UTC().Truncate(time.Second)
		}
	}

	return bm, nil
}

// decodeCover accepts either a bare base64 payload or a data URL.
func decodeCover(image string) ([]byte, error) {
	if idx := strings.Index(image, "base64,"); idx >= 0 {
		image = image[idx+len("base64,"):]
	}

	cover, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return nil, errors.Wrap(ErrJSONPlaylistInvalid, "image is not valid base64")
	}
	return cover, nil
}

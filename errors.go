package blister

import "github.com/pkg/errors"

// Envelope errors.
var ErrInvalidMagicNumber = errors.New("invalid magic number")

// Playlist metadata errors. Each wraps the offending decoded value
// into its message for diagnostics.
var ErrInvalidPlaylistTitle = errors.New("invalid playlist title, expected short string")
var ErrInvalidPlaylistAuthor = errors.New("invalid playlist author, expected short string")
var ErrInvalidPlaylistDescription = errors.New("invalid playlist description, expected optional long string")
var ErrInvalidPlaylistCover = errors.New("invalid playlist cover, expected optional binary data")

// Beatmap field errors.
var ErrInvalidBeatmapType = errors.New("invalid beatmap type, expected u8")
var ErrInvalidBeatmapDateAdded = errors.New("invalid beatmap date added, expected u64")
var ErrInvalidBeatmapKey = errors.New("invalid beatmap key, expected optional u32")
var ErrInvalidBeatmapHash = errors.New("invalid beatmap hash, expected optional sha1 digest")
var ErrInvalidBeatmapZip = errors.New("invalid beatmap zip, expected optional binary data")
var ErrInvalidBeatmapLevelID = errors.New("invalid beatmap level id, expected optional short string")

// Beatmap discriminant errors.
var ErrMissingBeatmapKey = errors.New("missing beatmap key for key identified beatmap")
var ErrMissingBeatmapHash = errors.New("missing beatmap hash for hash identified beatmap")
var ErrMissingBeatmapZip = errors.New("missing beatmap zip for self contained beatmap")
var ErrMissingBeatmapLevelID = errors.New("missing beatmap level id for level id identified beatmap")
var ErrStrictModeUnknownBeatmapType = errors.New("encountered a beatmap with unknown type in strict mode")

// JSON import errors.
var ErrJSONPlaylistInvalid = errors.New("legacy json playlist could not be parsed")
var ErrJSONSongUnidentified = errors.New("legacy json song has no hash, key or level id")

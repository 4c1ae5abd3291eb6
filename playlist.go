// Package blister reads and writes binary Beat Saber playlists: a
// magic-tagged, gzip-compressed envelope carrying one metadata map and
// an ordered list of beatmap records, all encoded with the typed
// key-value codec in package format.
package blister

import (
	"bufio"
	"crypto/subtle"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/blisterfmt/blister/format"
	"github.com/jinzhu/copier"
	"github.com/klauspost/compress/gzip"
	"github.com/pbnjay/memory"
	"github.com/pkg/errors"
)

const magicNumberLen = 8

// magicNumber tags the one and only supported envelope version. Any
// other signature is rejected outright.
var magicNumber = [magicNumberLen]byte{'B', 'l', 'i', 's', 't', '.', 'v', '3'}

// Compression levels accepted by Write, re-exported from the gzip
// backend.
const (
	NoCompression      = gzip.NoCompression
	BestSpeed          = gzip.BestSpeed
	BestCompression    = gzip.BestCompression
	DefaultCompression = gzip.DefaultCompression
)

// Reserved playlist metadata field identifiers. Fields from 4 upwards
// are consumer-defined custom data.
const (
	fieldPlaylistTitle format.Key = iota
	fieldPlaylistAuthor
	fieldPlaylistDescription
	fieldPlaylistCover
)

// Playlist is the top-level document.
type Playlist struct {
	Title       string
	Author      string
	Description *string
	Cover       []byte

	Maps []Beatmap

	CustomData format.Map
}

// New returns an empty playlist with the given title and author.
func New(title, author string) *Playlist {
	return &Playlist{
		Title:      title,
		Author:     author,
		CustomData: format.New(),
	}
}

// Read decodes one playlist document from r. The pipeline is linear
// with no backtracking: signature, decompress, metadata map, count,
// then count beatmap records; the first failure aborts the whole read.
// With strict set, beatmaps with an unrecognized discriminant are
// rejected instead of mapped to BeatmapTypeUnknown.
func Read(r io.Reader, strict bool) (*Playlist, error) {
	var magic [magicNumberLen]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(magic[:], magicNumber[:]) != 1 {
		return nil, errors.Wrapf(ErrInvalidMagicNumber, "expected %q, got %q", magicNumber[:], magic[:])
	}

	body, err := gzip.NewReader(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	data := format.WithCapacity(2)
	if err := data.Read(body); err != nil {
		return nil, err
	}

	title, err := takeRequired[format.ShortString](data, fieldPlaylistTitle, ErrInvalidPlaylistTitle)
	if err != nil {
		return nil, err
	}
	author, err := takeRequired[format.ShortString](data, fieldPlaylistAuthor, ErrInvalidPlaylistAuthor)
	if err != nil {
		return nil, err
	}

	p := &Playlist{
		Title:  string(title),
		Author: string(author),
	}

	if desc, ok, err := takeOptional[format.LongString](data, fieldPlaylistDescription, ErrInvalidPlaylistDescription); err != nil {
		return nil, err
	} else if ok {
		s := string(desc)
		p.Description = &s
	}

	if cover, ok, err := takeOptional[format.Binary](data, fieldPlaylistCover, ErrInvalidPlaylistCover); err != nil {
		return nil, err
	} else if ok {
		p.Cover = cover
	}

	var countBuf [4]byte
	if _, err := io.ReadFull(body, countBuf[:]); err != nil {
		return nil, err
	}
	mapCount := binary.LittleEndian.Uint32(countBuf[:])

	p.Maps = make([]Beatmap, 0, clampCapacity(mapCount))
	for i := uint32(0); i < mapCount; i++ {
		bm, err := readBeatmap(body, strict)
		if err != nil {
			return nil, err
		}
		p.Maps = append(p.Maps, bm)
	}

	p.CustomData = data
	return p, nil
}

// ReadFile decodes the playlist stored at path.
func ReadFile(path string, strict bool) (*Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Read(bufio.NewReader(f), strict)
}

// Write encodes the playlist to w: the magic signature followed by the
// gzip-compressed payload at the given level. Retained custom data is
// re-serialized unchanged.
func (p *Playlist) Write(w io.Writer, level int) error {
	if _, err := w.Write(magicNumber[:]); err != nil {
		return err
	}

	body, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		return err
	}

	data := p.CustomData.Clone()
	data.Insert(fieldPlaylistTitle, format.ShortString(p.Title))
	data.Insert(fieldPlaylistAuthor, format.ShortString(p.Author))
	if p.Description != nil {
		data.Insert(fieldPlaylistDescription, format.LongString(*p.Description))
	}
	if p.Cover != nil {
		data.Insert(fieldPlaylistCover, format.Binary(p.Cover))
	}

	if err := data.Write(body); err != nil {
		_ = body.Close()
		return err
	}

	if uint64(len(p.Maps)) > math.MaxUint32 {
		_ = body.Close()
		return errors.Wrapf(format.ErrIntegerOverflow, "%d beatmaps exceed the count width", len(p.Maps))
	}

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(p.Maps)))
	if _, err := body.Write(countBuf[:]); err != nil {
		_ = body.Close()
		return err
	}

	for i := range p.Maps {
		if err := p.Maps[i].write(body); err != nil {
			_ = body.Close()
			return err
		}
	}

	return body.Close()
}

// WriteFile encodes the playlist to path.
func (p *Playlist) WriteFile(path string, level int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if err := p.Write(w, level); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// Clone returns a deep copy of the playlist.
func (p *Playlist) Clone() *Playlist {
	var cp Playlist
	if err := copier.Copy(&cp, p); err != nil {
		panic("could not copy playlist: " + err.Error())
	}

	// copier leaves pointers and slices shared; detach them
	if p.Description != nil {
		s := *p.Description
		cp.Description = &s
	}
	if p.Cover != nil {
		cp.Cover = append([]byte(nil), p.Cover...)
	}
	cp.Maps = make([]Beatmap, len(p.Maps))
	for i := range p.Maps {
		cp.Maps[i] = *p.Maps[i].Clone()
	}
	cp.CustomData = p.CustomData.Clone()

	return &cp
}

// beatmapSizeHint is the rough in-memory footprint of one decoded
// beatmap, used only to clamp capacity hints.
const beatmapSizeHint = 128

// clampCapacity bounds a declared beatmap count against available
// memory before it is used as an allocation hint, so a hostile header
// cannot force a huge slice up front. The slice still grows to the
// real count as records actually decode.
func clampCapacity(declared uint32) int {
	budget := memory.FreeMemory() / 8
	if budget == 0 {
		budget = 64 << 20
	}

	if limit := budget / beatmapSizeHint; uint64(declared) > limit {
		return int(limit)
	}
	return int(declared)
}

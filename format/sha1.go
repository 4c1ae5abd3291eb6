package format

import (
	"crypto/subtle"
	"encoding/hex"

	"github.com/pkg/errors"
)

// Sha1Len is the wire size of a Sha1 digest.
const Sha1Len = 20

// Sha1 is an opaque 20-byte content identifier. The format does not
// care which algorithm produced it.
type Sha1 [Sha1Len]byte

// NewSha1FromSlice copies b into a digest. The slice must be exactly
// Sha1Len bytes.
func NewSha1FromSlice(b []byte) (Sha1, error) {
	var s Sha1
	if len(b) != Sha1Len {
		return s, errors.Wrapf(ErrIntegerOverflow, "sha1 digest must be %d bytes, got %d", Sha1Len, len(b))
	}
	copy(s[:], b)
	return s, nil
}

// Equal compares two digests in constant time. Use this instead of ==
// wherever the comparison result could leak through timing.
func (s Sha1) Equal(other Sha1) bool {
	return subtle.ConstantTimeCompare(s[:], other[:]) == 1
}

func (s Sha1) String() string {
	return hex.EncodeToString(s[:])
}

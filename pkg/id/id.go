// Package id generates lexicographically sortable identifiers.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"strings"
	"time"
)

// Crockford's Base32 alphabet.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const ulidLen = 26

var ErrInvalidULID = errors.New("id: invalid ulid")

// NewULID returns a 26-character ULID: 48 bits of milliseconds followed by 80 random bits.
func NewULID() string {
	return ulidAt(time.Now())
}

func ulidAt(t time.Time) string {
	var raw [16]byte
	binary.BigEndian.PutUint64(raw[:8], uint64(t.UnixMilli())<<16)
	if _, err := rand.Read(raw[6:]); err != nil {
		binary.BigEndian.PutUint64(raw[8:], uint64(t.UnixNano()))
	}

	// 128 bits are emitted as 26 five-bit groups; the first group carries the 2 leading pad bits.
	var out [ulidLen]byte
	hi := binary.BigEndian.Uint64(raw[:8])
	lo := binary.BigEndian.Uint64(raw[8:])
	for i := ulidLen - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1F]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// Time extracts the timestamp encoded in a ULID.
func Time(ulid string) (time.Time, error) {
	if len(ulid) != ulidLen {
		return time.Time{}, ErrInvalidULID
	}
	var ms uint64
	for _, c := range strings.ToUpper(ulid[:10]) {
		idx := strings.IndexRune(alphabet, c)
		if idx < 0 {
			return time.Time{}, ErrInvalidULID
		}
		ms = ms<<5 | uint64(idx)
	}
	return time.UnixMilli(int64(ms)), nil
}

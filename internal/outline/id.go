package outline

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
	"sync"
	"time"
)

// Simple ULID generator that doesn't require external dependencies.
// IDs are 26-character Crockford Base32 strings with a millisecond
// timestamp prefix, so lines created in order also sort in order.

var (
	idMu    sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewID returns a new ULID.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	// Timestamp in first 6 bytes (big-endian 48-bit).
	for i := range 6 {
		b[i] = byte(ts >> (40 - 8*i))
	}
	rand.Read(b[6:])
	// Sequence in bytes 6-7 keeps IDs unique within the same ms.
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeID(b)
}

// encodeID writes 128 bits as 26 Crockford Base32 characters, most
// significant bits first. The first character carries only 3 bits.
func encodeID(b [16]byte) string {
	var sb strings.Builder
	sb.Grow(26)

	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])
	for i := 25; i >= 0; i-- {
		shift := uint(5 * i)
		var v uint64
		switch {
		case shift >= 64:
			v = hi >> (shift - 64)
		case shift == 0:
			v = lo
		default:
			v = lo>>shift | hi<<(64-shift)
		}
		sb.WriteByte(crockford[v&31])
	}
	return sb.String()
}

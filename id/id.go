// Package id mints trade identifiers. Trades get ULIDs rather than UUIDs: a
// ULID embeds its creation time in the high bits, so trade lists and journal
// indexes stay in insertion order when sorted by id, with no separate
// sequence column.
package id

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var global = newGenerator()

func newGenerator() *generator {
	var seed int64
	if err := binary.Read(cryptorand.Reader, binary.LittleEndian, &seed); err != nil || seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Monotonic entropy keeps ids minted within the same millisecond
	// lexicographically ordered; the mutex makes it safe to share.
	return &generator{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

func (g *generator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy).String()
}

// New returns a fresh trade id.
func New() string {
	return global.next()
}

// Package id issues time-sortable identifiers for sync runs.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Source issues monotonic ULIDs. IDs minted within the same millisecond
// still sort in issue order.
type Source struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewSource seeds a Source from crypto/rand.
func NewSource() *Source {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
		now:     time.Now,
	}
}

// New returns the next ULID string.
func (s *Source) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(s.now().UTC()), s.entropy)
	if err != nil {
		// Only possible if the clock runs backwards past the monotonic
		// window or entropy is exhausted.
		panic(err)
	}
	return id.String()
}

// Time returns the millisecond timestamp embedded in an id.
func Time(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()), nil
}

package uid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"

	"go.uber.org/atomic"
)

// ObjectIDGenerator generates unguessable 64-char hex IDs that still sort by creation time.
//
// Layout: 6 bytes unix millis, 4 bytes counter, 22 random bytes.
type ObjectIDGenerator struct {
	counter atomic.Uint32
	now     func() time.Time
}

// NewObjectIDGenerator creates a generator with a random counter seed.
func NewObjectIDGenerator() (*ObjectIDGenerator, error) {
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}

	g := &ObjectIDGenerator{now: time.Now}
	g.counter.Store(binary.BigEndian.Uint32(seed[:]))

	return g, nil
}

// Generate returns a new ID.
func (g *ObjectIDGenerator) Generate() string {
	var raw [32]byte

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(g.now().UnixMilli()))
	copy(raw[0:6], ts[2:])
	binary.BigEndian.PutUint32(raw[6:10], g.counter.Inc())

	// crypto/rand.Read never fails on supported platforms
	_, _ = rand.Read(raw[10:])

	return hex.EncodeToString(raw[:])
}

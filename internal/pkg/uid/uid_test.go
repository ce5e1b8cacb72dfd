package uid

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectIDGenerator(t *testing.T) {
	g, err := NewObjectIDGenerator()
	require.NoError(t, err)

	now := time.UnixMilli(1_700_000_000_000)
	g.now = func() time.Time { return now }
	first := g.Generate()
	now = now.Add(time.Millisecond)
	second := g.Generate()

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
	assert.Less(t, first[:12], second[:12])
}

func TestSnowflake(t *testing.T) {
	s, err := NewSnowflake()
	require.NoError(t, err)

	a, b := s.Generate(), s.Generate()

	assert.Positive(t, a)
	assert.Greater(t, b, a)
}

func TestUUID(t *testing.T) {
	id := NewUUID().Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID(NewUUID().Generate()))
	assert.False(t, IsUUID("42"))
}

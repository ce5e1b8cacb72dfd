package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("secret")

	sum, err := h.Hash("token")
	require.NoError(t, err)

	assert.Len(t, sum, 64)
	assert.True(t, h.Verify(string(sum), "token"))
	assert.False(t, h.Verify(string(sum), "other"))
	assert.False(t, NewHMACSHA256("another").Verify(string(sum), "token"))
}

package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMap_Value(t *testing.T) {
	v, err := JSONMap{"subject": "Reset your password"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"subject":"Reset your password"}`, string(v.([]byte)))

	v, err = JSONMap(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestJSONMap_Scan(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    JSONMap
		wantErr bool
	}{
		{name: "bytes", in: []byte(`{"from":"no-reply@isa.local"}`), want: JSONMap{"from": "no-reply@isa.local"}},
		{name: "string", in: `{"n":1}`, want: JSONMap{"n": float64(1)}},
		{name: "nil", in: nil, want: JSONMap{}},
		{name: "decoded map", in: map[string]any{"a": true}, want: JSONMap{"a": true}},
		{name: "number", in: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got JSONMap
			err := got.Scan(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrScanValueNotBytes)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONMap_GetString(t *testing.T) {
	m := JSONMap{"subject": "Hi", "n": 1}

	assert.Equal(t, "Hi", m.GetString("subject"))
	assert.Empty(t, m.GetString("n"))
	assert.Empty(t, m.GetString("missing"))
}

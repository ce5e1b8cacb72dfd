package config

import (
	"io"
	"time"
)

// Config reads typed values by dotted key, e.g. "database.dsn".
//
// Missing keys and unconvertible values yield the zero value.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint32(key string) uint32
	GetFloat64(key string) float64

	// GetDuration parses Go duration strings such as "30s" or "1h".
	GetDuration(key string) time.Duration
	// GetSecond reads an integer number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer number of minutes.
	GetMinute(key string) time.Duration

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte
	// GetArray reads a YAML list or a comma-separated string. Blank items are dropped.
	GetArray(key string) []string
	// GetMap reads "k:v,k:v" pairs.
	GetMap(key string) map[string]string
}

package jobqueue

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidCadence is returned for cadences not shaped like "<n> <unit>".
var ErrInvalidCadence = errors.New("jobqueue: invalid cadence")

var cadenceUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
}

// ParseCadence parses human intervals such as "1 days", "30 minutes" or "1 hour".
func ParseCadence(s string) (time.Duration, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCadence, s)
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCadence, s)
	}

	unit, ok := cadenceUnits[strings.TrimSuffix(fields[1], "s")]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidCadence, fields[1])
	}

	if int64(n) > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidCadence, s)
	}

	return time.Duration(n) * unit, nil
}

package normalizer

import (
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Timestamps outside the nanosecond-precision range are treated as unparsed.
// Loose parsing turns fragments like "12:" into year-zero dates, which this
// range rejects.
var (
	minDate = time.Unix(0, math.MinInt64).UTC()
	maxDate = time.Unix(0, math.MaxInt64).UTC()
)

func inRange(t time.Time) bool {
	return !t.Before(minDate) && !t.After(maxDate)
}

// ParseDate parses a stored date value. Strings are parsed best-effort with
// naive values taken as UTC; native timestamps pass through. Anything else,
// including empty strings and the zero time, does not parse.
func ParseDate(v interface{}) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() || !inRange(d) {
			return time.Time{}, false
		}
		return d.UTC(), true
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil || !inRange(t) {
			return time.Time{}, false
		}
		return t.UTC(), true
	default:
		return time.Time{}, false
	}
}

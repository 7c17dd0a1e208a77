package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ISOLayout is the only accepted textual timestamp format.
const ISOLayout = "2006-01-02T15:04:05Z"

// ErrTimestampFormat is returned when a timestamp does not match ISOLayout.
var ErrTimestampFormat = errors.New("timestamp does not match YYYY-MM-DDTHH:MM:SSZ")

// time.Parse tolerates fractional seconds the layout does not mention, so the
// shape is checked up front.
var isoPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)

// ParseISOToEpochMs converts a UTC timestamp like "2023-06-01T12:00:00Z" to
// milliseconds since the Unix epoch.
func ParseISOToEpochMs(s string) (int64, error) {
	if !isoPattern.MatchString(s) {
		return 0, &ValidationError{
			Kind:    KindInvalidTimestamp,
			Field:   "timestamp",
			Message: fmt.Sprintf("invalid timestamp %q", s),
			Err:     ErrTimestampFormat,
		}
	}

	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return 0, &ValidationError{
			Kind:    KindInvalidTimestamp,
			Field:   "timestamp",
			Message: fmt.Sprintf("invalid timestamp %q", s),
			Err:     err,
		}
	}

	return t.UnixMilli(), nil
}

// FormatEpochMs renders epoch milliseconds in ISOLayout, dropping any
// sub-second part.
func FormatEpochMs(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(ISOLayout)
}

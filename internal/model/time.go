package model

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// naiveLayout is how the backend writes datetimes that carry no zone.
// Fractional seconds are accepted after the seconds field when parsing.
const naiveLayout = "2006-01-02T15:04:05"

// Time is a backend timestamp. The backend emits RFC 3339 or naive ISO
// strings; naive values are taken as UTC.
type Time struct {
	time.Time
}

func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(naiveLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("time must be a string: %s", data)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

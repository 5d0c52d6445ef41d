package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// DateFormat is how calendar dates are stored.
const DateFormat = "2006-01-02"

// FormatTime renders t for a TEXT column; the zero time becomes NULL.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime reads a timestamp column; NULL and empty strings give the zero time.
func ParseTime(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	for _, f := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(f, s.String); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s.String)
}

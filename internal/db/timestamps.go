package db

import (
	"fmt"
	"time"
)

// TimeLayout is fixed width so lexical order matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(raw string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		// rows written by hand (sqlite3 shell, CURRENT_TIMESTAMP)
		if t2, err2 := time.Parse(time.DateTime, raw); err2 == nil {
			return t2.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

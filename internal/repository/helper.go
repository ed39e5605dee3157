package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is fixed width and always UTC, so stored timestamps sort
// lexicographically in the same order as chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const dateLayout = "2006-01-02"

// querier is the subset of *sql.DB and *sql.Tx the repositories need.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// FormatTime renders t in the storage layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// FormatDate renders the UTC calendar day of t.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseTime parses a stored timestamp, a "2006-01-02" date or an RFC3339 string.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range []string{timeLayout, dateLayout, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, str); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

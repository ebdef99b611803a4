package sqlite

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Builder is the squirrel statement builder for SQLite placeholders.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Millis converts t to the unix-millisecond form stored in *_at columns.
func Millis(t time.Time) int64 { return t.UnixMilli() }

// FromMillis converts a stored unix-millisecond value back to UTC time.
func FromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// NullMillis converts an optional time to a nullable column value.
func NullMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

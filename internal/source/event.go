package source

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	xmlTimeLayout    = "2006-01-02T15:04:05Z"
	sqliteTimeLayout = "2006-01-02T15:04:05"
)

// RawEvent is one recorded work interval as produced by the local
// tracker. Events are immutable once read.
type RawEvent struct {
	EventID int
	TaskID  int
	Start   time.Time
	End     time.Time
	Comment string
}

// Source streams events in ascending event-id order. fn is called once
// per event; a non-nil return stops the stream and is passed through
// unchanged.
type Source interface {
	Stream(ctx context.Context, fn func(RawEvent) error) error
}

// ReadError reports a missing or malformed input file. It is fatal for
// the run: no partial results are produced.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading events from %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// parseSnapshotTime parses a snapshot timestamp. Some schema versions
// include a millisecond suffix; the literal ".000" fragment is stripped
// before parsing, and any other fractional part is tolerated too.
func parseSnapshotTime(s string) (time.Time, error) {
	s = strings.Replace(s, ".000", "", 1)
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		if i := strings.IndexByte(s, '.'); i >= 0 {
			return time.Parse(sqliteTimeLayout, s[:i])
		}
		return time.Time{}, err
	}
	return t, nil
}

package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// DBSource reads events from a Charm SQLite snapshot (table Events).
// The minimum event id and the optional date bounds are pushed into the
// query so the snapshot is never scanned in full.
type DBSource struct {
	Path         string
	StartEventID int
	StartDate    *time.Time
	EndDate      *time.Time
}

func NewDBSource(path string, startEventID int, startDate, endDate *time.Time) *DBSource {
	return &DBSource{
		Path:         path,
		StartEventID: startEventID,
		StartDate:    startDate,
		EndDate:      endDate,
	}
}

func (s *DBSource) Stream(ctx context.Context, fn func(RawEvent) error) error {
	if _, err := os.Stat(s.Path); err != nil {
		return &ReadError{Path: s.Path, Err: err}
	}

	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return &ReadError{Path: s.Path, Err: err}
	}
	defer db.Close()

	// "start" and "end" are SQL keywords, hence the quoting.
	query := `SELECT event_id, task, "start", "end", comment FROM Events WHERE event_id >= ?`
	args := []interface{}{s.StartEventID}

	if s.StartDate != nil {
		query += ` AND "start" >= date(?)`
		args = append(args, s.StartDate.Format(dateLayout))
	}
	if s.EndDate != nil {
		query += ` AND "start" <= date(?)`
		args = append(args, s.EndDate.Format(dateLayout))
	}
	query += " ORDER BY event_id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return &ReadError{Path: s.Path, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			eventID, taskID  int
			startStr, endStr string
			comment          sql.NullString
		)
		if err := rows.Scan(&eventID, &taskID, &startStr, &endStr, &comment); err != nil {
			return &ReadError{Path: s.Path, Err: err}
		}

		start, err := parseSnapshotTime(startStr)
		if err != nil {
			return &ReadError{Path: s.Path, Err: fmt.Errorf("event %d: bad start timestamp %q: %w", eventID, startStr, err)}
		}
		end, err := parseSnapshotTime(endStr)
		if err != nil {
			return &ReadError{Path: s.Path, Err: fmt.Errorf("event %d: bad end timestamp %q: %w", eventID, endStr, err)}
		}

		if err := fn(RawEvent{
			EventID: eventID,
			TaskID:  taskID,
			Start:   start,
			End:     end,
			Comment: comment.String,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return &ReadError{Path: s.Path, Err: err}
	}
	return nil
}

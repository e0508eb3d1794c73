package reconcile

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/endocode/timy/internal/redmine"
	"github.com/endocode/timy/internal/source"
)

const dateLayout = "2006-01-02"

// Entry is a time-entry draft derived from one event plus its resolved
// mapping. It is never mutated after construction.
type Entry struct {
	EventID      int
	Project      *redmine.Project
	ActivityID   int
	ActivityName string
	Issue        *redmine.Issue
	SpentOn      string
	Duration     time.Duration
	Hours        float64
	Comments     string
}

// BuildEntry folds an in-scope event and its resolution into a draft.
// The interval is truncated to whole seconds before converting to
// decimal hours, which are rounded half away from zero to 2 places.
func BuildEntry(ev source.RawEvent, project *redmine.Project, activityID int, activityName string, issue *redmine.Issue) (*Entry, error) {
	if ev.End.Before(ev.Start) {
		return nil, fmt.Errorf("event %d: end %s before start %s", ev.EventID, ev.End.Format(time.RFC3339), ev.Start.Format(time.RFC3339))
	}

	seconds := int64(ev.End.Sub(ev.Start) / time.Second)
	hours := roundHours(float64(seconds) / 3600.0)

	return &Entry{
		EventID:      ev.EventID,
		Project:      project,
		ActivityID:   activityID,
		ActivityName: activityName,
		Issue:        issue,
		SpentOn:      ev.Start.Format(dateLayout),
		Duration:     time.Duration(seconds) * time.Second,
		Hours:        hours,
		Comments:     ev.Comment,
	}, nil
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// Request returns the create payload for the remote service.
func (e *Entry) Request() redmine.NewTimeEntry {
	req := redmine.NewTimeEntry{
		ProjectID:  e.Project.ID,
		ActivityID: e.ActivityID,
		SpentOn:    e.SpentOn,
		Hours:      e.Hours,
		Comments:   e.Comments,
	}
	if e.Issue != nil {
		req.IssueID = e.Issue.ID
	}
	return req
}

// WriteReport prints the per-event block. This is the operator's only
// visibility before a live submission.
func (e *Entry) WriteReport(w io.Writer) {
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Date:\t\t%s\n", e.SpentOn)
	fmt.Fprintf(w, "Project:\t%s\n", e.Project.Name)
	fmt.Fprintf(w, "Activity:\t%s\n", e.ActivityName)
	if e.Issue != nil {
		fmt.Fprintf(w, "Issue:\t\t%s, id: %d\n", e.Issue.Subject, e.Issue.ID)
	} else {
		fmt.Fprintf(w, "Issue:\t\tNo issue\n")
	}
	fmt.Fprintf(w, "Spent time:\t%s\tdecimal: %v\n", formatDuration(e.Duration), e.Hours)
	fmt.Fprintf(w, "Comments:\t%s\n", e.Comments)
	fmt.Fprintf(w, "Event id:\t#%d\n", e.EventID)
}

// formatDuration renders H:MM:SS the way the tracker shows intervals.
func formatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

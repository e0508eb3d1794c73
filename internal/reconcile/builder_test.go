package reconcile

import (
	"strings"
	"testing"
	"time"

	"github.com/endocode/timy/internal/redmine"
	"github.com/endocode/timy/internal/source"
)

var testProject = &redmine.Project{ID: 17, Identifier: "flux", Name: "Flux Capacitor"}

func TestBuildEntry(t *testing.T) {
	ev := source.RawEvent{
		EventID: 3,
		TaskID:  42,
		Start:   time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC),
		End:     time.Date(2023, 1, 2, 12, 30, 0, 0, time.UTC),
		Comment: "wiring",
	}

	entry, err := BuildEntry(ev, testProject, 9, "Development", nil)
	if err != nil {
		t.Fatal(err)
	}

	if entry.Hours != 3.5 {
		t.Errorf("hours = %v, want 3.5", entry.Hours)
	}
	if entry.SpentOn != "2023-01-02" {
		t.Errorf("spent_on = %q, want 2023-01-02", entry.SpentOn)
	}

	req := entry.Request()
	if req.ProjectID != 17 || req.ActivityID != 9 || req.IssueID != 0 {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.Hours != 3.5 || req.SpentOn != "2023-01-02" || req.Comments != "wiring" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestBuildEntryRejectsNegativeInterval(t *testing.T) {
	ev := source.RawEvent{
		EventID: 1,
		Start:   time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC),
		End:     time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC),
	}
	if _, err := BuildEntry(ev, testProject, 9, "Development", nil); err == nil {
		t.Fatal("expected error for end before start")
	}
}

func TestBuildEntryTruncatesSubSeconds(t *testing.T) {
	ev := source.RawEvent{
		EventID: 1,
		Start:   time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC),
		End:     time.Date(2023, 1, 2, 10, 0, 0, 900_000_000, time.UTC),
	}
	entry, err := BuildEntry(ev, testProject, 9, "Development", nil)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Hours != 1.0 {
		t.Errorf("hours = %v, want 1.0 (sub-second remainder discarded)", entry.Hours)
	}
	if entry.Duration != time.Hour {
		t.Errorf("duration = %v, want 1h", entry.Duration)
	}
}

func TestRoundHours(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{3.5, 3.5},
		{0.004999, 0.0},
		{0.005, 0.01},
		{1.0 / 3600.0, 0.0}, // one second
		{7.0/3600.0 + 2, 2.0},
		{0.125, 0.13},
	}
	for _, tt := range tests {
		if got := roundHours(tt.in); got != tt.want {
			t.Errorf("roundHours(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRoundHoursIdempotent(t *testing.T) {
	for _, h := range []float64{0, 0.01, 1.25, 3.5, 7.99, 12.34} {
		if got := roundHours(h); got != h {
			t.Errorf("roundHours(%v) = %v, rounding must be idempotent", h, got)
		}
	}
}

func TestWriteReport(t *testing.T) {
	ev := source.RawEvent{
		EventID: 3,
		TaskID:  42,
		Start:   time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC),
		End:     time.Date(2023, 1, 2, 12, 30, 0, 0, time.UTC),
		Comment: "wiring",
	}
	issue := &redmine.Issue{ID: 123, Subject: "Broken capacitor"}

	entry, err := BuildEntry(ev, testProject, 9, "Development", issue)
	if err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	entry.WriteReport(&buf)
	got := buf.String()

	want := strings.Join([]string{
		"--------------------------------------------------",
		"Date:\t\t2023-01-02",
		"Project:\tFlux Capacitor",
		"Activity:\tDevelopment",
		"Issue:\t\tBroken capacitor, id: 123",
		"Spent time:\t3:30:00\tdecimal: 3.5",
		"Comments:\twiring",
		"Event id:\t#3",
		"",
	}, "\n")
	if got != want {
		t.Errorf("report:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteReportNoIssue(t *testing.T) {
	ev := source.RawEvent{
		EventID: 1,
		Start:   time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC),
		End:     time.Date(2023, 1, 2, 9, 15, 0, 0, time.UTC),
	}
	entry, err := BuildEntry(ev, testProject, 9, "Development", nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	entry.WriteReport(&buf)
	if !strings.Contains(buf.String(), "Issue:\t\tNo issue\n") {
		t.Errorf("report missing No issue line:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Spent time:\t0:15:00\tdecimal: 0.25\n") {
		t.Errorf("report missing spent time line:\n%s", buf.String())
	}
}

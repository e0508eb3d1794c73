package balance

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBusinessDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"full work week", day(2023, 1, 2), day(2023, 1, 6), 5},
		{"week including weekend", day(2023, 1, 2), day(2023, 1, 8), 5},
		{"single saturday", day(2023, 1, 7), day(2023, 1, 7), 0},
		{"single sunday", day(2023, 1, 8), day(2023, 1, 8), 0},
		{"weekend only", day(2023, 1, 7), day(2023, 1, 8), 0},
		{"single monday", day(2023, 1, 2), day(2023, 1, 2), 1},
		{"end before start", day(2023, 1, 6), day(2023, 1, 2), 0},
		{"two weeks", day(2023, 1, 2), day(2023, 1, 15), 10},
		{"mid-day timestamps", time.Date(2023, 1, 2, 13, 30, 0, 0, time.UTC), time.Date(2023, 1, 3, 9, 0, 0, 0, time.UTC), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BusinessDays(tt.start, tt.end); got != tt.want {
				t.Errorf("BusinessDays(%s, %s) = %d, want %d",
					tt.start.Format("2006-01-02"), tt.end.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestBusinessDaysZeroRequiredHours(t *testing.T) {
	// A range with zero business days yields zero required hours.
	workDays := BusinessDays(day(2023, 1, 7), day(2023, 1, 7))
	if required := float64(workDays) * (40.0 / 5); required != 0 {
		t.Errorf("required hours = %v, want 0", required)
	}
}

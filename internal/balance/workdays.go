package balance

import "time"

// BusinessDays counts Mondays through Fridays between start and end,
// both days inclusive. No holiday calendar is applied. A range with
// end before start counts zero days.
func BusinessDays(start, end time.Time) int {
	start = startOfDay(start)
	end = startOfDay(end)

	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

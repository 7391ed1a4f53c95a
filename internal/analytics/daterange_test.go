package analytics

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPreviousPeriod(t *testing.T) {
	tests := []struct {
		name      string
		r         DateRange
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			"one week",
			DateRange{Start: day(2024, 3, 10), End: day(2024, 3, 16)},
			day(2024, 3, 3), day(2024, 3, 9),
		},
		{
			"single day",
			DateRange{Start: day(2024, 6, 15), End: day(2024, 6, 15)},
			day(2024, 6, 14), day(2024, 6, 14),
		},
		{
			"across month boundary",
			DateRange{Start: day(2024, 3, 1), End: day(2024, 3, 31)},
			day(2024, 1, 30), day(2024, 2, 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := tt.r.PreviousPeriod()
			if !prev.Start.Equal(tt.wantStart) || !prev.End.Equal(tt.wantEnd) {
				t.Errorf("got [%s, %s], want [%s, %s]",
					prev.Start.Format("2006-01-02"), prev.End.Format("2006-01-02"),
					tt.wantStart.Format("2006-01-02"), tt.wantEnd.Format("2006-01-02"))
			}
		})
	}
}

func TestPreviousPeriod_NoGapNoOverlap(t *testing.T) {
	r := DateRange{Start: day(2024, 3, 10), End: day(2024, 3, 16)}
	prev := r.PreviousPeriod()

	if prev.Days() != r.Days() {
		t.Errorf("previous period has %d days, current has %d", prev.Days(), r.Days())
	}
	if !prev.End.AddDate(0, 0, 1).Equal(r.Start) {
		t.Errorf("previous end %s does not abut current start %s",
			prev.End.Format("2006-01-02"), r.Start.Format("2006-01-02"))
	}
}

func TestBounds_HalfOpen(t *testing.T) {
	r := DateRange{Start: day(2024, 3, 10), End: day(2024, 3, 16)}
	from, to := r.Bounds()

	if !from.Equal(day(2024, 3, 10)) {
		t.Errorf("from = %s", from)
	}
	// End day is inclusive, so the exclusive bound is the next midnight.
	if !to.Equal(day(2024, 3, 17)) {
		t.Errorf("to = %s", to)
	}
}

func TestDays(t *testing.T) {
	tests := []struct {
		r    DateRange
		want int
	}{
		{DateRange{Start: day(2024, 3, 10), End: day(2024, 3, 16)}, 7},
		{DateRange{Start: day(2024, 3, 10), End: day(2024, 3, 10)}, 1},
		{DateRange{Start: day(2024, 1, 1), End: day(2024, 1, 31)}, 31},
	}

	for _, tt := range tests {
		if got := tt.r.Days(); got != tt.want {
			t.Errorf("Days(%s..%s) = %d, want %d",
				tt.r.Start.Format("2006-01-02"), tt.r.End.Format("2006-01-02"), got, tt.want)
		}
	}
}

package analytics

import "time"

// DateRange is an inclusive day range. Start and End are midnight-aligned
// in the caller's location.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// PreviousPeriod returns the immediately preceding window of identical
// length: it ends the day before Start and spans the same number of days,
// with no gap or overlap.
func (r DateRange) PreviousPeriod() DateRange {
	days := r.Days()
	end := r.Start.AddDate(0, 0, -1)
	return DateRange{
		Start: end.AddDate(0, 0, -(days - 1)),
		End:   end,
	}
}

// Days returns the inclusive day count of the range.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Bounds returns the half-open [from, to) instant window covering the
// range, for use in store queries.
func (r DateRange) Bounds() (from, to time.Time) {
	return r.Start, r.End.AddDate(0, 0, 1)
}

package booking

import "time"

const day = 24 * time.Hour

// Stay is a half-open date interval [CheckIn, CheckOut).  Both ends
// are normalised to midnight UTC so that night arithmetic is exact.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewStay builds a Stay from arbitrary timestamps, truncating both to
// their UTC calendar day.
func NewStay(checkIn, checkOut time.Time) Stay {
	return Stay{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of whole nights in the stay.  It is zero or
// negative when check-out is not after check-in.
func (s Stay) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn) / day)
}

// Overlaps reports whether two stays share at least one night:
// NOT (other.CheckOut <= s.CheckIn OR other.CheckIn >= s.CheckOut).
func (s Stay) Overlaps(other Stay) bool {
	return !(!other.CheckOut.After(s.CheckIn) || !other.CheckIn.Before(s.CheckOut))
}

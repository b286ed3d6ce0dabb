package services

import "time"

// Clock supplies "today" for sales rollups and sales windows. Days start at
// midnight in loc.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a Clock that reports calendar days in loc.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{loc: loc, now: time.Now}
}

func (c Clock) Today() time.Time {
	return midnight(c.now(), c.loc)
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

package clock

import "time"

// Clock supplies the wall-clock time used to stamp last_updated and to
// resolve "today" and "this week".
type Clock interface {
	Now() time.Time
}

type system struct {
	loc *time.Location
}

// NewSystem returns a clock reading time.Now in loc.
func NewSystem(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return system{loc: loc}
}

func (s system) Now() time.Time {
	return time.Now().In(s.loc)
}

type fixed struct {
	now time.Time
}

// NewFixed returns a clock stuck at t, for tests.
func NewFixed(t time.Time) Clock {
	return fixed{now: t}
}

func (f fixed) Now() time.Time {
	return f.now
}

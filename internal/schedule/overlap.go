// Package schedule holds the interval rules applied to stored events: overlap
// detection, temporal neighbours and the list query engine. Everything here
// is a pure function of the events passed in; atomicity is the caller's job.
package schedule

import (
	"sort"
	"time"

	"github.com/joshua-takyi/mycalendar/internal/models"
)

// NoExclusion is passed as excludeID when no stored event should be skipped.
// Store ids start at 1.
const NoExclusion int64 = 0

// intersects reports whether e shares any instant with the closed interval
// [start, end]. Touching endpoints count.
func intersects(e models.Event, start, end time.Time) bool {
	startInside := !e.StartTime.Before(start) && !e.StartTime.After(end)
	endInside := !e.EndTime.Before(start) && !e.EndTime.After(end)
	covers := !e.StartTime.After(start) && !e.EndTime.Before(end)
	return startInside || endInside || covers
}

// Conflicts returns the events colliding with [start, end], ordered by id.
// The event with id excludeID is never reported.
func Conflicts(events []models.Event, start, end time.Time, excludeID int64) []models.Event {
	var out []models.Event
	for _, e := range events {
		if excludeID != NoExclusion && e.ID == excludeID {
			continue
		}
		if intersects(e, start, end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Overlaps reports whether [start, end] collides with any event other than excludeID.
func Overlaps(events []models.Event, start, end time.Time, excludeID int64) bool {
	for _, e := range events {
		if excludeID != NoExclusion && e.ID == excludeID {
			continue
		}
		if intersects(e, start, end) {
			return true
		}
	}
	return false
}

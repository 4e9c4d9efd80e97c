package schedule

import "github.com/joshua-takyi/mycalendar/internal/models"

// Adjacent finds the events immediately before and after current by start
// time. Events starting at exactly current's start are never neighbours.
// When several events share the nearest start time, the lowest id wins.
func Adjacent(events []models.Event, current models.Event) (previous, next *models.Event) {
	for i := range events {
		e := events[i]
		if e.ID == current.ID {
			continue
		}
		switch {
		case e.StartTime.Before(current.StartTime):
			if previous == nil || e.StartTime.After(previous.StartTime) ||
				(e.StartTime.Equal(previous.StartTime) && e.ID < previous.ID) {
				previous = e.Clone()
			}
		case e.StartTime.After(current.StartTime):
			if next == nil || e.StartTime.Before(next.StartTime) ||
				(e.StartTime.Equal(next.StartTime) && e.ID < next.ID) {
				next = e.Clone()
			}
		}
	}
	return previous, next
}

package models

import (
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	ClockLayout     = "15:04:05"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Location is the Australian street address an event is held at.
type Location struct {
	Street   string `db:"street" bson:"street" json:"street"`
	Suburb   string `db:"suburb" bson:"suburb" json:"suburb"`
	State    string `db:"state" bson:"state" json:"state"`          // one of States, e.g. "NSW"
	PostCode string `db:"post_code" bson:"post_code" json:"post-code"` // e.g. "2035"
}

type Event struct {
	ID int64 `db:"id" bson:"_id" json:"id"`

	Name        string    `db:"name" bson:"name" json:"name"`
	StartTime   time.Time `db:"start_time" bson:"start_time" json:"start_time"` // e.g. "2026-10-01 09:00:00"
	EndTime     time.Time `db:"end_time" bson:"end_time" json:"end_time"`
	Description string    `db:"description" bson:"description" json:"description"`
	LastUpdated time.Time `db:"last_updated" bson:"last_updated" json:"last_updated"`
	Location    Location  `db:"-" bson:"location" json:"location"`
}

// Validate checks the invariants every stored event must satisfy.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return Invalidf("event name is required")
	}
	if !e.StartTime.Before(e.EndTime) {
		return Invalidf("start time must be before end time")
	}
	if _, err := NormalizeState(e.Location.State); err != nil {
		return err
	}
	return nil
}

// Normalize truncates timestamps to whole seconds in loc and canonicalises the state.
func (e *Event) Normalize(loc *time.Location) error {
	e.StartTime = e.StartTime.In(loc).Truncate(time.Second)
	e.EndTime = e.EndTime.In(loc).Truncate(time.Second)
	if !e.LastUpdated.IsZero() {
		e.LastUpdated = e.LastUpdated.In(loc).Truncate(time.Second)
	}
	state, err := NormalizeState(e.Location.State)
	if err != nil {
		return err
	}
	e.Location.State = state
	return nil
}

// Clone returns a copy safe to hand out of a store.
func (e Event) Clone() *Event {
	return &e
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/mycalendar/internal/clock"
	"github.com/joshua-takyi/mycalendar/internal/models"
	"github.com/joshua-takyi/mycalendar/internal/schedule"
)

type LocationInput struct {
	Street   string `json:"street" binding:"required"`
	Suburb   string `json:"suburb" binding:"required"`
	State    string `json:"state" binding:"required,austate"`
	PostCode string `json:"post-code" binding:"required"`
}

type CreateEventInput struct {
	Name        string        `json:"name" binding:"required"`
	Date        string        `json:"date" binding:"required"` // YYYY-MM-DD
	From        string        `json:"from" binding:"required"` // HH:MM:SS
	To          string        `json:"to" binding:"required"`   // HH:MM:SS
	Location    LocationInput `json:"location"`
	Description string        `json:"description"`
}

type LocationPatch struct {
	Street   *string `json:"street"`
	Suburb   *string `json:"suburb"`
	State    *string `json:"state"`
	PostCode *string `json:"post-code"`
}

// UpdateEventInput is a partial update; nil fields keep their stored value.
// Date, From and To default to the stored event's, so a new date alone moves
// the whole event to that day.
type UpdateEventInput struct {
	Name        *string        `json:"name"`
	Date        *string        `json:"date"`
	From        *string        `json:"from"`
	To          *string        `json:"to"`
	Location    *LocationPatch `json:"location"`
	Description *string        `json:"description"`
}

type EventService struct {
	repo   models.EventsRepo
	clock  clock.Clock
	loc    *time.Location
	logger *slog.Logger
}

func NewEventService(repo models.EventsRepo, clk clock.Clock, loc *time.Location, logger *slog.Logger) *EventService {
	if loc == nil {
		loc = time.UTC
	}
	if clk == nil {
		clk = clock.NewSystem(loc)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		repo:   repo,
		clock:  clk,
		loc:    loc,
		logger: logger,
	}
}

func (es *EventService) Location() *time.Location {
	return es.loc
}

func (es *EventService) now() time.Time {
	return es.clock.Now().In(es.loc).Truncate(time.Second)
}

// ParseSlot combines a date and two clock times into an interval in loc.
func ParseSlot(date, from, to string, loc *time.Location) (time.Time, time.Time, error) {
	const layout = models.DateLayout + " " + models.ClockLayout
	start, err := time.ParseInLocation(layout, date+" "+from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, models.Invalidf("incorrect date or time format, please use YYYY-MM-DD and HH:MM:SS")
	}
	end, err := time.ParseInLocation(layout, date+" "+to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, models.Invalidf("incorrect date or time format, please use YYYY-MM-DD and HH:MM:SS")
	}
	return start, end, nil
}

func (es *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	start, end, err := ParseSlot(in.Date, in.From, in.To, es.loc)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:        in.Name,
		StartTime:   start,
		EndTime:     end,
		Description: in.Description,
		Location: models.Location{
			Street:   in.Location.Street,
			Suburb:   in.Location.Suburb,
			State:    in.Location.State,
			PostCode: in.Location.PostCode,
		},
	}
	if err := event.Normalize(es.loc); err != nil {
		return nil, err
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	var created *models.Event
	err = es.repo.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := es.repo.ListEvents(txCtx)
		if err != nil {
			return err
		}
		if clash := schedule.Conflicts(existing, event.StartTime, event.EndTime, schedule.NoExclusion); len(clash) > 0 {
			es.logger.Info("event rejected: overlap", "name", event.Name, "conflicts_with", clash[0].ID, "conflicts", len(clash))
			return fmt.Errorf("%w: clashes with event %d", models.ErrConflict, clash[0].ID)
		}

		event.LastUpdated = es.now()
		created, err = es.repo.CreateEvent(txCtx, event)
		return err
	})
	if err != nil {
		return nil, err
	}

	es.logger.Info("event created", "id", created.ID, "start", created.StartTime.Format(models.TimestampLayout))
	return created, nil
}

func (es *EventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return es.repo.GetEvent(ctx, id)
}

func (es *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return es.repo.ListEvents(ctx)
}

// UpdateEvent applies a partial update. The stored event is read, patched,
// overlap-checked against every other event and written in one exclusive
// region, so an unknown id is reported before any format error in the patch.
func (es *EventService) UpdateEvent(ctx context.Context, id int64, in UpdateEventInput) (*models.Event, error) {
	var updated *models.Event
	err := es.repo.WithTx(ctx, func(txCtx context.Context) error {
		current, err := es.repo.GetEvent(txCtx, id)
		if err != nil {
			return err
		}

		patched, err := es.applyPatch(*current, in)
		if err != nil {
			return err
		}

		existing, err := es.repo.ListEvents(txCtx)
		if err != nil {
			return err
		}
		if clash := schedule.Conflicts(existing, patched.StartTime, patched.EndTime, id); len(clash) > 0 {
			es.logger.Info("event update rejected: overlap", "id", id, "conflicts_with", clash[0].ID)
			return fmt.Errorf("%w: clashes with event %d", models.ErrConflict, clash[0].ID)
		}

		patched.LastUpdated = es.now()
		updated, err = es.repo.UpdateEvent(txCtx, patched)
		return err
	})
	if err != nil {
		return nil, err
	}

	es.logger.Info("event updated", "id", updated.ID)
	return updated, nil
}

func (es *EventService) applyPatch(ev models.Event, in UpdateEventInput) (*models.Event, error) {
	if in.Name != nil {
		ev.Name = *in.Name
	}
	if in.Description != nil {
		ev.Description = *in.Description
	}

	if in.Date != nil || in.From != nil || in.To != nil {
		date := ev.StartTime.Format(models.DateLayout)
		from := ev.StartTime.Format(models.ClockLayout)
		to := ev.EndTime.Format(models.ClockLayout)
		if in.Date != nil {
			date = *in.Date
		}
		if in.From != nil {
			from = *in.From
		}
		if in.To != nil {
			to = *in.To
		}
		start, end, err := ParseSlot(date, from, to, es.loc)
		if err != nil {
			return nil, err
		}
		ev.StartTime, ev.EndTime = start, end
	}

	if l := in.Location; l != nil {
		if l.Street != nil {
			ev.Location.Street = *l.Street
		}
		if l.Suburb != nil {
			ev.Location.Suburb = *l.Suburb
		}
		if l.State != nil {
			ev.Location.State = *l.State
		}
		if l.PostCode != nil {
			ev.Location.PostCode = *l.PostCode
		}
	}

	if err := ev.Normalize(es.loc); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (es *EventService) DeleteEvent(ctx context.Context, id int64) error {
	if err := es.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	es.logger.Info("event deleted", "id", id)
	return nil
}

// Neighbours returns the events immediately before and after ev by start time.
func (es *EventService) Neighbours(ctx context.Context, ev *models.Event) (previous, next *models.Event, err error) {
	events, err := es.repo.ListEvents(ctx)
	if err != nil {
		return nil, nil, err
	}
	previous, next = schedule.Adjacent(events, *ev)
	return previous, next, nil
}

// QueryEvents runs a validated list query against a snapshot of the store.
func (es *EventService) QueryEvents(ctx context.Context, q schedule.Query) (schedule.Result, error) {
	events, err := es.repo.ListEvents(ctx)
	if err != nil {
		return schedule.Result{}, err
	}
	return schedule.Run(events, q), nil
}

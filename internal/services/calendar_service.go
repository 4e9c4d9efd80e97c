package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/joshua-takyi/mycalendar/internal/models"
)

const (
	productID = "-//mycalendar//events//EN"

	propStreet   = ical.ComponentProperty("X-MYCAL-STREET")
	propSuburb   = ical.ComponentProperty("X-MYCAL-SUBURB")
	propState    = ical.ComponentProperty("X-MYCAL-STATE")
	propPostCode = ical.ComponentProperty("X-MYCAL-POSTCODE")
)

// eventNamespace derives stable VEVENT UIDs from event ids.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:mycalendar:events"))

// SkippedEvent is a VEVENT that was not imported.
type SkippedEvent struct {
	UID     string `json:"uid"`
	Summary string `json:"summary"`
	Reason  string `json:"reason"`
}

type ImportReport struct {
	Imported []int64        `json:"imported"`
	Skipped  []SkippedEvent `json:"skipped"`
}

// CalendarService converts between stored events and iCalendar documents.
type CalendarService struct {
	events *EventService
	logger *slog.Logger
}

func NewCalendarService(events *EventService, logger *slog.Logger) *CalendarService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarService{events: events, logger: logger}
}

func EventUID(id int64) string {
	return uuid.NewSHA1(eventNamespace, []byte(strconv.FormatInt(id, 10))).String()
}

// ExportICS writes every stored event, ordered by start time, as one VCALENDAR.
func (cs *CalendarService) ExportICS(ctx context.Context, w io.Writer) error {
	events, err := cs.events.ListEvents(ctx)
	if err != nil {
		return err
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartTime.Before(events[j].StartTime)
	})

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		ve := cal.AddEvent(EventUID(ev.ID))
		ve.SetDtStampTime(ev.LastUpdated)
		ve.SetModifiedAt(ev.LastUpdated)
		ve.SetStartAt(ev.StartTime)
		ve.SetEndAt(ev.EndTime)
		ve.SetSummary(ev.Name)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		ve.SetLocation(fmt.Sprintf("%s, %s %s %s", ev.Location.Street, ev.Location.Suburb, ev.Location.State, ev.Location.PostCode))
		ve.SetProperty(propStreet, ev.Location.Street)
		ve.SetProperty(propSuburb, ev.Location.Suburb)
		ve.SetProperty(propState, ev.Location.State)
		ve.SetProperty(propPostCode, ev.Location.PostCode)
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

// ImportICS creates one event per VEVENT through the normal create path, so
// overlapping entries are skipped rather than stored.
func (cs *CalendarService) ImportICS(ctx context.Context, r io.Reader) (ImportReport, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return ImportReport{}, fmt.Errorf("read calendar: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ImportReport{}, models.Invalidf("empty calendar")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return ImportReport{}, fmt.Errorf("%w: parse calendar: %v", models.ErrValidation, err)
	}

	report := ImportReport{Imported: []int64{}, Skipped: []SkippedEvent{}}
	for _, ve := range cal.Events() {
		uid, summary := propValue(ve, ical.ComponentPropertyUniqueId), propValue(ve, ical.ComponentPropertySummary)

		in, err := cs.inputFromVEvent(ve)
		if err == nil {
			var created *models.Event
			created, err = cs.events.CreateEvent(ctx, in)
			if err == nil {
				report.Imported = append(report.Imported, created.ID)
				continue
			}
		}
		if !errors.Is(err, models.ErrValidation) && !errors.Is(err, models.ErrConflict) {
			return report, err
		}
		cs.logger.Info("calendar entry skipped", "uid", uid, "reason", err)
		report.Skipped = append(report.Skipped, SkippedEvent{UID: uid, Summary: summary, Reason: err.Error()})
	}
	return report, nil
}

func (cs *CalendarService) inputFromVEvent(ve *ical.VEvent) (CreateEventInput, error) {
	loc := cs.events.Location()

	start, err := ve.GetStartAt()
	if err != nil {
		return CreateEventInput{}, models.Invalidf("bad DTSTART: %v", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return CreateEventInput{}, models.Invalidf("bad DTEND: %v", err)
	}
	start, end = start.In(loc), end.In(loc)
	if start.Format(models.DateLayout) != end.Format(models.DateLayout) {
		return CreateEventInput{}, models.Invalidf("event spans more than one day")
	}

	return CreateEventInput{
		Name:        propValue(ve, ical.ComponentPropertySummary),
		Date:        start.Format(models.DateLayout),
		From:        start.Format(models.ClockLayout),
		To:          end.Format(models.ClockLayout),
		Description: propValue(ve, ical.ComponentPropertyDescription),
		Location: LocationInput{
			Street:   propValue(ve, propStreet),
			Suburb:   propValue(ve, propSuburb),
			State:    propValue(ve, propState),
			PostCode: propValue(ve, propPostCode),
		},
	}, nil
}

func propValue(ve *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return strings.TrimSpace(prop.Value)
	}
	return ""
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshua-takyi/mycalendar/internal/clients"
	"github.com/joshua-takyi/mycalendar/internal/models"
)

const (
	NotAvailable  = "*not available*"
	NotAHoliday   = "*Not a holiday*"
	NoForecast    = "*no forecast made*"
	defaultLookup = 5 * time.Second
)

type Forecaster interface {
	Hourly(ctx context.Context, lat, lon float64) (*clients.HourlyForecast, error)
	Daily(ctx context.Context, lat, lon float64) (*clients.DailyForecast, error)
}

type HolidayCalendar interface {
	HolidayOn(ctx context.Context, date time.Time, state string) (string, bool, error)
}

type Geocoder interface {
	Suburb(name string) (clients.Coordinates, bool)
	City(name string) (clients.Coordinates, bool)
}

// Metadata is the "_metadata" block of an event. Each lookup degrades to its
// sentinel independently.
type Metadata struct {
	WindSpeed   string `json:"wind-speed"`
	Weather     string `json:"weather"`
	Humidity    string `json:"humidity"`
	Temperature string `json:"temperature"`
	Holiday     string `json:"holiday"`
	Weekend     bool   `json:"weekend"`
}

type EnrichmentService struct {
	weather  Forecaster
	holidays HolidayCalendar
	geocoder Geocoder
	timeout  time.Duration
	logger   *slog.Logger
}

func NewEnrichmentService(weather Forecaster, holidays HolidayCalendar, geocoder Geocoder, timeout time.Duration, logger *slog.Logger) *EnrichmentService {
	if timeout <= 0 {
		timeout = defaultLookup
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichmentService{
		weather:  weather,
		holidays: holidays,
		geocoder: geocoder,
		timeout:  timeout,
		logger:   logger,
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Metadata looks up weather and holiday for ev in parallel. It never fails.
func (s *EnrichmentService) Metadata(ctx context.Context, ev *models.Event) Metadata {
	md := Metadata{
		WindSpeed:   NotAvailable,
		Weather:     NotAvailable,
		Humidity:    NotAvailable,
		Temperature: NotAvailable,
		Holiday:     NotAHoliday,
		Weekend:     IsWeekend(ev.StartTime),
	}

	var (
		g       errgroup.Group
		point   clients.HourlyPoint
		found   bool
		holiday string
	)
	g.Go(func() error {
		point, found = s.forecast(ctx, ev)
		return nil
	})
	g.Go(func() error {
		holiday = s.holiday(ctx, ev)
		return nil
	})
	_ = g.Wait()

	if found {
		md.WindSpeed = fmt.Sprintf("%d KM", point.Wind10m.Speed)
		md.Weather = point.Weather
		md.Humidity = point.Rh2m
		md.Temperature = fmt.Sprintf("%d C", point.Temp2m)
	}
	if holiday != "" {
		md.Holiday = holiday
	}
	return md
}

func (s *EnrichmentService) forecast(ctx context.Context, ev *models.Event) (clients.HourlyPoint, bool) {
	if s.weather == nil || s.geocoder == nil {
		return clients.HourlyPoint{}, false
	}
	coords, ok := s.geocoder.Suburb(ev.Location.Suburb)
	if !ok {
		s.logger.Debug("no coordinates for suburb", "suburb", ev.Location.Suburb, "id", ev.ID)
		return clients.HourlyPoint{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	f, err := s.weather.Hourly(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		s.logger.Warn("weather lookup failed", "id", ev.ID, "error", err)
		return clients.HourlyPoint{}, false
	}
	return f.At(ev.StartTime)
}

func (s *EnrichmentService) holiday(ctx context.Context, ev *models.Event) string {
	if s.holidays == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	name, ok, err := s.holidays.HolidayOn(ctx, ev.StartTime, ev.Location.State)
	if err != nil {
		s.logger.Warn("holiday lookup failed", "id", ev.ID, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return name
}

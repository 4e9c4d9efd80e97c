package services

import (
	"context"
	"time"

	"github.com/joshua-takyi/mycalendar/internal/chart"
	"github.com/joshua-takyi/mycalendar/internal/clock"
	"github.com/joshua-takyi/mycalendar/internal/models"
)

type Statistics struct {
	Total             int            `json:"total"`
	TotalCurrentWeek  int            `json:"total-current-week"`
	TotalCurrentMonth int            `json:"total-current-month"`
	PerDays           map[string]int `json:"per-days"`
}

type StatsService struct {
	repo     models.EventsRepo
	clock    clock.Clock
	loc      *time.Location
	renderer chart.Renderer
}

func NewStatsService(repo models.EventsRepo, clk clock.Clock, loc *time.Location, renderer chart.Renderer) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	if clk == nil {
		clk = clock.NewSystem(loc)
	}
	if renderer == nil {
		renderer = chart.NewNative(0, 0)
	}
	return &StatsService{repo: repo, clock: clk, loc: loc, renderer: renderer}
}

// Statistics counts events by start time. "Current week" is the ISO week of
// the current year and "current month" the calendar month of the current year.
func (s *StatsService) Statistics(ctx context.Context) (Statistics, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return Statistics{}, err
	}

	now := s.clock.Now().In(s.loc)
	nowYear, nowWeek := now.ISOWeek()

	st := Statistics{
		Total:   len(events),
		PerDays: make(map[string]int),
	}
	for _, ev := range events {
		start := ev.StartTime.In(s.loc)
		if y, w := start.ISOWeek(); y == nowYear && w == nowWeek {
			st.TotalCurrentWeek++
		}
		if start.Year() == now.Year() && start.Month() == now.Month() {
			st.TotalCurrentMonth++
		}
		st.PerDays[start.Format(models.DateLayout)]++
	}
	return st, nil
}

// Image renders the statistics as a PNG bar chart.
func (s *StatsService) Image(ctx context.Context) ([]byte, error) {
	st, err := s.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, chart.Data{
		Total:             st.Total,
		TotalCurrentWeek:  st.TotalCurrentWeek,
		TotalCurrentMonth: st.TotalCurrentMonth,
		PerDays:           st.PerDays,
	})
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-takyi/mycalendar/internal/chart"
	"github.com/joshua-takyi/mycalendar/internal/clients"
	"github.com/joshua-takyi/mycalendar/internal/clock"
	"github.com/joshua-takyi/mycalendar/internal/helpers"
	"github.com/joshua-takyi/mycalendar/internal/middleware"
	"github.com/joshua-takyi/mycalendar/internal/models"
	"github.com/joshua-takyi/mycalendar/internal/schedule"
	"github.com/joshua-takyi/mycalendar/internal/services"
)

var (
	sydney  = time.FixedZone("AEDT", 11*60*60)
	testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, sydney)
)

type stubForecaster struct{}

func (stubForecaster) Hourly(ctx context.Context, lat, lon float64) (*clients.HourlyForecast, error) {
	return nil, errors.New("forecast service down")
}

func (stubForecaster) Daily(ctx context.Context, lat, lon float64) (*clients.DailyForecast, error) {
	return &clients.DailyForecast{Dataseries: []clients.DailyPoint{
		{Date: 20261016, Weather: "clear"},
		{Date: 20261017, Weather: "lightrain"},
	}}, nil
}

type stubHolidays struct{}

func (stubHolidays) HolidayOn(ctx context.Context, date time.Time, state string) (string, bool, error) {
	return "", false, nil
}

// brokenRepo fails every read so handlers hit the 500 path.
type brokenRepo struct {
	models.EventsRepo
}

func (brokenRepo) ListEvents(ctx context.Context) ([]models.Event, error) {
	return nil, errors.New("disk I/O error")
}

func newRouter(t *testing.T, repo models.EventsRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, helpers.RegisterValidators())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewFixed(testNow)
	geo := clients.NewGeocoder()

	es := services.NewEventService(repo, clk, sydney, logger)
	enrich := services.NewEnrichmentService(stubForecaster{}, stubHolidays{}, geo, time.Second, logger)
	ws := services.NewWeatherService(stubForecaster{}, geo, time.Second, logger)
	ss := services.NewStatsService(repo, clk, sydney, chart.NewNative(200, 150))
	cs := services.NewCalendarService(es, logger)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(logger))

	r.POST("/events", CreateEvent(es))
	r.GET("/events", ListEvents(es))
	r.GET("/events/statistics", GetStatistics(ss))
	r.GET("/events/calendar.ics", ExportCalendar(cs))
	r.GET("/events/:id", GetEvent(es, enrich))
	r.PATCH("/events/:id", UpdateEvent(es))
	r.DELETE("/events/:id", DeleteEvent(es))
	r.GET("/weather", GetWeather(ws, clk, sydney))
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func eventBody(name, date, from, to string) string {
	return `{"name":"` + name + `","date":"` + date + `","from":"` + from + `","to":"` + to + `",` +
		`"location":{"street":"215B Night Ave","suburb":"Maroubra","state":"nsw","post-code":"2035"},` +
		`"description":"team meeting"}`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCreateEvent(t *testing.T) {
	r := newRouter(t, models.NewMemoryRepo())

	w := do(r, http.MethodPost, "/events", eventBody("standup", "2026-10-20", "10:00:00", "11:00:00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	res := decode[MutationResponse](t, w)
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, "2026-10-16 12:00:00", res.LastUpdate)
	require.NotNil(t, res.Links.Self)
	assert.Equal(t, "/events/1", res.Links.Self.Href)
}

func TestCreateEvent_Rejections(t *testing.T) {
	r := newRouter(t, models.NewMemoryRepo())
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/events", eventBody("a", "2026-10-20", "10:00:00", "11:00:00")).Code)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"contained", eventBody("b", "2026-10-20", "10:30:00", "10:45:00"), http.StatusConflict},
		{"touching end", eventBody("c", "2026-10-20", "11:00:00", "12:00:00"), http.StatusConflict},
		{"touching start", eventBody("d", "2026-10-20", "09:00:00", "10:00:00"), http.StatusConflict},
		{"start after end", eventBody("e", "2026-10-21", "12:00:00", "11:00:00"), http.StatusBadRequest},
		{"zero length", eventBody("f", "2026-10-21", "12:00:00", "12:00:00"), http.StatusBadRequest},
		{"bad date", eventBody("g", "20-10-2026", "12:00:00", "13:00:00"), http.StatusBadRequest},
		{"bad time", eventBody("h", "2026-10-21", "noon", "13:00:00"), http.StatusBadRequest},
		{"bad state", strings.Replace(eventBody("i", "2026-10-22", "09:00:00", "10:00:00"), `"nsw"`, `"Narnia"`, 1), http.StatusBadRequest},
		{"missing name", eventBody("", "2026-10-22", "09:00:00", "10:00:00"), http.StatusBadRequest},
		{"blank name", eventBody("   ", "2026-10-22", "09:00:00", "10:00:00"), http.StatusBadRequest},
		{"not json", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/events", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.False(t, decode[models.ApiResponse](t, w).Success)
		})
	}

	w := do(r, http.MethodGet, "/events?size=100", "")
	assert.Len(t, decode[ListResponse](t, w).Events, 1)
}

func TestGetEvent(t *testing.T) {
	r := newRouter(t, models.NewMemoryRepo())
	for _, slot := range [][2]string{{"09:00:00", "09:30:00"}, {"10:00:00", "10:30:00"}, {"11:00:00", "11:30:00"}} {
		require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/events", eventBody("e", "2026-10-17", slot[0], slot[1])).Code)
	}

	w := do(r, http.MethodGet, "/events/2", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	ev := decode[EventResponse](t, w)
	assert.Equal(t, int64(2), ev.ID)
	assert.Equal(t, "2026-10-17", ev.Date)
	assert.Equal(t, "10:00:00", ev.From)
	assert.Equal(t, "10:30:00", ev.To)
	assert.Equal(t, models.Location{Street: "215B Night Ave", Suburb: "Maroubra", State: "NSW", PostCode: "2035"}, ev.Location)
	assert.Equal(t, "team meeting", ev.Description)
	assert.Equal(t, services.Metadata{
		WindSpeed:   services.NotAvailable,
		Weather:     services.NotAvailable,
		Humidity:    services.NotAvailable,
		Temperature: services.NotAvailable,
		Holiday:     services.NotAHoliday,
		Weekend:     true,
	}, ev.Metadata)
	assert.Equal(t, "/events/2", ev.Links.Self.Href)
	assert.Equal(t, "/events/1", ev.Links.Previous.Href)
	assert.Equal(t, "/events/3", ev.Links.Next.Href)

	first := decode[EventResponse](t, do(r, http.MethodGet, "/events/1", ""))
	assert.Nil(t, first.Links.Previous)
	assert.Equal(t, "/events/2", first.Links.Next.Href)

	raw := do(r, http.MethodGet, "/events/3", "").Body.String()
	assert.NotContains(t, raw, `"next"`)
}

func TestGetEvent_NotFound(t *testing.T) {
	r := newRouter(t, models.NewMemoryRepo())
	for _, target := range []string{"/events/1", "/events/abc", "/events/-1"} {
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, target, "").Code, target)
	}
}

func TestListEvents(t *testing.T) {
	r := newRouter(t, models.NewMemoryRepo())
	for i, day := range []string{"2026-10-20", "2026-10-21", "2026-10-22", "2026-10-23", "2026-10-24"} {
		body := eventBody("event", day, "09:00:00", "10:00:00")
		require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/events", body).Code, i)
	}

	w := do(r, http.MethodGet, "/events?order=-id&page=2&size=2", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[ListResponse](t, w)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 2, res.PageSize)
	require.Len(t, res.Events, 2)
	assert.EqualValues(t, 3, res.Events[0]["id"])
	assert.EqualValues(t, 2, res.Events[1]["id"])
	assert.Equal(t, "event", res.Events[0]["name"])
	assert.Equal(t, "/events?filter=id%2Cname&order=-id&page=2&size=2", res.Links.Self.Href)
	require.NotNil(t, res.Links.Next)
	assert.Equal(t, "/events?filter=id%2Cname&order=-id&page=3&size=2", res.Links.Next.Href)

	last := decode[ListResponse](t, do(r, http.MethodGet, "/events?order=-id&page=3&size=2", ""))
	assert.Len(t, last.Events, 1)
	assert.Nil(t, last.Links.Next)

	proj := decode[ListResponse](t, do(r, http.MethodGet, "/events?filter=start_time,state&size=1", ""))
	require.Len(t, proj.Events, 1)
	assert.Equal(t, schedule.Record{"start_time": "2026-10-20 09:00:00", "state": "NSW"}, proj.Events[0])

	far := do(r, http.MethodGet, "/events?page=9223372036854775807&size=100", "")
	require.Equal(t, http.StatusOK, far.Code, far.Body.String())
	farRes := decode[ListResponse](t, far)
	assert.Empty(t, farRes.Events)
	assert.Nil(t, farRes.Links.Next)
}

func TestListEvents_InvalidParams(t *testing.T) {
	r := newRouter(t, models.NewMemoryRepo())
	for _, q := range []string{
		"order=+colour",
		"filter=id,colour",
		"page=0",
		"page=x",
		"size=-1",
		"size=1000",
		"order=",
	} {
		assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/events?"+q, "").Code, q)
	}
}

func TestUpdateEvent(t *testing.T) {
	r := newRouter(t, models.NewMemoryRepo())
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/events", eventBody("a", "2026-10-20", "10:00:00", "11:00:00")).Code)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/events", eventBody("b", "2026-10-20", "13:00:00", "14:00:00")).Code)

	w := do(r, http.MethodPatch, "/events/1", `{"from":"10:15:00","to":"11:30:00","name":"renamed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "/events/1", decode[MutationResponse](t, w).Links.Self.Href)

	ev := decode[EventResponse](t, do(r, http.MethodGet, "/events/1", ""))
	assert.Equal(t, "renamed", ev.Name)
	assert.Equal(t, "10:15:00", ev.From)
	assert.Equal(t, "11:30:00", ev.To)

	assert.Equal(t, http.StatusConflict, do(r, http.MethodPatch, "/events/1", `{"to":"13:00:00"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPatch, "/events/1", `{"from":"12:00:00"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPatch, "/events/1", `{"location":{"state":"Gondwana"}}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, "/events/9", `{"from":"bogus"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, "/events/x", `{}`).Code)
}

func TestDeleteEvent(t *testing.T) {
	r := newRouter(t, models.NewMemoryRepo())
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/events", eventBody("a", "2026-10-20", "10:00:00", "11:00:00")).Code)

	w := do(r, http.MethodDelete, "/events/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, DeleteResponse{Message: "Event 1 has been removed!", ID: 1}, decode[DeleteResponse](t, w))

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/events/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/events/1", "").Code)
}

func TestStatistics(t *testing.T) {
	r := newRouter(t, models.NewMemoryRepo())
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/events", eventBody("a", "2026-10-13", "10:00:00", "11:00:00")).Code)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/events", eventBody("b", "2026-11-20", "10:00:00", "11:00:00")).Code)

	st := decode[services.Statistics](t, do(r, http.MethodGet, "/events/statistics", ""))
	assert.Equal(t, services.Statistics{
		Total:             2,
		TotalCurrentWeek:  1,
		TotalCurrentMonth: 1,
		PerDays:           map[string]int{"2026-10-13": 1, "2026-11-20": 1},
	}, st)

	w := do(r, http.MethodGet, "/events/statistics?format=image", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/events/statistics?format=xml", "").Code)
}

func TestWeather(t *testing.T) {
	r := newRouter(t, models.NewMemoryRepo())

	w := do(r, http.MethodGet, "/weather", "")
	require.Equal(t, http.StatusOK, w.Code)
	today := decode[map[string]services.CityForecast](t, w)
	assert.Len(t, today, len(clients.Capitals))
	assert.Equal(t, "clear", today["Hobart"].Weather)

	tomorrow := decode[map[string]services.CityForecast](t, do(r, http.MethodGet, "/weather?date=17-10-2026", ""))
	assert.Equal(t, "lightrain", tomorrow["Perth"].Weather)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/weather?date=2026-10-17", "").Code)
}

func TestExportCalendar(t *testing.T) {
	r := newRouter(t, models.NewMemoryRepo())
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/events", eventBody("a", "2026-10-20", "10:00:00", "11:00:00")).Code)

	w := do(r, http.MethodGet, "/events/calendar.ics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Body.String(), "SUMMARY:a")
}

func TestUnexpectedErrorIs500(t *testing.T) {
	r := newRouter(t, brokenRepo{EventsRepo: models.NewMemoryRepo()})

	w := do(r, http.MethodGet, "/events", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	res := decode[models.ApiResponse](t, w)
	assert.False(t, res.Success)
	assert.Equal(t, "Internal server error", res.Error)
	assert.NotContains(t, w.Body.String(), "disk")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultHolidayURL = "https://date.nager.at/api/v2/publicholidays"
	DefaultRefresh    = "0 3 * * *"
)

// Holiday is one entry of the nager.at public holiday list.
type Holiday struct {
	Date     string   `json:"date"` // YYYY-MM-DD
	Name     string   `json:"name"`
	Counties []string `json:"counties"` // nil means nationwide, otherwise e.g. "AU-NSW"
}

// AppliesTo reports whether the holiday is observed in state.
func (h Holiday) AppliesTo(state string) bool {
	return h.Counties == nil || slices.Contains(h.Counties, "AU-"+strings.ToUpper(state))
}

// HolidayClient fetches Australian public holidays and keeps one list per year.
type HolidayClient struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger

	mu    sync.RWMutex
	years map[int][]Holiday

	cron *cron.Cron
}

func NewHolidayClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HolidayClient {
	if baseURL == "" {
		baseURL = DefaultHolidayURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HolidayClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		years:   make(map[int][]Holiday),
	}
}

// HolidayOn returns the name of the holiday observed in state on date.
func (hc *HolidayClient) HolidayOn(ctx context.Context, date time.Time, state string) (string, bool, error) {
	holidays, err := hc.Year(ctx, date.Year())
	if err != nil {
		return "", false, err
	}

	day := date.Format("2006-01-02")
	name, found := "", false
	for _, h := range holidays {
		if h.Date == day && h.AppliesTo(state) {
			name, found = h.Name, true
		}
	}
	return name, found, nil
}

// Year returns the cached list for year, fetching it on first use.
func (hc *HolidayClient) Year(ctx context.Context, year int) ([]Holiday, error) {
	hc.mu.RLock()
	cached, ok := hc.years[year]
	hc.mu.RUnlock()
	if ok {
		return cached, nil
	}
	return hc.Refresh(ctx, year)
}

// Refresh fetches year unconditionally and replaces the cached copy.
func (hc *HolidayClient) Refresh(ctx context.Context, year int) ([]Holiday, error) {
	url := fmt.Sprintf("%s/%d/AU", hc.baseURL, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("holidays: build request: %w", err)
	}

	resp, err := hc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holidays: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holidays: %d returned status %d", year, resp.StatusCode)
	}

	var holidays []Holiday
	if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
		return nil, fmt.Errorf("holidays: decode %d: %w", year, err)
	}

	hc.mu.Lock()
	hc.years[year] = holidays
	hc.mu.Unlock()

	hc.logger.Debug("holiday list refreshed", "year", year, "count", len(holidays))
	return holidays, nil
}

// ScheduleRefresh re-fetches the current year on the given cron schedule.
// The job runs until StopRefresh is called.
func (hc *HolidayClient) ScheduleRefresh(expr string, now func() time.Time) error {
	if expr == "" {
		expr = DefaultRefresh
	}
	if now == nil {
		now = time.Now
	}

	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := hc.Refresh(ctx, now().Year()); err != nil {
			hc.logger.Warn("scheduled holiday refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("holidays: invalid refresh schedule %q: %w", expr, err)
	}

	hc.cron = c
	c.Start()
	return nil
}

// StopRefresh stops the refresh job and waits for a running refresh to finish.
func (hc *HolidayClient) StopRefresh() {
	if hc.cron == nil {
		return
	}
	<-hc.cron.Stop().Done()
}

package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultWeatherURL = "http://www.7timer.info/bin/api.pl"

	// InitLayout is the format of the "init" field: the UTC hour the model run started.
	InitLayout = "2006010215"
)

type Wind struct {
	Direction string `json:"direction"`
	Speed     int    `json:"speed"`
}

// HourlyPoint is one 3-hourly entry of the civil product.
type HourlyPoint struct {
	Timepoint int    `json:"timepoint"` // hours after init
	Weather   string `json:"weather"`
	Temp2m    int    `json:"temp2m"`
	Rh2m      string `json:"rh2m"` // e.g. "57%"
	Wind10m   Wind   `json:"wind10m"`
}

type HourlyForecast struct {
	Init       string        `json:"init"`
	Dataseries []HourlyPoint `json:"dataseries"`
}

// InitTime parses Init as a UTC instant.
func (f *HourlyForecast) InitTime() (time.Time, error) {
	return time.ParseInLocation(InitLayout, f.Init, time.UTC)
}

// At returns the entry covering t: the last timepoint in (target-3, target]
// where target is the number of whole hours between init and t.
func (f *HourlyForecast) At(t time.Time) (HourlyPoint, bool) {
	init, err := f.InitTime()
	if err != nil {
		return HourlyPoint{}, false
	}
	target := int(t.UTC().Truncate(time.Hour).Sub(init) / time.Hour)

	var (
		found HourlyPoint
		ok    bool
	)
	for _, p := range f.Dataseries {
		if p.Timepoint > target-3 && p.Timepoint <= target {
			found, ok = p, true
		}
	}
	return found, ok
}

// DailyPoint is one day of the civillight product.
type DailyPoint struct {
	Date    int    `json:"date"` // YYYYMMDD
	Weather string `json:"weather"`
}

type DailyForecast struct {
	Init       string       `json:"init"`
	Dataseries []DailyPoint `json:"dataseries"`
}

// On returns the weather for the given day, if the forecast covers it.
func (f *DailyForecast) On(day time.Time) (string, bool) {
	want, _ := strconv.Atoi(day.Format("20060102"))
	for _, p := range f.Dataseries {
		if p.Date == want {
			return p.Weather, true
		}
	}
	return "", false
}

// WeatherClient talks to the 7timer forecast API.
type WeatherClient struct {
	client  *http.Client
	baseURL string
}

func NewWeatherClient(baseURL string, timeout time.Duration) *WeatherClient {
	if baseURL == "" {
		baseURL = DefaultWeatherURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WeatherClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Hourly fetches the civil product for a coordinate.
func (wc *WeatherClient) Hourly(ctx context.Context, lat, lon float64) (*HourlyForecast, error) {
	var out HourlyForecast
	if err := wc.get(ctx, "civil", lat, lon, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Daily fetches the civillight product for a coordinate.
func (wc *WeatherClient) Daily(ctx context.Context, lat, lon float64) (*DailyForecast, error) {
	var out DailyForecast
	if err := wc.get(ctx, "civillight", lat, lon, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (wc *WeatherClient) get(ctx context.Context, product string, lat, lon float64, out any) error {
	q := url.Values{}
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("product", product)
	q.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wc.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("weather: build request: %w", err)
	}

	resp, err := wc.client.Do(req)
	if err != nil {
		return fmt.Errorf("weather: %s request failed: %w", product, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather: %s returned status %d", product, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("weather: decode %s: %w", product, err)
	}
	return nil
}

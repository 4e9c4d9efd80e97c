package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const civilBody = `{
  "product": "civil",
  "init": "2026101600",
  "dataseries": [
    {"timepoint": 3, "weather": "clearday", "temp2m": 14, "rh2m": "60%", "wind10m": {"direction": "N", "speed": 2}},
    {"timepoint": 6, "weather": "pcloudyday", "temp2m": 18, "rh2m": "55%", "wind10m": {"direction": "NE", "speed": 3}},
    {"timepoint": 9, "weather": "lightrainday", "temp2m": 16, "rh2m": "80%", "wind10m": {"direction": "E", "speed": 4}}
  ]
}`

const civillightBody = `{
  "product": "civillight",
  "init": "2026101600",
  "dataseries": [
    {"date": 20261016, "weather": "clear"},
    {"date": 20261017, "weather": "rain"}
  ]
}`

func TestWeatherClient_Hourly(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(civilBody))
	}))
	defer srv.Close()

	wc := NewWeatherClient(srv.URL, time.Second)
	f, err := wc.Hourly(context.Background(), -33.86, 151.21)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "product=civil")
	assert.Contains(t, gotQuery, "lat=-33.86")
	assert.Contains(t, gotQuery, "lon=151.21")

	// 07:00 UTC is seven hours after init, covered by timepoint 6.
	p, ok := f.At(time.Date(2026, 10, 16, 7, 30, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "pcloudyday", p.Weather)
	assert.Equal(t, 3, p.Wind10m.Speed)
	assert.Equal(t, "55%", p.Rh2m)

	// Sydney 18:00 AEDT is 07:00 UTC.
	sydney := time.FixedZone("AEDT", 11*3600)
	p, ok = f.At(time.Date(2026, 10, 16, 18, 0, 0, 0, sydney))
	require.True(t, ok)
	assert.Equal(t, 6, p.Timepoint)

	_, ok = f.At(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestWeatherClient_Daily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "civillight", r.URL.Query().Get("product"))
		_, _ = w.Write([]byte(civillightBody))
	}))
	defer srv.Close()

	f, err := NewWeatherClient(srv.URL, time.Second).Daily(context.Background(), 1, 2)
	require.NoError(t, err)

	w, ok := f.On(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, "rain", w)

	_, ok = f.On(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestWeatherClient_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewWeatherClient(srv.URL, time.Second).Hourly(context.Background(), 1, 2)
	assert.Error(t, err)
}

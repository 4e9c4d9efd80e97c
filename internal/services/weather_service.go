package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshua-takyi/mycalendar/internal/clients"
)

const cityFanOut = 4

type CityForecast struct {
	Weather   string  `json:"weather"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherService reports the daily forecast for the capital cities.
type WeatherService struct {
	weather  Forecaster
	geocoder Geocoder
	timeout  time.Duration
	logger   *slog.Logger
}

func NewWeatherService(weather Forecaster, geocoder Geocoder, timeout time.Duration, logger *slog.Logger) *WeatherService {
	if timeout <= 0 {
		timeout = defaultLookup
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherService{
		weather:  weather,
		geocoder: geocoder,
		timeout:  timeout,
		logger:   logger,
	}
}

// Capitals returns one entry per capital for day. Cities without coordinates
// are left out; failed or missing forecasts read NoForecast.
func (s *WeatherService) Capitals(ctx context.Context, day time.Time) map[string]CityForecast {
	out := make(map[string]CityForecast, len(clients.Capitals))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cityFanOut)
	for _, city := range clients.Capitals {
		coords, ok := s.geocoder.City(city)
		if !ok {
			s.logger.Warn("no coordinates for city", "city", city)
			continue
		}
		g.Go(func() error {
			fc := CityForecast{
				Weather:   s.daily(gctx, city, coords, day),
				Latitude:  coords.Latitude,
				Longitude: coords.Longitude,
			}
			mu.Lock()
			out[city] = fc
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *WeatherService) daily(ctx context.Context, city string, coords clients.Coordinates, day time.Time) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	f, err := s.weather.Daily(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		s.logger.Warn("city forecast failed", "city", city, "error", err)
		return NoForecast
	}
	if w, ok := f.On(day); ok {
		return w
	}
	return NoForecast
}

package container

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/mycalendar/internal/chart"
	"github.com/joshua-takyi/mycalendar/internal/clients"
	"github.com/joshua-takyi/mycalendar/internal/clock"
	"github.com/joshua-takyi/mycalendar/internal/config"
	"github.com/joshua-takyi/mycalendar/internal/connect"
	"github.com/joshua-takyi/mycalendar/internal/models"
	"github.com/joshua-takyi/mycalendar/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Logger   *slog.Logger
	Config   *config.Config
	Location *time.Location
	Clock    clock.Clock

	Repo     models.EventsRepo
	Holidays *clients.HolidayClient

	EventService      *services.EventService
	EnrichmentService *services.EnrichmentService
	WeatherService    *services.WeatherService
	StatsService      *services.StatsService
	CalendarService   *services.CalendarService
}

// OpenStore connects the event store selected by cfg.StoreDriver and makes
// sure its schema or indexes exist.
func OpenStore(ctx context.Context, cfg *config.Config, loc *time.Location) (models.EventsRepo, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return models.NewMemoryRepo(), nil

	case config.DriverSQLite:
		db, err := connect.SQLiteOpen(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		repo := models.SQLiteNewRepo(db, loc)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return repo, nil

	case config.DriverMongo:
		client, err := connect.MongoDBConnect(cfg.MongoDBURI, cfg.MongoDBPassword)
		if err != nil {
			return nil, err
		}
		repo := models.MongodbNewRepo(client, cfg.MongoDBDatabase, loc)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = repo.Close(ctx)
			return nil, err
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// NewContainer creates a new dependency injection container around an open
// store. Geocoder files named in cfg are loaded here.
func NewContainer(cfg *config.Config, logger *slog.Logger, repo models.EventsRepo) (*Container, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	geocoder := clients.NewGeocoder()
	if cfg.GeorefPath != "" {
		if err := geocoder.LoadGeorefFile(cfg.GeorefPath); err != nil {
			return nil, err
		}
	}
	if cfg.CitiesPath != "" {
		if err := geocoder.LoadCitiesFile(cfg.CitiesPath); err != nil {
			return nil, err
		}
	}

	renderer, err := chart.New(cfg.StatsRenderer)
	if err != nil {
		return nil, err
	}

	weather := clients.NewWeatherClient(cfg.WeatherAPIURL, cfg.ExternalTimeout)
	holidays := clients.NewHolidayClient(cfg.HolidayAPIURL, cfg.ExternalTimeout, logger)
	clk := clock.NewSystem(loc)

	eventService := services.NewEventService(repo, clk, loc, logger)

	return &Container{
		Logger:            logger,
		Config:            cfg,
		Location:          loc,
		Clock:             clk,
		Repo:              repo,
		Holidays:          holidays,
		EventService:      eventService,
		EnrichmentService: services.NewEnrichmentService(weather, holidays, geocoder, cfg.ExternalTimeout, logger),
		WeatherService:    services.NewWeatherService(weather, geocoder, cfg.ExternalTimeout, logger),
		StatsService:      services.NewStatsService(repo, clk, loc, renderer),
		CalendarService:   services.NewCalendarService(eventService, logger),
	}, nil
}

// StartBackground schedules the holiday cache refresh.
func (c *Container) StartBackground() error {
	return c.Holidays.ScheduleRefresh(c.Config.HolidayRefreshCron, func() time.Time {
		return time.Now().In(c.Location)
	})
}

// Close stops background jobs and closes the store.
func (c *Container) Close(ctx context.Context) error {
	c.Holidays.StopRefresh()
	return c.Repo.Close(ctx)
}

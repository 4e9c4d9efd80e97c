package routes

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/mycalendar/internal/container"
	"github.com/joshua-takyi/mycalendar/internal/handlers"
	"github.com/joshua-takyi/mycalendar/internal/helpers"
	"github.com/joshua-takyi/mycalendar/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) (*gin.Engine, error) {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := helpers.RegisterValidators(); err != nil {
		return nil, err
	}

	corsConfig := cors.Config{
		AllowOrigins:     container.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}
	if err := corsConfig.Validate(); err != nil {
		return nil, fmt.Errorf("cors: %w", err)
	}

	r := gin.New()
	r.Use(cors.New(corsConfig))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/health", handlers.Health("mycalendar-api"))

	eventRoutes := r.Group("/events")
	{
		eventRoutes.POST("", handlers.CreateEvent(container.EventService))
		eventRoutes.GET("", handlers.ListEvents(container.EventService))

		// static segments before the :id wildcard
		eventRoutes.GET("/statistics", handlers.GetStatistics(container.StatsService))
		eventRoutes.GET("/calendar.ics", handlers.ExportCalendar(container.CalendarService))

		eventRoutes.GET("/:id", handlers.GetEvent(container.EventService, container.EnrichmentService))
		eventRoutes.PATCH("/:id", handlers.UpdateEvent(container.EventService))
		eventRoutes.DELETE("/:id", handlers.DeleteEvent(container.EventService))
	}

	r.GET("/weather", handlers.GetWeather(container.WeatherService, container.Clock, container.Location))

	return r, nil
}

package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/mycalendar/internal/clock"
	"github.com/joshua-takyi/mycalendar/internal/helpers"
	"github.com/joshua-takyi/mycalendar/internal/models"
	"github.com/joshua-takyi/mycalendar/internal/services"
)

func GetStatistics(ss *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.DefaultQuery("format", "json") {
		case "json":
			st, err := ss.Statistics(c.Request.Context())
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, st)

		case "image":
			img, err := ss.Image(c.Request.Context())
			if err != nil {
				respondError(c, err)
				return
			}
			c.Data(http.StatusOK, "image/png", img)

		default:
			c.JSON(http.StatusBadRequest, models.ErrorResponse("format not supported, please use json or image"))
		}
	}
}

func GetWeather(ws *services.WeatherService, clk clock.Clock, loc *time.Location) gin.HandlerFunc {
	return func(c *gin.Context) {
		day, err := helpers.ParseWeatherDate(c.Query("date"), clk.Now(), loc)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ws.Capitals(c.Request.Context(), day))
	}
}

func ExportCalendar(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := cs.ExportICS(c.Request.Context(), &buf); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="calendar.ics"`)
		c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
	}
}

func Health(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": service,
		})
	}
}

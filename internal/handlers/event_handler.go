package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/mycalendar/internal/helpers"
	"github.com/joshua-takyi/mycalendar/internal/models"
	"github.com/joshua-takyi/mycalendar/internal/schedule"
	"github.com/joshua-takyi/mycalendar/internal/services"
)

type MutationResponse struct {
	ID         int64        `json:"id"`
	LastUpdate string       `json:"last-update"`
	Links      models.Links `json:"_links"`
}

type EventResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Date        string            `json:"date"`
	From        string            `json:"from"`
	To          string            `json:"to"`
	Location    models.Location   `json:"location"`
	Description string            `json:"description"`
	LastUpdate  string            `json:"last-update"`
	Metadata    services.Metadata `json:"_metadata"`
	Links       models.Links      `json:"_links"`
}

type ListResponse struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page-size"`
	Events   []schedule.Record `json:"events"`
	Links    models.Links      `json:"_links"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// respondError answers with the status the error maps to. Unexpected errors
// go to ErrorHandler.
func respondError(c *gin.Context, err error) {
	status, ok := helpers.StatusFor(err)
	if !ok {
		_ = c.Error(err)
		return
	}
	c.JSON(status, models.ErrorResponse(err.Error()))
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse(models.ErrNotFound.Error()))
}

func mutationResponse(ev *models.Event) MutationResponse {
	return MutationResponse{
		ID:         ev.ID,
		LastUpdate: ev.LastUpdated.Format(models.TimestampLayout),
		Links:      models.Links{Self: models.NewLink(helpers.EventPath(ev.ID))},
	}
}

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CreateEventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := es.CreateEvent(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, mutationResponse(created))
	}
}

func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order := c.DefaultQuery("order", schedule.DefaultOrder)
		filter := c.DefaultQuery("filter", schedule.DefaultFilter)

		q, err := schedule.ParseQuery(
			order,
			c.DefaultQuery("page", strconv.Itoa(schedule.DefaultPage)),
			c.DefaultQuery("size", strconv.Itoa(schedule.DefaultSize)),
			filter,
		)
		if err != nil {
			respondError(c, err)
			return
		}

		res, err := es.QueryEvents(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}

		links := models.Links{Self: models.NewLink(helpers.ListPath(order, q.Page, q.Size, filter))}
		if q.Page > 1 {
			links.Previous = models.NewLink(helpers.ListPath(order, q.Page-1, q.Size, filter))
		}
		if res.HasNext {
			links.Next = models.NewLink(helpers.ListPath(order, q.Page+1, q.Size, filter))
		}

		c.JSON(http.StatusOK, ListResponse{
			Page:     q.Page,
			PageSize: q.Size,
			Events:   res.Records,
			Links:    links,
		})
	}
}

func GetEvent(es *services.EventService, enrich *services.EnrichmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := helpers.ParseID(c.Param("id"))
		if !ok {
			notFound(c)
			return
		}

		ctx := c.Request.Context()
		ev, err := es.GetEvent(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}

		previous, next, err := es.Neighbours(ctx, ev)
		if err != nil {
			respondError(c, err)
			return
		}

		links := models.Links{Self: models.NewLink(helpers.EventPath(ev.ID))}
		if previous != nil {
			links.Previous = models.NewLink(helpers.EventPath(previous.ID))
		}
		if next != nil {
			links.Next = models.NewLink(helpers.EventPath(next.ID))
		}

		c.JSON(http.StatusOK, EventResponse{
			ID:          ev.ID,
			Name:        ev.Name,
			Date:        ev.StartTime.Format(models.DateLayout),
			From:        ev.StartTime.Format(models.ClockLayout),
			To:          ev.EndTime.Format(models.ClockLayout),
			Location:    ev.Location,
			Description: ev.Description,
			LastUpdate:  ev.LastUpdated.Format(models.TimestampLayout),
			Metadata:    enrich.Metadata(ctx, ev),
			Links:       links,
		})
	}
}

func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := helpers.ParseID(c.Param("id"))
		if !ok {
			notFound(c)
			return
		}

		var input services.UpdateEventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := es.UpdateEvent(c.Request.Context(), id, input)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, mutationResponse(updated))
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := helpers.ParseID(c.Param("id"))
		if !ok {
			notFound(c)
			return
		}

		if err := es.DeleteEvent(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, DeleteResponse{
			Message: fmt.Sprintf("Event %d has been removed!", id),
			ID:      id,
		})
	}
}

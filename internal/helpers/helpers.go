package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/joshua-takyi/mycalendar/internal/models"
)

// WeatherDateLayout is the DD-MM-YYYY form /weather accepts.
const WeatherDateLayout = "02-01-2006"

// RegisterValidators adds the custom binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return v.RegisterValidation("austate", models.ValidateStateField)
}

// StringTrim trims surrounding whitespace from a path or query value.
func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

// ParseID reads a positive event id. Anything else reports false.
func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(StringTrim(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// StatusFor maps the model sentinels to HTTP statuses. ok is false for
// errors that should surface as a 500.
func StatusFor(err error) (status int, ok bool) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, true
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, true
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, true
	}
	return http.StatusInternalServerError, false
}

// ParseWeatherDate reads a DD-MM-YYYY date in loc. An empty value means today.
func ParseWeatherDate(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	raw = StringTrim(raw)
	if raw == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc), nil
	}
	day, err := time.ParseInLocation(WeatherDateLayout, raw, loc)
	if err != nil {
		return time.Time{}, models.Invalidf("query date format should be DD-MM-YYYY")
	}
	return day, nil
}

func EventPath(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}

// ListPath builds the /events link for a page of a list query.
func ListPath(order string, page, size int, filter string) string {
	q := url.Values{}
	q.Set("order", order)
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("filter", filter)
	return "/events?" + q.Encode()
}

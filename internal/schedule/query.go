package schedule

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/joshua-takyi/mycalendar/internal/models"
)

const (
	DefaultOrder  = "+id"
	DefaultPage   = 1
	DefaultSize   = 10
	MaxSize       = 100
	DefaultFilter = "id,name"
)

// Fields lists the event fields that can be sorted on and projected.
var Fields = []string{
	"id", "name", "start_time", "end_time", "description",
	"last_updated", "street", "suburb", "state", "post_code",
}

// SortKey is one token of the order parameter.
type SortKey struct {
	Field string
	Desc  bool
}

// Query is a validated list request.
type Query struct {
	Order  []SortKey
	Page   int
	Size   int
	Fields []string
}

// Record is one projected event; values are int64 for id and strings otherwise.
type Record map[string]any

type Result struct {
	Records []Record
	HasNext bool
}

func isField(name string) bool {
	return slices.Contains(Fields, name)
}

func isOrderField(name string) bool {
	return name == "datetime" || isField(name)
}

// ParseOrder reads "+name,-datetime,id". Surrounding spaces are dropped, so
// a "+" that form decoding turned into a space still sorts ascending. Any
// other leading character in front of a known field is an unknown sign and
// also sorts ascending ("xid" is "+id").
func ParseOrder(raw string) ([]SortKey, error) {
	var keys []SortKey
	seen := make(map[string]bool)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		desc, signed := false, true
		switch {
		case strings.HasPrefix(token, "-"):
			desc = true
			token = token[1:]
		case strings.HasPrefix(token, "+"):
			token = token[1:]
		default:
			signed = false
		}
		field := strings.TrimSpace(token)
		if field == "" {
			return nil, models.Invalidf("empty order field in %q", raw)
		}
		if !signed && !isOrderField(field) && len(field) > 1 && isOrderField(field[1:]) {
			field = field[1:]
		}
		if field == "datetime" {
			field = "start_time"
		}
		if !isField(field) {
			return nil, models.Invalidf("unknown order field %q", field)
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		keys = append(keys, SortKey{Field: field, Desc: desc})
	}
	return keys, nil
}

// ParseFilter reads the projected field list, e.g. "id,name,start_time".
func ParseFilter(raw string) ([]string, error) {
	var fields []string
	for _, token := range strings.Split(raw, ",") {
		field := strings.TrimSpace(token)
		if field == "" {
			return nil, models.Invalidf("empty filter field in %q", raw)
		}
		if !isField(field) {
			return nil, models.Invalidf("unknown filter field %q", field)
		}
		if !slices.Contains(fields, field) {
			fields = append(fields, field)
		}
	}
	return fields, nil
}

func parsePositive(name, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, models.Invalidf("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}

// ParseQuery validates the raw list parameters. Callers substitute the
// defaults for absent parameters; an empty string is invalid.
func ParseQuery(order, page, size, filter string) (Query, error) {
	var (
		q   Query
		err error
	)
	if q.Order, err = ParseOrder(order); err != nil {
		return Query{}, err
	}
	if q.Page, err = parsePositive("page", page); err != nil {
		return Query{}, err
	}
	if q.Size, err = parsePositive("size", size); err != nil {
		return Query{}, err
	}
	if q.Size > MaxSize {
		return Query{}, models.Invalidf("size must not exceed %d", MaxSize)
	}
	if q.Fields, err = ParseFilter(filter); err != nil {
		return Query{}, err
	}
	return q, nil
}

func compareField(a, b models.Event, field string) int {
	switch field {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "start_time":
		return a.StartTime.Compare(b.StartTime)
	case "end_time":
		return a.EndTime.Compare(b.EndTime)
	case "description":
		return strings.Compare(a.Description, b.Description)
	case "last_updated":
		return a.LastUpdated.Compare(b.LastUpdated)
	case "street":
		return strings.Compare(a.Location.Street, b.Location.Street)
	case "suburb":
		return strings.Compare(a.Location.Suburb, b.Location.Suburb)
	case "state":
		return strings.Compare(a.Location.State, b.Location.State)
	case "post_code":
		return strings.Compare(a.Location.PostCode, b.Location.PostCode)
	}
	return 0
}

// FieldValue returns the projected value of one field.
func FieldValue(e models.Event, field string) any {
	switch field {
	case "id":
		return e.ID
	case "name":
		return e.Name
	case "start_time":
		return e.StartTime.Format(models.TimestampLayout)
	case "end_time":
		return e.EndTime.Format(models.TimestampLayout)
	case "description":
		return e.Description
	case "last_updated":
		return e.LastUpdated.Format(models.TimestampLayout)
	case "street":
		return e.Location.Street
	case "suburb":
		return e.Location.Suburb
	case "state":
		return e.Location.State
	case "post_code":
		return e.Location.PostCode
	}
	return nil
}

// Sort orders events by keys, left to right, with ascending id as the final
// tie-break so that every ordering is total.
func Sort(events []models.Event, keys []SortKey) {
	slices.SortStableFunc(events, func(a, b models.Event) int {
		for _, k := range keys {
			c := compareField(a, b, k.Field)
			if k.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Run sorts, pages and projects events. The input slice is reordered.
func Run(events []models.Event, q Query) Result {
	Sort(events, q.Order)

	offset := len(events)
	if q.Page-1 < len(events)/q.Size+1 {
		offset = min((q.Page-1)*q.Size, len(events))
	}
	end := len(events)
	if q.Size < end-offset {
		end = offset + q.Size
	}

	records := make([]Record, 0, end-offset)
	for _, e := range events[offset:end] {
		rec := make(Record, len(q.Fields))
		for _, f := range q.Fields {
			rec[f] = FieldValue(e, f)
		}
		records = append(records, rec)
	}

	return Result{
		Records: records,
		HasNext: end < len(events),
	}
}

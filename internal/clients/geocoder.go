package clients

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Capitals are the eight state and territory capitals, in response order.
var Capitals = []string{"Sydney", "Melbourne", "Brisbane", "Perth", "Canberra", "Adelaide", "Hobart", "Darwin"}

var capitalCoordinates = map[string]Coordinates{
	"Sydney":    {Latitude: -33.8678, Longitude: 151.2100},
	"Melbourne": {Latitude: -37.8142, Longitude: 144.9631},
	"Brisbane":  {Latitude: -27.4678, Longitude: 153.0281},
	"Perth":     {Latitude: -31.9559, Longitude: 115.8606},
	"Canberra":  {Latitude: -35.2931, Longitude: 149.1269},
	"Adelaide":  {Latitude: -34.9275, Longitude: 138.6000},
	"Hobart":    {Latitude: -42.8806, Longitude: 147.3250},
	"Darwin":    {Latitude: -12.4381, Longitude: 130.8411},
}

const (
	georefSuburbColumn = "Official Name Suburb"
	georefPointColumn  = "Geo Point"
)

// Geocoder resolves suburb and city names to coordinates. It is read-only
// after loading and safe for concurrent use.
type Geocoder struct {
	suburbs map[string]Coordinates
	cities  map[string]Coordinates
}

// NewGeocoder returns a geocoder that knows only the built-in capitals.
func NewGeocoder() *Geocoder {
	g := &Geocoder{
		suburbs: make(map[string]Coordinates),
		cities:  make(map[string]Coordinates),
	}
	for name, c := range capitalCoordinates {
		g.cities[g.key(name)] = c
	}
	return g
}

// key folds case per call; a cases.Caser must not be shared between goroutines.
func (g *Geocoder) key(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// Suburb looks up a suburb loaded from the georef table.
func (g *Geocoder) Suburb(name string) (Coordinates, bool) {
	c, ok := g.suburbs[g.key(name)]
	return c, ok
}

// City looks up a city from the city table or the built-in capitals.
func (g *Geocoder) City(name string) (Coordinates, bool) {
	c, ok := g.cities[g.key(name)]
	return c, ok
}

// LoadGeorefFile loads a ';'-separated suburb table with "Official Name Suburb"
// and "Geo Point" ("lat, lon") columns.
func (g *Geocoder) LoadGeorefFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open georef file: %w", err)
	}
	defer f.Close()
	return g.LoadGeoref(f)
}

func (g *Geocoder) LoadGeoref(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read georef header: %w", err)
	}
	suburbIdx, pointIdx := columnIndex(header, georefSuburbColumn), columnIndex(header, georefPointColumn)
	if suburbIdx < 0 || pointIdx < 0 {
		return fmt.Errorf("georef header must contain %q and %q", georefSuburbColumn, georefPointColumn)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read georef row: %w", err)
		}
		if suburbIdx >= len(rec) || pointIdx >= len(rec) {
			continue
		}
		c, err := parseGeoPoint(rec[pointIdx])
		if err != nil {
			continue
		}
		k := g.key(rec[suburbIdx])
		if _, seen := g.suburbs[k]; !seen {
			g.suburbs[k] = c
		}
	}
	return nil
}

// LoadCitiesFile loads a ','-separated table with city, lat and lng columns.
// Rows override the built-in capitals.
func (g *Geocoder) LoadCitiesFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open cities file: %w", err)
	}
	defer f.Close()
	return g.LoadCities(f)
}

func (g *Geocoder) LoadCities(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read cities header: %w", err)
	}
	cityIdx, latIdx, lngIdx := columnIndex(header, "city"), columnIndex(header, "lat"), columnIndex(header, "lng")
	if cityIdx < 0 || latIdx < 0 || lngIdx < 0 {
		return errors.New("cities header must contain city, lat and lng")
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read cities row: %w", err)
		}
		if cityIdx >= len(rec) || latIdx >= len(rec) || lngIdx >= len(rec) {
			continue
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(rec[latIdx]), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(rec[lngIdx]), 64)
		if latErr != nil || lngErr != nil {
			continue
		}
		g.cities[g.key(rec[cityIdx])] = Coordinates{Latitude: lat, Longitude: lng}
	}
	return nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
			return i
		}
	}
	return -1
}

func parseGeoPoint(s string) (Coordinates, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return Coordinates{}, fmt.Errorf("geo point %q is not \"lat, lon\"", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Coordinates{}, err
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Coordinates{}, err
	}
	return Coordinates{Latitude: la, Longitude: lo}, nil
}

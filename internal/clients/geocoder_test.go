package clients

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const georefCSV = `Geo Point;Geo Shape;Official Code State;Official Name State;Official Name Suburb
-33.9187, 151.2258;{};1;New South Wales;Maroubra
-37.8152, 144.9460;{};2;Victoria;Docklands
bad;{};2;Victoria;Nowhere
`

const citiesCSV = `city,lat,lng,country
Sydney,-33.9000,151.2000,Australia
Geelong,-38.1500,144.3500,Australia
`

func TestGeocoder_Georef(t *testing.T) {
	g := NewGeocoder()
	require.NoError(t, g.LoadGeoref(strings.NewReader(georefCSV)))

	c, ok := g.Suburb("maroubra")
	require.True(t, ok)
	assert.InDelta(t, -33.9187, c.Latitude, 1e-9)
	assert.InDelta(t, 151.2258, c.Longitude, 1e-9)

	_, ok = g.Suburb("Nowhere")
	assert.False(t, ok)
}

func TestGeocoder_GeorefMissingColumns(t *testing.T) {
	g := NewGeocoder()
	assert.Error(t, g.LoadGeoref(strings.NewReader("a;b\n1;2\n")))
}

func TestGeocoder_Cities(t *testing.T) {
	g := NewGeocoder()

	for _, name := range Capitals {
		_, ok := g.City(name)
		assert.True(t, ok, name)
	}

	require.NoError(t, g.LoadCities(strings.NewReader(citiesCSV)))

	c, ok := g.City("Sydney")
	require.True(t, ok)
	assert.InDelta(t, -33.9, c.Latitude, 1e-9)

	_, ok = g.City("GEELONG")
	assert.True(t, ok)
}

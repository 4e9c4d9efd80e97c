package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-takyi/mycalendar/internal/models"
)

func TestAdjacent_Middle(t *testing.T) {
	stored := []models.Event{
		event(3, at(11, 0), at(11, 30)),
		event(1, at(9, 0), at(9, 30)),
		event(2, at(10, 0), at(10, 30)),
	}

	prev, next := Adjacent(stored, stored[2])
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, int64(1), prev.ID)
	assert.Equal(t, int64(3), next.ID)
}

func TestAdjacent_Edges(t *testing.T) {
	stored := []models.Event{
		event(1, at(9, 0), at(9, 30)),
		event(2, at(10, 0), at(10, 30)),
		event(3, at(11, 0), at(11, 30)),
	}

	prev, next := Adjacent(stored, stored[0])
	assert.Nil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, int64(2), next.ID)

	prev, next = Adjacent(stored, stored[2])
	require.NotNil(t, prev)
	assert.Equal(t, int64(2), prev.ID)
	assert.Nil(t, next)
}

func TestAdjacent_Alone(t *testing.T) {
	only := event(1, at(9, 0), at(9, 30))
	prev, next := Adjacent([]models.Event{only}, only)
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestAdjacent_EqualStartIsNotNeighbour(t *testing.T) {
	current := event(5, at(10, 0), at(10, 30))
	stored := []models.Event{
		current,
		event(6, at(10, 0), at(10, 15)),
	}

	prev, next := Adjacent(stored, current)
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestAdjacent_TieBreakLowestID(t *testing.T) {
	current := event(10, at(12, 0), at(12, 30))
	stored := []models.Event{
		event(8, at(9, 0), at(9, 30)),
		event(4, at(9, 0), at(9, 15)),
		current,
		event(12, at(15, 0), at(15, 30)),
		event(11, at(15, 0), at(15, 10)),
	}

	prev, next := Adjacent(stored, current)
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, int64(4), prev.ID)
	assert.Equal(t, int64(11), next.ID)
}

func TestAdjacent_ReturnsCopies(t *testing.T) {
	stored := []models.Event{
		event(1, at(9, 0), at(9, 30)),
		event(2, at(10, 0), at(10, 30)),
	}

	prev, _ := Adjacent(stored, stored[1])
	require.NotNil(t, prev)
	prev.Name = "changed"
	assert.Equal(t, "event", stored[0].Name)
}

package services

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-takyi/mycalendar/internal/chart"
	"github.com/joshua-takyi/mycalendar/internal/clock"
	"github.com/joshua-takyi/mycalendar/internal/models"
)

func seedStats(t *testing.T, repo models.EventsRepo) {
	t.Helper()
	days := []time.Time{
		time.Date(2026, 10, 13, 9, 0, 0, 0, sydney), // this ISO week
		time.Date(2026, 10, 1, 9, 0, 0, 0, sydney),  // this month
		time.Date(2025, 10, 14, 9, 0, 0, 0, sydney), // same week number, last year
		time.Date(2026, 11, 2, 9, 0, 0, 0, sydney),
	}
	for _, d := range days {
		_, err := repo.CreateEvent(context.Background(), &models.Event{
			Name:      "e",
			StartTime: d,
			EndTime:   d.Add(time.Hour),
			Location:  models.Location{State: "NSW"},
		})
		require.NoError(t, err)
	}
}

func TestStatsService_Statistics(t *testing.T) {
	repo := models.NewMemoryRepo()
	seedStats(t, repo)
	svc := NewStatsService(repo, clock.NewFixed(testNow), sydney, nil)

	st, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 1, st.TotalCurrentWeek)
	assert.Equal(t, 2, st.TotalCurrentMonth)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.AssertJson(t, "statistics", st)
}

func TestStatsService_Empty(t *testing.T) {
	svc := NewStatsService(models.NewMemoryRepo(), clock.NewFixed(testNow), sydney, nil)

	st, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Total)
	assert.NotNil(t, st.PerDays)
}

func TestStatsService_Image(t *testing.T) {
	repo := models.NewMemoryRepo()
	seedStats(t, repo)
	svc := NewStatsService(repo, clock.NewFixed(testNow), sydney, chart.NewNative(400, 300))

	out, err := svc.Image(context.Background())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
}

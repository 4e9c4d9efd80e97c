package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"NSW", "NSW"},
		{"nsw", "NSW"},
		{"New South Wales", "NSW"},
		{"  new   south wales ", "NSW"},
		{"VICTORIA", "VIC"},
		{"Australian Capital Territory", "ACT"},
		{"northern territory", "NT"},
		{"Tas", "TAS"},
	}
	for _, tt := range tests {
		got, err := NormalizeState(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "NZ", "Queens Land", "Narnia"} {
		_, err := NormalizeState(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestEvent_Validate(t *testing.T) {
	start := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	valid := Event{
		Name:      "standup",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Location:  Location{State: "QLD"},
	}
	require.NoError(t, valid.Validate())

	noName := valid
	noName.Name = ""
	assert.ErrorIs(t, noName.Validate(), ErrValidation)

	blankName := valid
	blankName.Name = " \t "
	assert.ErrorIs(t, blankName.Validate(), ErrValidation)

	backwards := valid
	backwards.EndTime = start.Add(-time.Minute)
	assert.ErrorIs(t, backwards.Validate(), ErrValidation)

	empty := valid
	empty.EndTime = start
	assert.ErrorIs(t, empty.Validate(), ErrValidation)

	badState := valid
	badState.Location.State = "Atlantis"
	assert.ErrorIs(t, badState.Validate(), ErrValidation)
}

func TestEvent_Normalize(t *testing.T) {
	perth := time.FixedZone("AWST", 8*3600)
	ev := Event{
		StartTime:   time.Date(2026, 10, 20, 2, 0, 0, 999, time.UTC),
		EndTime:     time.Date(2026, 10, 20, 3, 0, 0, 0, time.UTC),
		LastUpdated: time.Date(2026, 10, 1, 0, 0, 0, 5, time.UTC),
		Location:    Location{State: "western australia"},
	}
	require.NoError(t, ev.Normalize(perth))

	assert.Equal(t, "2026-10-20 10:00:00", ev.StartTime.Format(TimestampLayout))
	assert.Equal(t, 0, ev.StartTime.Nanosecond())
	assert.Equal(t, perth, ev.EndTime.Location())
	assert.Equal(t, 0, ev.LastUpdated.Nanosecond())
	assert.Equal(t, "WA", ev.Location.State)
}

func TestValidateStateTag(t *testing.T) {
	type body struct {
		State string `binding:"required,austate"`
	}
	assert.NoError(t, Validate.Struct(body{State: "south australia"}))
	assert.Error(t, Validate.Struct(body{State: "Mordor"}))
	assert.Error(t, Validate.Struct(body{}))
}

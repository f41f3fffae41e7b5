package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotalHours(t *testing.T) {
	checkIn := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    float64
	}{
		{"zero", 0, 0},
		{"quarter hours", 2*time.Hour + 15*time.Minute, 2.25},
		{"rounds to two decimals", 31 * time.Minute, 0.52},
		{"one minute", time.Minute, 0.02},
		{"negative clamps to zero", -time.Hour, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ComputeTotalHours(checkIn, checkIn.Add(c.elapsed)))
		})
	}
}

func TestSession_LastActivity(t *testing.T) {
	checkIn := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
	s := Session{CheckInTime: checkIn}

	assert.Equal(t, checkIn, s.LastActivity())
	assert.Nil(t, s.LastRoutePoint())

	s.Route = []RoutePoint{
		{Lat: 1, Lng: 1, Timestamp: checkIn.Add(5 * time.Minute)},
		{Lat: 2, Lng: 2, Timestamp: checkIn.Add(10 * time.Minute)},
	}
	assert.Equal(t, checkIn.Add(10*time.Minute), s.LastActivity())
	require.NotNil(t, s.LastRoutePoint())
	assert.Equal(t, 2.0, s.LastRoutePoint().Lat)
}

func TestNewClosure(t *testing.T) {
	checkIn := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
	s := Session{CheckInTime: checkIn}
	reason := ReasonShiftEnded

	manual := NewClosure(s, checkIn.Add(90*time.Minute), &Location{Lat: 1, Lng: 2}, nil)
	assert.False(t, manual.AutoCheckOut)
	assert.Equal(t, 1.5, manual.TotalHours)

	auto := NewClosure(s, checkIn.Add(8*time.Hour), nil, &reason)
	assert.True(t, auto.AutoCheckOut)
	assert.Equal(t, ReasonShiftEnded, *auto.AutoCheckOutReason)
	assert.Nil(t, auto.CheckOutLocation)
}

func TestSessionRecord_RoundTrip(t *testing.T) {
	out := time.Date(2025, time.January, 6, 17, 0, 0, 0, time.UTC)
	hours := 8.0
	s := Session{
		ID:           "s1",
		StaffID:      "staff-1",
		CompanyID:    "company-1",
		CheckInTime:  time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC),
		CheckOutTime: &out,
		TotalHours:   &hours,
		Status:       StatusPresent,
	}

	rec := NewSessionRecord(s)

	assert.NotNil(t, rec.RoutePoints)
	assert.Empty(t, rec.RoutePoints)
	back := rec.ToSession()
	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.CheckOutTime, back.CheckOutTime)
	assert.Equal(t, s.TotalHours, back.TotalHours)
}

package sysconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Overlay(t *testing.T) {
	base := DefaultPolicy(time.UTC)
	zero := 0
	tz := "Asia/Kathmandu"
	badTZ := "Nowhere/Land"
	color := "#123456"

	t.Run("unset fields inherit", func(t *testing.T) {
		got := base.Overlay(SystemConfig{ThemeColor: &color})
		assert.Equal(t, color, got.ThemeColor)
		assert.Equal(t, DefaultAutoCheckoutInactivity, got.AutoCheckoutInactivity)
		assert.Equal(t, DefaultWorkWeekDays(), got.WorkWeekDays)
	})

	t.Run("non-positive numbers are ignored", func(t *testing.T) {
		got := base.Overlay(SystemConfig{AutoCheckoutInactivity: &zero, LocationTrackingInterval: &zero})
		assert.Equal(t, DefaultAutoCheckoutInactivity, got.AutoCheckoutInactivity)
		assert.Equal(t, DefaultLocationTrackingInterval, got.LocationTrackingInterval)
	})

	t.Run("timezone", func(t *testing.T) {
		assert.Equal(t, tz, base.Overlay(SystemConfig{Timezone: &tz}).Location.String())
		assert.Equal(t, time.UTC, base.Overlay(SystemConfig{Timezone: &badTZ}).Location)
	})

	t.Run("empty work week overrides", func(t *testing.T) {
		got := base.Overlay(SystemConfig{WorkWeekDays: []string{}})
		assert.Empty(t, got.WorkWeekDays)
		assert.False(t, got.IsWorkday(time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC)))
	})
}

func TestPolicy_Holiday(t *testing.T) {
	p := DefaultPolicy(time.FixedZone("NPT", 5*3600+45*60))
	p.Holidays = []Holiday{{Date: "2025-01-07", Description: "Festival"}}

	// 2025-01-06 20:00 UTC is already 2025-01-07 in Kathmandu.
	h, ok := p.Holiday(time.Date(2025, time.January, 6, 20, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, "Festival", h.Description)

	_, ok = p.Holiday(time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestPolicy_IsWorkday(t *testing.T) {
	p := DefaultPolicy(time.UTC)

	assert.True(t, p.IsWorkday(time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC)))
	assert.True(t, p.IsWorkday(time.Date(2025, time.January, 10, 10, 0, 0, 0, time.UTC)))
	assert.False(t, p.IsWorkday(time.Date(2025, time.January, 11, 10, 0, 0, 0, time.UTC)))
	assert.False(t, p.IsWorkday(time.Date(2025, time.January, 12, 10, 0, 0, 0, time.UTC)))
}

func TestPolicy_DayBounds(t *testing.T) {
	npt := time.FixedZone("NPT", 5*3600+45*60)
	p := DefaultPolicy(npt)

	start, end := p.DayBounds(time.Date(2025, time.January, 6, 20, 0, 0, 0, time.UTC))

	assert.True(t, time.Date(2025, time.January, 7, 0, 0, 0, 0, npt).Equal(start))
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

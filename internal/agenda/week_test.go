package agenda

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want time.Time
	}{
		{"monday", time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC), time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := WeekOf(tt.day)
			assert.Equal(t, tt.want, week.Start)
			assert.Equal(t, tt.want.AddDate(0, 0, 7), week.End)
			assert.True(t, week.Contains(tt.day))
		})
	}
}

func TestHoursFor(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	hours := hoursFor([]*model.Slot{
		{When: day.Add(10 * time.Hour)},
		{When: day.Add(16 * time.Hour)},
	})
	assert.Equal(t, hourRange{start: 9, end: 18, total: 9}, hours)

	hours = hoursFor([]*model.Slot{{When: day.Add(23*time.Hour + 30*time.Minute)}})
	assert.Equal(t, 24, hours.end)

	assert.Equal(t, hourRange{start: 8, end: 19, total: 11}, hoursFor(nil))
}

func TestRenderWeekProducesPNG(t *testing.T) {
	week := WeekOf(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))
	customer := "Ana Maria de los Santos"

	slots := []*model.Slot{
		{ID: 1, When: week.Start.Add(10 * time.Hour), Service: model.DefaultService},
		{ID: 2, When: week.Start.AddDate(0, 0, 2).Add(14 * time.Hour), Service: "Corte", Customer: &customer},
		{ID: 3, When: week.End.Add(10 * time.Hour), Service: model.DefaultService},
	}

	data, err := RenderWeek(week, slots, week.Start.AddDate(0, 0, 2).Add(11*time.Hour))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 20))
	assert.Equal(t, "Ana Maria de los ...", truncate("Ana Maria de los Santos · Corte", 20))
}

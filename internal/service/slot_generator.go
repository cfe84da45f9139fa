package service

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultDailyTimes дневная сетка по умолчанию
var DefaultDailyTimes = []string{"10:00", "11:00", "12:00", "14:00", "15:00", "16:00"}

// Schedule фиксированное расписание: Days дней вперёд × время из DailyTimes
type Schedule struct {
	Days       int
	DailyTimes []time.Duration // смещение от полуночи
}

// NewSchedule разбирает список "HH:MM" в расписание
func NewSchedule(days int, dailyTimes []string) (Schedule, error) {
	if days < 0 {
		return Schedule{}, fmt.Errorf("days ahead must not be negative: %d", days)
	}

	offsets := make([]time.Duration, 0, len(dailyTimes))
	seen := make(map[time.Duration]bool, len(dailyTimes))
	for _, raw := range dailyTimes {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t, err := time.Parse("15:04", raw)
		if err != nil {
			return Schedule{}, fmt.Errorf("parse slot time %q: %w", raw, err)
		}
		offset := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
		if seen[offset] {
			continue
		}
		seen[offset] = true
		offsets = append(offsets, offset)
	}

	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	return Schedule{Days: days, DailyTimes: offsets}, nil
}

// Window возвращает моменты начала слотов для [today, today+Days).
// Время "настенное": часовой пояс now отбрасывается, слоты хранятся без зоны.
func (s Schedule) Window(now time.Time) []time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	times := make([]time.Time, 0, s.Days*len(s.DailyTimes))
	for d := 0; d < s.Days; d++ {
		day := today.AddDate(0, 0, d)
		for _, offset := range s.DailyTimes {
			times = append(times, day.Add(offset))
		}
	}
	return times
}

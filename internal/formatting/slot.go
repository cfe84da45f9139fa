package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/model"
)

const (
	dateTimeLayout = "2006-01-02 15:04"
	dateLayout     = "2006-01-02"
)

// FormatDateTime форматирует дату и время слота
func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatTime форматирует только время
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// SlotStatus текст статуса слота
func SlotStatus(slot *model.Slot) string {
	if slot.IsAvailable() {
		return "Free"
	}
	return fmt.Sprintf("Booked by %s (%s)", slot.CustomerName(), slot.Service)
}

// FormatSlot строка слота для TCP и CLI: "[3] 2026-03-01 10:00 - Free"
func FormatSlot(slot *model.Slot) string {
	return fmt.Sprintf("[%d] %s - %s", slot.ID, FormatDateTime(slot.When), SlotStatus(slot))
}

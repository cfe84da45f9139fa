package formatting

import (
	"testing"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFormatSlot(t *testing.T) {
	when := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	slot := &model.Slot{ID: 3, When: when, Service: model.DefaultService}

	assert.Equal(t, "[3] 2026-03-01 10:00 - Free", FormatSlot(slot))

	name := "Juan"
	slot.Customer = &name
	slot.Service = "Corte"
	assert.Equal(t, "[3] 2026-03-01 10:00 - Booked by Juan (Corte)", FormatSlot(slot))
	assert.Equal(t, "2026-03-01", FormatDate(when))
	assert.Equal(t, "10:00", FormatTime(when))
}

package httpapi

import (
	"context"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/model"
	"go.uber.org/zap"
)

// Reservations контракт сервиса бронирования, общий с TCP и CLI
type Reservations interface {
	ListAvailable(ctx context.Context, date string) []*model.Slot
	ListBookings(ctx context.Context) []*model.Slot
	ListRange(ctx context.Context, from, to time.Time) []*model.Slot
	FindSlot(ctx context.Context, id int64) *model.Slot
	Book(ctx context.Context, id int64, name, service string) bool
	CancelBySlot(ctx context.Context, id int64) bool
	CancelByCustomer(ctx context.Context, name string) int
}

// App зависимости HTTP-обработчиков
type App struct {
	Reservations Reservations
	APIToken     string
	Logger       *zap.Logger
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/model"
	"go.uber.org/zap"
)

// DateLayout формат даты для фильтра LIST / ?date=
const DateLayout = "2006-01-02"

// SlotStore хранилище слотов
type SlotStore interface {
	CreateMissing(ctx context.Context, times []time.Time, service string) (int, error)
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	GetFree(ctx context.Context, from, to time.Time) ([]*model.Slot, error)
	GetRange(ctx context.Context, from, to time.Time) ([]*model.Slot, error)
	GetBooked(ctx context.Context) ([]*model.Slot, error)
	Book(ctx context.Context, slotID int64, customer, service string) (bool, error)
	Release(ctx context.Context, slotID int64, defaultService string) (bool, error)
	ReleaseByCustomer(ctx context.Context, customer, defaultService string) (int64, error)
}

// ReservationService фасад над хранилищем слотов: список, бронь, отмена.
//
// Ошибки хранилища логируются и не пробрасываются: вызывающий получает
// false / 0 / nil и не отличает "не найдено" от сбоя БД.
type ReservationService struct {
	store          SlotStore
	schedule       Schedule
	defaultService string
	logger         *zap.Logger
}

func NewReservationService(store SlotStore, schedule Schedule, defaultService string, logger *zap.Logger) *ReservationService {
	if defaultService == "" {
		defaultService = model.DefaultService
	}
	return &ReservationService{
		store:          store,
		schedule:       schedule,
		defaultService: defaultService,
		logger:         logger,
	}
}

// ListAvailable получает свободные слоты, опционально за одну дату (YYYY-MM-DD)
func (s *ReservationService) ListAvailable(ctx context.Context, date string) []*model.Slot {
	var from, to time.Time

	date = strings.TrimSpace(date)
	if date != "" {
		day, err := time.Parse(DateLayout, date)
		if err != nil {
			s.logger.Debug("Invalid date filter", zap.String("date", date), zap.Error(err))
			return []*model.Slot{}
		}
		from, to = day, day.AddDate(0, 0, 1)
	}

	slots, err := s.store.GetFree(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to list available slots", zap.String("date", date), zap.Error(err))
		return []*model.Slot{}
	}

	return slots
}

// ListBookings получает все занятые слоты
func (s *ReservationService) ListBookings(ctx context.Context) []*model.Slot {
	slots, err := s.store.GetBooked(ctx)
	if err != nil {
		s.logger.Error("Failed to list bookings", zap.Error(err))
		return []*model.Slot{}
	}
	return slots
}

// ListRange получает все слоты (свободные и занятые) в диапазоне [from, to)
func (s *ReservationService) ListRange(ctx context.Context, from, to time.Time) []*model.Slot {
	slots, err := s.store.GetRange(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to list slots in range",
			zap.Time("from", from),
			zap.Time("to", to),
			zap.Error(err),
		)
		return []*model.Slot{}
	}
	return slots
}

// FindSlot получает слот по ID, nil если его нет
func (s *ReservationService) FindSlot(ctx context.Context, id int64) *model.Slot {
	slot, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to find slot", zap.Int64("slot_id", id), zap.Error(err))
		return nil
	}
	return slot
}

// Book бронирует слот за клиентом
func (s *ReservationService) Book(ctx context.Context, id int64, name, service string) bool {
	name = strings.TrimSpace(name)
	if name == "" || id <= 0 {
		return false
	}

	service = strings.TrimSpace(service)
	if service == "" {
		service = s.defaultService
	}

	ok, err := s.store.Book(ctx, id, name, service)
	if err != nil {
		s.logger.Error("Failed to book slot",
			zap.Int64("slot_id", id),
			zap.String("customer", name),
			zap.Error(err),
		)
		return false
	}

	if ok {
		s.logger.Info("Slot booked",
			zap.Int64("slot_id", id),
			zap.String("customer", name),
			zap.String("service", service),
		)
	}

	return ok
}

// CancelBySlot освобождает слот по ID
func (s *ReservationService) CancelBySlot(ctx context.Context, id int64) bool {
	ok, err := s.store.Release(ctx, id, s.defaultService)
	if err != nil {
		s.logger.Error("Failed to cancel slot", zap.Int64("slot_id", id), zap.Error(err))
		return false
	}

	if ok {
		s.logger.Info("Slot canceled", zap.Int64("slot_id", id))
	}

	return ok
}

// CancelByCustomer освобождает все слоты клиента.
// Имя сравнивается целиком без учёта регистра, подстроки не совпадают.
func (s *ReservationService) CancelByCustomer(ctx context.Context, name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}

	n, err := s.store.ReleaseByCustomer(ctx, name, s.defaultService)
	if err != nil {
		s.logger.Error("Failed to cancel customer bookings", zap.String("customer", name), zap.Error(err))
		return 0
	}

	if n > 0 {
		s.logger.Info("Customer bookings canceled", zap.String("customer", name), zap.Int64("count", n))
	}

	return int(n)
}

// EnsureWindow создаёт недостающие слоты на окно расписания, начиная с now.
// Возвращает количество созданных слотов.
func (s *ReservationService) EnsureWindow(ctx context.Context, now time.Time) int {
	times := s.schedule.Window(now)
	if len(times) == 0 {
		return 0
	}

	created, err := s.store.CreateMissing(ctx, times, s.defaultService)
	if err != nil {
		s.logger.Error("Failed to generate slots", zap.Int("requested", len(times)), zap.Error(err))
		return 0
	}

	if created > 0 {
		s.logger.Info("Slots generated",
			zap.Int("created", created),
			zap.Int("days", s.schedule.Days),
		)
	}

	return created
}

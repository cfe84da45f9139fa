package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/model"
	"github.com/Freeeeeet/slot_booking/internal/notify"
	"github.com/Freeeeeet/slot_booking/internal/queue"
	"go.uber.org/zap"
)

const (
	DefaultPollTimeout = time.Second
	DefaultThrottle    = 100 * time.Millisecond

	// taskTimeout ограничивает одну операцию с хранилищем
	taskTimeout = 10 * time.Second
)

// TaskSource источник задач (queue.Queue)
type TaskSource interface {
	Get(ctx context.Context, timeout time.Duration) (queue.Item, error)
}

// Reservations операции записи, которые применяет воркер
type Reservations interface {
	Book(ctx context.Context, id int64, name, service string) bool
	CancelBySlot(ctx context.Context, id int64) bool
	CancelByCustomer(ctx context.Context, name string) int
}

// Worker единственный писатель: забирает задачи по одной и применяет их
type Worker struct {
	source       TaskSource
	reservations Reservations
	notifier     notify.Notifier
	pollTimeout  time.Duration
	throttle     time.Duration
	logger       *zap.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewWorker создаёт воркер. Нулевые интервалы заменяются значениями по умолчанию.
func NewWorker(
	source TaskSource,
	reservations Reservations,
	notifier notify.Notifier,
	pollTimeout time.Duration,
	throttle time.Duration,
	logger *zap.Logger,
) *Worker {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	if throttle < 0 {
		throttle = DefaultThrottle
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	return &Worker{
		source:       source,
		reservations: reservations,
		notifier:     notifier,
		pollTimeout:  pollTimeout,
		throttle:     throttle,
		logger:       logger,
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start запускает цикл обработки в отдельной горутине
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting task worker",
		zap.Duration("poll_timeout", w.pollTimeout),
		zap.Duration("throttle", w.throttle),
	)

	go func() {
		defer close(w.done)
		w.run(ctx)
	}()
}

// Stop просит воркер остановиться и ждёт не дольше grace.
// Возвращает false, если воркер не успел завершиться.
func (w *Worker) Stop(grace time.Duration) bool {
	w.logger.Info("Stopping task worker")
	w.stopOnce.Do(func() { close(w.stopChan) })

	select {
	case <-w.done:
		return true
	case <-time.After(grace):
		w.logger.Warn("Task worker did not stop in time, abandoning it", zap.Duration("grace", grace))
		return false
	}
}

func (w *Worker) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	go func() {
		select {
		case <-w.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		item, err := w.source.Get(ctx, w.pollTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrTimeout) {
				continue
			}
			if ctx.Err() != nil {
				w.logger.Info("Task worker stopped")
				return
			}
			w.logger.Error("Failed to get task", zap.Error(err))
			continue
		}

		w.Process(ctx, item)

		if w.throttle > 0 {
			select {
			case <-time.After(w.throttle):
			case <-ctx.Done():
				w.logger.Info("Task worker stopped")
				return
			}
		}
	}
}

// Process применяет одну задачу. Ошибка или паника логируются,
// задача отбрасывается без повторов.
func (w *Worker) Process(ctx context.Context, item queue.Item) {
	logger := w.logger.With(
		zap.Stringer("task_id", item.ID),
		zap.String("action", string(actionOf(item.Task))),
		zap.String("source", item.Source),
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task processing panicked, task dropped", zap.Any("panic", r))
		}
	}()

	// задача уже снята с очереди - доводим её до конца даже при остановке
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), taskTimeout)
	defer cancel()

	logger.Debug("Task received", zap.Duration("waited", time.Since(item.EnqueuedAt)))

	switch task := item.Task.(type) {
	case model.BookTask:
		if w.reservations.Book(taskCtx, task.SlotID, task.Name, task.Service) {
			logger.Info("✓ Booking applied",
				zap.Int64("slot_id", task.SlotID),
				zap.String("customer", task.Name),
				zap.String("service", task.Service),
			)
			w.notify(taskCtx, logger, fmt.Sprintf("📅 Slot %d booked by %s (%s)", task.SlotID, task.Name, task.Service))
		} else {
			logger.Warn("✗ Booking failed: slot missing or not available", zap.Int64("slot_id", task.SlotID))
		}

	case model.CancelByIDTask:
		if w.reservations.CancelBySlot(taskCtx, task.SlotID) {
			logger.Info("✓ Cancellation applied", zap.Int64("slot_id", task.SlotID))
			w.notify(taskCtx, logger, fmt.Sprintf("❌ Slot %d canceled", task.SlotID))
		} else {
			logger.Warn("✗ Cancellation failed: slot missing or free", zap.Int64("slot_id", task.SlotID))
		}

	case model.CancelByNameTask:
		n := w.reservations.CancelByCustomer(taskCtx, task.Name)
		logger.Info("✓ Customer bookings canceled", zap.String("customer", task.Name), zap.Int("count", n))
		if n > 0 {
			w.notify(taskCtx, logger, fmt.Sprintf("❌ %d booking(s) of %s canceled", n, task.Name))
		}

	default:
		logger.Error("Unknown task dropped", zap.Any("task", item.Task))
	}
}

func (w *Worker) notify(ctx context.Context, logger *zap.Logger, text string) {
	if err := w.notifier.Notify(ctx, text); err != nil {
		logger.Warn("Notification not delivered", zap.Error(err))
	}
}

func actionOf(task model.Task) model.Action {
	if task == nil {
		return ""
	}
	return task.Action()
}

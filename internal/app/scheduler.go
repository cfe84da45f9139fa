package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SlotWindow то, что умеет догенерировать окно слотов
type SlotWindow interface {
	EnsureWindow(ctx context.Context, now time.Time) int
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	window   SlotWindow
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewScheduler создаёт новый планировщик
func NewScheduler(window SlotWindow, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		window:   window,
		interval: interval,
		now:      time.Now,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start строит окно слотов синхронно и запускает фоновое обновление.
// К возврату из Start слоты на окно уже есть в базе.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	s.generateSlots(ctx)

	// Запускаем задачу генерации слотов
	go s.runSlotGenerationTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// runSlotGenerationTask периодически сдвигает окно слотов
func (s *Scheduler) runSlotGenerationTask(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.generateSlots(ctx)
		case <-s.stopChan:
			s.logger.Info("Slot generation task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Slot generation task cancelled")
			return
		}
	}
}

// generateSlots создаёт недостающие слоты на окно от текущего дня
func (s *Scheduler) generateSlots(ctx context.Context) {
	created := s.window.EnsureWindow(ctx, s.now())
	s.logger.Debug("Slot window checked", zap.Int("created", created))
}

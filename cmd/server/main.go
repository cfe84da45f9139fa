package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/app"
	"github.com/Freeeeeet/slot_booking/internal/config"
	"github.com/Freeeeeet/slot_booking/internal/controller/httpapi"
	"github.com/Freeeeeet/slot_booking/internal/controller/tcp"
	"github.com/Freeeeeet/slot_booking/internal/notify"
	"github.com/Freeeeeet/slot_booking/internal/queue"
	"github.com/Freeeeeet/slot_booking/internal/repository"
	"github.com/Freeeeeet/slot_booking/internal/service"
	"github.com/Freeeeeet/slot_booking/internal/worker"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	flagSet := pflag.NewFlagSet("slot-server", pflag.ContinueOnError)
	overrides := config.BindFlags(flagSet)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := overrides.Apply(cfg); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("🚀 Starting slot booking server",
		zap.String("environment", cfg.Environment),
		zap.String("tcp_addr", cfg.SocketAddr()),
		zap.String("http_addr", cfg.HTTPAddr()),
		zap.Int("days_ahead", cfg.SlotDaysAhead),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := app.OpenDatabase(ctx, cfg.GetDBDSN(), logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer pool.Close()

	schedule, err := service.NewSchedule(cfg.SlotDaysAhead, cfg.SlotTimes)
	if err != nil {
		logger.Fatal("Invalid slot schedule", zap.Error(err))
	}

	slotRepo := repository.NewSlotRepository(pool)
	reservations := service.NewReservationService(slotRepo, schedule, cfg.DefaultService, logger)

	// окно слотов готово до того, как откроются TCP и HTTP
	scheduler := app.NewScheduler(reservations, cfg.SlotRefreshInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	tasks := queue.New()
	notifier := notify.New(cfg.TelegramToken, cfg.TelegramChatID, logger)

	w := worker.NewWorker(tasks, reservations, notifier, cfg.WorkerPollInterval, cfg.WorkerSleepTime, logger)
	w.Start(ctx)

	tcpServer := tcp.NewServer(cfg.SocketAddr(), tcp.NewHandler(reservations, tasks, logger), logger)
	if err := tcpServer.Listen(); err != nil {
		logger.Fatal("Failed to start TCP server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr(),
		Handler: httpapi.NewRouter(&httpapi.App{
			Reservations: reservations,
			APIToken:     cfg.APIToken,
			Logger:       logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		if err := tcpServer.Serve(ctx); err != nil {
			errCh <- fmt.Errorf("tcp server: %w", err)
		}
	}()

	go func() {
		logger.Info("✅ HTTP API listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("🛑 Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server failed, shutting down", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	if !w.Stop(cfg.WorkerShutdownGrace) {
		logger.Warn("Worker abandoned before finishing")
	}
	if pending := tasks.Len(); pending > 0 {
		logger.Warn("Dropping queued tasks", zap.Int("pending", pending))
	}

	logger.Info("👋 Server stopped")
}

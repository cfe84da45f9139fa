package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/app"
	"github.com/Freeeeeet/slot_booking/internal/config"
	"github.com/Freeeeeet/slot_booking/internal/controller/cli"
	"github.com/Freeeeeet/slot_booking/internal/repository"
	"github.com/Freeeeeet/slot_booking/internal/service"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	flagSet := pflag.NewFlagSet("slot-cli", pflag.ContinueOnError)
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

	// Меню пишет в stdout, логи в консоли только мешают
	logLevel := cfg.LogLevel
	if logLevel == "info" || logLevel == "debug" {
		logLevel = "warn"
	}
	logger := app.NewLogger(cfg.Environment, logLevel)
	defer logger.Sync()

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

	reservations := service.NewReservationService(repository.NewSlotRepository(pool), schedule, cfg.DefaultService, logger)
	reservations.EnsureWindow(ctx, time.Now())

	repl := cli.NewREPL(reservations, os.Stdin, os.Stdout, logger)
	if err := repl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("CLI stopped with error", zap.Error(err))
	}
}

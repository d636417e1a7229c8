package main

import (
	"context"
	"errors"
	"time"

	"meloon/internal/amqp"
	"meloon/internal/cache"
	"meloon/internal/cli"
	"meloon/internal/config"
	"meloon/internal/log"
	"meloon/internal/sheets"
	gsheet "meloon/internal/sheets/google"
	mem "meloon/internal/sheets/memory"
	"meloon/internal/worker"
)

const dedupSweepInterval = 10 * time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting meloon-worker")

	cfg := cli.LoadAndValidateConfig(logger, false)
	if cfg.AMQPURL == "" {
		cli.Fatal("AMQP_URL is required by meloon-worker")
	}

	sink, err := newSink(context.Background(), logger, cfg)
	if err != nil {
		cli.Fatal("Failed to initialize journal sink", log.FieldError, err, "backend", cfg.MirrorBackend)
	}
	if sink == nil {
		logger.Info("Journal mirror disabled - nothing to consume", "backend", cfg.MirrorBackend)
		return
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal("Failed to initialize AMQP client", log.FieldError, err)
	}
	defer client.Close()

	journal := worker.NewJournalWorker(sink)
	caches := cache.NewManager()
	caches.Register(journal.Seen())
	caches.StartCleanup(dedupSweepInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		caches.Stop()
	})

	// Rows already in the sink mark their events as seen, so redeliveries
	// after a restart are not appended twice.
	if n, err := journal.Prime(ctx); err != nil {
		logger.Error("Failed to prime dedup cache", log.FieldError, err)
	} else if n > 0 {
		logger.Info("Dedup cache primed", "rows", n)
	}

	go func() {
		err := client.ConsumeEvents(ctx, journal.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			cli.Fatal("Event consumption failed", log.FieldError, err)
		}
	}()

	logger.Info("Mirroring ledger events",
		"backend", cfg.MirrorBackend,
		"queue", cfg.AMQPQueue)
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}

// newSink returns nil when mirroring is disabled.
func newSink(ctx context.Context, logger *log.Logger, cfg *config.Config) (sheets.JournalWriter, error) {
	switch cfg.MirrorBackend {
	case config.MirrorSheets:
		client, err := gsheet.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureHeader(ctx); err != nil {
			return nil, err
		}
		logger.Info("Google Sheets journal initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", client.SheetName())
		return client, nil
	case config.MirrorMemory:
		logger.Warn("Memory journal selected - rows are lost on exit")
		return mem.New(), nil
	}
	return nil, nil
}

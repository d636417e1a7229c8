package main

import (
	"time"

	"meloon/internal/amqp"
	"meloon/internal/cli"
	"meloon/internal/log"
	"meloon/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentReminder)
	logger.Info("Starting reminder-worker")

	cfg := cli.LoadAndValidateConfig(logger, false)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, reminders will only be logged", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	} else {
		logger.Info("AMQP disabled - reminders will only be logged")
	}

	processor := services.NewReminderProcessor(repo, publisher)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	interval := cfg.ReminderInterval
	logger.Info("Reminder processor configured",
		"interval", interval,
		"sqlite_db", cfg.SQLiteDBPath)

	process := func(now time.Time) {
		count, err := processor.ProcessDue(ctx, now)
		if err != nil {
			logger.Error("Reminder processing failed", log.FieldError, err)
			return
		}
		logger.Info("Reminder processing complete",
			"reminders_fired", count,
			"next_check", now.Add(interval).Format("15:04:05"))
	}

	process(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				process(now)
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Reminder-worker shutdown complete")
}

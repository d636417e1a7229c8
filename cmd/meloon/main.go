package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"meloon/internal/amqp"
	"meloon/internal/cache"
	"meloon/internal/cli"
	"meloon/internal/core"
	apphttp "meloon/internal/http"
	"meloon/internal/log"
	"meloon/internal/report"
	"meloon/internal/services"
	"meloon/internal/xlsx"
)

const (
	reportCacheSize      = 256
	cacheCleanupInterval = time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, true)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// A nil interface, not a nil *amqp.Client, keeps publishing disabled.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, ledger events disabled", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - ledger events will not be published")
	}

	reports := cache.NewLRUCache[core.Report](reportCacheSize, cfg.ReportCacheTTL)
	caches := cache.NewManager()
	caches.Register(reports)
	caches.StartCleanup(cacheCleanupInterval)

	engine := report.NewEngine(repo.Queries(), reports)
	transactions := services.NewTransactionService(repo, publisher, engine, services.TransactionOptions{
		StrictCategoryType: cfg.StrictCategoryType,
		PageSize:           cfg.PageSize,
	})
	debts := services.NewDebtService(repo, publisher, cfg.PageSize)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Users:        services.NewUserService(repo, services.UserOptions{HashCost: cfg.BcryptCost}),
		Accounts:     services.NewAccountService(repo),
		Categories:   services.NewCategoryService(repo, engine),
		Transactions: transactions,
		Debts:        debts,
		Reminders:    services.NewReminderService(repo),
		Reports:      engine,
		Spreadsheets: xlsx.NewService(repo.Queries(), transactions, debts),
		Store:        repo,
	}, apphttp.Options{
		APIPrefix:      cfg.APIPrefix,
		JWTSecret:      cfg.JWTSecret,
		JWTIssuer:      cfg.JWTIssuer,
		JWTTTL:         cfg.JWTTTL,
		RateLimitRPM:   cfg.RateLimitRPM,
		Logger:         logger.WithComponent(log.ComponentHTTP),
		TrustedProxies: cfg.TrustedProxies,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
	})

	logger.Info("Starting meloon server",
		"port", cfg.Port,
		"api_prefix", cfg.APIPrefix,
		"sqlite_db", cfg.SQLiteDBPath,
		"amqp", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

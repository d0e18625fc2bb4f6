package main

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"aptrack/server/config"
	"aptrack/server/internal/api"
	"aptrack/server/internal/database"
	"aptrack/server/internal/molit"
	"aptrack/server/internal/processor"
	"aptrack/server/internal/progress"
	"aptrack/server/internal/queue"
	"aptrack/server/internal/regions"
	"aptrack/server/internal/scheduler"
	"aptrack/server/internal/search"
	"aptrack/server/internal/telegram"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dbPath := cfg.Database.Path
	if !filepath.IsAbs(dbPath) {
		currentDir, err := os.Getwd()
		if err != nil {
			logger.WithError(err).Fatal("Failed to get current directory")
		}
		dbPath = filepath.Join(currentDir, dbPath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", dbPath)

	// Initialize database
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Separate gorm handle for the batch persistence pipeline
	gormDB, err := database.OpenGorm(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm database")
	}

	// Region directory, with the optional administrative code file
	dir := regions.NewDirectory(logger, cfg.Regions.CodeFile)

	// MOLIT API client
	client := molit.NewClient(cfg, dir, logger)

	// Batch persistence pipeline
	txQueue := queue.NewTransactionQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, txQueue, cfg, logger)
	batchProcessor.Start()
	txQueue.Start()
	defer func() {
		txQueue.Close()
		batchProcessor.Stop()
	}()

	// Search manager and progress store
	searchManager := search.NewManager(client, db, txQueue, progress.NewStore(), cfg, logger)

	// Telegram notifications
	telegramService := telegram.NewService(logger)

	// Periodic jobs: cache sweep and favorite refresh
	sched := scheduler.NewScheduler(db, client, telegramService, logger)
	sched.Start()
	defer sched.Stop()

	// HTTP API
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	api.SetupRoutes(router, db, dir, searchManager, telegramService)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

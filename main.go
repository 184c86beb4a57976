package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/config"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/crypto"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/notifier"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/processor"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/provider"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/repository"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/risk"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/scoring"
	"github.com/Developer-s-Foundry/AI-Powered-Medical-Consultation-System-sub001/internal/server"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Initialize KeyManager for encryption/decryption
	keyManager, err := crypto.NewKeyManager()
	if err != nil {
		logger.Fatal("Failed to initialize KeyManager", zap.Error(err))
	}
	logger.Info("KeyManager initialized successfully")

	// Initialize repositories
	messageRepo := repository.NewMessageRepository(db, logger)
	sessionRepo := repository.NewSessionRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)
	symptomRepo := repository.NewSymptomRepository(db, logger)
	responseRepo := repository.NewAiResponseRepository(db, logger)
	riskRepo := repository.NewRiskRepository(db, logger)

	// Initialize the triage provider client
	providerClient := provider.NewClient(cfg.Provider.URL, time.Duration(cfg.Provider.RequestTimeout)*time.Second)

	// Telegram alerting is optional; fall back to log-only notifications.
	var alertNotifier notifier.Notifier
	tg, err := notifier.NewTelegramNotifier(cfg, logger)
	if err != nil {
		logger.Warn("Failed to initialize Telegram notifier, falling back to log notifications", zap.Error(err))
		alertNotifier = notifier.LogNotifier{Logger: logger}
	} else if tg != nil {
		alertNotifier = tg
	} else {
		alertNotifier = notifier.LogNotifier{Logger: logger}
	}

	recorder := risk.NewRecorder(riskRepo, alertNotifier, logger)

	thresholds := scoring.Thresholds{
		MediumMin: cfg.Scoring.MediumMin,
		HighMin:   cfg.Scoring.HighMin,
	}

	// Initialize triage processor
	proc := processor.NewProcessor(
		messageRepo,
		responseRepo,
		sessionRepo,
		userRepo,
		symptomRepo,
		providerClient,
		recorder,
		keyManager,
		thresholds,
		cfg.Scoring.LowRiskNotice,
		logger,
		cfg.Provider.PollInterval,
	)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run triage processor in a goroutine
	go proc.Run(ctx)

	// Initialize and run the server
	srv := server.NewServer(db, keyManager, logger)
	if err := srv.Run(cfg.Server.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("Application stopped.")
}

package app

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spectrumarena/arenapay/internal/cache"
	"github.com/spectrumarena/arenapay/internal/config"
	"github.com/spectrumarena/arenapay/internal/env"
	"github.com/spectrumarena/arenapay/internal/errHandler"
	"github.com/spectrumarena/arenapay/internal/helper"
	"github.com/spectrumarena/arenapay/internal/paystack"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/spectrumarena/arenapay/internal/service"
	"github.com/spectrumarena/arenapay/internal/smtp"
	"github.com/spectrumarena/arenapay/internal/stream"
)

// Essential services and resources are exposed to the application
// this makes it possible for methods to have access to these items when they need them
type Application struct {
	Config        config.Config
	DB            repository.Database
	Logger        *slog.Logger
	Mailer        *smtp.Mailer
	Cache         *cache.Cache
	Kafka         *stream.KafkaStream
	Paystack      *paystack.Client
	WalletService *service.WalletService
	SavingsEngine *service.SavingsEngine
	WG            sync.WaitGroup
	errorHandler  *errHandler.ErrorRepository
	helper        *helper.HelperRepository
}

func NewApplication(logger *slog.Logger) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", "error", err)
	}

	var cfg config.Config

	// config values are loaded from the .env file
	// Default values are provided for these items and these should strictly be values for development mode only
	// make sure no production-level value is exposed as default value here
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:4444")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 4444)

	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/db")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "ajf5nx3qmp6zquevllxocxqvyz42ypuo")

	// server errors won't be sent via email if the NOTIFICATIONS_EMAIL wasn't set in the .env file
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "Spectrum Arena <no_reply@example.org>")

	cfg.Paystack.SecretKey = env.GetString("PAYSTACK_SECRET_KEY", "")
	cfg.Paystack.CallbackURL = env.GetString("PAYSTACK_CALLBACK_URL", cfg.BaseURL+"/payments/callback")

	cfg.Scheduler.PollInterval = time.Duration(env.GetInt("UNLOCK_POLL_INTERVAL_SECONDS", 60)) * time.Second
	cfg.Scheduler.MaxAttempts = env.GetInt("UNLOCK_MAX_ATTEMPTS", 3)

	cfg.RedisServer = env.GetString("REDIS_SERVER", "localhost:6379")
	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "localhost:9092")

	db, err := repository.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	errorHandler := errHandler.New(cfg.Notifications.Email, cfg.BaseURL, mailer, logger)

	kafkaStream := stream.New(cfg.KafkaServers)

	redisCache := cache.New(cfg.RedisServer, 0)

	paystackClient := paystack.New(cfg.Paystack.SecretKey, cfg.Paystack.CallbackURL)

	walletService := service.NewWalletService(db, logger)
	savingsEngine := service.NewSavingsEngine(db, walletService, logger)

	app := &Application{
		Config:        cfg,
		DB:            db,
		Logger:        logger,
		Mailer:        mailer,
		Cache:         redisCache,
		Kafka:         kafkaStream,
		Paystack:      paystackClient,
		WalletService: walletService,
		SavingsEngine: savingsEngine,
		errorHandler:  errorHandler,
	}

	app.helper = helper.New(&cfg.BaseURL, &app.WG, errorHandler)

	return app, nil
}

// ErrorHandler exposes the shared error reporter for the worker
// processes started alongside the server.
func (app *Application) ErrorHandler() *errHandler.ErrorRepository {
	return app.errorHandler
}

func (app *Application) Helper() *helper.HelperRepository {
	return app.helper
}

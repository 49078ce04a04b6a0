package mocks

import (
	"time"

	"github.com/spectrumarena/arenapay/internal/config"
)

var MockConfig = func() *config.Config {
	var cfg config.Config

	cfg.BaseURL = "http://localhost"
	cfg.HttpPort = 8080
	cfg.Db.Dsn = "mock_dsn"
	cfg.Db.Automigrate = false
	cfg.Jwt.SecretKey = "test_secret"
	cfg.Notifications.Email = "no-reply@example.com"
	cfg.Smtp.Host = "smtp.example.com"
	cfg.Smtp.Port = 587
	cfg.Smtp.Username = "user@example.com"
	cfg.Smtp.Password = "password"
	cfg.Smtp.From = "no-reply@example.com"
	cfg.Paystack.SecretKey = "sk_test_mock"
	cfg.Paystack.CallbackURL = "http://localhost/payments/callback"
	cfg.Scheduler.PollInterval = time.Minute
	cfg.Scheduler.MaxAttempts = 3
	cfg.RedisServer = "localhost:6379"
	cfg.KafkaServers = "localhost:9092"

	return &cfg
}()

package config

import "time"

type Config struct {
	BaseURL  string
	HttpPort int
	Db       struct {
		Dsn         string
		Automigrate bool
	}
	Jwt struct {
		SecretKey string
	}
	Notifications struct {
		Email string
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Paystack struct {
		SecretKey   string
		CallbackURL string
	}
	Scheduler struct {
		PollInterval time.Duration
		MaxAttempts  int
	}
	RedisServer  string
	KafkaServers string
}

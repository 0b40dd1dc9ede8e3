package main

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/mohammedqas189/ASCVD-Calculator/internal/chat"
)

type serverConfig struct {
	Port             string
	DataDir          string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	JWTSecret        string
	AllowedOrigins   []string
	LogLevel         string
	CacheTTL         time.Duration
	CacheItems       int
	IPLimit          int
	ChatLimit        int
	MaxMessageLength int
	MaxBodyBytes     int64
	RequestTimeout   time.Duration
	HealthInterval   time.Duration
	EnableHSTS       bool
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		Port:             "8080",
		DataDir:          "./data",
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:19006"},
		LogLevel:         "info",
		CacheTTL:         15 * time.Minute,
		CacheItems:       10000,
		IPLimit:          60,
		ChatLimit:        20,
		MaxMessageLength: chat.DefaultMaxLength,
		MaxBodyBytes:     16 << 10,
		RequestTimeout:   30 * time.Second,
		HealthInterval:   30 * time.Second,
	}
}

func configFromCommand(cmd *cli.Command) serverConfig {
	cfg := defaultServerConfig()

	cfg.Port = cmd.String("port")
	cfg.DataDir = cmd.String("data-dir")
	cfg.RedisAddr = cmd.String("redis-addr")
	cfg.RedisPassword = cmd.String("redis-password")
	cfg.RedisDB = int(cmd.Int("redis-db"))
	cfg.JWTSecret = cmd.String("jwt-secret")
	cfg.AllowedOrigins = cmd.StringSlice("allowed-origins")
	cfg.LogLevel = cmd.String("log-level")
	cfg.CacheTTL = cmd.Duration("cache-ttl")
	cfg.IPLimit = int(cmd.Int("ip-limit"))
	cfg.ChatLimit = int(cmd.Int("chat-limit"))
	cfg.EnableHSTS = cmd.Bool("hsts")

	return cfg
}

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"github.com/mohammedqas189/ASCVD-Calculator/internal/monitoring"
	"github.com/mohammedqas189/ASCVD-Calculator/internal/risk"
)

const version = "1.0.0"

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "ascvd",
		Usage:   "10-year ASCVD risk calculator service",
		Version: version,
		Flags:   serveFlags(),
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API",
				Flags:  serveFlags(),
				Action: serve,
			},
			cmdCalculate,
		},
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Value:   "8080",
			Usage:   "the HTTP listen port",
			Sources: cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Value:   "./data",
			Usage:   "directory for the sqlite database; empty keeps chat history in memory",
			Sources: cli.EnvVars("DATA_DIR"),
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "redis address for distributed rate limiting (host:port)",
			Sources: cli.EnvVars("REDIS_ADDR"),
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "redis password",
			Sources: cli.EnvVars("REDIS_PASSWORD"),
		},
		&cli.IntFlag{
			Name:    "redis-db",
			Value:   0,
			Usage:   "redis database number",
			Sources: cli.EnvVars("REDIS_DB"),
		},
		&cli.StringFlag{
			Name:    "jwt-secret",
			Usage:   "HMAC secret for chat session tokens; random per process when unset",
			Sources: cli.EnvVars("JWT_SECRET"),
		},
		&cli.StringSliceFlag{
			Name:    "allowed-origins",
			Value:   []string{"http://localhost:8081", "http://localhost:19006"},
			Usage:   "CORS origins; \"*\" allows any",
			Sources: cli.EnvVars("ALLOWED_ORIGINS"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "debug, info, warn or error",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.DurationFlag{
			Name:    "cache-ttl",
			Value:   15 * time.Minute,
			Usage:   "how long calculation responses are cached",
			Sources: cli.EnvVars("CACHE_TTL"),
		},
		&cli.IntFlag{
			Name:    "ip-limit",
			Value:   60,
			Usage:   "API requests per minute per client IP",
			Sources: cli.EnvVars("IP_RATE_LIMIT"),
		},
		&cli.IntFlag{
			Name:    "chat-limit",
			Value:   20,
			Usage:   "chat messages per minute per session",
			Sources: cli.EnvVars("CHAT_RATE_LIMIT"),
		},
		&cli.BoolFlag{
			Name:    "hsts",
			Usage:   "send Strict-Transport-Security",
			Sources: cli.EnvVars("ENABLE_HSTS"),
		},
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg := configFromCommand(cmd)

	logger := monitoring.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger.Logger)
	gin.SetMode(gin.ReleaseMode)

	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.JWTSecret = secret
		logger.Warn("JWT secret not configured, chat sessions will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	go s.health.Start(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

var cmdCalculate = &cli.Command{
	Name:  "calculate",
	Usage: "Estimate 10-year ASCVD risk from the command line",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "age", Usage: "age in years"},
		&cli.StringFlag{Name: "total-cholesterol", Usage: "total cholesterol (mg/dL)"},
		&cli.StringFlag{Name: "hdl", Usage: "HDL cholesterol (mg/dL)"},
		&cli.StringFlag{Name: "systolic-bp", Usage: "systolic blood pressure (mm Hg)"},
		&cli.BoolFlag{Name: "smoker", Usage: "current smoker"},
		&cli.BoolFlag{Name: "diabetes", Usage: "has diabetes"},
		&cli.BoolFlag{Name: "on-meds", Usage: "on hypertension medication"},
		&cli.StringFlag{Name: "sex", Value: string(risk.Female), Usage: "female or male"},
		&cli.StringFlag{Name: "race", Value: string(risk.White), Usage: "white or african-american"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		raw := risk.RawInputs{
			Age:                cmd.String("age"),
			TotalCholesterol:   cmd.String("total-cholesterol"),
			HDLCholesterol:     cmd.String("hdl"),
			SystolicBP:         cmd.String("systolic-bp"),
			Smoker:             cmd.Bool("smoker"),
			Diabetes:           cmd.Bool("diabetes"),
			OnHypertensionMeds: cmd.Bool("on-meds"),
		}

		res, err := risk.NewCalculator(nil).Calculate(ctx, raw, cmd.String("sex"), cmd.String("race"))
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.Root().Writer, res.Sentence())
		return err
	},
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

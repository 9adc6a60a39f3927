package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/campusflow/internal/config"
	"github.com/Skotchmaster/campusflow/internal/events"
	"github.com/Skotchmaster/campusflow/internal/hash"
	"github.com/Skotchmaster/campusflow/internal/httpserver"
	"github.com/Skotchmaster/campusflow/internal/logging"
	loggingmw "github.com/Skotchmaster/campusflow/internal/middleware/logging"
	"github.com/Skotchmaster/campusflow/internal/repo"
	"github.com/Skotchmaster/campusflow/internal/service"
	"github.com/Skotchmaster/campusflow/internal/tokens"
)

type publisher interface {
	service.Publisher
	Close() error
}

func main() {
	cfg := config.Load(".env")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.OpenDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	keys, err := tokens.NewKeys(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		log.Fatalf("jwt keys: %v", err)
	}

	var prod publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		prod = p
	} else {
		logger.Info("kafka disabled, KAFKA_BROKERS is empty")
	}

	store := repo.New(db)
	svc := &service.AuthService{
		Repo:     store,
		Hasher:   hash.NewHasher(cfg.BcryptCost),
		Issuer:   tokens.NewIssuer(keys, cfg.AccessTTL),
		Verifier: tokens.NewVerifier(keys),
		Events:   prod,
	}

	bootCtx, bootCancel := context.WithTimeout(logging.IntoContext(context.Background(), logger), 10*time.Second)
	err = svc.BootstrapAdmin(bootCtx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword)
	bootCancel()
	if err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		DB:     db,
		Pinger: store,
		Auth:   svc,
		Events: prod,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}

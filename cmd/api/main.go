package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"call-disposition/internal/amd"
	"call-disposition/internal/audit"
	"call-disposition/internal/auth"
	"call-disposition/internal/campaign"
	"call-disposition/internal/config"
	"call-disposition/internal/cultural"
	"call-disposition/internal/httpapi"
	"call-disposition/internal/routing"
	"call-disposition/pkg/logger"
	"call-disposition/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional .env for local runs; real environments set vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	bank := cultural.DefaultBank()
	if cfg.Patterns.Path != "" {
		bank, err = cultural.LoadBank(cfg.Patterns.Path)
		if err != nil {
			log.Error("pattern db load failed", "path", cfg.Patterns.Path, "err", err)
			os.Exit(1)
		}
	}

	fuser := amd.NewFuser(amd.Config{
		Sensitivity:      cfg.Detection.Sensitivity,
		MaxDetectionTime: cfg.Detection.MaxDetectionTime,
	}, nil, nil, bank)

	campaignStore := campaign.NewRedisStore(rdb)
	manager := campaign.NewManager(campaignStore, fuser, logDeliverer{log: log})
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))

	h := httpapi.Handlers{
		Detector:          fuser,
		Campaigns:         manager,
		Store:             campaignStore,
		Router:            routing.NewEngine(nil),
		Audit:             auditSvc,
		Redis:             rdb,
		CampaignCallLimit: 50,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireServiceToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}

// logDeliverer stands in for the dialer's message-playback integration.
// It acknowledges delivery so analytics reflect the attempt; the real
// deliverer is wired when the dialer boundary lands.
type logDeliverer struct {
	log *slog.Logger
}

func (d logDeliverer) Deliver(ctx context.Context, campaignID, phone string, lang cultural.Language, msg string) error {
	d.log.Info("machine message delivery requested",
		"campaign_id", campaignID, "language", lang, "phone", phone)
	return nil
}

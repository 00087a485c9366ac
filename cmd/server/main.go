package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/huutrungle2001/moral-duel-api/internal/ai"
	"github.com/huutrungle2001/moral-duel-api/internal/api/rest"
	"github.com/huutrungle2001/moral-duel-api/internal/cache"
	"github.com/huutrungle2001/moral-duel-api/internal/config"
	"github.com/huutrungle2001/moral-duel-api/internal/ledger"
	"github.com/huutrungle2001/moral-duel-api/internal/repository"
	"github.com/huutrungle2001/moral-duel-api/internal/service/badges"
	"github.com/huutrungle2001/moral-duel-api/internal/service/leaderboard"
	"github.com/huutrungle2001/moral-duel-api/internal/service/lifecycle"
	"github.com/huutrungle2001/moral-duel-api/internal/service/reconciler"
	"github.com/huutrungle2001/moral-duel-api/internal/service/scheduler"
	"github.com/huutrungle2001/moral-duel-api/internal/service/settlement"
	"github.com/huutrungle2001/moral-duel-api/internal/service/users"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Repositories
	caseRepo := repository.NewCaseRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	argRepo := repository.NewArgumentRepository(db)
	userRepo := repository.NewUserRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	snapshotRepo := repository.NewLeaderboardRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// External collaborators
	ledgerClient := ledger.NewClient(&cfg.Ledger, log.Component("ledger"))
	generator := ai.NewHTTPGenerator(&cfg.AI, log.Component("ai"))

	// Services
	settlementSvc := settlement.NewService(voteRepo, argRepo, rewardRepo, auditRepo, &cfg.Rewards, log)
	lifecycleSvc := lifecycle.NewService(caseRepo, voteRepo, argRepo, userRepo, auditRepo, ledgerClient, generator, settlementSvc, cfg, log)
	reconcilerSvc := reconciler.NewService(caseRepo, rewardRepo, userRepo, auditRepo, ledgerClient, lifecycleSvc, &cfg.Jobs, log)
	leaderboardSvc := leaderboard.NewService(rewardRepo, badgeRepo, userRepo, snapshotRepo, redisCache, log)
	badgeSvc := badges.NewService(badgeRepo, rewardRepo, argRepo, voteRepo, userRepo, log)
	userSvc := users.NewService(userRepo, badgeSvc, log)

	if err := badgeSvc.SeedCatalog(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed badge catalog")
	}

	// Background jobs
	jobs := scheduler.NewService(cfg, lifecycleSvc, lifecycleSvc, reconcilerSvc, leaderboardSvc, badgeSvc, log.Component("scheduler"))
	if err := jobs.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer jobs.Stop()

	// HTTP API
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handler := rest.NewHandler(
		lifecycleSvc, reconcilerSvc, leaderboardSvc, badgeSvc, userSvc,
		map[string]rest.HealthChecker{
			"database": func(ctx context.Context) error { return db.Health() },
			"redis":    redisCache.Health,
			"ledger": func(ctx context.Context) error {
				_, err := ledgerClient.GetNetworkInfo(ctx)
				return err
			},
		},
		log,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Int("port", cfg.Metrics.Port).Str("path", cfg.Metrics.Path).Msg("Metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown failed")
		}
	}
}

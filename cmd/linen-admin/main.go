package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/analytics"
	"github.com/nurpe/linen-admin/internal/auth"
	"github.com/nurpe/linen-admin/internal/cache"
	"github.com/nurpe/linen-admin/internal/config"
	"github.com/nurpe/linen-admin/internal/db"
	"github.com/nurpe/linen-admin/internal/excel"
	httphandler "github.com/nurpe/linen-admin/internal/http"
	"github.com/nurpe/linen-admin/internal/http/middleware"
	"github.com/nurpe/linen-admin/internal/identity"
	"github.com/nurpe/linen-admin/internal/logger"
	"github.com/nurpe/linen-admin/internal/metrics"
	"github.com/nurpe/linen-admin/internal/pdf"
	"github.com/nurpe/linen-admin/internal/pricing"
	"github.com/nurpe/linen-admin/internal/repository"
	"github.com/nurpe/linen-admin/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	var roleCache service.RoleCache
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRoleCache(ctx, cfg.Cache.RedisURL, cfg.Auth.RoleCacheTTL, log)
		if err != nil {
			log.Warn().Err(err).Msg("role cache unavailable, reading roles from the database")
		} else {
			roleCache = rc
			defer rc.Close()
		}
	}

	m := metrics.New()
	handler := httphandler.NewHandler(buildServices(cfg, database, roleCache, log), func(ctx context.Context) error {
		return db.Ping(ctx, database)
	}, log)
	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), httphandler.RouterConfig{
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Metrics:        m,
		Log:            log,
	})

	apiServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", m.Handler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("addr", apiServer.Addr).Msg("starting linen admin api")
		return serve(apiServer)
	})
	group.Go(func() error {
		log.Info().Str("addr", metricsServer.Addr).Msg("starting metrics server")
		return serve(metricsServer)
	})
	group.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	if err := group.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func buildServices(cfg *config.Config, database *gorm.DB, roleCache service.RoleCache, log zerolog.Logger) httphandler.Services {
	clientRepo := repository.NewClientRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	batchRepo := repository.NewBatchRepository(database)
	userRepo := repository.NewUserRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	rfidRepo := repository.NewRFIDRepository(database)

	prices := pricing.DefaultTable(cfg.Pricing.FallbackPrice)
	calc := analytics.NewCalculator(prices)
	access := service.NewAccessService(userRepo, roleCache)
	idp := identity.NewClient(cfg.Auth.ProviderURL, cfg.Auth.ServiceKey)

	return httphandler.Services{
		Clients:    service.NewClientService(clientRepo),
		Categories: service.NewCategoryService(categoryRepo),
		Batches:    service.NewBatchService(batchRepo, clientRepo, categoryRepo, prices, log),
		Dashboard:  service.NewDashboardService(batchRepo, clientRepo, calc),
		Reports: service.NewReportService(batchRepo, clientRepo, settingsRepo, calc,
			excel.NewGenerator(cfg.Pricing.Currency), pdf.NewGenerator(cfg.Pricing.Currency), log),
		Users:    service.NewUserService(userRepo, idp, access, log),
		Access:   access,
		Settings: service.NewSettingsService(settingsRepo),
		RFID:     service.NewRFIDService(rfidRepo),
	}
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"apivro/internal/config"
	"apivro/internal/domain/ports/adapter"
	"apivro/internal/domain/ports/repository"
	invoiceAdapter "apivro/internal/infra/adapters/invoice"
	mailAdapter "apivro/internal/infra/adapters/mail"
	payAdapters "apivro/internal/infra/adapters/payment"
	storageAdapter "apivro/internal/infra/adapters/storage"
	webhookAdapter "apivro/internal/infra/adapters/webhook"
	"apivro/internal/infra/adapters/whatsapp"
	"apivro/internal/infra/api"
	"apivro/internal/infra/api/apiv1"
	pg "apivro/internal/infra/db/postgres"
	"apivro/internal/infra/logging"
	"apivro/internal/infra/metrics"
	"apivro/internal/infra/ratelimit"
	red "apivro/internal/infra/redis"
	"apivro/internal/infra/sched"
	"apivro/internal/infra/worker"
	"apivro/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop payment gateway)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("apivro stopped with error")
	}
	logger.Info().Msg("apivro stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	if err := pg.MigrateUp(ctx, cfg.Database.URL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 0, logger)

	// ---- Redis (optional) ----
	var (
		locker   adapter.Locker
		limiter  adapter.RateLimiter
		planRepo repository.PlanRepository = pg.NewPlanRepo(pool)
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
		locker = red.NewLocker(redisClient)
		limiter = red.NewRateLimiter(redisClient)
		planRepo = pg.NewPlanRepoCacheDecorator(planRepo, redisClient, cfg.Redis.TTL)
	} else {
		logger.Warn().Msg("redis disabled; using in-process rate limiter and no payment lock")
		limiter = ratelimit.NewMemory()
	}

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	profileRepo := pg.NewProfileRepo(pool)
	deviceRepo := pg.NewDeviceRepo(pool)
	keyRepo := pg.NewAPIKeyRepo(pool)
	msgRepo := pg.NewMessageRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	hookRepo := pg.NewWebhookLogRepo(pool)
	noteRepo := pg.NewNotificationRepo(pool)

	// ---- Background tasks ----
	tasks := worker.NewPool(cfg.Worker.Workers, cfg.Worker.Queue, cfg.Worker.TaskTimeout, logger)
	tasks.Start(ctx)
	defer tasks.Stop()

	// ---- Adapters ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev && cfg.Tripay.APIKey == "" {
		logger.Warn().Msg("tripay.api_key empty; using in-memory payment gateway")
		gateway = payAdapters.NewNoopPaymentGateway()
	} else {
		gateway, err = payAdapters.NewTripayGateway(cfg.Tripay)
		if err != nil {
			return fmt.Errorf("tripay gateway: %w", err)
		}
	}
	signer := payAdapters.NewSigner(cfg.Tripay.MerchantCode, cfg.Tripay.PrivateKey)

	waha := whatsapp.NewWAHAClient(cfg.WAHA, nil)
	hooks := webhookAdapter.NewHTTPClient(cfg.Webhook)
	mailer := mailAdapter.NewSMTPMailer(cfg.SMTP, mailAdapter.WithBrand(cfg.Invoice.CompanyName))
	if !mailer.Configured() {
		logger.Warn().Msg("smtp not configured; transactional emails are skipped")
	}

	var storage adapter.ObjectStorage
	if cfg.S3.Bucket != "" {
		s3, err := storageAdapter.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("s3: %w", err)
		}
		storage = s3
	} else {
		logger.Warn().Msg("s3.bucket empty; invoices are not generated")
	}

	// ---- Use cases ----
	quotaUC := usecase.NewQuotaUseCase(subRepo, planRepo, logger)
	keyUC := usecase.NewAPIKeyUseCase(keyRepo, deviceRepo, tasks, logger)
	msgUC := usecase.NewMessageUseCase(quotaUC, deviceRepo, msgRepo, profileRepo, waha, tasks, logger)
	hookUC := usecase.NewWebhookUseCase(deviceRepo, hookRepo, hooks, logger)
	invoiceUC := usecase.NewInvoiceUseCase(payRepo, invoiceAdapter.NewPDFRenderer(cfg.Invoice), storage, logger)
	notifUC := usecase.NewNotificationUseCase(profileRepo, deviceRepo, noteRepo, mailer, cfg.HTTP.DevicesURL(), logger)
	payUC := usecase.NewPaymentUseCase(tm, payRepo, planRepo, subRepo, profileRepo, gateway, signer, usecase.PaymentOptions{
		Locker:                 locker,
		Invoices:               invoiceUC,
		Notifications:          notifUC,
		AllowUnsignedCallbacks: cfg.Tripay.UnsignedCallbacksAllowed(),
	}, logger)

	// ---- HTTP ----
	sessions, err := api.NewSessionManager(cfg.Auth)
	if err != nil {
		if !cfg.Runtime.Dev {
			return fmt.Errorf("auth: %w", err)
		}
		logger.Warn().Err(err).Msg("dashboard sessions disabled")
		sessions = nil
	}
	apiServer := apiv1.NewServer(apiv1.Deps{
		Messages:      msgUC,
		Quota:         quotaUC,
		APIKeys:       keyUC,
		Payments:      payUC,
		Webhooks:      hookUC,
		Notifications: notifUC,
		Sessions:      sessions,
		Limiter:       limiter,
	}, apiv1.Options{
		RateLimitPerMinute: cfg.RateLimit.PerMinute,
		RequestTimeout:     cfg.HTTP.RequestTimeout,
	}, logger)

	router := chi.NewRouter()
	apiv1.RegisterAPIV1(router, apiServer)
	server := api.NewHTTPServer(cfg.HTTP, router)

	var wg sync.WaitGroup
	errc := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// ---- Payment reconciler ----
	if cfg.Scheduler.PaymentSyncInterval > 0 {
		rec := sched.NewPaymentReconciler(payUC, cfg.Scheduler.PaymentSyncInterval, cfg.Scheduler.PaymentStaleAfter, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rec.Run(ctx)
		}()
	}

	// ---- Graceful shutdown ----
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case runErr = <-errc:
		logger.Error().Err(runErr).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	stop()
	wg.Wait()
	return runErr
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/solara-pms/solara/internal/app"
	"github.com/solara-pms/solara/internal/booking"
	"github.com/solara-pms/solara/internal/businessday"
	"github.com/solara-pms/solara/internal/ledger"
	"github.com/solara-pms/solara/internal/mail"
	"github.com/solara-pms/solara/internal/nightaudit"
	"github.com/solara-pms/solara/internal/observability"
	"github.com/solara-pms/solara/internal/orders"
	"github.com/solara-pms/solara/internal/platform/cache"
	"github.com/solara-pms/solara/internal/platform/db"
	"github.com/solara-pms/solara/internal/rooms"
	"github.com/solara-pms/solara/internal/shared"
	"github.com/solara-pms/solara/internal/staff"
	"github.com/solara-pms/solara/jobs"
	"github.com/solara-pms/solara/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	activityLogger := shared.NewActivityLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	locker := shared.NewLocker(redisClient)

	staffRepo := staff.NewRepository(pool)
	staffService := staff.NewService(staffRepo)
	staffAuth := staff.Middleware{Service: staffService, Logger: logger}

	dayRepo := businessday.NewRepository(pool)
	dayService := businessday.NewService(dayRepo)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, activityLogger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	bookingRepo := booking.NewRepository(pool)
	bookingService := booking.NewService(bookingRepo, activityLogger)
	bookingHandler := booking.NewHandler(logger, bookingService)

	roomsRepo := rooms.NewRepository(pool)
	roomsService := rooms.NewService(roomsRepo)
	roomsHandler := rooms.NewHandler(logger, roomsService)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	ordersHandler := orders.NewHandler(logger, ordersService, jobClient)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	auditRenderer, err := nightaudit.NewRenderer(pdfClient)
	if err != nil {
		logger.Error("init audit renderer", slog.Any("error", err))
		os.Exit(1)
	}
	mailer := mail.NewQueueSender(jobClient)

	auditRepo := nightaudit.NewRepository(pool)
	auditService := nightaudit.NewService(nightaudit.ServiceConfig{
		Logger:          logger,
		Runs:            auditRepo,
		Days:            dayService,
		Bookings:        bookingService,
		Ledger:          ledgerService,
		Orders:          ordersService,
		Rooms:           roomsService,
		Locks:           locker,
		Idempotency:     idempotencyStore,
		Renderer:        auditRenderer,
		Mailer:          mailer,
		Activity:        activityLogger,
		ReportRecipient: cfg.ReservationsEmail,
		LockTTL:         cfg.AuditLockTTL,
	})
	auditHandler := nightaudit.NewHandler(logger, auditService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		BookingHandler: bookingHandler,
		OrdersHandler:  ordersHandler,
		RoomsHandler:   roomsHandler,
		LedgerHandler:  ledgerHandler,
		AuditHandler:   auditHandler,
		JobHandler:     jobHandler,
		StaffAuth:      staffAuth,
		Pool:           pool,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

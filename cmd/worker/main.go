package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/solara-pms/solara/internal/app"
	"github.com/solara-pms/solara/internal/booking"
	"github.com/solara-pms/solara/internal/businessday"
	jobmetrics "github.com/solara-pms/solara/internal/jobs"
	"github.com/solara-pms/solara/internal/ledger"
	"github.com/solara-pms/solara/internal/mail"
	"github.com/solara-pms/solara/internal/nightaudit"
	"github.com/solara-pms/solara/internal/orders"
	"github.com/solara-pms/solara/internal/platform/cache"
	"github.com/solara-pms/solara/internal/platform/db"
	"github.com/solara-pms/solara/internal/receipt"
	"github.com/solara-pms/solara/internal/rooms"
	"github.com/solara-pms/solara/internal/shared"
	"github.com/solara-pms/solara/jobs"
	"github.com/solara-pms/solara/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
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

	dayRepo := businessday.NewRepository(pool)
	dayService := businessday.NewService(dayRepo)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, activityLogger)

	bookingRepo := booking.NewRepository(pool)
	bookingService := booking.NewService(bookingRepo, activityLogger)

	roomsRepo := rooms.NewRepository(pool)
	roomsService := rooms.NewService(roomsRepo)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	mailer := mail.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	metrics := jobmetrics.NewMetrics(nil)

	auditRenderer, err := nightaudit.NewRenderer(pdfClient)
	if err != nil {
		logger.Error("init audit renderer", slog.Any("error", err))
		os.Exit(1)
	}
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
	auditJob := nightaudit.NewJob(auditService, logger, metrics)

	receiptRenderer, err := receipt.NewRenderer(pdfClient)
	if err != nil {
		logger.Error("init receipt renderer", slog.Any("error", err))
		os.Exit(1)
	}
	receiptStore, err := receipt.NewGCSStore(ctx, cfg.ReceiptBucket)
	if err != nil {
		logger.Error("init receipt storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := receiptStore.Close(); err != nil {
			logger.Warn("receipt storage close", slog.Any("error", err))
		}
	}()
	receiptService := receipt.NewService(logger, ordersService, receipt.NewBuilder(cfg.HotelName), receiptRenderer, receiptStore)
	receiptJob := receipt.NewJob(receiptService, logger, metrics)

	mailJob := mail.NewJob(mailer, logger, metrics)
	pruneJob := shared.NewPruneJob(idempotencyStore, logger, metrics)

	auditTask, err := jobs.NewNightAuditTask(jobs.NightAuditPayload{})
	if err != nil {
		logger.Error("build audit task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeNightAudit, Handler: auditJob.Handle},
			{Type: jobs.TaskTypeGenerateReceipt, Handler: receiptJob.Handle},
			{Type: jobs.TaskTypeSendEmail, Handler: mailJob.Handle},
			{Type: jobs.TaskTypePruneKeys, Handler: pruneJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.AuditCronSpec, Task: auditTask, Options: []asynq.Option{asynq.MaxRetry(2)}},
			{Spec: "0 5 * * 0", Task: jobs.NewPruneKeysTask()},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

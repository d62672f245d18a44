package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screening/internal/config"
	"alfredoptarigan/cv-screening/internal/handlers"
	"alfredoptarigan/cv-screening/internal/logger"
	"alfredoptarigan/cv-screening/internal/queue"
	"alfredoptarigan/cv-screening/internal/repositories"
	"alfredoptarigan/cv-screening/internal/services"
	"alfredoptarigan/cv-screening/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return err
	}
	store := repositories.NewStore(db)

	storage, err := services.NewStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	log.Info("storage initialized", zap.String("driver", cfg.Storage.Driver))

	worker := services.NewWorker(cfg.Worker.Concurrency, cfg.Worker.QueueSize, log)

	var dispatcher tasks.Dispatcher = worker
	var rabbit *queue.RabbitMQ
	if cfg.Queue.Driver == config.QueueDriverRabbitMQ {
		rabbit, err = queue.NewRabbitMQ(cfg.Queue.RabbitMQURL, cfg.Queue.QueueName, cfg.Worker.Concurrency, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := rabbit.Close(); err != nil {
				log.Warn("failed to close rabbitmq", zap.Error(err))
			}
		}()
		dispatcher = rabbit
	}

	ai := services.NewAIClient(ctx, cfg.Gemini, services.NewMockAnalysisGenerator(), log)

	ingestion := services.NewIngestionService(store, storage, dispatcher, cfg.Storage.MaxFileSize, log)
	extraction := services.NewExtractionService(store, storage, services.NewExtractorRegistry(), dispatcher, log)
	screening := services.NewScreeningService(store, dispatcher, services.NewPromptBuilder(), ai, log)
	status := services.NewStatusService(store)
	recovery := services.NewStaleTaskRecovery(store, dispatcher, cfg.Worker.StaleAfter, log)

	worker.Handle(tasks.KindExtractDocument, extraction.Extract)
	worker.Handle(tasks.KindReextractDocument, extraction.ForceExtract)
	worker.Handle(tasks.KindScreenApplicant, screening.ScreenApplicant)
	worker.Every("stale-task-recovery", cfg.Worker.PollInterval, func(ctx context.Context) {
		recovery.Recover(ctx)
	})

	// tasks run on a background context so shutdown lets in-flight units finish
	worker.Start(context.Background())

	consumeCtx, stopConsuming := context.WithCancel(ctx)
	defer stopConsuming()
	if rabbit != nil {
		if err := rabbit.Consume(consumeCtx, worker); err != nil {
			worker.Stop()
			return err
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "Applicant Screening API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		// multipart overhead on top of the largest accepted file
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.NewErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(handlers.RequestIDMiddleware())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${respHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID, X-User-Role, X-Request-ID",
	}))

	handlers.Register(app.Group("/api/v1"), handlers.Handlers{
		Upload:    handlers.NewUploadHandler(ingestion, cfg.Storage.MaxFileSize),
		Document:  handlers.NewDocumentHandler(status, extraction),
		Screening: handlers.NewScreeningHandler(screening, status),
		Status:    handlers.NewStatusHandler(status),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting",
		zap.String("addr", addr),
		zap.String("env", cfg.Server.Env),
		zap.String("queue", cfg.Queue.Driver),
		zap.Bool("ai_live", ai.Live()),
	)

	err = app.Listen(addr)

	stopConsuming()
	worker.Stop()

	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

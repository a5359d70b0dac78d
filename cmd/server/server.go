package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"vision-chat/server/internal/config"
	"vision-chat/server/internal/domain/chat"
	"vision-chat/server/internal/domain/completion"
	"vision-chat/server/internal/domain/file"
	"vision-chat/server/internal/infrastructure/auth"
	"vision-chat/server/internal/infrastructure/database"
	"vision-chat/server/internal/infrastructure/imagegen"
	"vision-chat/server/internal/infrastructure/llmprovider"
	"vision-chat/server/internal/infrastructure/logger"
	"vision-chat/server/internal/infrastructure/observability"
	chatrepo "vision-chat/server/internal/infrastructure/repository/chat"
	filerepo "vision-chat/server/internal/infrastructure/repository/file"
	"vision-chat/server/internal/infrastructure/storage"
	"vision-chat/server/internal/interfaces/httpserver"
)

// Application bundles the long-running pieces of the service.
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(ctx, database.Config{
		URL:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage backend")
	}

	chatRepository := chatrepo.NewRepository(db)
	messageRepository := chatrepo.NewMessageRepository(db)
	fileRepository := filerepo.NewRepository(db)

	fileService := file.NewService(cfg, fileRepository, store, log)

	llmClient := llmprovider.NewClient(cfg, log)
	imageClient := imagegen.NewClient(cfg, log)
	imageTool := completion.NewImageTool(imageClient, fileService, log)

	orchestrator := completion.NewOrchestrator(
		llmClient,
		imageTool,
		messageRepository,
		cfg.ChatModel,
		cfg.Temperature,
		cfg.MaxToolRounds,
		log,
	)

	dispatcher := completion.NewDispatcher(orchestrator, completion.DispatcherConfig{
		TaskTimeout: cfg.CompletionTimeout,
	}, log)
	dispatcher.Start()
	defer dispatcher.Stop()

	chatService := chat.NewService(
		chatRepository,
		messageRepository,
		fileService,
		dispatcher,
		log,
	)

	httpServer := httpserver.New(cfg, log, chatService, fileService, db, store, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/config"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/chat"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/database"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/llmprovider"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/logger"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/observability"
	conversationrepo "github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/repository/conversation"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/interfaces/httpserver"
)

// Application bundles the long-running pieces of the service.
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

// NewApplication constructs the application shell.
func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

// Start runs the HTTP server until the context is cancelled.
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

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	conversationRepository := conversationrepo.NewRepository(db)
	messageRepository := conversationrepo.NewMessageRepository(db)

	llmClient := llmprovider.NewClient(llmprovider.Config{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		Timeout:     cfg.ModelTimeout,
		Temperature: float32(cfg.ModelTemperature),
		MaxTokens:   cfg.ModelMaxTokens,
	}, log)

	resolver := chat.NewResolver(conversationRepository, llmClient, cfg.OpenAIModel, log)
	chatService := chat.NewService(resolver, messageRepository, llmClient, chat.Config{
		MaxUserMessages:      cfg.MaxUserMessages,
		MaxAssistantMessages: cfg.MaxAssistantMessages,
	}, log)

	httpServer := httpserver.New(cfg, log, chatService, db)
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

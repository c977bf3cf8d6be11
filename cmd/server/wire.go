//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/config"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/chat"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/conversation"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/llm"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/database"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/llmprovider"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/logger"
	conversationrepo "github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/repository/conversation"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/interfaces/httpserver"
)

var chatSet = wire.NewSet(
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	conversationrepo.NewMessageRepository,
	wire.Bind(new(conversation.MessageRepository), new(*conversationrepo.MessageRepository)),
	newLLMProvider,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	newResolver,
	newChatService,
)

// BuildApplication demonstrates how to assemble the debate service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newGormDB,
		chatSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newGormDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newLLMProvider(cfg *config.Config, log zerolog.Logger) *llmprovider.Client {
	return llmprovider.NewClient(llmprovider.Config{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		Timeout:     cfg.ModelTimeout,
		Temperature: float32(cfg.ModelTemperature),
		MaxTokens:   cfg.ModelMaxTokens,
	}, log)
}

func newResolver(cfg *config.Config, conversations conversation.Repository, provider llm.Provider, log zerolog.Logger) *chat.Resolver {
	return chat.NewResolver(conversations, provider, cfg.OpenAIModel, log)
}

func newChatService(cfg *config.Config, resolver *chat.Resolver, messages conversation.MessageRepository, provider llm.Provider, log zerolog.Logger) chat.Service {
	return chat.NewService(resolver, messages, provider, chat.Config{
		MaxUserMessages:      cfg.MaxUserMessages,
		MaxAssistantMessages: cfg.MaxAssistantMessages,
	}, log)
}

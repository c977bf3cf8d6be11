package chat

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/conversation"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/llm"
)

// FallbackReply is persisted and returned whenever the model cannot produce
// an answer. Model failures never surface as request errors.
const FallbackReply = "Lo siento, ocurrió un error al procesar tu mensaje."

// Result is what a completed chat turn returns to the transport layer.
// Fallback reports whether the assistant turn is the substitute reply, so
// the caller can account for it.
type Result struct {
	ConversationID string
	Topic          string
	Stance         string
	History        []conversation.Turn
	Engine         string
	Fallback       bool
}

// Service handles one full chat turn.
type Service interface {
	HandleTurn(ctx context.Context, conversationID *string, message string) (*Result, error)
}

// Config carries the per-role history limits.
type Config struct {
	MaxUserMessages      int
	MaxAssistantMessages int
}

type service struct {
	resolver *Resolver
	messages conversation.MessageRepository
	provider llm.Provider
	cfg      Config
	log      zerolog.Logger
}

// NewService builds the chat service.
func NewService(resolver *Resolver, messages conversation.MessageRepository, provider llm.Provider, cfg Config, log zerolog.Logger) Service {
	if cfg.MaxUserMessages <= 0 {
		cfg.MaxUserMessages = DefaultMaxUserMessages
	}
	if cfg.MaxAssistantMessages <= 0 {
		cfg.MaxAssistantMessages = DefaultMaxAssistantMessages
	}
	return &service{
		resolver: resolver,
		messages: messages,
		provider: provider,
		cfg:      cfg,
		log:      log.With().Str("component", "chat").Logger(),
	}
}

// HandleTurn persists the user message, asks the model for a reply anchored
// to the conversation's topic and stance, persists the assistant message with
// the counter updates, and returns the trimmed history.
func (s *service) HandleTurn(ctx context.Context, conversationID *string, message string) (*Result, error) {
	conv, err := s.resolver.Resolve(ctx, conversationID, message)
	if err != nil {
		return nil, err
	}

	userMsg, err := conversation.NewMessage(conv.ID, conversation.RoleUser, message)
	if err != nil {
		return nil, err
	}
	if err := s.messages.Append(ctx, userMsg); err != nil {
		return nil, err
	}

	stored, err := s.messages.ListByConversationID(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	reply, fallback := s.generateReply(ctx, conv, conversation.Turns(stored))

	botMsg, err := conversation.NewMessage(conv.ID, conversation.RoleAssistant, reply)
	if err != nil {
		return nil, err
	}
	if err := s.messages.Append(ctx, botMsg); err != nil {
		return nil, err
	}

	stored, err = s.messages.ListByConversationID(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	return &Result{
		ConversationID: conv.PublicID,
		Topic:          conv.Topic,
		Stance:         conv.Stance,
		History:        Trim(conversation.Turns(stored), s.cfg.MaxUserMessages, s.cfg.MaxAssistantMessages),
		Engine:         conv.Engine,
		Fallback:       fallback,
	}, nil
}

// generateReply calls the model with the trimmed history. Any failure is
// absorbed into the fixed fallback reply; the second return reports whether
// that happened.
func (s *service) generateReply(ctx context.Context, conv *conversation.Conversation, history []conversation.Turn) (string, bool) {
	trimmed := Trim(history, s.cfg.MaxUserMessages, s.cfg.MaxAssistantMessages)
	instruction := debateInstruction(conv.Topic, conv.Stance)

	reply, err := s.provider.Complete(ctx, instruction, trimmed)
	if err != nil || strings.TrimSpace(reply) == "" {
		s.log.Warn().
			Err(err).
			Str("conversation_id", conv.PublicID).
			Msg("model call failed, using fallback reply")
		return FallbackReply, true
	}
	return reply, false
}

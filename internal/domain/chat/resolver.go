package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/conversation"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/llm"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/utils/platformerrors"
)

// Resolver locates an existing conversation or creates a new one.
type Resolver struct {
	conversations conversation.Repository
	provider      llm.Provider
	engine        string
	log           zerolog.Logger
}

// NewResolver builds a conversation resolver.
func NewResolver(conversations conversation.Repository, provider llm.Provider, engine string, log zerolog.Logger) *Resolver {
	return &Resolver{
		conversations: conversations,
		provider:      provider,
		engine:        engine,
		log:           log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns the conversation addressed by publicID, or creates a fresh
// one when publicID is absent. A malformed ID and a well-formed but unknown
// ID both surface the same not-found error.
func (r *Resolver) Resolve(ctx context.Context, publicID *string, firstMessage string) (*conversation.Conversation, error) {
	if publicID == nil {
		return r.create(ctx, firstMessage)
	}

	if _, err := uuid.Parse(*publicID); err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			"conversation_id not found or invalid",
			nil,
			"8c1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f",
		)
	}

	return r.conversations.FindByPublicID(ctx, *publicID)
}

func (r *Resolver) create(ctx context.Context, firstMessage string) (*conversation.Conversation, error) {
	topicSource := "default"
	ts := llm.DefaultTopicStance()
	if strings.TrimSpace(firstMessage) != "" {
		detected, err := r.provider.DetectTopicStance(ctx, firstMessage)
		switch {
		case err != nil:
			r.log.Warn().Err(err).Msg("topic/stance detection failed, using defaults")
		case detected.Complete():
			ts = detected
			topicSource = "model"
		}
	}

	conv := conversation.NewConversation(uuid.NewString(), ts.Topic, ts.Stance, r.engine)
	conv.Metadata = map[string]string{"topic_source": topicSource}

	if err := r.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}

	r.log.Info().
		Str("conversation_id", conv.PublicID).
		Str("topic", conv.Topic).
		Str("stance", conv.Stance).
		Msg("created conversation")
	return conv, nil
}

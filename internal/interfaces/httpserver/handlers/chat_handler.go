package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/chat"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/metrics"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/observability"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/interfaces/httpserver/requests"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/interfaces/httpserver/responses"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/utils/platformerrors"
)

// ChatHandler exposes the chat turn endpoint.
type ChatHandler struct {
	service chat.Service
	log     zerolog.Logger
}

// NewChatHandler constructs the chat handler.
func NewChatHandler(service chat.Service, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

// Chat handles POST /chat. It resolves or creates the conversation, runs one
// full turn and returns the trimmed history.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req requests.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "a1b2c3d4-chat-bind")
		return
	}
	if !req.Valid() {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "message must not be empty", "b2c3d4e5-chat-blank")
		return
	}

	ctx, span := observability.StartChatTurnSpan(c.Request.Context())
	defer span.End()

	result, err := h.service.HandleTurn(ctx, req.ConversationID, req.Message)
	if err != nil {
		observability.RecordError(span, err)
		responses.HandleError(c, err, "failed to process chat turn")
		return
	}

	span.SetAttributes(observability.ConversationAttributes(result.ConversationID, result.Topic, result.Stance)...)
	if result.Fallback {
		metrics.FallbackRepliesTotal.Inc()
	}

	c.JSON(http.StatusOK, responses.FromResult(result))
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/interfaces/httpserver/handlers"
)

// Provider coordinates all route registrations.
type Provider struct {
	handlers *handlers.Provider
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{handlers: handlerProvider}
}

// Register attaches all available routes to the gin engine.
func (p *Provider) Register(engine *gin.Engine) {
	engine.POST("/chat", p.handlers.Chat.Chat)
}

package requests

import "strings"

// ChatRequest is the POST /chat payload.
type ChatRequest struct {
	ConversationID *string `json:"conversation_id"`
	Message        string  `json:"message" binding:"required"`
}

// Valid reports whether the message carries any content.
func (r *ChatRequest) Valid() bool {
	return strings.TrimSpace(r.Message) != ""
}

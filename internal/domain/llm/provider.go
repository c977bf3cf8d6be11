package llm

import (
	"context"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/conversation"
)

// TopicStance is the structured detection result for a new conversation.
type TopicStance struct {
	Topic  string `json:"topic"`
	Stance string `json:"stance"`
}

// DefaultTopicStance is used whenever detection fails or returns blanks.
func DefaultTopicStance() TopicStance {
	return TopicStance{
		Topic:  conversation.DefaultTopic,
		Stance: conversation.DefaultStance,
	}
}

// Complete reports whether both fields carry a usable value.
func (ts TopicStance) Complete() bool {
	return ts.Topic != "" && ts.Stance != ""
}

// Provider abstracts the language model backend.
type Provider interface {
	// Complete sends the system instruction plus trimmed history and returns
	// the generated reply.
	Complete(ctx context.Context, system string, history []conversation.Turn) (string, error)
	// DetectTopicStance asks the model for a structured topic/stance reading
	// of the first user message.
	DetectTopicStance(ctx context.Context, message string) (TopicStance, error)
}

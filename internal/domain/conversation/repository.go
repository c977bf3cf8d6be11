package conversation

import "context"

// Repository persists conversation metadata.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
}

// MessageRepository persists the stored turns of a conversation.
type MessageRepository interface {
	// Append inserts a single message and, in the same transaction, bumps
	// the per-role counter it accounts for plus the conversation's
	// updated_at. A partial write can never leave the counters out of sync
	// with the stored messages.
	Append(ctx context.Context, msg *Message) error
	// ListByConversationID returns all messages in chronological order.
	ListByConversationID(ctx context.Context, conversationID uint) ([]Message, error)
}

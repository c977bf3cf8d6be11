package conversation

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/conversation"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/database/entities"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/metrics"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/utils/platformerrors"
)

// MessageRepository persists conversation messages.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository builds a message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append inserts a single message and bumps the counter of the message's
// role plus updated_at in the same transaction, so a partial write can never
// leave the counters out of sync with the stored messages.
func (r *MessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	entity := entities.NewSchemaMessage(msg)

	counterColumn := "user_message_count"
	if msg.Role == domain.RoleAssistant {
		counterColumn = "assistant_message_count"
	}

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entity).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Updates(map[string]any{
				counterColumn: gorm.Expr(counterColumn+" + ?", 1),
				"updated_at":  time.Now().UTC(),
			}).Error
	})
	metrics.DBQueryDuration.WithLabelValues("message_append").Observe(time.Since(start).Seconds())
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to store message",
			err,
			"8e2b4f5a-6c7d-4e8f-b19a-0c1d2e3f4a5b",
		)
	}

	msg.ID = entity.ID
	msg.CreatedAt = entity.CreatedAt
	return nil
}

// ListByConversationID returns all messages of a conversation in
// chronological order.
func (r *MessageRepository) ListByConversationID(ctx context.Context, conversationID uint) ([]domain.Message, error) {
	var rows []entities.Message

	start := time.Now()
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	metrics.DBQueryDuration.WithLabelValues("message_list").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list messages",
			err,
			"0a4d6b7c-8e9f-4a0b-d3bc-2e3f4a5b6c7d",
		)
	}

	messages := make([]domain.Message, len(rows))
	for i := range rows {
		messages[i] = *rows[i].EtoD()
	}
	return messages, nil
}

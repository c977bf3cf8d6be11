package conversation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/conversation"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/database/entities"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/metrics"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/utils/platformerrors"
)

// Repository persists conversation metadata.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the conversation record.
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)

	start := time.Now()
	err := r.db.WithContext(ctx).Create(entity).Error
	metrics.DBQueryDuration.WithLabelValues("conversation_create").Observe(time.Since(start).Seconds())
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"5b9e1c2d-3f4a-4b5c-8d6e-7f8a9b0c1d2e",
		)
	}

	metrics.ConversationsCreatedTotal.Inc()
	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByPublicID fetches a conversation by its public ID. A missing row and a
// malformed ID are reported identically upstream.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Conversation, error) {
	var entity entities.Conversation

	start := time.Now()
	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error
	metrics.DBQueryDuration.WithLabelValues("conversation_find").Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"conversation_id not found or invalid",
				nil,
				"6c0f2d3e-4a5b-4c6d-9e7f-8a9b0c1d2e3f",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch conversation",
			err,
			"7d1a3e4f-5b6c-4d7e-a08f-9b0c1d2e3f4a",
		)
	}

	return entity.EtoD(), nil
}

package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/conversation"
)

// Conversation represents the database schema for conversations
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID              string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	Topic                 string  `gorm:"type:varchar(100);not null;default:'general'"`
	Stance                string  `gorm:"type:varchar(50);not null;default:'neutral'"`
	Engine                string  `gorm:"type:varchar(50);not null;default:'gpt-3.5-turbo'"`
	UserMessageCount      int     `gorm:"not null;default:0"`
	AssistantMessageCount int     `gorm:"not null;default:0"`
	Metadata              JSONMap `gorm:"type:jsonb"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// JSONMap is a custom type for map[string]string stored as JSON
type JSONMap map[string]string

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// EtoD converts database entity to domain model
func (c *Conversation) EtoD() *conversation.Conversation {
	metadata := make(map[string]string)
	if c.Metadata != nil {
		metadata = c.Metadata
	}

	return &conversation.Conversation{
		ID:                    c.ID,
		PublicID:              c.PublicID,
		Topic:                 c.Topic,
		Stance:                c.Stance,
		Engine:                c.Engine,
		UserMessageCount:      c.UserMessageCount,
		AssistantMessageCount: c.AssistantMessageCount,
		Metadata:              metadata,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

// NewSchemaConversation creates a database entity from domain model
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		ID:                    c.ID,
		PublicID:              c.PublicID,
		Topic:                 c.Topic,
		Stance:                c.Stance,
		Engine:                c.Engine,
		UserMessageCount:      c.UserMessageCount,
		AssistantMessageCount: c.AssistantMessageCount,
		Metadata:              c.Metadata,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

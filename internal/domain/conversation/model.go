package conversation

import (
	"fmt"
	"time"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/utils/idgen"
)

// Role identifies who authored a message. Only two values exist.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole validates a raw role string against the closed role set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser:
		return RoleUser, nil
	case RoleAssistant:
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether the role is part of the closed role set.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Defaults applied when topic/stance detection is unavailable.
const (
	DefaultTopic  = "general"
	DefaultStance = "neutral"
)

// Conversation is the aggregate root for a debate thread.
type Conversation struct {
	ID                    uint
	PublicID              string
	Topic                 string
	Stance                string
	Engine                string
	UserMessageCount      int
	AssistantMessageCount int
	Metadata              map[string]string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewConversation builds a conversation with zeroed counters.
func NewConversation(publicID, topic, stance, engine string) *Conversation {
	if topic == "" {
		topic = DefaultTopic
	}
	if stance == "" {
		stance = DefaultStance
	}
	return &Conversation{
		PublicID: publicID,
		Topic:    topic,
		Stance:   stance,
		Engine:   engine,
	}
}

// Message is a single stored turn inside a conversation.
type Message struct {
	ID             uint
	PublicID       string
	ConversationID uint
	Role           Role
	Content        string
	CreatedAt      time.Time
}

// NewMessage builds a message with a fresh public ID.
func NewMessage(conversationID uint, role Role, content string) (*Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid message role %q", role)
	}
	publicID, err := idgen.GenerateSecureID("msg", 16)
	if err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}
	return &Message{
		PublicID:       publicID,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}, nil
}

// Turn is the wire projection of a message.
type Turn struct {
	Role    Role   `json:"role"`
	Message string `json:"message"`
}

// Turn projects the message onto its wire form.
func (m *Message) Turn() Turn {
	return Turn{Role: m.Role, Message: m.Content}
}

// Turns projects a message slice, preserving order.
func Turns(messages []Message) []Turn {
	turns := make([]Turn, len(messages))
	for i := range messages {
		turns[i] = messages[i].Turn()
	}
	return turns
}

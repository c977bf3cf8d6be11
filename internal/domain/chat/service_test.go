package chat_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/chat"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/conversation"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/llm"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/utils/platformerrors"
)

// MockProvider is a mock implementation of llm.Provider.
type MockProvider struct {
	CompleteFunc          func(ctx context.Context, system string, history []conversation.Turn) (string, error)
	DetectTopicStanceFunc func(ctx context.Context, message string) (llm.TopicStance, error)
}

func (m *MockProvider) Complete(ctx context.Context, system string, history []conversation.Turn) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, history)
	}
	return "ok", nil
}

func (m *MockProvider) DetectTopicStance(ctx context.Context, message string) (llm.TopicStance, error) {
	if m.DetectTopicStanceFunc != nil {
		return m.DetectTopicStanceFunc(ctx, message)
	}
	return llm.TopicStance{Topic: "general", Stance: "neutral"}, nil
}

// memStore keeps conversations and messages in memory and implements both
// repository interfaces.
type memStore struct {
	mu     sync.Mutex
	convs  map[string]*conversation.Conversation
	byID   map[uint]*conversation.Conversation
	msgs   []conversation.Message
	nextID uint

	AppendErr      error
	CreateErr      error
	FindByPublicFn func(publicID string) (*conversation.Conversation, error)
}

func newMemStore() *memStore {
	return &memStore{
		convs: make(map[string]*conversation.Conversation),
		byID:  make(map[uint]*conversation.Conversation),
	}
}

func (s *memStore) Create(ctx context.Context, conv *conversation.Conversation) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	conv.ID = s.nextID
	conv.CreatedAt = time.Now().UTC()
	conv.UpdatedAt = conv.CreatedAt
	s.convs[conv.PublicID] = conv
	s.byID[conv.ID] = conv
	return nil
}

func (s *memStore) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	if s.FindByPublicFn != nil {
		return s.FindByPublicFn(publicID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.convs[publicID]; ok {
		return conv, nil
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		"conversation_id not found or invalid", nil, "test-not-found")
}

func (s *memStore) Append(ctx context.Context, msg *conversation.Message) error {
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg.ID = s.nextID
	msg.CreatedAt = time.Now().UTC()
	s.msgs = append(s.msgs, *msg)
	if conv, ok := s.byID[msg.ConversationID]; ok {
		if msg.Role == conversation.RoleAssistant {
			conv.AssistantMessageCount++
		} else {
			conv.UserMessageCount++
		}
		conv.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *memStore) ListByConversationID(ctx context.Context, conversationID uint) ([]conversation.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []conversation.Message
	for _, m := range s.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func newTestService(store *memStore, provider llm.Provider) chat.Service {
	log := zerolog.Nop()
	resolver := chat.NewResolver(store, provider, "gpt-3.5-turbo", log)
	return chat.NewService(resolver, store, provider, chat.Config{MaxUserMessages: 5, MaxAssistantMessages: 5}, log)
}

func TestHandleTurnNewConversation(t *testing.T) {
	store := newMemStore()
	var gotSystem string
	provider := &MockProvider{
		DetectTopicStanceFunc: func(ctx context.Context, message string) (llm.TopicStance, error) {
			return llm.TopicStance{Topic: "energia nuclear", Stance: "a favor"}, nil
		},
		CompleteFunc: func(ctx context.Context, system string, history []conversation.Turn) (string, error) {
			gotSystem = system
			return "No estoy de acuerdo.", nil
		},
	}
	svc := newTestService(store, provider)

	result, err := svc.HandleTurn(context.Background(), nil, "La energia nuclear es el futuro")
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}

	if _, err := uuid.Parse(result.ConversationID); err != nil {
		t.Errorf("ConversationID %q is not a UUID", result.ConversationID)
	}
	if result.Engine != "gpt-3.5-turbo" {
		t.Errorf("Engine = %q, want %q", result.Engine, "gpt-3.5-turbo")
	}
	if result.Fallback {
		t.Error("Result.Fallback = true, want false on a successful model call")
	}
	if result.Topic != "energia nuclear" || result.Stance != "a favor" {
		t.Errorf("topic/stance = %q/%q, want detected values", result.Topic, result.Stance)
	}
	if len(result.History) != 2 {
		t.Fatalf("len(History) = %d, want 2", len(result.History))
	}
	if result.History[0].Role != conversation.RoleUser || result.History[1].Role != conversation.RoleAssistant {
		t.Errorf("history roles = %v/%v, want user/assistant", result.History[0].Role, result.History[1].Role)
	}
	if result.History[1].Message != "No estoy de acuerdo." {
		t.Errorf("assistant reply = %q", result.History[1].Message)
	}
	if !strings.Contains(gotSystem, "energia nuclear") || !strings.Contains(gotSystem, "a favor") {
		t.Errorf("system instruction missing topic/stance: %q", gotSystem)
	}

	conv := store.convs[result.ConversationID]
	if conv == nil {
		t.Fatal("conversation was not persisted")
	}
	if conv.UserMessageCount != 1 || conv.AssistantMessageCount != 1 {
		t.Errorf("counters = %d/%d, want 1/1", conv.UserMessageCount, conv.AssistantMessageCount)
	}
}

func TestHandleTurnFallbackOnModelError(t *testing.T) {
	store := newMemStore()
	provider := &MockProvider{
		CompleteFunc: func(ctx context.Context, system string, history []conversation.Turn) (string, error) {
			return "", fmt.Errorf("connection refused")
		},
	}
	svc := newTestService(store, provider)

	result, err := svc.HandleTurn(context.Background(), nil, "hola")
	if err != nil {
		t.Fatalf("HandleTurn() error = %v, model failures must not fail the turn", err)
	}

	if !result.Fallback {
		t.Error("Result.Fallback = false, want true on model error")
	}
	last := result.History[len(result.History)-1]
	if last.Role != conversation.RoleAssistant || last.Message != chat.FallbackReply {
		t.Errorf("last turn = %+v, want persisted fallback reply", last)
	}

	// The fallback must be stored, not just returned.
	stored := store.msgs[len(store.msgs)-1]
	if stored.Role != conversation.RoleAssistant || stored.Content != chat.FallbackReply {
		t.Errorf("stored assistant message = %+v, want fallback reply", stored)
	}

	conv := store.convs[result.ConversationID]
	if conv.UserMessageCount != 1 || conv.AssistantMessageCount != 1 {
		t.Errorf("counters = %d/%d, want 1/1 even on fallback", conv.UserMessageCount, conv.AssistantMessageCount)
	}
}

func TestHandleTurnCounterConsistency(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &MockProvider{})

	var convID *string
	const turns = 3
	for i := 1; i <= turns; i++ {
		result, err := svc.HandleTurn(context.Background(), convID, fmt.Sprintf("Mensaje %d", i))
		if err != nil {
			t.Fatalf("HandleTurn() turn %d error = %v", i, err)
		}
		id := result.ConversationID
		convID = &id
	}

	conv := store.convs[*convID]
	if conv.UserMessageCount != turns || conv.AssistantMessageCount != turns {
		t.Errorf("counters = %d/%d, want %d/%d", conv.UserMessageCount, conv.AssistantMessageCount, turns, turns)
	}
	if len(store.msgs) != 2*turns {
		t.Fatalf("stored messages = %d, want %d", len(store.msgs), 2*turns)
	}
	for i, msg := range store.msgs {
		want := conversation.RoleUser
		if i%2 == 1 {
			want = conversation.RoleAssistant
		}
		if msg.Role != want {
			t.Errorf("message %d role = %v, want %v", i, msg.Role, want)
		}
	}
}

func TestHandleTurnTrimsResponse(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &MockProvider{})

	var convID *string
	for i := 1; i <= 7; i++ {
		result, err := svc.HandleTurn(context.Background(), convID, fmt.Sprintf("Mensaje %d", i))
		if err != nil {
			t.Fatalf("HandleTurn() turn %d error = %v", i, err)
		}
		id := result.ConversationID
		convID = &id

		if i == 7 {
			if len(result.History) != 10 {
				t.Fatalf("len(History) = %d, want 10", len(result.History))
			}
			if result.History[0].Message != "Mensaje 3" {
				t.Errorf("oldest retained user turn = %q, want %q", result.History[0].Message, "Mensaje 3")
			}
		}
	}
}

func TestHandleTurnUnknownConversation(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &MockProvider{})

	id := uuid.NewString()
	_, err := svc.HandleTurn(context.Background(), &id, "hola")
	if err == nil {
		t.Fatal("HandleTurn() expected error for unknown conversation")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("error type = %v, want NOT_FOUND", err)
	}
	if len(store.msgs) != 0 {
		t.Errorf("no messages should be stored, got %d", len(store.msgs))
	}
}

func TestHandleTurnStorageFault(t *testing.T) {
	store := newMemStore()
	store.AppendErr = platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError, "failed to store message", fmt.Errorf("connection reset"), "test-db-error")
	svc := newTestService(store, &MockProvider{})

	_, err := svc.HandleTurn(context.Background(), nil, "hola")
	if err == nil {
		t.Fatal("HandleTurn() expected error on storage fault")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabaseError) {
		t.Errorf("error type = %v, want DATABASE_ERROR", err)
	}
}

package conversation

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Role
		wantErr bool
	}{
		{name: "user", raw: "user", want: RoleUser},
		{name: "assistant", raw: "assistant", want: RoleAssistant},
		{name: "system is rejected", raw: "system", wantErr: true},
		{name: "empty is rejected", raw: "", wantErr: true},
		{name: "case sensitive", raw: "User", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRole(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewMessageRejectsInvalidRole(t *testing.T) {
	if _, err := NewMessage(1, Role("system"), "hola"); err == nil {
		t.Fatal("NewMessage() expected error for role outside the closed set")
	}
}

func TestNewMessageAssignsPublicID(t *testing.T) {
	msg, err := NewMessage(7, RoleUser, "hola")
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}
	if msg.PublicID == "" {
		t.Error("NewMessage() left PublicID empty")
	}
	if msg.ConversationID != 7 {
		t.Errorf("ConversationID = %d, want 7", msg.ConversationID)
	}
}

func TestNewConversationDefaults(t *testing.T) {
	conv := NewConversation("abc", "", "", "gpt-3.5-turbo")
	if conv.Topic != DefaultTopic {
		t.Errorf("Topic = %q, want %q", conv.Topic, DefaultTopic)
	}
	if conv.Stance != DefaultStance {
		t.Errorf("Stance = %q, want %q", conv.Stance, DefaultStance)
	}
	if conv.UserMessageCount != 0 || conv.AssistantMessageCount != 0 {
		t.Error("NewConversation() counters should start at zero")
	}
}

package chat

import (
	"fmt"
	"testing"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/conversation"
)

func userTurn(msg string) conversation.Turn {
	return conversation.Turn{Role: conversation.RoleUser, Message: msg}
}

func assistantTurn(msg string) conversation.Turn {
	return conversation.Turn{Role: conversation.RoleAssistant, Message: msg}
}

// alternatingHistory builds n full turns: "Mensaje 1", reply, "Mensaje 2", ...
func alternatingHistory(n int) []conversation.Turn {
	history := make([]conversation.Turn, 0, 2*n)
	for i := 1; i <= n; i++ {
		history = append(history, userTurn(fmt.Sprintf("Mensaje %d", i)))
		history = append(history, assistantTurn(fmt.Sprintf("Respuesta %d", i)))
	}
	return history
}

func TestTrimBound(t *testing.T) {
	history := alternatingHistory(20)
	trimmed := Trim(history, 5, 5)
	if len(trimmed) != 10 {
		t.Fatalf("len(trimmed) = %d, want 10", len(trimmed))
	}
}

func TestTrimKeepsRecencyPerRole(t *testing.T) {
	trimmed := Trim(alternatingHistory(10), 5, 5)

	var firstUser string
	for _, turn := range trimmed {
		if turn.Role == conversation.RoleUser {
			firstUser = turn.Message
			break
		}
	}
	if firstUser != "Mensaje 6" {
		t.Errorf("oldest retained user turn = %q, want %q", firstUser, "Mensaje 6")
	}

	trimmed = Trim(alternatingHistory(12), 5, 5)
	firstUser = ""
	for _, turn := range trimmed {
		if turn.Role == conversation.RoleUser {
			firstUser = turn.Message
			break
		}
	}
	if firstUser != "Mensaje 8" {
		t.Errorf("oldest retained user turn after 12 turns = %q, want %q", firstUser, "Mensaje 8")
	}
}

func TestTrimPreservesChronologicalOrder(t *testing.T) {
	history := alternatingHistory(8)
	trimmed := Trim(history, 5, 5)

	// Every retained turn must appear in the same relative order as in the
	// source history.
	cursor := 0
	for _, turn := range trimmed {
		found := false
		for ; cursor < len(history); cursor++ {
			if history[cursor] == turn {
				found = true
				cursor++
				break
			}
		}
		if !found {
			t.Fatalf("turn %+v out of order relative to source history", turn)
		}
	}
}

func TestTrimIdempotent(t *testing.T) {
	once := Trim(alternatingHistory(9), 5, 5)
	twice := Trim(once, 5, 5)
	if len(once) != len(twice) {
		t.Fatalf("second trim changed length: %d != %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("second trim changed turn %d: %+v != %+v", i, once[i], twice[i])
		}
	}
}

func TestTrimShortHistoryUntouched(t *testing.T) {
	history := alternatingHistory(3)
	trimmed := Trim(history, 5, 5)
	if len(trimmed) != len(history) {
		t.Fatalf("len(trimmed) = %d, want %d", len(trimmed), len(history))
	}
	for i := range history {
		if trimmed[i] != history[i] {
			t.Errorf("turn %d changed: %+v != %+v", i, trimmed[i], history[i])
		}
	}
}

func TestTrimEmptyHistory(t *testing.T) {
	if got := Trim(nil, 5, 5); len(got) != 0 {
		t.Errorf("Trim(nil) = %v, want empty", got)
	}
}

func TestTrimZeroBoundDropsRole(t *testing.T) {
	history := alternatingHistory(3)
	trimmed := Trim(history, 0, 5)

	if len(trimmed) != 3 {
		t.Fatalf("len(trimmed) = %d, want 3", len(trimmed))
	}
	for i, turn := range trimmed {
		if turn.Role != conversation.RoleAssistant {
			t.Errorf("turn %d role = %v, want assistant only", i, turn.Role)
		}
	}
}

func TestTrimDuplicateContentIsPositional(t *testing.T) {
	history := []conversation.Turn{
		userTurn("hola"), assistantTurn("r1"),
		userTurn("hola"), assistantTurn("r2"),
		userTurn("hola"), assistantTurn("r3"),
	}
	trimmed := Trim(history, 2, 3)

	want := []conversation.Turn{
		assistantTurn("r1"),
		userTurn("hola"), assistantTurn("r2"),
		userTurn("hola"), assistantTurn("r3"),
	}
	if len(trimmed) != len(want) {
		t.Fatalf("len(trimmed) = %d, want %d", len(trimmed), len(want))
	}
	for i := range want {
		if trimmed[i] != want[i] {
			t.Errorf("turn %d = %+v, want %+v", i, trimmed[i], want[i])
		}
	}
}

func TestTrimUnbalancedRoles(t *testing.T) {
	history := []conversation.Turn{
		userTurn("u1"), userTurn("u2"), userTurn("u3"),
		assistantTurn("a1"),
		userTurn("u4"),
	}
	trimmed := Trim(history, 2, 5)

	want := []conversation.Turn{userTurn("u3"), assistantTurn("a1"), userTurn("u4")}
	if len(trimmed) != len(want) {
		t.Fatalf("len(trimmed) = %d, want %d", len(trimmed), len(want))
	}
	for i := range want {
		if trimmed[i] != want[i] {
			t.Errorf("turn %d = %+v, want %+v", i, trimmed[i], want[i])
		}
	}
}

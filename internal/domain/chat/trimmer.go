package chat

import "github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/conversation"

// Default per-role history limits.
const (
	DefaultMaxUserMessages      = 5
	DefaultMaxAssistantMessages = 5
)

// Trim keeps the last maxUser user turns and last maxAssistant assistant
// turns, selected by position per role, and returns them in the original
// chronological order. Trimming an already trimmed history is a no-op.
func Trim(history []conversation.Turn, maxUser, maxAssistant int) []conversation.Turn {
	if maxUser < 0 {
		maxUser = 0
	}
	if maxAssistant < 0 {
		maxAssistant = 0
	}

	userIndices := make([]int, 0, len(history))
	assistantIndices := make([]int, 0, len(history))
	for i, turn := range history {
		switch turn.Role {
		case conversation.RoleUser:
			userIndices = append(userIndices, i)
		case conversation.RoleAssistant:
			assistantIndices = append(assistantIndices, i)
		}
	}

	if len(userIndices) > maxUser {
		userIndices = userIndices[len(userIndices)-maxUser:]
	}
	if len(assistantIndices) > maxAssistant {
		assistantIndices = assistantIndices[len(assistantIndices)-maxAssistant:]
	}

	allowed := make(map[int]struct{}, len(userIndices)+len(assistantIndices))
	for _, i := range userIndices {
		allowed[i] = struct{}{}
	}
	for _, i := range assistantIndices {
		allowed[i] = struct{}{}
	}

	trimmed := make([]conversation.Turn, 0, len(allowed))
	for i, turn := range history {
		if _, ok := allowed[i]; ok {
			trimmed = append(trimmed, turn)
		}
	}
	return trimmed
}

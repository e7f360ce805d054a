package chat

import "time"

// Message roles. Ordering of messages is insertion order and forms the
// context window sent to the model.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a persisted conversation turn belonging to exactly one session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Turn is the in-memory form of a conversation turn, used for anonymous
// history and prompt construction.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

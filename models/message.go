package models

// Role tags who authored a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a session's conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Answer is what a reasoning engine returns for a single query. An empty
// Response means the engine produced no answer.
type Answer struct {
	Response string
}

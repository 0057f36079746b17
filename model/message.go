package model

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn of conversation history
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

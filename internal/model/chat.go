package model

import "time"

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is one conversation's rolling history. Sessions live in Redis
// with a TTL and a bounded message count, so an abandoned conversation
// expires instead of accumulating forever.
type ChatSession struct {
	History   []ChatMessage `json:"history"`
	UserRole  string        `json:"userRole"`
	CreatedAt time.Time     `json:"createdAt"`
}

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	UserRole  string `json:"userRole"`
}

type ChatResponse struct {
	Response  string    `json:"response"`
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
}

type QuickReply struct {
	Label string `json:"label"`
	Query string `json:"query"`
}

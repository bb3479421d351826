package model

import "time"

type ConversationMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

type Conversation struct {
	IP                string                `json:"ip"`
	Messages          []ConversationMessage `json:"messages"`
	LastActivity      time.Time             `json:"lastActivity"`
	TotalMessageCount int                   `json:"totalMessageCount"`
}

// MessageCount is the per-day quota counter, Date is a UTC calendar day (YYYY-MM-DD).
type MessageCount struct {
	IP    string `json:"ip"`
	Date  string `json:"date"`
	Count int    `json:"count"`
}

package dto

import "github.com/lac-hong-legacy/portfolio_api/model"

type ChatRequest struct {
	Message string `json:"message" validate:"required,not_blank,max=4000"`
}

func (r ChatRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ChunkSource struct {
	ChunkID    int    `json:"chunkId"`
	Source     string `json:"source"`
	PageNumber int    `json:"pageNumber"`
}

type RAGMetadata struct {
	ChunksRetrieved int           `json:"chunksRetrieved"`
	Sources         []ChunkSource `json:"sources"`
	Confidence      float64       `json:"confidence"`
}

type ChatResponse struct {
	Response    string      `json:"response"`
	Remaining   int         `json:"remaining"`
	Limit       int         `json:"limit"`
	RAGMetadata RAGMetadata `json:"ragMetadata"`
}

type QuotaStatus struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	Limit     int  `json:"limit"`
}

type QuotaExceededResponse struct {
	LimitExceeded bool `json:"limitExceeded"`
	Remaining     int  `json:"remaining"`
	Limit         int  `json:"limit"`
}

type AppendResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ChatHistoryResponse struct {
	Success  bool                        `json:"success"`
	Messages []model.ConversationMessage `json:"messages"`
	Count    int                         `json:"count"`
}

type ConversationStats struct {
	TotalConversations int `json:"totalConversations"`
	TotalMessages      int `json:"totalMessages"`
	ActiveToday        int `json:"activeToday"`
}

package dto

import "time"

type RAGStatus struct {
	Initialized   bool      `json:"initialized"`
	DocumentCount int       `json:"documentCount"`
	LastUpdated   time.Time `json:"lastUpdated"`
	Source        string    `json:"source"`
}

type RAGStatusResponse struct {
	Success bool      `json:"success"`
	RAG     RAGStatus `json:"rag"`
}

// RefreshRequest is the optional shared-secret body of privileged refresh calls.
type RefreshRequest struct {
	Password string `json:"password" validate:"max=256"`
}

type ResumeReloadResult struct {
	Source     string `json:"source"`
	TextLength int    `json:"textLength"`
	Preview    string `json:"preview"`
	Chunks     int    `json:"chunks"`
}

type RefreshResumeResponse struct {
	Success bool               `json:"success"`
	Resume  ResumeReloadResult `json:"resume"`
	RAG     RAGStatus          `json:"rag"`
}

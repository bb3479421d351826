package dto

type AdminLoginRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

func (r AdminLoginRequest) Validate() error {
	return GetValidator().Struct(r)
}

type MemoryStats struct {
	HeapAllocMB uint64 `json:"heapAllocMb"`
	HeapSysMB   uint64 `json:"heapSysMb"`
	SysMB       uint64 `json:"sysMb"`
	NumGC       uint32 `json:"numGc"`
	Goroutines  int    `json:"goroutines"`
}

type StatusResponse struct {
	Success       bool              `json:"success"`
	Environment   map[string]string `json:"environment"`
	Missing       []string          `json:"missing"`
	Critical      string            `json:"critical,omitempty"`
	Memory        MemoryStats       `json:"memory"`
	UptimeSeconds int64             `json:"uptimeSeconds"`
	Conversations ConversationStats `json:"conversations"`
	RAG           RAGStatus         `json:"rag"`
}

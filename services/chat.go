package services

import (
	"context"
	"fmt"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/model"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	log "github.com/sirupsen/logrus"
)

type chunkRetriever interface {
	Search(ctx context.Context, query string, k int) []model.RAGChunk
}

// ChatService answers one resume question: quota, retrieval, prompt, completion, then both
// turns are persisted.
type ChatService struct {
	appContext.DefaultService

	conversations *ConversationService
	retriever     chunkRetriever
	completer     TextCompleter
	monitoring    *MonitoringService

	profile PromptProfile
	topK    int
}

const CHAT_SVC = "chat_svc"

func (svc ChatService) Id() string {
	return CHAT_SVC
}

func (svc *ChatService) Configure(ctx *appContext.Context) error {
	svc.profile = PromptProfile{
		OwnerName:    shared.GetEnv("PORTFOLIO_OWNER_NAME", "Jordan Avery"),
		ContactEmail: shared.GetEnv("PORTFOLIO_CONTACT_EMAIL", "jordan.avery@example.com"),
	}
	svc.topK = shared.GetEnvInt("RAG_TOP_K", defaultTopK)
	return svc.DefaultService.Configure(ctx)
}

func (svc *ChatService) Start() error {
	svc.conversations = svc.Service(CONVERSATION_SVC).(*ConversationService)
	svc.retriever = svc.Service(RETRIEVER_SVC).(*RetrieverService)
	svc.completer = svc.Service(COMPLETION_SVC).(*CompletionService)
	if monitoringSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoring = monitoringSvc
	}
	return nil
}

func (svc *ChatService) Respond(ctx context.Context, ip, message string) (*dto.ChatResponse, error) {
	quota := svc.conversations.CheckQuota(ctx, ip)
	if !quota.Allowed {
		svc.monitoring.RecordChat("quota_exceeded", 0)
		return nil, quotaExceededError(quota)
	}

	if !svc.completer.Configured() {
		svc.monitoring.RecordChat("unavailable", 0)
		return nil, shared.NewServiceUnavailableError(ErrCompletionUnavailable, "Chat service is not configured. Either GEMINI_API_KEY or GOOGLE_API_KEY is required.")
	}

	history := svc.conversations.History(ctx, ip)
	chunks := svc.retriever.Search(ctx, message, svc.topK)
	prompt := BuildPrompt(svc.profile, message, chunks, history)

	started := time.Now()
	reply, err := svc.completer.Complete(ctx, prompt)
	elapsed := time.Since(started)

	outcome := "answered"
	if err != nil {
		kind := ClassifyFailure(err)
		log.WithError(err).WithFields(log.Fields{"ip": ip, "fallback": kind}).Error("Completion failed, sending fallback reply")
		reply = FallbackReply(svc.profile, kind)
		outcome = "fallback_" + string(kind)
	}
	svc.monitoring.RecordChat(outcome, elapsed)

	userTurn := svc.conversations.NewMessage(shared.RoleUser, message)
	if result := svc.conversations.AppendMessage(ctx, ip, userTurn); !result.Success {
		log.WithFields(log.Fields{"ip": ip, "reason": result.Error}).Warn("Failed to save user message")
	}

	assistantTurn := svc.conversations.NewMessage(shared.RoleAssistant, reply)
	if result := svc.conversations.AppendMessage(ctx, ip, assistantTurn); !result.Success {
		log.WithFields(log.Fields{"ip": ip, "reason": result.Error}).Warn("Failed to save assistant message")
	}

	after := svc.conversations.CheckQuota(ctx, ip)

	return &dto.ChatResponse{
		Response:    reply,
		Remaining:   after.Remaining,
		Limit:       after.Limit,
		RAGMetadata: ragMetadata(chunks),
	}, nil
}

func ragMetadata(chunks []model.RAGChunk) dto.RAGMetadata {
	sources := make([]dto.ChunkSource, len(chunks))
	for i, chunk := range chunks {
		sources[i] = dto.ChunkSource{
			ChunkID:    chunk.Metadata.ChunkID,
			Source:     chunk.Metadata.Source,
			PageNumber: chunk.Metadata.PageNumber,
		}
	}

	confidence := 0.3
	if len(chunks) > 0 {
		confidence = 0.9
	}

	return dto.RAGMetadata{
		ChunksRetrieved: len(chunks),
		Sources:         sources,
		Confidence:      confidence,
	}
}

func quotaExceededError(quota dto.QuotaStatus) error {
	used := quota.Limit - quota.Remaining
	message := fmt.Sprintf("Daily message limit exceeded. You have used %d/%d messages today. Please try again tomorrow.", used, quota.Limit)
	return shared.NewTooManyRequestsError(message, dto.QuotaExceededResponse{
		LimitExceeded: true,
		Remaining:     quota.Remaining,
		Limit:         quota.Limit,
	})
}

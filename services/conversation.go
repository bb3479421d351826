package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/model"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	log "github.com/sirupsen/logrus"
)

type conversationsDocument struct {
	Conversations map[string]model.Conversation `json:"conversations"`
	MessageCounts map[string]model.MessageCount `json:"messageCounts"`
}

func (d *conversationsDocument) ensure() {
	if d.Conversations == nil {
		d.Conversations = make(map[string]model.Conversation)
	}
	if d.MessageCounts == nil {
		d.MessageCounts = make(map[string]model.MessageCount)
	}
}

// ConversationService keeps one conversation per address plus a per-day message counter.
// Counters are keyed by address and UTC day and are independent of conversation retention,
// so clearing a conversation never refunds quota.
type ConversationService struct {
	appContext.DefaultService

	store documentStore

	dailyLimit          int
	retention           time.Duration
	countAssistantTurns bool
	now                 func() time.Time

	mu sync.Mutex
}

const CONVERSATION_SVC = "conversation_svc"

func (svc ConversationService) Id() string {
	return CONVERSATION_SVC
}

func (svc *ConversationService) Configure(ctx *appContext.Context) error {
	svc.init()
	svc.dailyLimit = shared.GetEnvInt("CHAT_DAILY_LIMIT", svc.dailyLimit)
	svc.retention = shared.GetEnvDuration("CHAT_RETENTION", svc.retention)
	svc.countAssistantTurns = shared.GetEnvBool("CHAT_COUNT_ASSISTANT_TURNS", svc.countAssistantTurns)
	return svc.DefaultService.Configure(ctx)
}

func (svc *ConversationService) init() {
	svc.dailyLimit = 30
	svc.retention = 24 * time.Hour
	svc.countAssistantTurns = true
	svc.now = time.Now
}

func (svc *ConversationService) Start() error {
	svc.store = svc.Service(STORE_SVC).(*StoreService)
	return nil
}

func (svc *ConversationService) load(ctx context.Context) *conversationsDocument {
	doc := &conversationsDocument{}
	if err := svc.store.Load(ctx, shared.DocumentConversations, doc); err != nil {
		log.WithError(err).Error("Failed to read conversations, treating as empty")
		doc = &conversationsDocument{}
	}
	doc.ensure()
	return doc
}

func (svc *ConversationService) today(now time.Time) string {
	return now.UTC().Format(shared.DateLayout)
}

func (svc *ConversationService) expired(c model.Conversation, now time.Time) bool {
	return now.Sub(c.LastActivity) > svc.retention
}

func (svc *ConversationService) quota(doc *conversationsDocument, ip string, now time.Time) dto.QuotaStatus {
	used := 0
	if count, ok := doc.MessageCounts[ip]; ok && count.Date == svc.today(now) {
		used = count.Count
	}

	remaining := svc.dailyLimit - used
	if remaining < 0 {
		remaining = 0
	}

	return dto.QuotaStatus{
		Allowed:   used < svc.dailyLimit,
		Remaining: remaining,
		Limit:     svc.dailyLimit,
	}
}

func (svc *ConversationService) CheckQuota(ctx context.Context, ip string) dto.QuotaStatus {
	return svc.quota(svc.load(ctx), ip, svc.now())
}

func (svc *ConversationService) counts(role string) bool {
	return role == shared.RoleUser || svc.countAssistantTurns
}

// NewMessage stamps a message with a fresh id and the current time.
func (svc *ConversationService) NewMessage(role, content string) model.ConversationMessage {
	return model.ConversationMessage{
		ID:        uuid.NewString(),
		Content:   content,
		Role:      role,
		Timestamp: svc.now().UTC(),
	}
}

// AppendMessage re-checks the quota for counted roles and fails closed without writing
// when it is exhausted. Stale conversations and counters are pruned on every write.
func (svc *ConversationService) AppendMessage(ctx context.Context, ip string, msg model.ConversationMessage) dto.AppendResult {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	now := svc.now()
	doc := svc.load(ctx)

	counted := svc.counts(msg.Role)
	if counted && !svc.quota(doc, ip, now).Allowed {
		return dto.AppendResult{
			Success: false,
			Error:   fmt.Sprintf("Daily message limit of %d exceeded. Please try again tomorrow.", svc.dailyLimit),
		}
	}

	svc.prune(doc, now)

	conversation, ok := doc.Conversations[ip]
	if !ok {
		conversation = model.Conversation{IP: ip}
	}
	conversation.Messages = append(conversation.Messages, msg)
	conversation.LastActivity = now.UTC()
	conversation.TotalMessageCount++
	doc.Conversations[ip] = conversation

	if counted {
		today := svc.today(now)
		count := doc.MessageCounts[ip]
		if count.Date != today {
			count = model.MessageCount{IP: ip, Date: today}
		}
		count.Count++
		doc.MessageCounts[ip] = count
	}

	if err := svc.store.Save(ctx, shared.DocumentConversations, doc); err != nil {
		log.WithError(err).WithField("ip", ip).Error("Failed to save message")
		return dto.AppendResult{Success: false, Error: "Failed to save message"}
	}

	return dto.AppendResult{Success: true}
}

func (svc *ConversationService) prune(doc *conversationsDocument, now time.Time) {
	for ip, conversation := range doc.Conversations {
		if svc.expired(conversation, now) {
			delete(doc.Conversations, ip)
		}
	}

	today := svc.today(now)
	for ip, count := range doc.MessageCounts {
		if count.Date != today {
			delete(doc.MessageCounts, ip)
		}
	}
}

// History returns the live conversation for ip, expired ones read as empty.
func (svc *ConversationService) History(ctx context.Context, ip string) []model.ConversationMessage {
	doc := svc.load(ctx)

	conversation, ok := doc.Conversations[ip]
	if !ok || svc.expired(conversation, svc.now()) {
		return []model.ConversationMessage{}
	}
	return conversation.Messages
}

// Clear removes the conversation for ip. Message counters are left alone.
func (svc *ConversationService) Clear(ctx context.Context, ip string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	doc := svc.load(ctx)
	if _, ok := doc.Conversations[ip]; !ok {
		return nil
	}

	delete(doc.Conversations, ip)
	if err := svc.store.Save(ctx, shared.DocumentConversations, doc); err != nil {
		return shared.NewInternalError(err, "Failed to clear conversation")
	}

	log.WithField("ip", ip).Info("Conversation cleared")
	return nil
}

func (svc *ConversationService) Stats(ctx context.Context) dto.ConversationStats {
	now := svc.now()
	today := svc.today(now)
	doc := svc.load(ctx)

	var stats dto.ConversationStats
	for _, conversation := range doc.Conversations {
		if svc.expired(conversation, now) {
			continue
		}
		stats.TotalConversations++
		stats.TotalMessages += len(conversation.Messages)

		for _, msg := range conversation.Messages {
			if msg.Timestamp.UTC().Format(shared.DateLayout) == today {
				stats.ActiveToday++
				break
			}
		}
	}
	return stats
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/lac-hong-legacy/portfolio_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConversations(t *testing.T, clock *testClock) *ConversationService {
	t.Helper()

	svc := &ConversationService{}
	svc.init()
	svc.store = newTestStore(t)
	svc.now = clock.Now
	return svc
}

func TestConversation_QuotaFailsClosed(t *testing.T) {
	ctx := context.Background()
	svc := newTestConversations(t, newTestClock())
	svc.dailyLimit = 3

	for i := 0; i < 3; i++ {
		result := svc.AppendMessage(ctx, "203.0.113.7", svc.NewMessage(shared.RoleUser, "hello"))
		require.True(t, result.Success)
	}

	result := svc.AppendMessage(ctx, "203.0.113.7", svc.NewMessage(shared.RoleUser, "one more"))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Daily message limit of 3 exceeded")

	quota := svc.CheckQuota(ctx, "203.0.113.7")
	assert.False(t, quota.Allowed)
	assert.Equal(t, 0, quota.Remaining)
	assert.Equal(t, 3, quota.Limit)
	assert.Len(t, svc.History(ctx, "203.0.113.7"), 3)

	other := svc.CheckQuota(ctx, "198.51.100.2")
	assert.True(t, other.Allowed)
	assert.Equal(t, 3, other.Remaining)
}

func TestConversation_AssistantTurnCounting(t *testing.T) {
	ctx := context.Background()

	counted := newTestConversations(t, newTestClock())
	counted.AppendMessage(ctx, "ip", counted.NewMessage(shared.RoleUser, "q"))
	counted.AppendMessage(ctx, "ip", counted.NewMessage(shared.RoleAssistant, "a"))
	assert.Equal(t, 28, counted.CheckQuota(ctx, "ip").Remaining)

	uncounted := newTestConversations(t, newTestClock())
	uncounted.countAssistantTurns = false
	uncounted.AppendMessage(ctx, "ip", uncounted.NewMessage(shared.RoleUser, "q"))
	uncounted.AppendMessage(ctx, "ip", uncounted.NewMessage(shared.RoleAssistant, "a"))
	assert.Equal(t, 29, uncounted.CheckQuota(ctx, "ip").Remaining)
}

func TestConversation_ClearKeepsCounter(t *testing.T) {
	ctx := context.Background()
	svc := newTestConversations(t, newTestClock())

	svc.AppendMessage(ctx, "ip", svc.NewMessage(shared.RoleUser, "q"))
	svc.AppendMessage(ctx, "ip", svc.NewMessage(shared.RoleAssistant, "a"))

	require.NoError(t, svc.Clear(ctx, "ip"))
	assert.Empty(t, svc.History(ctx, "ip"))
	assert.Equal(t, 28, svc.CheckQuota(ctx, "ip").Remaining)

	require.NoError(t, svc.Clear(ctx, "never-seen"))
}

func TestConversation_RetentionAndDayRollover(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2024, time.May, 14, 23, 58, 0, 0, time.UTC)}
	svc := newTestConversations(t, clock)
	svc.dailyLimit = 2

	svc.AppendMessage(ctx, "ip", svc.NewMessage(shared.RoleUser, "late question"))
	svc.AppendMessage(ctx, "ip", svc.NewMessage(shared.RoleAssistant, "late answer"))
	require.False(t, svc.CheckQuota(ctx, "ip").Allowed)

	clock.Advance(3 * time.Minute)
	quota := svc.CheckQuota(ctx, "ip")
	assert.True(t, quota.Allowed, "a new UTC day resets the counter")
	assert.Equal(t, 2, quota.Remaining)
	assert.Len(t, svc.History(ctx, "ip"), 2, "history outlives the day boundary")

	clock.Advance(24 * time.Hour)
	assert.Empty(t, svc.History(ctx, "ip"))
	assert.Equal(t, 0, svc.Stats(ctx).TotalConversations)
}

func TestConversation_PrunesOnWrite(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	svc := newTestConversations(t, clock)

	svc.AppendMessage(ctx, "stale", svc.NewMessage(shared.RoleUser, "old"))
	clock.Advance(25 * time.Hour)
	svc.AppendMessage(ctx, "fresh", svc.NewMessage(shared.RoleUser, "new"))

	doc := svc.load(ctx)
	assert.NotContains(t, doc.Conversations, "stale")
	assert.NotContains(t, doc.MessageCounts, "stale")
	assert.Contains(t, doc.Conversations, "fresh")
	assert.Equal(t, 1, doc.Conversations["fresh"].TotalMessageCount)
}

func TestConversation_Stats(t *testing.T) {
	ctx := context.Background()
	svc := newTestConversations(t, newTestClock())

	svc.AppendMessage(ctx, "a", svc.NewMessage(shared.RoleUser, "q1"))
	svc.AppendMessage(ctx, "a", svc.NewMessage(shared.RoleAssistant, "a1"))
	svc.AppendMessage(ctx, "b", svc.NewMessage(shared.RoleUser, "q2"))

	stats := svc.Stats(ctx)
	assert.Equal(t, 2, stats.TotalConversations)
	assert.Equal(t, 3, stats.TotalMessages)
	assert.Equal(t, 2, stats.ActiveToday)
}

func TestConversation_NewMessage(t *testing.T) {
	clock := newTestClock()
	svc := newTestConversations(t, clock)

	first := svc.NewMessage(shared.RoleUser, "hi")
	second := svc.NewMessage(shared.RoleUser, "hi")

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, clock.Now(), first.Timestamp)
}

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/model"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVisitService struct {
	lastIP, lastUA, lastReferer string
}

func (f *fakeVisitService) LogVisit(_ context.Context, ip, userAgent, referer string) (*dto.LogVisitResponse, error) {
	f.lastIP, f.lastUA, f.lastReferer = ip, userAgent, referer
	return &dto.LogVisitResponse{Success: true, IsUniqueVisit: true, TotalVisits: 1, UniqueVisits: 1}, nil
}

func (f *fakeVisitService) Stats(context.Context) *dto.VisitStatsResponse {
	return &dto.VisitStatsResponse{Success: true, TotalVisits: 4, UniqueVisits: 2}
}

type fakeLoginGuard struct {
	blocked  bool
	password string
}

func (f *fakeLoginGuard) RecordFailedAttempt(_ context.Context, _, _, attemptedPassword string) (*dto.FailedLoginResponse, error) {
	if f.blocked {
		return nil, shared.NewTooManyRequestsError("Too many failed attempts. Access temporarily blocked.", dto.BlockedResponse{Blocked: true})
	}
	f.password = attemptedPassword
	return &dto.FailedLoginResponse{Success: true, AttemptsRemaining: 4}, nil
}

func (f *fakeLoginGuard) Stats(context.Context) *dto.FailedLoginStatsResponse {
	return &dto.FailedLoginStatsResponse{Success: true}
}

type fakeConversations struct {
	cleared []string
}

func (f *fakeConversations) CheckQuota(context.Context, string) dto.QuotaStatus {
	return dto.QuotaStatus{Allowed: true, Remaining: 29, Limit: 30}
}

func (f *fakeConversations) History(context.Context, string) []model.ConversationMessage {
	return []model.ConversationMessage{{ID: "1", Role: shared.RoleUser, Content: "hi"}}
}

func (f *fakeConversations) Clear(_ context.Context, ip string) error {
	f.cleared = append(f.cleared, ip)
	return nil
}

type fakeChat struct {
	err      error
	messages []string
}

func (f *fakeChat) Respond(_ context.Context, _, message string) (*dto.ChatResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.messages = append(f.messages, message)
	return &dto.ChatResponse{Response: "answer", Remaining: 28, Limit: 30}, nil
}

type fakeRetriever struct {
	refreshes int
}

func (f *fakeRetriever) Status() dto.RAGStatus {
	return dto.RAGStatus{Initialized: true, DocumentCount: 8, Source: "builtin_resume"}
}

func (f *fakeRetriever) Refresh(context.Context) (dto.RAGStatus, dto.ResumeReloadResult) {
	f.refreshes++
	return f.Status(), dto.ResumeReloadResult{Source: "builtin_resume", Chunks: 8}
}

type fakeAdmin struct {
	header, password string
}

func (f *fakeAdmin) Login(_ context.Context, _, _, password string) (*dto.TokenPair, error) {
	if password != "s3cret" {
		return nil, shared.NewUnauthorizedError(errors.New("invalid password"), "Invalid password")
	}
	return &dto.TokenPair{AccessToken: "token", ExpiresIn: 3600}, nil
}

func (f *fakeAdmin) AuthorizePrivileged(authHeader, password string) error {
	f.header, f.password = authHeader, password
	if authHeader == "" && password == "" {
		return shared.NewUnauthorizedError(errors.New("authentication required"), "Unauthorized")
	}
	return nil
}

func (f *fakeAdmin) SystemStatus(context.Context) *dto.StatusResponse {
	return &dto.StatusResponse{Success: true}
}

type testApp struct {
	app    *fiber.App
	visits *fakeVisitService
	guard  *fakeLoginGuard
	convs  *fakeConversations
	chat   *fakeChat
	rag    *fakeRetriever
	admin  *fakeAdmin
}

func newTestApp() *testApp {
	ta := &testApp{
		visits: &fakeVisitService{},
		guard:  &fakeLoginGuard{},
		convs:  &fakeConversations{},
		chat:   &fakeChat{},
		rag:    &fakeRetriever{},
		admin:  &fakeAdmin{},
	}

	app := fiber.New(fiber.Config{ErrorHandler: shared.ErrorHandler})

	visitHandler := NewVisitHandler(ta.visits)
	app.Post("/api/visits", visitHandler.LogVisit)
	app.Get("/api/visits", visitHandler.GetVisits)

	loginHandler := NewFailedLoginHandler(ta.guard)
	app.Post("/api/failed-logins", loginHandler.RecordFailedLogin)
	app.Get("/api/failed-logins", loginHandler.GetFailedLogins)

	chatHandler := NewChatHandler(ta.chat, ta.convs)
	app.Post("/api/chat-resume", chatHandler.ChatResume)
	app.Get("/api/message-count", chatHandler.GetMessageCount)
	app.Get("/api/chat-history", chatHandler.GetChatHistory)
	app.Post("/api/clear-conversation", chatHandler.ClearConversation)

	ragHandler := NewRAGHandler(ta.rag, ta.admin)
	app.Get("/api/rag-status", ragHandler.GetStatus)
	app.Post("/api/rag-status", ragHandler.Refresh)
	app.Post("/api/refresh-resume", ragHandler.RefreshResume)

	adminHandler := NewAdminHandler(ta.admin)
	app.Post("/api/admin/login", adminHandler.Login)
	app.Get("/api/status", adminHandler.GetStatus)

	ta.app = app
	return ta
}

func (ta *testApp) do(t *testing.T, method, path, body string, headers map[string]string) (*http.Response, shared.Response) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ta.app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded shared.Response
	require.NoError(t, shared.JSON().Unmarshal(raw, &decoded), string(raw))
	return resp, decoded
}

func TestVisitHandler(t *testing.T) {
	ta := newTestApp()

	resp, body := ta.do(t, fiber.MethodPost, "/api/visits", "", map[string]string{
		"X-Forwarded-For": "203.0.113.7",
		"User-Agent":      "Mozilla/5.0",
		"Referer":         "https://example.com",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Visit logged", body.Message)
	assert.Equal(t, "203.0.113.7", ta.visits.lastIP)
	assert.Equal(t, "Mozilla/5.0", ta.visits.lastUA)
	assert.Equal(t, "https://example.com", ta.visits.lastReferer)

	resp, _ = ta.do(t, fiber.MethodGet, "/api/visits", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestFailedLoginHandler(t *testing.T) {
	ta := newTestApp()

	resp, _ := ta.do(t, fiber.MethodPost, "/api/failed-logins", `{"attemptedPassword":"guess"}`, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "guess", ta.guard.password)

	resp, _ = ta.do(t, fiber.MethodPost, "/api/failed-logins", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "the body is optional")

	resp, body := ta.do(t, fiber.MethodPost, "/api/failed-logins", `{"attemptedPassword":"`+strings.Repeat("x", 300)+`"}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body.Message)

	ta.guard.blocked = true
	resp, body = ta.do(t, fiber.MethodPost, "/api/failed-logins", `{"attemptedPassword":"guess"}`, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["blocked"])
}

func TestChatHandler_ChatResume(t *testing.T) {
	ta := newTestApp()

	resp, body := ta.do(t, fiber.MethodPost, "/api/chat-resume", `{"message":"What do you build?"}`, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"What do you build?"}, ta.chat.messages)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "answer", data["response"])

	for _, payload := range []string{`{}`, `{"message":"   "}`} {
		resp, body = ta.do(t, fiber.MethodPost, "/api/chat-resume", payload, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, payload)
		assert.Equal(t, "Validation failed", body.Message)
	}

	resp, _ = ta.do(t, fiber.MethodPost, "/api/chat-resume", `{"message":`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestChatHandler_PropagatesServiceErrors(t *testing.T) {
	ta := newTestApp()

	ta.chat.err = shared.NewServiceUnavailableError(errors.New("no key"), "Chat service is not configured.")
	resp, _ := ta.do(t, fiber.MethodPost, "/api/chat-resume", `{"message":"hi"}`, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	ta.chat.err = shared.NewTooManyRequestsError("Daily message limit exceeded.", dto.QuotaExceededResponse{LimitExceeded: true, Limit: 30})
	resp, body := ta.do(t, fiber.MethodPost, "/api/chat-resume", `{"message":"hi"}`, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["limitExceeded"])
}

func TestChatHandler_QuotaHistoryClear(t *testing.T) {
	ta := newTestApp()
	headers := map[string]string{"X-Forwarded-For": "203.0.113.7"}

	resp, body := ta.do(t, fiber.MethodGet, "/api/message-count", "", headers)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["allowed"])

	resp, body = ta.do(t, fiber.MethodGet, "/api/chat-history", "", headers)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data, ok = body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, data["messages"], 1)

	resp, _ = ta.do(t, fiber.MethodPost, "/api/clear-conversation", "", headers)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"203.0.113.7"}, ta.convs.cleared)
}

func TestRAGHandler(t *testing.T) {
	ta := newTestApp()

	resp, _ := ta.do(t, fiber.MethodGet, "/api/rag-status", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = ta.do(t, fiber.MethodPost, "/api/rag-status", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, ta.rag.refreshes)

	resp, _ = ta.do(t, fiber.MethodPost, "/api/rag-status", `{"password":"s3cret"}`, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "s3cret", ta.admin.password)
	assert.Equal(t, 1, ta.rag.refreshes)

	resp, body := ta.do(t, fiber.MethodPost, "/api/refresh-resume", "", map[string]string{"Authorization": "Bearer token"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer token", ta.admin.header)
	assert.Equal(t, 2, ta.rag.refreshes)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data, "resume")
	assert.Contains(t, data, "rag")

	resp, _ = ta.do(t, fiber.MethodPost, "/api/refresh-resume", `{"password":"`+strings.Repeat("x", 300)+`"}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 2, ta.rag.refreshes)
}

func TestAdminHandler(t *testing.T) {
	ta := newTestApp()

	resp, body := ta.do(t, fiber.MethodPost, "/api/admin/login", `{"password":"s3cret"}`, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "token", data["token"])

	resp, _ = ta.do(t, fiber.MethodPost, "/api/admin/login", `{"password":"guess"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = ta.do(t, fiber.MethodPost, "/api/admin/login", `{}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = ta.do(t, fiber.MethodGet, "/api/status", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

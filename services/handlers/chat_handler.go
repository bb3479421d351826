package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/shared"
)

type ChatHandler struct {
	chatSvc         ChatServiceInterface
	conversationSvc ConversationServiceInterface
}

func NewChatHandler(chatSvc ChatServiceInterface, conversationSvc ConversationServiceInterface) *ChatHandler {
	return &ChatHandler{
		chatSvc:         chatSvc,
		conversationSvc: conversationSvc,
	}
}

// @Summary Ask about the resume
// @Description Answers a question grounded on the resume. Counts against the caller's daily quota.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Question"
// @Success 200 {object} shared.Response{data=dto.ChatResponse}
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 429 {object} shared.Response{data=dto.QuotaExceededResponse}
// @Failure 503 {object} shared.Response
// @Router /api/chat-resume [post]
func (h *ChatHandler) ChatResume(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Validation failed", dto.CreateValidationErrorResponse(err))
	}

	result, err := h.chatSvc.Respond(c.UserContext(), shared.ClientIP(c), req.Message)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, result)
}

// @Summary Message quota
// @Description Returns the caller's remaining messages for today
// @Tags chat
// @Produce json
// @Success 200 {object} shared.Response{data=dto.QuotaStatus}
// @Router /api/message-count [get]
func (h *ChatHandler) GetMessageCount(c *fiber.Ctx) error {
	return shared.ResponseOK(c, h.conversationSvc.CheckQuota(c.UserContext(), shared.ClientIP(c)))
}

// @Summary Chat history
// @Description Returns the caller's unexpired conversation
// @Tags chat
// @Produce json
// @Success 200 {object} shared.Response{data=dto.ChatHistoryResponse}
// @Router /api/chat-history [get]
func (h *ChatHandler) GetChatHistory(c *fiber.Ctx) error {
	messages := h.conversationSvc.History(c.UserContext(), shared.ClientIP(c))

	return shared.ResponseOK(c, dto.ChatHistoryResponse{
		Success:  true,
		Messages: messages,
		Count:    len(messages),
	})
}

// @Summary Clear conversation
// @Description Removes the caller's history. Today's message count is kept.
// @Tags chat
// @Produce json
// @Success 200 {object} shared.Response
// @Router /api/clear-conversation [post]
func (h *ChatHandler) ClearConversation(c *fiber.Ctx) error {
	if err := h.conversationSvc.Clear(c.UserContext(), shared.ClientIP(c)); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Conversation cleared", fiber.Map{"success": true})
}

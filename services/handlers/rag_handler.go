package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/shared"
)

type RAGHandler struct {
	retrieverSvc RetrieverServiceInterface
	adminSvc     AdminServiceInterface
}

func NewRAGHandler(retrieverSvc RetrieverServiceInterface, adminSvc AdminServiceInterface) *RAGHandler {
	return &RAGHandler{
		retrieverSvc: retrieverSvc,
		adminSvc:     adminSvc,
	}
}

// authorize checks the bearer token or the password carried in an optional JSON body.
func (h *RAGHandler) authorize(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return shared.NewBadRequestError(err, "Invalid request body")
		}
		if err := dto.GetValidator().Struct(req); err != nil {
			return shared.NewAppError(fiber.StatusBadRequest, err, "Validation failed", dto.CreateValidationErrorResponse(err))
		}
	}

	return h.adminSvc.AuthorizePrivileged(c.Get(fiber.HeaderAuthorization), req.Password)
}

// @Summary Retriever status
// @Tags rag
// @Produce json
// @Success 200 {object} shared.Response{data=dto.RAGStatusResponse}
// @Router /api/rag-status [get]
func (h *RAGHandler) GetStatus(c *fiber.Ctx) error {
	return shared.ResponseOK(c, dto.RAGStatusResponse{
		Success: true,
		RAG:     h.retrieverSvc.Status(),
	})
}

// @Summary Refresh the retriever
// @Description Rebuilds the index from the current resume source
// @Tags rag
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RefreshRequest false "Admin password"
// @Success 200 {object} shared.Response{data=dto.RAGStatusResponse}
// @Failure 401 {object} shared.Response
// @Router /api/rag-status [post]
func (h *RAGHandler) Refresh(c *fiber.Ctx) error {
	if err := h.authorize(c); err != nil {
		return err
	}

	status, _ := h.retrieverSvc.Refresh(c.UserContext())

	return shared.ResponseJSON(c, fiber.StatusOK, "Retriever refreshed", dto.RAGStatusResponse{
		Success: true,
		RAG:     status,
	})
}

// @Summary Reload the resume
// @Description Re-reads the resume source and rebuilds the retriever
// @Tags rag
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RefreshRequest false "Admin password"
// @Success 200 {object} shared.Response{data=dto.RefreshResumeResponse}
// @Failure 401 {object} shared.Response
// @Router /api/refresh-resume [post]
func (h *RAGHandler) RefreshResume(c *fiber.Ctx) error {
	if err := h.authorize(c); err != nil {
		return err
	}

	status, resume := h.retrieverSvc.Refresh(c.UserContext())

	return shared.ResponseJSON(c, fiber.StatusOK, "Resume reloaded", dto.RefreshResumeResponse{
		Success: true,
		Resume:  resume,
		RAG:     status,
	})
}

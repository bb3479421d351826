package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/shared"
)

type AdminHandler struct {
	adminSvc AdminServiceInterface
}

func NewAdminHandler(adminSvc AdminServiceInterface) *AdminHandler {
	return &AdminHandler{
		adminSvc: adminSvc,
	}
}

// @Summary Admin login
// @Description Exchanges the admin password for a bearer token. Wrong passwords count as failed logins.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Admin password"
// @Success 200 {object} shared.Response{data=dto.TokenPair}
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} shared.Response
// @Failure 429 {object} shared.Response{data=dto.RateLimitExceededResponse}
// @Router /api/admin/login [post]
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Validation failed", dto.CreateValidationErrorResponse(err))
	}

	userAgent := c.Get(fiber.HeaderUserAgent, "unknown")

	token, err := h.adminSvc.Login(c.UserContext(), shared.ClientIP(c), userAgent, req.Password)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Login successful", token)
}

// @Summary System status
// @Description Reports which settings are present, memory, uptime, conversation totals and retriever state
// @Tags admin
// @Produce json
// @Success 200 {object} shared.Response{data=dto.StatusResponse}
// @Router /api/status [get]
func (h *AdminHandler) GetStatus(c *fiber.Ctx) error {
	return shared.ResponseOK(c, h.adminSvc.SystemStatus(c.UserContext()))
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/portfolio_api/dto"
	"github.com/lac-hong-legacy/portfolio_api/shared"
)

type FailedLoginHandler struct {
	loginGuardSvc LoginGuardServiceInterface
}

func NewFailedLoginHandler(loginGuardSvc LoginGuardServiceInterface) *FailedLoginHandler {
	return &FailedLoginHandler{
		loginGuardSvc: loginGuardSvc,
	}
}

// @Summary Record a failed login
// @Description Records a failed admin login for the caller's address. Blocked addresses are rejected without recording.
// @Tags security
// @Accept json
// @Produce json
// @Param request body dto.FailedLoginRequest false "Attempt details"
// @Success 200 {object} shared.Response{data=dto.FailedLoginResponse}
// @Failure 429 {object} shared.Response{data=dto.BlockedResponse}
// @Router /api/failed-logins [post]
func (h *FailedLoginHandler) RecordFailedLogin(c *fiber.Ctx) error {
	var req dto.FailedLoginRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return shared.NewBadRequestError(err, "Invalid request body")
		}
	}

	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Validation failed", dto.CreateValidationErrorResponse(err))
	}

	userAgent := c.Get(fiber.HeaderUserAgent, "unknown")

	result, err := h.loginGuardSvc.RecordFailedAttempt(c.UserContext(), shared.ClientIP(c), userAgent, req.AttemptedPassword)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Attempt recorded", result)
}

// @Summary Failed login statistics
// @Description Returns the attempt count, live blocks and the last 20 attempts
// @Tags security
// @Produce json
// @Success 200 {object} shared.Response{data=dto.FailedLoginStatsResponse}
// @Router /api/failed-logins [get]
func (h *FailedLoginHandler) GetFailedLogins(c *fiber.Ctx) error {
	return shared.ResponseOK(c, h.loginGuardSvc.Stats(c.UserContext()))
}

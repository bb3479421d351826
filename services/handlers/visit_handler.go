package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/portfolio_api/shared"
)

type VisitHandler struct {
	visitSvc VisitServiceInterface
}

func NewVisitHandler(visitSvc VisitServiceInterface) *VisitHandler {
	return &VisitHandler{
		visitSvc: visitSvc,
	}
}

// @Summary Log a visit
// @Description Records a page visit for the caller's address. Rate limited per address.
// @Tags visits
// @Produce json
// @Success 200 {object} shared.Response{data=dto.LogVisitResponse}
// @Failure 429 {object} shared.Response{data=dto.RateLimitExceededResponse}
// @Router /api/visits [post]
func (h *VisitHandler) LogVisit(c *fiber.Ctx) error {
	userAgent := c.Get(fiber.HeaderUserAgent, "unknown")
	referer := c.Get(fiber.HeaderReferer)

	result, err := h.visitSvc.LogVisit(c.UserContext(), shared.ClientIP(c), userAgent, referer)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Visit logged", result)
}

// @Summary Visit statistics
// @Description Returns total and unique visit counts with the last 10 visits
// @Tags visits
// @Produce json
// @Success 200 {object} shared.Response{data=dto.VisitStatsResponse}
// @Failure 429 {object} shared.Response{data=dto.RateLimitExceededResponse}
// @Router /api/visits [get]
func (h *VisitHandler) GetVisits(c *fiber.Ctx) error {
	return shared.ResponseOK(c, h.visitSvc.Stats(c.UserContext()))
}

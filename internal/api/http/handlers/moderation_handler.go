package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/reshla/blacklist-service/internal/api/dto"
	"github.com/reshla/blacklist-service/internal/auth"
	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/service"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// ModerationHandler exposes the moderation queue and decision endpoints.
type ModerationHandler struct {
	moderation *service.ModerationService
	reports    *service.ReportService
}

// NewModerationHandler constructs handler.
func NewModerationHandler(moderationService *service.ModerationService, reportService *service.ReportService) *ModerationHandler {
	return &ModerationHandler{moderation: moderationService, reports: reportService}
}

// Queue GET /moderation/queue.
func (h *ModerationHandler) Queue(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	queued, err := h.reports.List(c.Context(), string(domain.ReportStatusModeration), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ReportSummary, 0, len(queued))
	for i := range queued {
		items = append(items, reportSummary(&queued[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Approve POST /moderation/reports/:id/approve.
func (h *ModerationHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, h.moderation.Approve)
}

// Reject POST /moderation/reports/:id/reject.
func (h *ModerationHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, h.moderation.Reject)
}

type decisionFunc func(ctx context.Context, moderator *domain.User, reportID, comment string) (*domain.Report, error)

func (h *ModerationHandler) decide(c *fiber.Ctx, decide decisionFunc) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ModerationDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	report, err := decide(c.Context(), principal.User, c.Params("id"), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportSummary(report)})
}

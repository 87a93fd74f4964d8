package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/reshla/blacklist-service/internal/api/dto"
	"github.com/reshla/blacklist-service/internal/auth"
	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/service"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// ReportsHandler manages report submission, browsing, voting and commentary.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// CreateReport POST /reports.
func (h *ReportsHandler) CreateReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.ReportCreateInput{
		SubjectID:     req.SubjectID,
		SubjectHandle: req.SubjectHandle,
		Reason:        req.Reason,
	}
	for _, proof := range req.Proofs {
		input.Proofs = append(input.Proofs, service.ProofInput{
			URL:      proof.URL,
			FileName: proof.FileName,
		})
	}

	report, err := h.service.Create(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": reportSummary(report)})
}

// ListReports GET /reports.
func (h *ReportsHandler) ListReports(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	reports, err := h.service.List(c.Context(), c.Query("status"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ReportSummary, 0, len(reports))
	for i := range reports {
		items = append(items, reportSummary(&reports[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListOwnReports GET /reports/mine.
func (h *ReportsHandler) ListOwnReports(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	limit, offset := parsePagination(c)
	reports, err := h.service.ListBySubmitter(c.Context(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ReportSummary, 0, len(reports))
	for i := range reports {
		items = append(items, reportSummary(&reports[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetReport GET /reports/:id.
func (h *ReportsHandler) GetReport(c *fiber.Ctx) error {
	viewerID := ""
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.User != nil {
		viewerID = principal.User.ID
	}
	detail, err := h.service.Get(c.Context(), c.Params("id"), viewerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportDetail(detail)})
}

// Vote POST /reports/:id/vote.
func (h *ReportsHandler) Vote(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	reportID := c.Params("id")
	count, err := h.service.Vote(c.Context(), reportID, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.VoteResponse{ReportID: reportID, VoteCount: count}})
}

// AddComment POST /reports/:id/comments.
func (h *ReportsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.Context(), c.Params("id"), principal.User.ID, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ResubmitReport POST /reports/:id/resubmit.
func (h *ReportsHandler) ResubmitReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ResubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	report, err := h.service.Resubmit(c.Context(), c.Params("id"), principal.User.ID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportSummary(report)})
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func reportSummary(report *domain.Report) dto.ReportSummary {
	return dto.ReportSummary{
		ID:             report.ID,
		SubjectID:      report.SubjectID,
		SubjectHandle:  report.SubjectHandle,
		Reason:         report.Reason,
		Status:         report.Status,
		LowPriority:    report.LowPriority,
		VoteCount:      report.VoteCount,
		SubmittedBy:    report.SubmittedBy,
		CreatedAt:      report.CreatedAt,
		UpdatedAt:      report.UpdatedAt,
		VotingDeadline: report.VotingDeadline,
	}
}

func reportDetail(detail *service.ReportDetail) dto.ReportDetailResponse {
	proofs := make([]dto.ProofResponse, 0, len(detail.Report.Proofs))
	for _, proof := range detail.Report.Proofs {
		proofs = append(proofs, dto.ProofResponse{
			ID:       proof.ID,
			URL:      proof.URL,
			FileName: proof.FileName,
		})
	}
	comments := make([]dto.CommentResponse, 0, len(detail.Comments))
	for i := range detail.Comments {
		comments = append(comments, commentResponse(&detail.Comments[i]))
	}
	actions := make([]dto.ModeratorActionResponse, 0, len(detail.Actions))
	for _, action := range detail.Actions {
		actions = append(actions, dto.ModeratorActionResponse{
			ID:          action.ID,
			ModeratorID: action.ModeratorID,
			Action:      action.Action,
			Comment:     action.Comment,
			CreatedAt:   action.CreatedAt,
		})
	}
	return dto.ReportDetailResponse{
		ReportSummary: reportSummary(&detail.Report),
		Proofs:        proofs,
		Comments:      comments,
		Actions:       actions,
		HasVoted:      detail.HasVoted,
	}
}

func commentResponse(comment *domain.ReportComment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/reshla/blacklist-service/internal/api/dto"
	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/repository"
)

// BlacklistHandler serves the public, read-only blacklist.
type BlacklistHandler struct {
	profiles repository.ProfileRepository
}

// NewBlacklistHandler constructs handler.
func NewBlacklistHandler(profiles repository.ProfileRepository) *BlacklistHandler {
	return &BlacklistHandler{profiles: profiles}
}

// List GET /blacklist.
func (h *BlacklistHandler) List(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	profiles, err := h.profiles.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /blacklist/:subject_id.
func (h *BlacklistHandler) Get(c *fiber.Ctx) error {
	profile, err := h.profiles.Get(c.Context(), c.Params("subject_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

func profileResponse(profile *domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        profile.SubjectID,
		Username:  profile.Handle,
		Reason:    profile.Reason,
		BannedAt:  profile.BannedAt,
		ReportURL: profile.ReportURL,
		Proofs:    profile.Proofs,
	}
}

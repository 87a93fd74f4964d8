package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/reshla/blacklist-service/internal/api/dto"
	"github.com/reshla/blacklist-service/internal/auth"
	"github.com/reshla/blacklist-service/internal/domain"
	"github.com/reshla/blacklist-service/internal/service"
	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// RolesHandler manages the shared role document.
type RolesHandler struct {
	roles *service.RolesService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(rolesService *service.RolesService) *RolesHandler {
	return &RolesHandler{roles: rolesService}
}

// Get GET /admin/roles.
func (h *RolesHandler) Get(c *fiber.Ctx) error {
	roles, err := h.roles.Get(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rolesResponse(roles)})
}

// Update PUT /admin/roles.
func (h *RolesHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateRolesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	roles, err := h.roles.Update(c.Context(), principal.User.Username, req.Admins, req.Moderators, req.ExpectedVersion)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rolesResponse(roles)})
}

func rolesResponse(roles *domain.Roles) dto.RolesResponse {
	return dto.RolesResponse{
		Admins:     roles.Admins,
		Moderators: roles.Moderators,
		Version:    roles.Version,
		UpdatedAt:  roles.UpdatedAt,
	}
}

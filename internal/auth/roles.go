package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/reshla/blacklist-service/pkg/util/errorutil"
)

// RoleChecker answers role membership questions for a username. Implemented
// by the roles service; admins count as moderators there.
type RoleChecker interface {
	IsModerator(ctx context.Context, username string) (bool, error)
	IsAdmin(ctx context.Context, username string) (bool, error)
}

// RequireAuthenticated ensures a principal is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireModerator ensures the caller is a moderator or admin.
func RequireModerator(checker RoleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		allowed, err := checker.IsModerator(c.Context(), principal.User.Username)
		if err != nil {
			return apperrors.MapError(err)
		}
		if !allowed {
			return apperrors.NewForbidden("moderator role required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller is an admin.
func RequireAdmin(checker RoleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		allowed, err := checker.IsAdmin(c.Context(), principal.User.Username)
		if err != nil {
			return apperrors.MapError(err)
		}
		if !allowed {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}

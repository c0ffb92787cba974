package auth

import (
	"github.com/gofiber/fiber/v2"

	"pmhub_backend/internals/constants"
)

// RequireRoles menolak request jika role user tidak termasuk allowed.
func RequireRoles(feature string, allowed ...int) fiber.Handler {
	allowedSet := make(map[int]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetUserRole(c)
		if _, ok := allowedSet[role]; !ok {
			return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorManager(feature))
		}
		return c.Next()
	}
}

// RequireAdmin: khusus endpoint /api/admin.
func RequireAdmin(feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserRole(c) != constants.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorAdmin(feature))
		}
		return c.Next()
	}
}

package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GDSC-UTSC/gdg-website/internal/utils"
)

// RoleAdmin is the role that grants access to review endpoints.
const RoleAdmin = "admin"

// RequireAdmin admits callers whose token carries admin: true or an admin role.
// It must run after JWTProtected.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if admin, ok := c.Locals(LocalUserAdmin).(bool); ok && admin {
			return c.Next()
		}
		if normalizeRoleValue(c.Locals(LocalUserRole)) == RoleAdmin {
			return c.Next()
		}
		return utils.SendErrorCode(c, fiber.StatusForbidden, "forbidden", "admin access required")
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
